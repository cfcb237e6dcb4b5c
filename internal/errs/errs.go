// Package errs define custom error types and utilities.
//
// Its purpose is to give every failure the relay can hit a stable
// kind, status code and caller-facing message, so clients receive
// consistent error bodies regardless of where the failure happened.
//
// - Return consistent error shapes to API clients (JSON).
// - Keep the underlying cause for logs without leaking it to the caller.
// - Provide errors that play nicely with Go's standard errors package.
package errs
