// Package middleware stores global and route-specific middleware.
//
// These intercept requests to handle cross-cutting concerns
// such as request IDs, request logging, tracing, CORS and
// panic recovery, and hold the global error handler
package middleware
