// Package repository handles all interactions with the record store.
//
// The record store is Airtable: repositories speak in tasks and
// statuses and keep the Airtable field names to themselves.
package repository
