//go:build integration

// Package testdb provides helpers for tests that run against a real
// PostgreSQL database. Tests get a migrated database once per process and
// isolate themselves by running inside a transaction that is always rolled back.
package testdb
