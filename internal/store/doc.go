// Package store defines interfaces for data persistence operations.
// These interfaces keep the task service independent of the database:
// the Postgres implementations live in internal/platform/postgres, and
// service tests substitute mocks.
package store
