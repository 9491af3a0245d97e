// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx driver. It also owns the goose migrations of the
// schema and the mapping of PostgreSQL error codes onto store sentinels.
package postgres
