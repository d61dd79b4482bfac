package bunx

import "github.com/google/uuid"

// NewID returns a UUIDv7 string for a primary key. Keys are generated in Go
// so PostgreSQL and SQLite rows share one format, and v7 keeps inserts in
// index order.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
