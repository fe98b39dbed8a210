// Package database opens the journal's storage connections: a pgx pool for
// PostgreSQL or a database/sql handle for an embedded SQLite file.
package database
