package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenSQLite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	db, err := OpenSQLite(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE probe (id INTEGER PRIMARY KEY)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO probe (id) VALUES (1)`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM probe`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestOpenSQLite_Memory(t *testing.T) {
	db, err := OpenSQLite(context.Background(), ":memory:", nil)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer db.Close()

	if st := db.Stats(); st.MaxOpenConnections != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", st.MaxOpenConnections)
	}
}
