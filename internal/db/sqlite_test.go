package db

import (
	"path/filepath"
	"testing"

	"github.com/ahsanfayaz52/noteservice/internal/config"
)

func TestInitSQLiteRequiresPath(t *testing.T) {
	if _, err := InitSQLite("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestInitSQLiteCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db")

	conn, err := InitSQLite(path)
	if err != nil {
		t.Fatalf("init sqlite: %v", err)
	}
	defer conn.Close()

	for _, table := range []string{"users", "notes"} {
		var name string
		err := conn.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestInitSQLiteIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db")

	first, err := InitSQLite(path)
	if err != nil {
		t.Fatalf("first init: %v", err)
	}
	first.Close()

	second, err := InitSQLite(path)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	second.Close()
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(&config.Config{DBDriver: "oracle"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
