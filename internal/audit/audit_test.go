package audit

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestSQLiteSmokeTest(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "smoke.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		t.Fatalf("failed to enable WAL mode: %v", err)
	}

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected WAL mode, got %q", mode)
	}
}

func TestRecordAndRecent(t *testing.T) {
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	l.Record("alpha", "claude", "add_backlog", "pin-deps")
	l.Record("alpha", "codex", "done", "STORY-1 in auth-sprint-1")
	l.Record("beta", "claude", "create_sprint", "auth-sprint-1")

	entries, err := l.Recent("alpha", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries for alpha, want 2", len(entries))
	}
	for _, e := range entries {
		if e.Project != "alpha" {
			t.Errorf("entry %s has project %q, want alpha", e.ID, e.Project)
		}
		if e.ID == "" || e.CreatedAt == "" {
			t.Errorf("entry missing id or timestamp: %+v", e)
		}
	}

	all, err := l.Recent("", 10)
	if err != nil {
		t.Fatalf("Recent all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d entries total, want 3", len(all))
	}
}

func TestRecentLimit(t *testing.T) {
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	for i := 0; i < 5; i++ {
		l.Record("alpha", "claude", "update_story", "STORY-1")
	}

	entries, err := l.Recent("alpha", 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
}

func TestNilLogIsSafe(t *testing.T) {
	var l *Log

	l.Record("alpha", "claude", "add_backlog", "noop")
	entries, err := l.Recent("alpha", 10)
	if err != nil {
		t.Fatalf("Recent on nil log: %v", err)
	}
	if entries != nil {
		t.Fatalf("nil log returned entries: %v", entries)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close on nil log: %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	l1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	l1.Record("alpha", "claude", "sync", "")
	if err := l1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	l2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer l2.Close()

	entries, err := l2.Recent("alpha", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries lost across reopen: got %d, want 1", len(entries))
	}
}
