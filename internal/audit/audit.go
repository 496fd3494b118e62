// Package audit records mutation activity in a local SQLite database.
//
// Every committed change to a work index appends one row: which project,
// which agent, what action, and a short detail string. The log is an
// optional subsystem, a nil *Log is safe to call and records nothing.
package audit

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Entry is one recorded mutation.
type Entry struct {
	ID        string `json:"id"`
	Project   string `json:"project"`
	Agent     string `json:"agent"`
	Action    string `json:"action"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Log is the activity log backed by SQLite.
type Log struct {
	db *sql.DB
}

// Open creates the data directory if needed, opens the database with WAL
// mode, and runs migrations.
func Open(dataDir string) (*Log, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("audit: create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "activity.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("audit: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("audit: pragma %q: %w", p, err)
		}
	}

	l := &Log{db: db}
	if err := l.migrate(); err != nil {
		return nil, fmt.Errorf("audit: migration: %w", err)
	}
	return l, nil
}

// Close closes the underlying database connection.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	return l.db.Close()
}

func (l *Log) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS activity (
			id         TEXT PRIMARY KEY,
			project    TEXT NOT NULL,
			agent      TEXT NOT NULL,
			action     TEXT NOT NULL,
			detail     TEXT,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_activity_project ON activity(project);
		CREATE INDEX IF NOT EXISTS idx_activity_created ON activity(created_at DESC);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Record appends one activity row. Failures are logged, never returned:
// audit must not block a mutation that already committed.
func (l *Log) Record(project, agent, action, detail string) {
	if l == nil {
		return
	}
	_, err := l.db.Exec(
		`INSERT INTO activity (id, project, agent, action, detail) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), project, agent, action, detail,
	)
	if err != nil {
		log.Printf("WARNING: audit record failed: %v", err)
	}
}

// Recent returns the latest entries, newest first. An empty project
// returns entries across all projects.
func (l *Log) Recent(project string, limit int) ([]Entry, error) {
	if l == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, project, agent, action, ifnull(detail, ''), created_at FROM activity`
	args := []any{}

	if project != "" {
		query += " WHERE project = ?"
		args = append(args, project)
	}

	query += " ORDER BY created_at DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: query activity: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Project, &e.Agent, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}
