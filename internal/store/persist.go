package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/sadopc/bqlab/internal/migrate"
	"github.com/sadopc/bqlab/internal/msg"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Snapshot is the persisted part of the store.
type Snapshot struct {
	Editors []msg.QueryEditor
	Tables  map[string][]msg.Table
	Active  string
}

// Persister saves editors and their tables to a SQLite database.
type Persister struct {
	db *sql.DB
}

// OpenPersister opens (or creates) the state database at path and applies
// pending migrations.
func OpenPersister(path string) (*Persister, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("store: create dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	// One connection keeps writes ordered.
	db.SetMaxOpenConns(1)

	if err := migrate.Up(context.Background(), db, migrations, "sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Persister{db: db}, nil
}

// Load reads the saved editors, their tables and the active editor id.
func (p *Persister) Load() (Snapshot, error) {
	snap := Snapshot{Tables: map[string][]msg.Table{}}

	rows, err := p.db.Query(`SELECT id, title, db_id, sql_text FROM query_editors ORDER BY position, created_at`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("store load editors: %w", err)
	}
	for rows.Next() {
		var e msg.QueryEditor
		if err := rows.Scan(&e.ID, &e.Title, &e.DbID, &e.SQL); err != nil {
			rows.Close()
			return Snapshot{}, fmt.Errorf("store scan editor: %w", err)
		}
		snap.Editors = append(snap.Editors, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return Snapshot{}, fmt.Errorf("store editors rows: %w", err)
	}
	rows.Close()

	rows, err = p.db.Query(`SELECT editor_id, database_id, name FROM editor_tables ORDER BY editor_id, position`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("store load tables: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var editorID string
		var t msg.Table
		if err := rows.Scan(&editorID, &t.DatabaseID, &t.Name); err != nil {
			return Snapshot{}, fmt.Errorf("store scan table: %w", err)
		}
		snap.Tables[editorID] = append(snap.Tables[editorID], t)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("store tables rows: %w", err)
	}

	err = p.db.QueryRow(`SELECT value FROM meta WHERE key = 'active_editor'`).Scan(&snap.Active)
	if err != nil && err != sql.ErrNoRows {
		return Snapshot{}, fmt.Errorf("store load active: %w", err)
	}
	return snap, nil
}

// Save replaces the persisted state with snap.
func (p *Persister) Save(snap Snapshot) error {
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("store save: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM query_editors`, `DELETE FROM editor_tables`} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("store save: %w", err)
		}
	}

	for i, e := range snap.Editors {
		if _, err := tx.Exec(
			`INSERT INTO query_editors (id, title, db_id, sql_text, position) VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.Title, e.DbID, e.SQL, i,
		); err != nil {
			return fmt.Errorf("store save editor %s: %w", e.ID, err)
		}
		for j, t := range snap.Tables[e.ID] {
			if _, err := tx.Exec(
				`INSERT INTO editor_tables (editor_id, database_id, name, position) VALUES (?, ?, ?, ?)`,
				e.ID, t.DatabaseID, t.Name, j,
			); err != nil {
				return fmt.Errorf("store save table %s: %w", t.DatabaseID, err)
			}
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO meta (key, value) VALUES ('active_editor', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		snap.Active,
	); err != nil {
		return fmt.Errorf("store save active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store save commit: %w", err)
	}
	return nil
}

// Clear deletes all persisted state.
func (p *Persister) Clear() error {
	for _, stmt := range []string{`DELETE FROM query_editors`, `DELETE FROM editor_tables`, `DELETE FROM meta`} {
		if _, err := p.db.Exec(stmt); err != nil {
			return fmt.Errorf("store clear: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (p *Persister) Close() error {
	return p.db.Close()
}
