// Package sqlite registers the SQLite catalog backend (modernc.org/sqlite,
// no cgo).
package sqlite

import (
	"database/sql"
	"embed"
	"strings"

	"github.com/sadopc/bqlab/internal/catalog"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

func init() {
	catalog.Register(Dialect)
}

// Dialect is the SQLite catalog dialect.
var Dialect = catalog.Dialect{
	Name:       "sqlite",
	Driver:     "sqlite",
	Normalize:  normalizeDSN,
	Returning:  false,
	Migrations: migrations,
	Goose:      "sqlite3",
	Configure:  configurePool,
}

// normalizeDSN strips common SQLite URI prefixes and enables WAL so the
// server can read while the CLI writes.
func normalizeDSN(dsn string) (string, error) {
	dsn = strings.TrimPrefix(dsn, "sqlite://")
	dsn = strings.TrimPrefix(dsn, "file:")
	if dsn == "" {
		dsn = ":memory:"
	}
	if !isMemory(dsn) && !strings.Contains(dsn, "_pragma=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	return dsn, nil
}

// configurePool pins in-memory databases to one connection. Every new
// connection to ":memory:" would otherwise see its own empty database.
func configurePool(db *sql.DB, dsn string) {
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
	}
}

func isMemory(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
