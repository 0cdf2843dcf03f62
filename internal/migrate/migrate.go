// Package migrate applies embedded goose SQL migrations.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sync"

	"github.com/pressly/goose/v3"
)

// Dir is the directory inside a migrations FS holding the .sql files.
const Dir = "migrations"

// mu guards goose's package-level base FS, dialect and logger.
var mu sync.Mutex

// Up runs all pending migrations in fsys against db. dialect is a goose
// dialect name such as "sqlite3", "postgres" or "mysql".
func Up(ctx context.Context, db *sql.DB, fsys fs.FS, dialect string) error {
	mu.Lock()
	defer mu.Unlock()

	if err := setup(fsys, dialect); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, Dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Version returns the latest applied migration version.
func Version(ctx context.Context, db *sql.DB, fsys fs.FS, dialect string) (int64, error) {
	mu.Lock()
	defer mu.Unlock()

	if err := setup(fsys, dialect); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}

func setup(fsys fs.FS, dialect string) error {
	goose.SetBaseFS(fsys)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}
