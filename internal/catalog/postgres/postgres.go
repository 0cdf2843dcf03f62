// Package postgres registers the PostgreSQL catalog backend through pgx's
// database/sql driver.
package postgres

import (
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sadopc/bqlab/internal/catalog"
)

//go:embed migrations/*.sql
var migrations embed.FS

func init() {
	catalog.Register(Dialect)
}

// Dialect is the PostgreSQL catalog dialect.
var Dialect = catalog.Dialect{
	Name:        "postgres",
	Driver:      "pgx",
	Normalize:   normalizeDSN,
	Placeholder: catalog.Dollar,
	Returning:   true,
	Migrations:  migrations,
}

// normalizeDSN validates the DSN with pgx's own parser so a bad URL fails
// before the first connection attempt.
func normalizeDSN(dsn string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("postgres: empty dsn")
	}
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return "", err
	}
	return dsn, nil
}
