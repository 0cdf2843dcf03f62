//go:build duckdb

package duckdb

import (
	"embed"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/sadopc/bqlab/internal/catalog"
)

//go:embed migrations/*.sql
var migrations embed.FS

func init() {
	catalog.Register(Dialect)
}

// Dialect is the DuckDB catalog dialect.
var Dialect = catalog.Dialect{
	Name:       "duckdb",
	Driver:     "duckdb",
	Normalize:  normalizeDSN,
	Returning:  true,
	Migrations: migrations,
}

func normalizeDSN(dsn string) (string, error) {
	dsn = strings.TrimPrefix(dsn, "duckdb://")
	if dsn == "" {
		dsn = ":memory:"
	}
	return dsn, nil
}
