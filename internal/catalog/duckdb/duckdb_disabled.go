//go:build !duckdb

// Package duckdb registers the DuckDB catalog backend. It needs cgo, so it
// is only compiled with -tags duckdb; otherwise a placeholder dialect is
// registered that refuses to open.
package duckdb

import (
	"errors"

	"github.com/sadopc/bqlab/internal/catalog"
)

var errDisabled = errors.New("DuckDB catalog support not compiled in. Rebuild with -tags duckdb")

func init() {
	catalog.Register(catalog.Dialect{Name: "duckdb", Driver: "duckdb", Unavailable: errDisabled})
}
