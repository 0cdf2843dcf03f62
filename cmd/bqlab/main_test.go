package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/bqlab/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDetectDriver(t *testing.T) {
	cases := map[string]string{
		"postgres://u@host/db":       "postgres",
		"postgresql://u@host/db":     "postgres",
		"mysql://u@host/db":          "mysql",
		"root@tcp(localhost:3306)/x": "mysql",
		"sqlite:///tmp/c.db":         "sqlite",
		"file:catalog.db":            "sqlite",
		"./catalog.sqlite3":          "sqlite",
		"duckdb://c":                 "duckdb",
		"catalog.duckdb":             "duckdb",
		"something":                  "",
	}
	for dsn, want := range cases {
		assert.Equal(t, want, detectDriver(dsn), dsn)
	}
}

func TestCatalogFlagsApply(t *testing.T) {
	t.Run("dsn picks driver", func(t *testing.T) {
		cfg := config.DefaultConfig()
		f := catalogFlags{dsn: "postgres://u@host/db"}
		f.apply(cfg)
		assert.Equal(t, "postgres", cfg.Server.Driver)
		assert.Equal(t, "postgres://u@host/db", cfg.Server.DSN)
	})

	t.Run("explicit driver wins", func(t *testing.T) {
		cfg := config.DefaultConfig()
		f := catalogFlags{driver: "mysql", dsn: "catalog.db"}
		f.apply(cfg)
		assert.Equal(t, "mysql", cfg.Server.Driver)
	})

	t.Run("no flags keeps config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		var f catalogFlags
		f.apply(cfg)
		assert.Equal(t, "sqlite", cfg.Server.Driver)
		assert.Empty(t, cfg.Server.DSN)
	})
}

func TestTablesCommands(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "missing.yaml")
	dsn := filepath.Join(dir, "catalog.db")
	base := []string{"--config", cfgPath, "tables", "--dsn", dsn}
	run := func(args ...string) (string, error) {
		return execute(t, append(append([]string{}, base...), args...)...)
	}

	out, err := run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "no tables registered")

	out, err = run("add", "proj:sales.orders", "--description", "Orders", "--featured")
	require.NoError(t, err)
	assert.Contains(t, out, "added proj:sales.orders (id 1)")

	_, err = run("add", "proj:sales.orders")
	require.Error(t, err, "duplicate full names are rejected")

	_, err = run("add", "no-dot")
	require.Error(t, err)

	_, err = run("add", "sales.customers")
	require.NoError(t, err)

	out, err = run("list", "--search", "ORDERS")
	require.NoError(t, err)
	assert.Contains(t, out, "proj:sales.orders")
	assert.NotContains(t, out, "sales.customers")
	assert.Contains(t, out, "1 of 1 tables")

	out, err = run("rm", "proj:sales.orders")
	require.NoError(t, err)
	assert.Contains(t, out, "removed proj:sales.orders")

	_, err = run("rm", "proj:sales.orders")
	require.Error(t, err)

	out, err = run("rm", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 2")

	out, err = run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "no tables registered")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "bqlab dev")
	assert.Contains(t, out, "- sqlite")
	assert.Contains(t, out, "- postgres")
	assert.Contains(t, out, "- mysql")
}

func TestUnknownDriver(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "--config", filepath.Join(dir, "none.yaml"), "tables", "--driver", "oracle", "--dsn", "x", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown catalog driver")
}
