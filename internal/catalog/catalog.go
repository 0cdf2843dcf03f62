// Package catalog stores the registry of BigQuery tables served to the table
// picker. Storage backends register a Dialect by name, the same way database
// adapters register themselves in the rest of bqlab.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNotFound       = errors.New("table not found")
	ErrTableExists    = errors.New("table already exists")
	ErrInvalid        = errors.New("invalid table")
	ErrUnknownDriver  = errors.New("unknown catalog driver")
	ErrBadOrderColumn = errors.New("column cannot be ordered by")
)

// DefaultPageSize matches the page size of the catalog list view.
const DefaultPageSize = 500

// Table is one registered BigQuery table.
type Table struct {
	ID                  int64     `json:"id"`
	ProjectID           string    `json:"project_id"`
	DatasetName         string    `json:"dataset_name"`
	TableName           string    `json:"table_name"`
	Description         string    `json:"description"`
	IsFeatured          bool      `json:"is_featured"`
	FilterSelectEnabled bool      `json:"filter_select_enabled"`
	Offset              int       `json:"offset"`
	CacheTimeout        int       `json:"cache_timeout"`
	Params              string    `json:"params"`
	Perm                string    `json:"perm"`
	CreatedOn           time.Time `json:"created_on"`
	ChangedOn           time.Time `json:"changed_on"`
}

// FullName returns project:dataset.table, omitting the project when unset.
func (t Table) FullName() string {
	if t.ProjectID == "" {
		return t.DatasetName + "." + t.TableName
	}
	return t.ProjectID + ":" + t.DatasetName + "." + t.TableName
}

// Validate checks the fields a table cannot be registered without.
func (t Table) Validate() error {
	if strings.TrimSpace(t.TableName) == "" {
		return fmt.Errorf("%w: table_name is required", ErrInvalid)
	}
	if strings.TrimSpace(t.DatasetName) == "" {
		return fmt.Errorf("%w: dataset_name is required", ErrInvalid)
	}
	if strings.ContainsAny(t.ProjectID, ":.") || strings.ContainsAny(t.DatasetName, ":.") {
		return fmt.Errorf("%w: project_id and dataset_name cannot contain ':' or '.'", ErrInvalid)
	}
	return nil
}

// ParseFullName splits project:dataset.table (the project part is optional).
func ParseFullName(s string) (Table, error) {
	var t Table
	rest := s
	if i := strings.Index(rest, ":"); i >= 0 {
		t.ProjectID, rest = rest[:i], rest[i+1:]
	}
	dot := strings.Index(rest, ".")
	if dot < 0 {
		return Table{}, fmt.Errorf("%w: %q is not project:dataset.table", ErrInvalid, s)
	}
	t.DatasetName, t.TableName = rest[:dot], rest[dot+1:]
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// FormatID renders a table id the way the read endpoint carries it.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ListOptions controls ordering, paging, search and access filtering.
type ListOptions struct {
	// Order is one of OrderColumns; empty means table_name.
	Order string
	Desc  bool
	// Page is zero-based.
	Page     int
	PageSize int
	// Search is a case-insensitive substring of project, dataset or table.
	Search string
	// Allow, when set, drops tables it returns false for before paging.
	Allow func(Table) bool
}

// OrderColumns lists the columns List can order by.
var OrderColumns = []string{"table_name", "changed_on", "offset"}

var orderExpr = map[string]string{
	"table_name": "table_name",
	"changed_on": "changed_on",
	"offset":     "time_offset",
}

// GlobAccess returns an Allow func matching full names against patterns with
// path.Match. A malformed pattern matches nothing.
func GlobAccess(patterns []string) func(Table) bool {
	return func(t Table) bool {
		name := t.FullName()
		for _, p := range patterns {
			if ok, err := path.Match(p, name); err == nil && ok {
				return true
			}
		}
		return false
	}
}

// ---------------------------------------------------------------------------
// Dialect registry
// ---------------------------------------------------------------------------

// Dialect describes how a storage backend is opened and addressed.
type Dialect struct {
	// Name is the registry key used in config and on the command line.
	Name string
	// Driver is the database/sql driver name.
	Driver string
	// Normalize rewrites a user-supplied DSN into driver form. Optional.
	Normalize func(dsn string) (string, error)
	// Migrations holds the goose SQL migrations under migrate.Dir.
	Migrations fs.FS
	// Goose is the goose dialect name. Empty means Name.
	Goose string
	// Configure tunes the connection pool after open. Optional.
	Configure func(db *sql.DB, dsn string)
	// Placeholder renders the n-th (1-based) bind parameter. Nil means "?".
	Placeholder func(n int) string
	// Returning is true when INSERT ... RETURNING id is supported.
	Returning bool
	// Unavailable is set by backends that are not compiled in.
	Unavailable error
}

// Registry holds registered dialects by name.
var Registry = map[string]Dialect{}

// Register adds a dialect to the global registry.
func Register(d Dialect) {
	Registry[d.Name] = d
}

// Drivers returns the registered dialect names, sorted.
func Drivers() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the dialect registered under name.
func Lookup(name string) (Dialect, error) {
	d, ok := Registry[name]
	if !ok {
		return Dialect{}, fmt.Errorf("%w: %s (available: %s)", ErrUnknownDriver, name, strings.Join(Drivers(), ", "))
	}
	if d.Unavailable != nil {
		return Dialect{}, d.Unavailable
	}
	return d, nil
}

func (d Dialect) gooseDialect() string {
	if d.Goose != "" {
		return d.Goose
	}
	return d.Name
}

// Dollar renders PostgreSQL style placeholders.
func Dollar(n int) string {
	return "$" + strconv.Itoa(n)
}

// rebind rewrites ? placeholders for dialects that number their parameters.
func (d Dialect) rebind(q string) string {
	if d.Placeholder == nil {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString(d.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
