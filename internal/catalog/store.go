package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/bqlab/internal/migrate"
)

const selectColumns = `id, project_id, dataset_name, table_name, description, is_featured,
	filter_select_enabled, time_offset, cache_timeout, params, perm, created_on, changed_on`

// Store is a catalog backed by a SQL database.
type Store struct {
	db  *sql.DB
	d   Dialect
	now func() time.Time
}

// Open connects to dsn with the dialect registered as driver, pings it and
// runs migrations.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, err := Lookup(driver)
	if err != nil {
		return nil, err
	}
	if d.Normalize != nil {
		if dsn, err = d.Normalize(dsn); err != nil {
			return nil, fmt.Errorf("catalog: %s: invalid dsn: %w", d.Name, err)
		}
	}

	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s open: %w", d.Name, err)
	}
	if d.Configure != nil {
		d.Configure(db, dsn)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: %s ping: %w", d.Name, err)
	}

	s := NewStore(db, d)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an already open database.
func NewStore(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, d: d, now: func() time.Time { return time.Now().UTC() }}
}

// Dialect returns the name of the backend in use.
func (s *Store) Dialect() string { return s.d.Name }

// Migrate runs all pending goose migrations of the dialect.
func (s *Store) Migrate(ctx context.Context) error {
	if s.d.Migrations == nil {
		return fmt.Errorf("catalog: migrate: %s has no migrations", s.d.Name)
	}
	if err := migrate.Up(ctx, s.db, s.d.Migrations, s.d.gooseDialect()); err != nil {
		return fmt.Errorf("catalog: migrate: %w", err)
	}
	return nil
}

// SchemaVersion returns the latest applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int64, error) {
	v, err := migrate.Version(ctx, s.db, s.d.Migrations, s.d.gooseDialect())
	if err != nil {
		return 0, fmt.Errorf("catalog: schema version: %w", err)
	}
	return v, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns one page of tables and the total number of tables that passed
// the search and access filters.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Table, int, error) {
	order := opts.Order
	if order == "" {
		order = "table_name"
	}
	col, ok := orderExpr[order]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrBadOrderColumn, order)
	}
	dir := "ASC"
	if opts.Desc {
		dir = "DESC"
	}

	q := "SELECT " + selectColumns + " FROM bigquery_table"
	var args []any
	if search := strings.ToLower(strings.TrimSpace(opts.Search)); search != "" {
		like := "%" + escapeLike(search) + "%"
		q += " WHERE LOWER(table_name) LIKE ? ESCAPE '!' OR LOWER(dataset_name) LIKE ? ESCAPE '!'" +
			" OR LOWER(project_id) LIKE ? ESCAPE '!'"
		args = append(args, like, like, like)
	}
	q += fmt.Sprintf(" ORDER BY %s %s, id ASC", col, dir)

	rows, err := s.db.QueryContext(ctx, s.d.rebind(q), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog list: %w", err)
	}
	defer rows.Close()

	all, err := scanTables(rows)
	if err != nil {
		return nil, 0, err
	}

	if opts.Allow != nil {
		kept := all[:0]
		for _, t := range all {
			if opts.Allow(t) {
				kept = append(kept, t)
			}
		}
		all = kept
	}

	total := len(all)
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	page := opts.Page
	if page < 0 {
		page = 0
	}
	if total == 0 || page > (total-1)/size {
		return []Table{}, total, nil
	}
	start := page * size
	end := min(start+size, total)
	return all[start:end], total, nil
}

// Get returns the table with the given id.
func (s *Store) Get(ctx context.Context, id int64) (Table, error) {
	row := s.db.QueryRowContext(ctx,
		s.d.rebind("SELECT "+selectColumns+" FROM bigquery_table WHERE id = ?"), id)
	t, err := scanTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Table{}, fmt.Errorf("catalog get %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Table{}, fmt.Errorf("catalog get %d: %w", id, err)
	}
	return t, nil
}

// Create registers a new table. A table with the same full name is rejected
// with ErrTableExists.
func (s *Store) Create(ctx context.Context, t Table) (Table, error) {
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	if err := s.checkUnique(ctx, t, 0); err != nil {
		return Table{}, err
	}

	now := s.now()
	t.CreatedOn, t.ChangedOn = now, now
	t.Perm = t.FullName()

	q := `INSERT INTO bigquery_table (project_id, dataset_name, table_name, description, is_featured,
		filter_select_enabled, time_offset, cache_timeout, params, perm, created_on, changed_on)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := []any{
		t.ProjectID, t.DatasetName, t.TableName, t.Description, t.IsFeatured,
		t.FilterSelectEnabled, t.Offset, t.CacheTimeout, t.Params, t.Perm, t.CreatedOn, t.ChangedOn,
	}

	if s.d.Returning {
		if err := s.db.QueryRowContext(ctx, s.d.rebind(q+" RETURNING id"), args...).Scan(&t.ID); err != nil {
			return Table{}, fmt.Errorf("catalog create: %w", err)
		}
		return t, nil
	}

	res, err := s.db.ExecContext(ctx, s.d.rebind(q), args...)
	if err != nil {
		return Table{}, fmt.Errorf("catalog create: %w", err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return Table{}, fmt.Errorf("catalog create: last insert id: %w", err)
	}
	return t, nil
}

// Update overwrites the editable fields of an existing table.
func (s *Store) Update(ctx context.Context, t Table) (Table, error) {
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	existing, err := s.Get(ctx, t.ID)
	if err != nil {
		return Table{}, err
	}
	if err := s.checkUnique(ctx, t, t.ID); err != nil {
		return Table{}, err
	}

	t.CreatedOn = existing.CreatedOn
	t.ChangedOn = s.now()
	t.Perm = t.FullName()

	_, err = s.db.ExecContext(ctx, s.d.rebind(`UPDATE bigquery_table SET project_id = ?, dataset_name = ?,
		table_name = ?, description = ?, is_featured = ?, filter_select_enabled = ?, time_offset = ?,
		cache_timeout = ?, params = ?, perm = ?, changed_on = ? WHERE id = ?`),
		t.ProjectID, t.DatasetName, t.TableName, t.Description, t.IsFeatured, t.FilterSelectEnabled,
		t.Offset, t.CacheTimeout, t.Params, t.Perm, t.ChangedOn, t.ID)
	if err != nil {
		return Table{}, fmt.Errorf("catalog update %d: %w", t.ID, err)
	}
	return t, nil
}

// Delete removes a table.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.d.rebind("DELETE FROM bigquery_table WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("catalog delete %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("catalog delete %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("catalog delete %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) checkUnique(ctx context.Context, t Table, exceptID int64) error {
	var n int
	err := s.db.QueryRowContext(ctx, s.d.rebind(`SELECT COUNT(*) FROM bigquery_table
		WHERE project_id = ? AND dataset_name = ? AND table_name = ? AND id <> ?`),
		t.ProjectID, t.DatasetName, t.TableName, exceptID).Scan(&n)
	if err != nil {
		return fmt.Errorf("catalog unique check: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s", ErrTableExists, t.FullName())
	}
	return nil
}

// likeEscaper escapes LIKE wildcards with '!'. MySQL reads '\' inside string
// literals, so it cannot serve as the escape on every backend.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTable(row scanner) (Table, error) {
	var t Table
	err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.DatasetName,
		&t.TableName,
		&t.Description,
		&t.IsFeatured,
		&t.FilterSelectEnabled,
		&t.Offset,
		&t.CacheTimeout,
		&t.Params,
		&t.Perm,
		&t.CreatedOn,
		&t.ChangedOn,
	)
	return t, err
}

func scanTables(rows *sql.Rows) ([]Table, error) {
	var tables []Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog scan: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog rows: %w", err)
	}
	return tables, nil
}
