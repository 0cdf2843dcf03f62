// Package store holds the editor state the UI renders and implements the
// actions the UI dispatches. State survives restarts through an optional
// SQLite persister.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/bqlab/internal/api"
	"github.com/sadopc/bqlab/internal/audit"
	"github.com/sadopc/bqlab/internal/msg"
)

var (
	ErrEditorNotFound = errors.New("query editor not found")
	ErrLastEditor     = errors.New("cannot close the last query editor")
)

const untitledPrefix = "Untitled Query "

// Options configures a Store. Every field is optional.
type Options struct {
	Persister *Persister
	Audit     *audit.Logger
	Logger    *slog.Logger
}

// Store is the application state. It is safe for concurrent use.
type Store struct {
	mu sync.Mutex

	editors   []msg.QueryEditor
	active    string
	tables    map[string][]msg.Table
	databases []api.Database
	alerts    []msg.Alert
	lastAlert int

	persister *Persister
	audit     *audit.Logger
	logger    *slog.Logger
	newID     func() string
	now       func() time.Time
}

// New creates a store, restoring persisted state when a persister is given.
// A store always holds at least one query editor.
func New(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		tables:    map[string][]msg.Table{},
		persister: opts.Persister,
		audit:     opts.Audit,
		logger:    logger,
		newID:     func() string { return uuid.NewString() },
		now:       time.Now,
	}

	if s.persister != nil {
		snap, err := s.persister.Load()
		if err != nil {
			return nil, err
		}
		s.editors = snap.Editors
		s.tables = snap.Tables
		s.active = snap.Active
		logger.Debug("restored state", "editors", len(s.editors), "active", s.active)
	}

	if len(s.editors) == 0 {
		s.editors = []msg.QueryEditor{s.newEditor("", "")}
	}
	if s.indexOf(s.active) < 0 {
		s.active = s.editors[0].ID
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Left bar actions
// ---------------------------------------------------------------------------

// QueryEditorSetDb selects dbID for the editor and adds it to the editor's
// tables. dbID must be one of the records from the last SetDatabases; any
// other id is ignored. An empty dbID clears the selection.
func (s *Store) QueryEditorSetDb(qe msg.QueryEditor, dbID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(qe.ID)
	if i < 0 {
		s.logger.Warn("set database on unknown editor", "editor", qe.ID, "db", dbID)
		return
	}
	db, ok := s.database(dbID)
	if dbID != "" && !ok {
		s.logger.Warn("ignoring database missing from the catalog", "editor", qe.ID, "db", dbID)
		return
	}
	s.editors[i].DbID = dbID

	if ok && !hasTable(s.tables[qe.ID], dbID) {
		s.tables[qe.ID] = append(s.tables[qe.ID], msg.Table{DatabaseID: dbID, Name: db.Name})
	}

	s.logger.Info("database selected", "editor", qe.ID, "db", dbID)
	s.audit.Record(audit.ActionSelectDatabase, qe.ID, dbID, "")
	s.saveLocked()
}

// SetDatabases replaces the known catalog records. Editors pointing at a
// record that is no longer present lose their selection, and such tables
// are dropped.
func (s *Store) SetDatabases(records []api.Database) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.databases = append([]api.Database(nil), records...)
	s.logger.Debug("databases loaded", "count", len(records))

	var dropped []string
	for i, e := range s.editors {
		if _, ok := s.database(e.DbID); e.DbID != "" && !ok {
			s.logger.Warn("selected database no longer in the catalog", "editor", e.ID, "db", e.DbID)
			s.editors[i].DbID = ""
			dropped = append(dropped, e.Title)
		}
	}
	pruned := false
	for id, tables := range s.tables {
		kept := make([]msg.Table, 0, len(tables))
		for _, t := range tables {
			if _, ok := s.database(t.DatabaseID); ok {
				kept = append(kept, t)
			}
		}
		if len(kept) != len(tables) {
			s.tables[id] = kept
			pruned = true
		}
	}

	if len(dropped) > 0 {
		s.addAlertLocked(msg.Alert{
			BsStyle: msg.AlertWarning,
			Msg:     "The selected database is no longer available in: " + strings.Join(dropped, ", "),
		})
	}
	if len(dropped) > 0 || pruned {
		s.saveLocked()
	}
}

// AddAlert appends an alert, assigning it an id and timestamp.
func (s *Store) AddAlert(alert msg.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addAlertLocked(alert)
}

func (s *Store) addAlertLocked(alert msg.Alert) {
	s.lastAlert++
	alert.ID = s.lastAlert
	if alert.At.IsZero() {
		alert.At = s.now()
	}
	if alert.BsStyle == "" {
		alert.BsStyle = msg.AlertInfo
	}
	s.alerts = append(s.alerts, alert)
	s.logger.Info("alert", "style", alert.BsStyle, "msg", alert.Msg)
	s.audit.Record(audit.ActionAlert, "", "", alert.BsStyle+": "+alert.Msg)
}

// ResetState drops every editor, table and alert, clears persisted state and
// starts over with a single untitled editor.
func (s *Store) ResetState() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables = map[string][]msg.Table{}
	s.alerts = nil
	s.editors = nil
	s.editors = []msg.QueryEditor{s.newEditor("", "")}
	s.active = s.editors[0].ID

	if s.persister != nil {
		if err := s.persister.Clear(); err != nil {
			s.logger.Error("clear persisted state", "error", err)
		}
	}
	s.logger.Info("state reset")
	s.audit.Record(audit.ActionResetState, s.active, "", "")
	s.saveLocked()
}

// ---------------------------------------------------------------------------
// Editor management
// ---------------------------------------------------------------------------

// AddQueryEditor opens a new editor holding sql and makes it active. The new
// editor starts on the active editor's database.
func (s *Store) AddQueryEditor(sql string) msg.QueryEditor {
	s.mu.Lock()
	defer s.mu.Unlock()

	dbID := ""
	if i := s.indexOf(s.active); i >= 0 {
		dbID = s.editors[i].DbID
	}
	e := s.newEditor(dbID, sql)
	s.editors = append(s.editors, e)
	s.active = e.ID

	if db, ok := s.database(dbID); ok {
		s.tables[e.ID] = []msg.Table{{DatabaseID: dbID, Name: db.Name}}
	}

	s.audit.Record(audit.ActionAddEditor, e.ID, dbID, e.Title)
	s.saveLocked()
	return e
}

// RemoveQueryEditor closes an editor. The last editor cannot be closed.
func (s *Store) RemoveQueryEditor(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEditorNotFound, id)
	}
	if len(s.editors) == 1 {
		return ErrLastEditor
	}

	s.editors = append(s.editors[:i], s.editors[i+1:]...)
	delete(s.tables, id)
	if s.active == id {
		s.active = s.editors[min(i, len(s.editors)-1)].ID
	}

	s.audit.Record(audit.ActionCloseEditor, id, "", "")
	s.saveLocked()
	return nil
}

// SetActive switches the active editor.
func (s *Store) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", ErrEditorNotFound, id)
	}
	s.active = id
	s.saveLocked()
	return nil
}

// QueryEditorSetSQL stores the editor's SQL text.
func (s *Store) QueryEditorSetSQL(id, sql string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEditorNotFound, id)
	}
	if s.editors[i].SQL == sql {
		return nil
	}
	s.editors[i].SQL = sql
	s.saveLocked()
	return nil
}

// RemoveAlert dismisses the alert with the given id.
func (s *Store) RemoveAlert(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.alerts {
		if a.ID == id {
			s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Accessors (all return copies)
// ---------------------------------------------------------------------------

// ActiveEditor returns the active query editor.
func (s *Store) ActiveEditor() msg.QueryEditor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editors[s.indexOf(s.active)]
}

// Editors returns the open editors in tab order.
func (s *Store) Editors() []msg.QueryEditor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]msg.QueryEditor(nil), s.editors...)
}

// Editor returns the editor with the given id.
func (s *Store) Editor(id string) (msg.QueryEditor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return msg.QueryEditor{}, false
	}
	return s.editors[i], true
}

// Tables returns the tables opened in an editor.
func (s *Store) Tables(editorID string) []msg.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]msg.Table{}, s.tables[editorID]...)
}

// Databases returns the catalog records from the last fetch.
func (s *Store) Databases() []api.Database {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Database(nil), s.databases...)
}

// Database looks up a catalog record by id.
func (s *Store) Database(id string) (api.Database, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.database(id)
}

// Alerts returns the pending alerts, oldest first.
func (s *Store) Alerts() []msg.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]msg.Alert(nil), s.alerts...)
}

// Close releases the persister and audit log.
func (s *Store) Close() error {
	var errs []error
	if s.persister != nil {
		errs = append(errs, s.persister.Close())
	}
	errs = append(errs, s.audit.Close())
	return errors.Join(errs...)
}

// ---------------------------------------------------------------------------
// Helpers (callers hold s.mu)
// ---------------------------------------------------------------------------

func (s *Store) indexOf(id string) int {
	for i, e := range s.editors {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) database(id string) (api.Database, bool) {
	if id == "" {
		return api.Database{}, false
	}
	for _, db := range s.databases {
		if db.ID.String() == id {
			return db, true
		}
	}
	return api.Database{}, false
}

func (s *Store) newEditor(dbID, sql string) msg.QueryEditor {
	return msg.QueryEditor{
		ID:    s.newID(),
		Title: s.nextTitle(),
		DbID:  dbID,
		SQL:   sql,
	}
}

// nextTitle returns "Untitled Query N" with N one past the highest in use.
func (s *Store) nextTitle() string {
	n := 0
	for _, e := range s.editors {
		if rest, ok := strings.CutPrefix(e.Title, untitledPrefix); ok {
			if v, err := strconv.Atoi(rest); err == nil && v > n {
				n = v
			}
		}
	}
	return untitledPrefix + strconv.Itoa(n+1)
}

func (s *Store) saveLocked() {
	if s.persister == nil {
		return
	}
	snap := Snapshot{
		Editors: s.editors,
		Tables:  s.tables,
		Active:  s.active,
	}
	if err := s.persister.Save(snap); err != nil {
		s.logger.Error("save state", "error", err)
		s.addAlertLocked(msg.Alert{BsStyle: msg.AlertWarning, Msg: "Could not save editor state: " + err.Error()})
	}
}

func hasTable(tables []msg.Table, dbID string) bool {
	for _, t := range tables {
		if t.DatabaseID == dbID {
			return true
		}
	}
	return false
}
