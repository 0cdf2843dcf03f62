// Package audit records state-changing editor actions as JSON lines.
package audit

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Actions recorded by the store.
const (
	ActionSelectDatabase = "select_database"
	ActionResetState     = "reset_state"
	ActionAddEditor      = "add_editor"
	ActionCloseEditor    = "close_editor"
	ActionAlert          = "alert"
)

// Entry is a single audit record.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	EditorID   string    `json:"editor_id,omitempty"`
	DatabaseID string    `json:"database_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}

// Logger appends entries to a file, rotating it to path.1 once it grows past
// maxSizeMB (0 disables rotation).
type Logger struct {
	mu        sync.Mutex
	f         *os.File
	enc       *json.Encoder
	path      string
	maxSizeMB int
	now       func() time.Time
}

// New opens path for appending (0o600), creating parent directories (0o700).
func New(path string, maxSizeMB int) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("audit: create dir: %w", err)
	}
	l := &Logger{path: path, maxSizeMB: maxSizeMB, now: time.Now}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

// Record writes an entry for action, stamping the current time.
// Calling Record on a nil Logger is a no-op.
func (l *Logger) Record(action, editorID, databaseID, detail string) {
	if l == nil {
		return
	}
	l.Log(Entry{
		Timestamp:  l.now(),
		Action:     action,
		EditorID:   editorID,
		DatabaseID: databaseID,
		Detail:     detail,
	})
}

// Log writes e as one JSON line. It is safe for concurrent use and a no-op on
// a nil Logger.
func (l *Logger) Log(e Entry) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.enc == nil {
		return
	}
	_ = l.enc.Encode(e)

	if l.maxSizeMB > 0 {
		if info, err := l.f.Stat(); err == nil && info.Size() >= int64(l.maxSizeMB)<<20 {
			l.rotate()
		}
	}
}

// Close closes the underlying file. Calling Close on a nil Logger is a no-op.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f, l.enc = nil, nil
	return err
}

func (l *Logger) open() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("audit: open file: %w", err)
	}
	l.f = f
	l.enc = json.NewEncoder(f)
	return nil
}

func (l *Logger) rotate() {
	_ = l.f.Close()
	_ = os.Rename(l.path, l.path+".1")
	if err := l.open(); err != nil {
		l.f, l.enc = nil, nil
	}
}

// SanitizeDSN strips credentials from a catalog DSN before it is logged.
func SanitizeDSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://", "mysql://", "duckdb://"} {
		if strings.HasPrefix(strings.ToLower(dsn), prefix) {
			u, err := url.Parse(dsn)
			if err != nil {
				return dsn
			}
			if u.User != nil {
				u.User = url.User("***")
			}
			return u.String()
		}
	}
	dsn = reMySQLCreds.ReplaceAllString(dsn, "***@tcp(")
	return rePGPassword.ReplaceAllString(dsn, "password=***")
}

var (
	reMySQLCreds = regexp.MustCompile(`[^@]+@tcp\(`)
	rePGPassword = regexp.MustCompile(`password=[^\s]+`)
)
