package msg

import "time"

// Pane focus targets.
type Pane int

const (
	PaneLeftBar Pane = iota
	PaneEditor
)

func (p Pane) String() string {
	if p == PaneLeftBar {
		return "leftbar"
	}
	return "editor"
}

// QueryEditor is one open SQL editor tab. It is owned by the store; UI
// components receive copies and request changes through actions.
type QueryEditor struct {
	ID    string
	Title string
	// DbID is the selected database (BigQuery table) id. Empty means none.
	DbID string
	SQL  string
}

// HasDB reports whether a database is selected.
func (q QueryEditor) HasDB() bool {
	return q.DbID != ""
}

// Table describes a table opened in a query editor.
type Table struct {
	DatabaseID string
	Name       string
}

// Alert styles, named after the bootstrap classes the catalog UI uses.
const (
	AlertDanger  = "danger"
	AlertWarning = "warning"
	AlertSuccess = "success"
	AlertInfo    = "info"
)

// Alert is a user-visible notification.
type Alert struct {
	ID      int
	BsStyle string
	Msg     string
	At      time.Time
}

// StateChangedMsg is sent after the store mutated state the app renders.
type StateChangedMsg struct{}

// StatusMsg updates the status bar text.
type StatusMsg struct {
	Text    string
	IsError bool
}

// NewEditorMsg requests a new query editor.
type NewEditorMsg struct {
	SQL string
}

// CloseEditorMsg requests closing a query editor.
type CloseEditorMsg struct {
	ID string
}

// SwitchEditorMsg requests switching to a query editor.
type SwitchEditorMsg struct {
	ID string
}

// RefetchMsg asks the left bar to reload its options.
type RefetchMsg struct{}
