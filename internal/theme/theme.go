// Package theme provides the styling for the bqlab terminal UI. Every visual
// element references a lipgloss.Style held in a Theme so the look can be
// swapped at start-up.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme holds lipgloss.Style values for every UI element in the application.
type Theme struct {
	Name string

	// Left bar
	LeftBarTitle      lipgloss.Style
	LeftBarSection    lipgloss.Style
	LeftBarTable      lipgloss.Style
	SelectValue       lipgloss.Style
	SelectOption      lipgloss.Style
	SelectActive      lipgloss.Style
	SelectMatch       lipgloss.Style
	ButtonDanger      lipgloss.Style
	ButtonDangerFocus lipgloss.Style

	// Editor
	EditorLineNumber lipgloss.Style

	// SQL syntax highlighting
	SQLKeyword  lipgloss.Style
	SQLString   lipgloss.Style
	SQLNumber   lipgloss.Style
	SQLComment  lipgloss.Style
	SQLOperator lipgloss.Style
	SQLFunction lipgloss.Style
	SQLType     lipgloss.Style

	// Tab bar
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	TabBar      lipgloss.Style

	// Status bar
	StatusBar        lipgloss.Style
	StatusBarKey     lipgloss.Style
	StatusBarValue   lipgloss.Style
	StatusBarError   lipgloss.Style
	StatusBarSuccess lipgloss.Style

	// Alerts, keyed by bootstrap style name
	AlertDanger  lipgloss.Style
	AlertWarning lipgloss.Style
	AlertSuccess lipgloss.Style
	AlertInfo    lipgloss.Style

	// Dialog
	DialogBorder       lipgloss.Style
	DialogTitle        lipgloss.Style
	DialogButton       lipgloss.Style
	DialogButtonActive lipgloss.Style

	// Autocomplete
	AutocompleteItem     lipgloss.Style
	AutocompleteSelected lipgloss.Style
	AutocompleteBorder   lipgloss.Style

	// General
	FocusedBorder   lipgloss.Style
	UnfocusedBorder lipgloss.Style
	ErrorText       lipgloss.Style
	MutedText       lipgloss.Style
}

// palette is the handful of colours a theme is derived from.
type palette struct {
	bg, panel, border, fg, muted, bright string
	accent, selection, statusBg          string
	keyword, str, number, comment        string
	function, typ                        string
	danger, warning, success, info       string
}

func build(name string, p palette) *Theme {
	c := func(s string) lipgloss.Color { return lipgloss.Color(s) }
	pad := func(s lipgloss.Style) lipgloss.Style { return s.PaddingLeft(1).PaddingRight(1) }
	alert := func(col string) lipgloss.Style {
		return lipgloss.NewStyle().
			Foreground(c(p.bright)).
			Background(c(col)).
			Bold(true).
			PaddingLeft(1).
			PaddingRight(1)
	}
	rounded := func(col string) lipgloss.Style {
		return lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(c(col))
	}

	return &Theme{
		Name: name,

		LeftBarTitle:   lipgloss.NewStyle().Bold(true).Foreground(c(p.accent)).PaddingLeft(1),
		LeftBarSection: lipgloss.NewStyle().Bold(true).Foreground(c(p.function)),
		LeftBarTable:   lipgloss.NewStyle().Foreground(c(p.typ)),
		SelectValue:    lipgloss.NewStyle().Foreground(c(p.fg)),
		SelectOption:   pad(lipgloss.NewStyle().Foreground(c(p.fg)).Background(c(p.panel))),
		SelectActive:   pad(lipgloss.NewStyle().Bold(true).Foreground(c(p.bright)).Background(c(p.selection))),
		SelectMatch:    lipgloss.NewStyle().Underline(true).Foreground(c(p.function)),
		ButtonDanger: lipgloss.NewStyle().
			Foreground(c(p.danger)).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(c(p.danger)).
			PaddingLeft(1).
			PaddingRight(1),
		ButtonDangerFocus: lipgloss.NewStyle().
			Bold(true).
			Foreground(c(p.bright)).
			Background(c(p.danger)).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(c(p.danger)).
			PaddingLeft(1).
			PaddingRight(1),

		EditorLineNumber: lipgloss.NewStyle().Foreground(c(p.muted)),

		SQLKeyword:  lipgloss.NewStyle().Bold(true).Foreground(c(p.keyword)),
		SQLString:   lipgloss.NewStyle().Foreground(c(p.str)),
		SQLNumber:   lipgloss.NewStyle().Foreground(c(p.number)),
		SQLComment:  lipgloss.NewStyle().Italic(true).Foreground(c(p.comment)),
		SQLOperator: lipgloss.NewStyle().Foreground(c(p.fg)),
		SQLFunction: lipgloss.NewStyle().Foreground(c(p.function)),
		SQLType:     lipgloss.NewStyle().Foreground(c(p.typ)),

		TabActive: pad(lipgloss.NewStyle().
			Bold(true).
			Foreground(c(p.bright)).
			Background(c(p.bg)).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(false).
			BorderForeground(c(p.accent))),
		TabInactive: pad(lipgloss.NewStyle().
			Foreground(c(p.muted)).
			Background(c(p.panel)).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(c(p.border))),
		TabBar: lipgloss.NewStyle().Background(c(p.panel)),

		StatusBar:        lipgloss.NewStyle().Foreground(c(p.bright)).Background(c(p.statusBg)),
		StatusBarKey:     pad(lipgloss.NewStyle().Bold(true).Foreground(c(p.bright)).Background(c(p.statusBg))),
		StatusBarValue:   pad(lipgloss.NewStyle().Foreground(c(p.fg)).Background(c(p.bg))),
		StatusBarError:   lipgloss.NewStyle().Bold(true).Foreground(c(p.bright)).Background(c(p.danger)),
		StatusBarSuccess: lipgloss.NewStyle().Bold(true).Foreground(c(p.bright)).Background(c(p.success)),

		AlertDanger:  alert(p.danger),
		AlertWarning: alert(p.warning),
		AlertSuccess: alert(p.success),
		AlertInfo:    alert(p.info),

		DialogBorder:       rounded(p.accent).Padding(1, 2),
		DialogTitle:        lipgloss.NewStyle().Bold(true).Foreground(c(p.accent)),
		DialogButton:       lipgloss.NewStyle().Foreground(c(p.fg)).Background(c(p.panel)),
		DialogButtonActive: lipgloss.NewStyle().Bold(true).Foreground(c(p.bright)).Background(c(p.selection)),

		AutocompleteItem:     lipgloss.NewStyle().Foreground(c(p.fg)).Background(c(p.panel)),
		AutocompleteSelected: lipgloss.NewStyle().Bold(true).Foreground(c(p.bright)).Background(c(p.selection)),
		AutocompleteBorder:   rounded(p.border),

		FocusedBorder:   rounded(p.accent),
		UnfocusedBorder: rounded(p.border),
		ErrorText:       lipgloss.NewStyle().Bold(true).Foreground(c(p.danger)),
		MutedText:       lipgloss.NewStyle().Foreground(c(p.muted)),
	}
}

// Themes maps theme names to their Theme definitions.
var Themes = map[string]*Theme{
	"default": build("default", palette{
		bg: "#1E1E1E", panel: "#252526", border: "#3C3C3C", fg: "#D4D4D4",
		muted: "#808080", bright: "#FFFFFF", accent: "#569CD6",
		selection: "#264F78", statusBg: "#007ACC",
		keyword: "#569CD6", str: "#CE9178", number: "#B5CEA8", comment: "#6A9955",
		function: "#DCDCAA", typ: "#4EC9B0",
		danger: "#F44747", warning: "#CCA700", success: "#6A9955", info: "#007ACC",
	}),
	"light": build("light", palette{
		bg: "#FFFFFF", panel: "#F3F3F3", border: "#D4D4D4", fg: "#1E1E1E",
		muted: "#A0A0A0", bright: "#FFFFFF", accent: "#0451A5",
		selection: "#0060C0", statusBg: "#0060C0",
		keyword: "#0000FF", str: "#A31515", number: "#098658", comment: "#008000",
		function: "#795E26", typ: "#267F99",
		danger: "#E51400", warning: "#BF8803", success: "#16825D", info: "#0451A5",
	}),
	"monokai": build("monokai", palette{
		bg: "#272822", panel: "#3E3D32", border: "#49483E", fg: "#F8F8F2",
		muted: "#75715E", bright: "#F8F8F2", accent: "#F92672",
		selection: "#49483E", statusBg: "#75715E",
		keyword: "#F92672", str: "#E6DB74", number: "#AE81FF", comment: "#75715E",
		function: "#A6E22E", typ: "#66D9EF",
		danger: "#F92672", warning: "#E6DB74", success: "#A6E22E", info: "#66D9EF",
	}),
}

// Current is the active theme.
var Current = Themes["default"]

// Default returns the default dark theme.
func Default() *Theme {
	return Themes["default"]
}

// Get returns the theme identified by name, falling back to the default.
func Get(name string) *Theme {
	if t, ok := Themes[name]; ok {
		return t
	}
	return Default()
}

// Alert returns the style for a bootstrap alert style name. Unknown names
// render as info.
func (t *Theme) Alert(bsStyle string) lipgloss.Style {
	switch bsStyle {
	case "danger":
		return t.AlertDanger
	case "warning":
		return t.AlertWarning
	case "success":
		return t.AlertSuccess
	default:
		return t.AlertInfo
	}
}
