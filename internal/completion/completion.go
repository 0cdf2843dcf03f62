// Package completion suggests keywords, functions and catalog tables for the
// SQL editor.
package completion

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/sahilm/fuzzy"
)

// maxItems caps the number of suggestions returned.
const maxItems = 50

// Kind categorizes completion items.
type Kind int

const (
	KindTable Kind = iota
	KindKeyword
	KindFunction
)

// Item is one completion candidate.
type Item struct {
	Label string
	// Insert replaces the word being typed.
	Insert string
	Kind   Kind
	Detail string
}

// Engine provides completion candidates. It is safe for concurrent use.
type Engine struct {
	mu        sync.RWMutex
	tables    []string
	keywords  []string
	functions []string
}

// NewEngine creates an engine with the GoogleSQL keyword and function lists
// and no tables.
func NewEngine() *Engine {
	return &Engine{
		keywords:  Keywords,
		functions: Functions,
	}
}

// SetTables replaces the known tables. Names are catalog full names
// ("project:dataset.table").
func (e *Engine) SetTables(names []string) {
	seen := make(map[string]bool, len(names))
	tables := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		tables = append(tables, n)
	}
	sort.Strings(tables)

	e.mu.Lock()
	e.tables = tables
	e.mu.Unlock()
}

// Tables returns the known tables.
func (e *Engine) Tables() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.tables...)
}

// QuoteTable turns "project:dataset.table" into `project.dataset.table`, the
// form GoogleSQL accepts.
func QuoteTable(name string) string {
	return "`" + strings.Replace(name, ":", ".", 1) + "`"
}

// Complete returns candidates for the word ending the text before the
// cursor.
func (e *Engine) Complete(before string) []Item {
	if insideStringLiteral(before) {
		return nil
	}

	word := Prefix(before)
	quoted := strings.HasPrefix(word, "`")
	term := strings.Replace(strings.TrimPrefix(word, "`"), ":", ".", 1)

	var items []Item
	switch {
	case quoted || detectContext(before[:len(before)-len(word)]) == contextFrom:
		items = e.tableCompletions()
	default:
		items = append(items, e.tableCompletions()...)
		items = append(items, e.keywordCompletions()...)
		items = append(items, e.functionCompletions()...)
	}

	if term == "" {
		if len(items) > maxItems {
			items = items[:maxItems]
		}
		return items
	}
	return fuzzyMatch(term, items)
}

// Prefix returns the word being typed at the end of before. Inside an open
// backtick the word runs from the backtick and may contain ':' and '-'.
func Prefix(before string) string {
	if strings.Count(before, "`")%2 == 1 {
		return before[strings.LastIndex(before, "`"):]
	}
	i := len(before)
	for i > 0 {
		r := rune(before[i-1])
		if !isIdentRune(r) {
			break
		}
		i--
	}
	return before[i:]
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.'
}

// insideStringLiteral reports whether the text ends inside a quoted string.
func insideStringLiteral(before string) bool {
	var quote rune
	for _, r := range before {
		switch {
		case quote == 0 && (r == '\'' || r == '"'):
			quote = r
		case quote != 0 && r == quote:
			quote = 0
		}
	}
	return quote != 0
}

type contextKind int

const (
	contextGeneral contextKind = iota
	contextFrom
)

// fromKeywords are followed by a table reference.
var fromKeywords = map[string]bool{
	"FROM": true, "JOIN": true, "INTO": true, "UPDATE": true, "TABLE": true,
}

func detectContext(text string) contextKind {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return contextGeneral
	}
	last := strings.ToUpper(tokens[len(tokens)-1])
	if fromKeywords[last] {
		return contextFrom
	}
	// FROM a, b: a comma continues the table list.
	if strings.HasSuffix(last, ",") {
		for i := len(tokens) - 1; i >= 0; i-- {
			tok := strings.ToUpper(strings.TrimRight(tokens[i], ","))
			if fromKeywords[tok] {
				return contextFrom
			}
			if tok == "SELECT" || tok == "WHERE" || tok == "BY" {
				break
			}
		}
	}
	return contextGeneral
}

func (e *Engine) tableCompletions() []Item {
	e.mu.RLock()
	defer e.mu.RUnlock()

	items := make([]Item, 0, len(e.tables))
	for _, name := range e.tables {
		ref := QuoteTable(name)
		items = append(items, Item{
			Label:  strings.Trim(ref, "`"),
			Insert: ref,
			Kind:   KindTable,
			Detail: "table",
		})
	}
	return items
}

func (e *Engine) keywordCompletions() []Item {
	items := make([]Item, 0, len(e.keywords))
	for _, kw := range e.keywords {
		items = append(items, Item{Label: kw, Insert: kw, Kind: KindKeyword, Detail: "keyword"})
	}
	return items
}

func (e *Engine) functionCompletions() []Item {
	items := make([]Item, 0, len(e.functions))
	for _, fn := range e.functions {
		items = append(items, Item{Label: fn, Insert: fn + "(", Kind: KindFunction, Detail: "function"})
	}
	return items
}

// labels implements fuzzy.Source over lowercased item labels.
type labels []string

func (l labels) String(i int) string { return l[i] }
func (l labels) Len() int            { return len(l) }

// fuzzyMatch filters and ranks items against term, case-insensitively.
func fuzzyMatch(term string, items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	lower := make(labels, len(items))
	for i, item := range items {
		lower[i] = strings.ToLower(item.Label)
	}

	matches := fuzzy.FindFrom(strings.ToLower(term), lower)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	out := make([]Item, 0, min(len(matches), maxItems))
	for _, m := range matches {
		out = append(out, items[m.Index])
		if len(out) == maxItems {
			break
		}
	}
	return out
}
