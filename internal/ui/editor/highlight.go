// Package editor provides the SQL editor shown next to the table picker.
package editor

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bqlab/internal/theme"
)

// lexerNames are tried in order. BigQuery standard SQL quotes identifiers
// with backticks like MySQL does, so that lexer tokenises it best.
var lexerNames = []string{"MySQL", "SQL"}

// Highlighter tokenises SQL text using chroma and renders it with lipgloss
// styles from the active theme.
type Highlighter struct {
	lexer chroma.Lexer
}

// NewHighlighter returns a Highlighter for BigQuery SQL.
func NewHighlighter() *Highlighter {
	var l chroma.Lexer
	for _, name := range lexerNames {
		if l = lexers.Get(name); l != nil {
			break
		}
	}
	if l == nil {
		l = lexers.Fallback
	}
	return &Highlighter{lexer: chroma.Coalesce(l)}
}

// Highlight returns sql with each token styled by th. Newlines are emitted
// unstyled so the result can be split into lines.
func (h *Highlighter) Highlight(sql string, th *theme.Theme) string {
	if th == nil {
		return sql
	}

	iter, err := h.lexer.Tokenise(nil, sql)
	if err != nil {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql) * 2)

	for _, tok := range iter.Tokens() {
		if tok.Value == "" {
			continue
		}
		style, ok := styleFor(tok.Type, th)
		if !ok {
			b.WriteString(tok.Value)
			continue
		}
		for i, seg := range strings.Split(tok.Value, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if seg != "" {
				b.WriteString(style.Render(seg))
			}
		}
	}

	return b.String()
}

// styleFor maps a token type to a theme style; false means leave it unstyled.
func styleFor(tt chroma.TokenType, th *theme.Theme) (lipgloss.Style, bool) {
	switch {
	// KeywordType sits inside the Keyword category, so it goes first.
	case tt == chroma.KeywordType:
		return th.SQLType, true
	case tt == chroma.NameFunction || tt == chroma.NameBuiltin:
		return th.SQLFunction, true
	case tt.InCategory(chroma.Keyword):
		return th.SQLKeyword, true
	case tt.InSubCategory(chroma.LiteralString):
		return th.SQLString, true
	case tt.InSubCategory(chroma.LiteralNumber):
		return th.SQLNumber, true
	case tt.InCategory(chroma.Comment):
		return th.SQLComment, true
	case tt.InCategory(chroma.Operator):
		return th.SQLOperator, true
	default:
		return lipgloss.Style{}, false
	}
}
