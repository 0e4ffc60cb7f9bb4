package utils

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// StringHelper provides string utility functions.
type StringHelper struct{}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{}
}

// NormalizeWhitespace replaces runs of whitespace with a single space.
func (s *StringHelper) NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// TruncateString shortens str to at most maxWidth display columns, ending
// with an ellipsis when it was cut. Wide runes count as two columns.
func (s *StringHelper) TruncateString(str string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}

	return runewidth.Truncate(str, maxWidth, "…")
}

// EscapeTableCell makes str safe to place in a Markdown table cell.
func (s *StringHelper) EscapeTableCell(str string) string {
	str = s.NormalizeWhitespace(str)

	return strings.ReplaceAll(str, "|", `\|`)
}
