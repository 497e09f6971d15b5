package sheet

import (
	"strings"
	"unicode"
)

// Entry is one header/value pair of a row, in column order.
type Entry struct {
	Header string
	Value  Cell
}

// Row keeps the cells of one data line in their original column order so that
// "first matching header" is deterministic.
type Row []Entry

// NormalizeHeader lowercases a header and drops every rune that is not a
// letter or digit, so "D.O.B (DD/MM/YY)" and "dob dd mm yy" compare equal.
func NormalizeHeader(header string) string {
	var b strings.Builder
	b.Grow(len(header))
	for _, r := range strings.ToLower(header) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Find returns the first cell whose normalized header matches any alias and
// whose value is neither blank nor a sentinel.
func (r Row) Find(aliases ...string) (Cell, bool) {
	if len(r) == 0 || len(aliases) == 0 {
		return Cell{}, false
	}

	wanted := make(map[string]struct{}, len(aliases))
	for _, alias := range aliases {
		if n := NormalizeHeader(alias); n != "" {
			wanted[n] = struct{}{}
		}
	}

	for _, entry := range r {
		if _, ok := wanted[NormalizeHeader(entry.Header)]; !ok {
			continue
		}
		if entry.Value.IsBlank() {
			continue
		}
		return entry.Value, true
	}
	return Cell{}, false
}

// Lookup resolves a canonical field through an alias table.
func (r Row) Lookup(table AliasTable, field Field) (Cell, bool) {
	return r.Find(table.Aliases(field)...)
}

// TextOf returns the trimmed string form of a resolved field, or "".
func (r Row) TextOf(table AliasTable, field Field) string {
	cell, ok := r.Lookup(table, field)
	if !ok {
		return ""
	}
	return strings.TrimSpace(cell.String())
}
