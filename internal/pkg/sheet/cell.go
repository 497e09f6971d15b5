package sheet

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies how a spreadsheet cell was typed by the workbook.
type Kind int

const (
	KindBlank Kind = iota
	KindText
	KindNumber
	KindDate
)

// Cell is a single typed spreadsheet value.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
	Time   time.Time
}

func Text(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: KindText, Text: s}
}

func Number(n float64) Cell {
	return Cell{Kind: KindNumber, Number: n}
}

func Date(t time.Time) Cell {
	return Cell{Kind: KindDate, Time: t}
}

// String returns the raw textual form of the cell, untrimmed.
func (c Cell) String() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindDate:
		return c.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// IsBlank reports whether the cell carries no usable value: empty, whitespace,
// or one of the sentinels "N/A" / "null".
func (c Cell) IsBlank() bool {
	if c.Kind == KindBlank {
		return true
	}
	return IsBlankOrSentinel(c.String())
}

// IsBlankOrSentinel reports whether s is empty after trimming or equals
// "N/A" / "null" case-insensitively.
func IsBlankOrSentinel(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "N/A") || strings.EqualFold(s, "null")
}
