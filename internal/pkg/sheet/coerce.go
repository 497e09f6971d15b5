package sheet

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
)

const (
	// serialThreshold separates date serials from small numeric codes.
	serialThreshold = 20000
	// maxSerial is 9999-12-31, the last date a workbook can hold.
	maxSerial = 2958465

	minutesPerDay = 1440
)

var monthAbbr = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var clockPattern = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)

// textDateLayouts are tried in order; four-digit years come first so "2-1-06"
// never swallows the century of "2-1-2006".
var textDateLayouts = []string{
	"2-1-2006",
	"2/1/2006",
	"2006-1-2",
	"2006/1/2",
	"2-Jan-2006",
	"2 Jan 2006",
	"2-1-06",
	"2/1/06",
	"2-Jan-06",
	"2 Jan 06",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// DateKey is the resolved calendar position of an attendance row.
type DateKey struct {
	Display   string
	Day       int
	YearMonth string
}

// CoerceDisplayValue renders a cell for display: dates as DD-Mon-YY, anything
// else as trimmed text. Blank and sentinel cells become "".
func CoerceDisplayValue(c Cell) string {
	if c.IsBlank() {
		return ""
	}
	if c.Kind == KindDate {
		return shortDate(c.Time)
	}
	if n, ok := numericValue(c); ok {
		if t, ok := serialToTime(n); ok {
			return shortDate(t)
		}
	}
	return strings.TrimSpace(c.String())
}

// CoerceTime renders a time-of-day or duration cell as HH:MM.
func CoerceTime(c Cell) string {
	if c.IsBlank() {
		return ""
	}
	switch c.Kind {
	case KindDate:
		return fmt.Sprintf("%02d:%02d", c.Time.Hour(), c.Time.Minute())
	case KindNumber:
		n := c.Number
		if n > serialThreshold {
			// combined date-time serial, keep the time part only
			n -= math.Floor(n)
		}
		return FormatMinutes(int(math.Round(n * minutesPerDay)))
	}

	s := strings.TrimSpace(c.String())
	if clockPattern.MatchString(s) {
		if strings.Index(s, ":") == 1 {
			s = "0" + s
		}
		return s[:5]
	}
	return s
}

// NormalizeIdentifier strips all whitespace and uppercases an employee code.
func NormalizeIdentifier(raw string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw))
}

// ResolveDate works out the display date, day of month and year-month bucket of
// an attendance date cell. It reports false when the cell is not a date.
func ResolveDate(c Cell) (DateKey, bool) {
	if c.IsBlank() {
		return DateKey{}, false
	}
	if c.Kind == KindDate {
		return numericDateKey(c.Time), true
	}
	if n, ok := numericValue(c); ok {
		t, ok := serialToTime(n)
		if !ok {
			return DateKey{}, false
		}
		return numericDateKey(t), true
	}

	s := strings.TrimSpace(c.String())
	for _, layout := range textDateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return DateKey{Display: s, Day: t.Day(), YearMonth: t.Format("2006-01")}, true
	}
	return DateKey{}, false
}

// ClockMinutes converts "HH:MM" into minutes since midnight. Unparseable input
// yields 0.
func ClockMinutes(s string) int {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0
	}
	h, okH := leadingInt(parts[0])
	m, okM := leadingInt(parts[1])
	if !okH || !okM {
		return 0
	}
	return h*60 + m
}

// FormatMinutes renders a minute count as zero-padded "HH:MM".
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func numericValue(c Cell) (float64, bool) {
	switch c.Kind {
	case KindNumber:
		return c.Number, true
	case KindText:
		n, err := strconv.ParseFloat(strings.TrimSpace(c.Text), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func serialToTime(n float64) (time.Time, bool) {
	if n <= serialThreshold || n > maxSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(n, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func shortDate(t time.Time) string {
	return fmt.Sprintf("%02d-%s-%02d", t.Day(), monthAbbr[t.Month()-1], t.Year()%100)
}

func numericDateKey(t time.Time) DateKey {
	return DateKey{
		Display:   fmt.Sprintf("%02d-%02d-%04d", t.Day(), int(t.Month()), t.Year()),
		Day:       t.Day(),
		YearMonth: t.Format("2006-01"),
	}
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
