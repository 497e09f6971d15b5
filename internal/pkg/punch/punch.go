// Package punch reconstructs in/out work cycles from free-text punch logs such
// as "09:58in, 13:02out, 13:40in, 18:11out".
package punch

import (
	"regexp"
	"strings"

	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/sheet"
)

const minutesPerDay = 1440

type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

// tokenPattern matches a clock time with an optional direction marker right
// after it. Longer markers come first so "login" is not read as "in".
var tokenPattern = regexp.MustCompile(`(?i)(\d{1,2}:\d{2})\s*(login|logout|in|out|t)?`)

// Event is one timestamp extracted from a punch log.
type Event struct {
	Time      string
	Direction Direction
}

// Cycle is one reconstructed work interval. Out is nil while the cycle is open.
type Cycle struct {
	In              string
	Out             *string
	DurationMinutes int
	IsComplete      bool
}

type Result struct {
	Events        []Event
	Cycles        []Cycle
	WorkedMinutes int
	BreakMinutes  int
	Imperfect     bool
}

// Extract scans text left to right and returns every timestamp with its
// direction. Unlabelled timestamps and the "T" marker count as "in".
func Extract(text string) []Event {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	events := make([]Event, 0, len(matches))
	for _, m := range matches {
		events = append(events, Event{Time: m[1], Direction: direction(m[2])})
	}
	return events
}

// Parse extracts the events of text and pairs them into cycles.
//
// An "in" starts (or restarts) the open cycle and, when a previous "out" exists,
// adds the gap since that out to the break total. An "out" closes the open cycle;
// an "out" with nothing open is ignored. A trailing open "in" is kept as an
// incomplete cycle only when no cycle was closed. The result is imperfect when
// the event count is odd or a non-empty text yields no events. Empty, "null" and
// "undefined" inputs are not anomalies and produce an empty result.
func Parse(text string) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "null" || trimmed == "undefined" {
		return Result{}
	}

	events := Extract(trimmed)
	res := Result{Events: events}

	var openIn string
	lastOut := -1
	for _, ev := range events {
		mins := sheet.ClockMinutes(ev.Time)
		switch ev.Direction {
		case In:
			openIn = ev.Time
			if lastOut >= 0 {
				res.BreakMinutes += wrap(mins - lastOut)
			}
		case Out:
			if openIn == "" {
				continue
			}
			out := ev.Time
			d := wrap(mins - sheet.ClockMinutes(openIn))
			res.Cycles = append(res.Cycles, Cycle{In: openIn, Out: &out, DurationMinutes: d, IsComplete: true})
			res.WorkedMinutes += d
			lastOut = mins
			openIn = ""
		}
	}

	if openIn != "" && len(res.Cycles) == 0 {
		res.Cycles = append(res.Cycles, Cycle{In: openIn})
	}

	res.Imperfect = len(events)%2 != 0 || len(events) == 0
	return res
}

// Synthesize builds a punch log from separate in/out columns, e.g.
// "10:14in, 20:12out". Either side may be empty.
func Synthesize(in, out string) string {
	parts := make([]string, 0, 2)
	if in != "" {
		parts = append(parts, in+"in")
	}
	if out != "" {
		parts = append(parts, out+"out")
	}
	return strings.Join(parts, ", ")
}

func direction(marker string) Direction {
	switch strings.ToLower(marker) {
	case "out", "logout":
		return Out
	default:
		return In
	}
}

// wrap folds a negative difference past midnight.
func wrap(minutes int) int {
	if minutes < 0 {
		minutes += minutesPerDay
	}
	return minutes
}
