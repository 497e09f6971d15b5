package ingest

import (
	"strings"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
)

// ClassifyStatus decides a day's status from the declared status text and the
// corroborating evidence. First match wins:
//
//  1. "week" or "w/o": WeeklyOff, or Weekoff Present when there is evidence
//  2. "present" or any evidence: Present
//  3. "absent": Absent
//  4. Absent
func ClassifyStatus(declared string, cycles []employee.PunchPair, duration string) employee.Status {
	declared = strings.ToLower(declared)
	evidence := len(cycles) > 0 || HasDuration(duration)

	switch {
	case strings.Contains(declared, "week") || strings.Contains(declared, "w/o"):
		if evidence {
			return employee.StatusWeekoffPresent
		}
		return employee.StatusWeeklyOff
	case strings.Contains(declared, "present") || evidence:
		return employee.StatusPresent
	case strings.Contains(declared, "absent"):
		return employee.StatusAbsent
	default:
		return employee.StatusAbsent
	}
}

// HasDuration reports whether a duration text records any worked time.
func HasDuration(duration string) bool {
	switch strings.TrimSpace(duration) {
	case "", "00:00", "0:00":
		return false
	}
	return true
}
