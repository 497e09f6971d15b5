// Package scoring derives compliance and risk signals from an employee's full
// attendance history.
package scoring

import (
	"strings"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
)

const (
	anomalyPenalty = 5
	absentPenalty  = 15
	latePenalty    = 3

	absentRisk  = 10
	anomalyRisk = 15

	atRiskAbove      = 40
	anomalyTagAbove  = 1
	reliableTagAbove = 95
)

// Counts are the raw tallies the scores are computed from.
type Counts struct {
	Records   int
	Anomalies int
	Absents   int
	Lates     int
}

// Tally counts anomalies, absences and late arrivals across every month.
func Tally(e employee.Employee) Counts {
	var c Counts
	for _, days := range e.MonthlyData {
		for _, d := range days {
			c.Records++
			if d.IsCycleImperfect {
				c.Anomalies++
			}
			if strings.Contains(strings.ToLower(string(d.Status)), "absent") {
				c.Absents++
			}
			if IsLate(d.LateBy) {
				c.Lates++
			}
		}
	}
	return c
}

// IsLate reports whether a late-by value records actual lateness.
func IsLate(lateBy string) bool {
	switch strings.TrimSpace(lateBy) {
	case "", "00:00", "0:00":
		return false
	}
	return true
}

// Enrich returns a copy of e with complianceScore, riskScore and tags set. An
// employee without records gets the NEW baseline.
func Enrich(e employee.Employee) employee.Employee {
	c := Tally(e)
	if c.Records == 0 {
		e.ComplianceScore = 100
		e.RiskScore = 0
		e.Tags = []string{employee.TagNew}
		return e
	}

	e.ComplianceScore = max(0, 100-anomalyPenalty*c.Anomalies-absentPenalty*c.Absents-latePenalty*c.Lates)
	e.RiskScore = min(100, absentRisk*c.Absents+anomalyRisk*c.Anomalies)

	tags := []string{}
	if e.RiskScore > atRiskAbove {
		tags = append(tags, employee.TagAtRisk)
	}
	if c.Anomalies > anomalyTagAbove {
		tags = append(tags, employee.TagPunchAnomaly)
	}
	if e.ComplianceScore > reliableTagAbove {
		tags = append(tags, employee.TagReliable)
	}
	e.Tags = tags
	return e
}

// EnrichAll scores every employee.
func EnrichAll(employees []employee.Employee) []employee.Employee {
	out := make([]employee.Employee, len(employees))
	for i, e := range employees {
		out[i] = Enrich(e)
	}
	return out
}
