package employee

import (
	"maps"
	"slices"
	"strings"
)

// Employee is one person's normalized attendance history. JSON keys follow the
// shared baseline file format so exported collections reload unchanged.
type Employee struct {
	ID                   string                 `json:"id"`
	Name                 string                 `json:"name"`
	Department           string                 `json:"department"`
	Company              string                 `json:"company"`
	Details              *PersonalDetails       `json:"details,omitempty"`
	MonthlyData          map[string][]DayRecord `json:"monthlyData"`
	ComplianceScore      int                    `json:"complianceScore"`
	RiskScore            int                    `json:"riskScore"`
	Tags                 []string               `json:"tags,omitempty"`
	ReadNotificationKeys []string               `json:"readNotificationKeys,omitempty"`
}

// DayRecord is the normalized attendance of one employee on one day. A record
// is always replaced as a whole.
type DayRecord struct {
	Date                 string      `json:"date"`
	Day                  int         `json:"day"`
	Status               Status      `json:"status"`
	Shift                string      `json:"shift"`
	Cycles               []PunchPair `json:"cycles"`
	TotalStayedInMinutes int         `json:"totalStayedInMinutes"`
	TotalBreakMinutes    int         `json:"totalBreakMinutes"`
	TotalDuration        string      `json:"totalDuration"`
	LateBy               string      `json:"lateBy"`
	EarlyBy              string      `json:"earlyBy"`
	IsCycleImperfect     bool        `json:"isCycleImperfect"`
	TotalCyclesCount     int         `json:"totalCyclesCount"`
	BreakOverstayMinutes int         `json:"breakOverstayMinutes"`
	PunchRecRaw          string      `json:"punchRecRaw,omitempty"`
	Overtime             string      `json:"overtime,omitempty"`
}

// PunchPair is one reconstructed work interval. Out is nil for an open cycle.
type PunchPair struct {
	In              string  `json:"in"`
	Out             *string `json:"out"`
	DurationMinutes int     `json:"durationMinutes"`
	IsComplete      bool    `json:"isComplete"`
}

// PersonalDetails is a sparse bag of identity and contact attributes.
type PersonalDetails struct {
	FatherName             string `json:"fatherName,omitempty"`
	Designation            string `json:"designation,omitempty"`
	DOB                    string `json:"dob,omitempty"`
	DOJ                    string `json:"doj,omitempty"`
	DOR                    string `json:"dor,omitempty"`
	DOE                    string `json:"doe,omitempty"`
	ActiveStatus           string `json:"activeStatus,omitempty"`
	Gender                 string `json:"gender,omitempty"`
	MaritalStatus          string `json:"maritalStatus,omitempty"`
	Address                string `json:"address,omitempty"`
	ContactNumber          string `json:"contactNumber,omitempty"`
	EmergencyContact       string `json:"emergencyContact,omitempty"`
	EmergencyContactPerson string `json:"emergencyContactPerson,omitempty"`
	BloodGroup             string `json:"bloodGroup,omitempty"`
	Aadhar                 string `json:"aadhar,omitempty"`
	PAN                    string `json:"pan,omitempty"`
	MailID                 string `json:"mailId,omitempty"`
	Team                   string `json:"team,omitempty"`
	Category               string `json:"category,omitempty"`
	Grade                  string `json:"grade,omitempty"`
	CTC                    string `json:"ctc,omitempty"`
	BondApplicable         string `json:"bondApplicable,omitempty"`
}

// Fields returns a pointer to every detail field so merge policies can be
// applied uniformly.
func (d *PersonalDetails) Fields() []*string {
	return []*string{
		&d.FatherName, &d.Designation, &d.DOB, &d.DOJ, &d.DOR, &d.DOE,
		&d.ActiveStatus, &d.Gender, &d.MaritalStatus, &d.Address,
		&d.ContactNumber, &d.EmergencyContact, &d.EmergencyContactPerson,
		&d.BloodGroup, &d.Aadhar, &d.PAN, &d.MailID,
		&d.Team, &d.Category, &d.Grade, &d.CTC, &d.BondApplicable,
	}
}

type Status string

const (
	StatusPresent        Status = "Present"
	StatusAbsent         Status = "Absent"
	StatusWeeklyOff      Status = "WeeklyOff"
	StatusWeekoffPresent Status = "Weekoff Present"
)

const (
	TagAtRisk       = "AT_RISK"
	TagPunchAnomaly = "PUNCH_ANOMALY"
	TagReliable     = "RELIABLE"
	TagNew          = "NEW"
)

const (
	ActiveStatusActive   = "Active"
	ActiveStatusInactive = "Inactive"
)

const (
	DefaultDepartment = "General"
	DefaultCompany    = "Copes Tech"
	DefaultShift      = "GS"
	DefaultName       = "New Employee"

	// PlaceholderCompany is what older personnel exports write when the
	// company column is empty.
	PlaceholderCompany = "Corporate"
)

// Clone returns a deep copy that shares no slices or maps with e.
func (e Employee) Clone() Employee {
	out := e
	if e.Details != nil {
		d := *e.Details
		out.Details = &d
	}
	out.MonthlyData = make(map[string][]DayRecord, len(e.MonthlyData))
	for ym, days := range e.MonthlyData {
		copied := make([]DayRecord, len(days))
		for i, day := range days {
			copied[i] = day.Clone()
		}
		out.MonthlyData[ym] = copied
	}
	out.Tags = slices.Clone(e.Tags)
	out.ReadNotificationKeys = slices.Clone(e.ReadNotificationKeys)
	return out
}

// Clone returns a deep copy of the record.
func (r DayRecord) Clone() DayRecord {
	out := r
	if r.Cycles != nil {
		out.Cycles = make([]PunchPair, len(r.Cycles))
		for i, c := range r.Cycles {
			out.Cycles[i] = c
			if c.Out != nil {
				o := *c.Out
				out.Cycles[i].Out = &o
			}
		}
	}
	return out
}

// MonthKeys returns the year-month keys in ascending order.
func (e Employee) MonthKeys() []string {
	return slices.Sorted(maps.Keys(e.MonthlyData))
}

// Records flattens every month into one slice, oldest month first.
func (e Employee) Records() []DayRecord {
	var out []DayRecord
	for _, ym := range e.MonthKeys() {
		out = append(out, e.MonthlyData[ym]...)
	}
	return out
}

// PutDay stores rec in month ym, replacing any record for the same day, and
// keeps the month ordered by day.
func (e *Employee) PutDay(ym string, rec DayRecord) {
	if e.MonthlyData == nil {
		e.MonthlyData = make(map[string][]DayRecord)
	}
	days := e.MonthlyData[ym]
	idx := slices.IndexFunc(days, func(d DayRecord) bool { return d.Day == rec.Day })
	if idx >= 0 {
		days[idx] = rec
	} else {
		days = append(days, rec)
	}
	slices.SortStableFunc(days, func(a, b DayRecord) int { return a.Day - b.Day })
	e.MonthlyData[ym] = days
}

// NotificationKey identifies an anomaly on a given record date.
func NotificationKey(employeeID, date string) string {
	return employeeID + "-" + date
}

// HasRead reports whether the anomaly key was acknowledged.
func (e Employee) HasRead(key string) bool {
	return slices.Contains(e.ReadNotificationKeys, key)
}

// MarkRead acknowledges key once.
func (e *Employee) MarkRead(key string) {
	if !e.HasRead(key) {
		e.ReadNotificationKeys = append(e.ReadNotificationKeys, key)
	}
}

// Designation is a nil-safe accessor used by exports and summaries.
func (e Employee) Designation() string {
	if e.Details == nil {
		return ""
	}
	return e.Details.Designation
}

// MatchesName compares full names case-insensitively.
func (e Employee) MatchesName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && strings.EqualFold(strings.TrimSpace(e.Name), name)
}

// PendingNotifications lists every imperfect day that has not been
// acknowledged, oldest month first.
func (e Employee) PendingNotifications() []Notification {
	var out []Notification
	for _, ym := range e.MonthKeys() {
		for _, d := range e.MonthlyData[ym] {
			if !d.IsCycleImperfect {
				continue
			}
			key := NotificationKey(e.ID, d.Date)
			if e.HasRead(key) {
				continue
			}
			out = append(out, Notification{
				Key:          key,
				EmployeeID:   e.ID,
				EmployeeName: e.Name,
				Department:   e.Department,
				Month:        ym,
				Date:         d.Date,
				Day:          d.Day,
				Status:       d.Status,
				PunchRecRaw:  d.PunchRecRaw,
				CyclesCount:  d.TotalCyclesCount,
			})
		}
	}
	return out
}
