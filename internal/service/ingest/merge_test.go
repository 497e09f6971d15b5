package ingest

import (
	"encoding/json"
	"testing"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textRow(pairs ...string) sheet.Row {
	row := make(sheet.Row, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		row = append(row, sheet.Entry{Header: pairs[i], Value: sheet.Text(pairs[i+1])})
	}
	return row
}

func TestClassifyStatus(t *testing.T) {
	someCycle := []employee.PunchPair{{In: "09:00"}}
	cases := []struct {
		name     string
		declared string
		cycles   []employee.PunchPair
		duration string
		want     employee.Status
	}{
		{"week off without evidence", "Week Off", nil, "00:00", employee.StatusWeeklyOff},
		{"w/o with punches", "W/O", someCycle, "", employee.StatusWeekoffPresent},
		{"week off with duration", "weeklyoff", nil, "07:30", employee.StatusWeekoffPresent},
		{"declared present", "Present", nil, "", employee.StatusPresent},
		{"absent overridden by punches", "Absent", someCycle, "", employee.StatusPresent},
		{"absent overridden by duration", "absent", nil, "8:00", employee.StatusPresent},
		{"declared absent", "Absent", nil, "0:00", employee.StatusAbsent},
		{"unknown text", "Leave", nil, "", employee.StatusAbsent},
		{"blank", "", nil, "", employee.StatusAbsent},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ClassifyStatus(c.declared, c.cycles, c.duration))
		})
	}
}

func TestMergeAttendanceInOutColumns(t *testing.T) {
	rows := []sheet.Row{textRow(
		"EmpCode", "c147",
		"Date", "02-01-2026",
		"InTime", "10:14",
		"OutTime", "20:12",
		"Status", "Present",
	)}

	res := MergeAttendance(nil, rows, MergeOptions{})

	require.Len(t, res.Employees, 1)
	emp := res.Employees[0]
	assert.Equal(t, "C147", emp.ID)
	assert.Equal(t, employee.DefaultName, emp.Name)
	assert.Equal(t, employee.DefaultDepartment, emp.Department)
	assert.Equal(t, employee.DefaultCompany, emp.Company)

	days := emp.MonthlyData["2026-01"]
	require.Len(t, days, 1)
	day := days[0]
	assert.Equal(t, 2, day.Day)
	assert.Equal(t, "02-01-2026", day.Date)
	assert.Equal(t, employee.StatusPresent, day.Status)
	assert.False(t, day.IsCycleImperfect)
	require.Len(t, day.Cycles, 1)
	assert.Equal(t, "10:14", day.Cycles[0].In)
	require.NotNil(t, day.Cycles[0].Out)
	assert.Equal(t, "20:12", *day.Cycles[0].Out)
	assert.Equal(t, 598, day.Cycles[0].DurationMinutes)
	assert.Equal(t, 598, day.TotalStayedInMinutes)
	assert.Equal(t, employee.DefaultShift, day.Shift)
	assert.Equal(t, "10:14in, 20:12out", day.PunchRecRaw)
	assert.Equal(t, []string{"C147"}, res.Touched)
}

func TestMergeAttendancePunchLog(t *testing.T) {
	rows := []sheet.Row{textRow(
		"Employee Code", "E9",
		"Employee Name", "Asha Rao",
		"Date", "05-01-2026",
		"Punch Records", "10:00in, 18:00out, 19:00in",
		"Status", "",
	)}

	day := MergeAttendance(nil, rows, MergeOptions{}).Employees[0].MonthlyData["2026-01"][0]

	require.Len(t, day.Cycles, 1)
	assert.Equal(t, 480, day.Cycles[0].DurationMinutes)
	assert.True(t, day.IsCycleImperfect)
	assert.Equal(t, employee.StatusPresent, day.Status)
	assert.Equal(t, 60, day.TotalBreakMinutes)
	assert.Equal(t, 0, day.BreakOverstayMinutes)
	assert.Equal(t, 1, day.TotalCyclesCount)
}

func TestMergeAttendanceWeekOffPresent(t *testing.T) {
	rows := []sheet.Row{textRow(
		"Emp Code", "C2",
		"Att Date", "2026-02-07",
		"Status", "Week Off",
		"In Time", "09:00",
		"Out Time", "17:00",
	)}

	day := MergeAttendance(nil, rows, MergeOptions{}).Employees[0].MonthlyData["2026-02"][0]
	assert.Equal(t, employee.StatusWeekoffPresent, day.Status)
	assert.Equal(t, 7, day.Day)
}

func TestMergeAttendanceDurationOnly(t *testing.T) {
	rows := []sheet.Row{textRow(
		"Emp Code", "C3",
		"Date", "03-01-2026",
		"Duration", "7:45",
	)}

	day := MergeAttendance(nil, rows, MergeOptions{}).Employees[0].MonthlyData["2026-01"][0]
	assert.Empty(t, day.Cycles)
	assert.Equal(t, 465, day.TotalStayedInMinutes)
	assert.Equal(t, 1, day.TotalCyclesCount)
	assert.Equal(t, employee.StatusPresent, day.Status)
	assert.False(t, day.IsCycleImperfect)
}

func TestMergeAttendanceSkipsUnidentifiedRows(t *testing.T) {
	rows := []sheet.Row{
		textRow("Emp Code", "", "Date", "02-01-2026", "Status", "Present"),
		textRow("Emp Code", "N/A", "Date", "02-01-2026"),
		textRow("Emp Code", "C5", "Date", "not a date"),
	}

	res := MergeAttendance(nil, rows, MergeOptions{})
	assert.Empty(t, res.Employees)
	assert.Equal(t, 3, res.Skipped)
}

func TestMergeAttendanceReplacesDayWholesale(t *testing.T) {
	first := MergeAttendance(nil, []sheet.Row{
		textRow("Emp Code", "C1", "Date", "04-01-2026", "Punch Rec", "09:00in 13:00out 14:00in 18:00out", "Late By", "00:10"),
		textRow("Emp Code", "C1", "Date", "02-01-2026", "Status", "Absent"),
	}, MergeOptions{})

	second := MergeAttendance(first.Employees, []sheet.Row{
		textRow("Emp Code", "C1", "Date", "04-01-2026", "Status", "Absent"),
	}, MergeOptions{})

	days := second.Employees[0].MonthlyData["2026-01"]
	require.Len(t, days, 2)
	assert.Equal(t, []int{2, 4}, []int{days[0].Day, days[1].Day})
	assert.Equal(t, employee.StatusAbsent, days[1].Status)
	assert.Empty(t, days[1].Cycles)
	assert.Empty(t, days[1].LateBy)

	// input collection untouched
	assert.Len(t, first.Employees[0].MonthlyData["2026-01"][1].Cycles, 2)
}

func TestMergeAttendanceNameFallback(t *testing.T) {
	existing := []employee.Employee{{ID: "C147", Name: "Ravi Kumar", MonthlyData: map[string][]employee.DayRecord{}}}
	rows := []sheet.Row{
		textRow("Emp Code", "77", "Emp Name", "ravi kumar", "Date", "02-01-2026", "Status", "Present"),
		textRow("Emp Code", "77", "Emp Name", "", "Date", "03-01-2026", "Status", "Present"),
	}

	res := MergeAttendance(existing, rows, MergeOptions{})

	require.Len(t, res.Employees, 1)
	assert.Equal(t, "C147", res.Employees[0].ID)
	assert.Len(t, res.Employees[0].MonthlyData["2026-01"], 2)
}

func TestMergeAttendanceReportsIdentifierNameConflict(t *testing.T) {
	existing := []employee.Employee{
		{ID: "A1", Name: "Anil"},
		{ID: "B2", Name: "Bina"},
	}
	rows := []sheet.Row{textRow("Emp Code", "a1", "Name", "Bina", "Date", "02-01-2026")}

	res := MergeAttendance(existing, rows, MergeOptions{Source: "jan.xlsx"})

	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "A1", res.Conflicts[0].MatchedID)
	assert.Equal(t, "B2", res.Conflicts[0].NameOwnerID)
	assert.Equal(t, "jan.xlsx", res.Conflicts[0].File)
	assert.Len(t, res.Employees[0].MonthlyData["2026-01"], 1)
	assert.Empty(t, res.Employees[1].MonthlyData["2026-01"])
}

func TestMergeAttendanceIdempotent(t *testing.T) {
	rows := []sheet.Row{
		textRow("Emp Code", "C1", "Emp Name", "Asha", "Date", "02-01-2026", "Punch Rec", "09:00in 18:00out"),
		textRow("Emp Code", "C1", "Date", "03-01-2026", "Punch Rec", "09:00in"),
		textRow("Emp Code", "C2", "Date", "03-01-2026", "Status", "W/O"),
	}

	once := MergeAttendance(nil, rows, MergeOptions{}).Employees
	twice := MergeAttendance(once, rows, MergeOptions{}).Employees
	assert.Equal(t, once, twice)

	// survives a persistence round trip
	raw, err := json.Marshal(once)
	require.NoError(t, err)
	var reloaded []employee.Employee
	require.NoError(t, json.Unmarshal(raw, &reloaded))
	assert.Equal(t, once, MergeAttendance(reloaded, rows, MergeOptions{}).Employees)
}

func TestMergePersonnelKeepsKnownValues(t *testing.T) {
	existing := []employee.Employee{{
		ID:         "C147",
		Name:       "Ravi Kumar",
		Department: "Production",
		Company:    "Copes Tech",
		Details:    &employee.PersonalDetails{FatherName: "AWADESH KUMAR", BloodGroup: "B+"},
	}}
	records, skipped := ParsePersonnelRows([]sheet.Row{textRow(
		"S.No", "1",
		"Emp Code", "c147",
		"Emp Name", "",
		"Father Name", "",
		"Department", "General",
		"Company", "Corporate",
		"Blood Group", "N/A",
		"Mail - Id", "ravi@copes.example",
	)})
	require.Zero(t, skipped)
	require.Len(t, records, 1)
	assert.Equal(t, "C147", records[0].ID)

	res := MergePersonnel(existing, records, MergeOptions{})

	require.Len(t, res.Employees, 1)
	got := res.Employees[0]
	assert.Equal(t, "Ravi Kumar", got.Name)
	assert.Equal(t, "Production", got.Department)
	assert.Equal(t, "Copes Tech", got.Company)
	assert.Equal(t, "AWADESH KUMAR", got.Details.FatherName)
	assert.Equal(t, "B+", got.Details.BloodGroup)
	assert.Equal(t, "ravi@copes.example", got.Details.MailID)
	assert.Equal(t, "", got.Details.ActiveStatus)

	// original untouched
	assert.Empty(t, existing[0].Details.MailID)
}

func TestMergePersonnelNewEmployeeAndNameMatch(t *testing.T) {
	existing := []employee.Employee{{ID: "C1", Name: "Meera Das", Department: "General"}}
	rows := []sheet.Row{
		textRow("ID", "X9", "FullName", "MEERA DAS", "Dept", "Accounts", "Status", "Active"),
		textRow("ID", "C2", "Name", "Joseph", "Status", "Resigned", "DOB", "46024"),
		textRow("Name", "No Code"),
	}
	records, skipped := ParsePersonnelRows(rows)
	assert.Equal(t, 1, skipped)

	res := MergePersonnel(existing, records, MergeOptions{DefaultCompany: "Acme"})

	require.Len(t, res.Employees, 2)
	assert.Equal(t, "C1", res.Employees[0].ID)
	assert.Equal(t, "Accounts", res.Employees[0].Department)
	assert.Equal(t, employee.ActiveStatusActive, res.Employees[0].Details.ActiveStatus)

	joseph := res.Employees[1]
	assert.Equal(t, "C2", joseph.ID)
	assert.Equal(t, "Acme", joseph.Company)
	assert.Equal(t, employee.DefaultDepartment, joseph.Department)
	assert.Equal(t, employee.ActiveStatusInactive, joseph.Details.ActiveStatus)
	assert.Equal(t, "02-Jan-26", joseph.Details.DOB)
	assert.NotNil(t, joseph.MonthlyData)
	assert.Empty(t, joseph.MonthlyData)
}

func TestMergeField(t *testing.T) {
	assert.Equal(t, "old", MergeField("old", "", sheet.IsBlankOrSentinel))
	assert.Equal(t, "old", MergeField("old", "null", sheet.IsBlankOrSentinel))
	assert.Equal(t, "new", MergeField("old", " new ", sheet.IsBlankOrSentinel))
	assert.Equal(t, "HR", MergeField("HR", "General", IsIdentityPlaceholder))
	assert.Equal(t, "General", MergeField("HR", "General", sheet.IsBlankOrSentinel))
}

func TestReconcile(t *testing.T) {
	local := []employee.Employee{{
		ID:   "C1",
		Name: "Local Name",
		MonthlyData: map[string][]employee.DayRecord{
			"2026-02": {{Day: 1, Status: employee.StatusPresent}},
		},
		Details:              &employee.PersonalDetails{Gender: "F"},
		ReadNotificationKeys: []string{"C1-01-02-2026"},
	}}
	baseline := []employee.Employee{
		{
			ID:         "c1",
			Name:       "Baseline Name",
			Department: "Stores",
			MonthlyData: map[string][]employee.DayRecord{
				"2026-01": {{Day: 5, Status: employee.StatusAbsent}},
				"2026-02": {{Day: 9, Status: employee.StatusAbsent}},
			},
			Details: &employee.PersonalDetails{Gender: "M", BloodGroup: "O+"},
		},
		{ID: "DEL", Name: "Deleted"},
		{ID: "C3", Name: "Only Baseline"},
	}
	tombstones := employee.Tombstones{"DEL": {}}

	merged := Reconcile(local, baseline, tombstones)

	require.Len(t, merged, 2)
	c1 := merged[0]
	assert.Equal(t, "Local Name", c1.Name)
	assert.Equal(t, "Stores", c1.Department)
	assert.Equal(t, 1, c1.MonthlyData["2026-02"][0].Day)
	assert.Len(t, c1.MonthlyData["2026-01"], 1)
	assert.Equal(t, "F", c1.Details.Gender)
	assert.Equal(t, "O+", c1.Details.BloodGroup)
	assert.Equal(t, "C3", merged[1].ID)

	for i := 0; i < 3; i++ {
		merged = Reconcile(merged, baseline, tombstones)
		for _, e := range merged {
			assert.NotEqual(t, "DEL", e.ID)
		}
	}
}

func TestReconcileDropsTombstonedLocal(t *testing.T) {
	local := []employee.Employee{{ID: "C1"}, {ID: "C2"}}
	merged := Reconcile(local, nil, employee.Tombstones{"C2": {}})

	require.Len(t, merged, 1)
	assert.Equal(t, "C1", merged[0].ID)
}
