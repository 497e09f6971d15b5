package ingest

import (
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/punch"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/sheet"
)

const breakAllowanceMinutes = 60

// BuildDayRecord turns one attendance row into a complete day record. When the
// punch column is empty the in/out columns are folded into a punch log so both
// layouts go through the same cycle reconstruction.
func BuildDayRecord(row sheet.Row, date sheet.DateKey, opts MergeOptions) employee.DayRecord {
	opts = opts.withDefaults()
	timeOf := func(f sheet.Field) string {
		cell, _ := row.Lookup(sheet.AttendanceAliases, f)
		return sheet.CoerceTime(cell)
	}

	in := timeOf(sheet.FieldInTime)
	out := timeOf(sheet.FieldOutTime)
	duration := timeOf(sheet.FieldDuration)

	punchRec := row.TextOf(sheet.AttendanceAliases, sheet.FieldPunchRecords)
	if punchRec == "" && (in != "" || out != "") {
		punchRec = punch.Synthesize(in, out)
	}
	parsed := punch.Parse(punchRec)
	cycles := toPunchPairs(parsed.Cycles)

	declared := nonEmpty(row.TextOf(sheet.AttendanceAliases, sheet.FieldStatus), string(employee.StatusAbsent))

	stayed := parsed.WorkedMinutes
	if stayed == 0 {
		stayed = sheet.ClockMinutes(duration)
	}
	cyclesCount := len(cycles)
	if cyclesCount == 0 && HasDuration(duration) {
		cyclesCount = 1
	}

	return employee.DayRecord{
		Date:                 date.Display,
		Day:                  date.Day,
		Status:               ClassifyStatus(declared, cycles, duration),
		Shift:                nonEmpty(row.TextOf(sheet.AttendanceAliases, sheet.FieldShift), opts.DefaultShift),
		Cycles:               cycles,
		TotalStayedInMinutes: stayed,
		TotalBreakMinutes:    parsed.BreakMinutes,
		TotalDuration:        duration,
		LateBy:               timeOf(sheet.FieldLateBy),
		EarlyBy:              timeOf(sheet.FieldEarlyBy),
		IsCycleImperfect:     parsed.Imperfect,
		TotalCyclesCount:     cyclesCount,
		BreakOverstayMinutes: max(0, parsed.BreakMinutes-breakAllowanceMinutes),
		PunchRecRaw:          punchRec,
		Overtime:             timeOf(sheet.FieldOvertime),
	}
}

// MergeAttendance folds attendance rows into existing and returns a new
// collection. Rows without an identifier or a readable date are skipped. An
// unknown identifier whose name matches an existing employee is mapped onto
// that employee for the rest of the file. A day already present is replaced.
func MergeAttendance(existing []employee.Employee, rows []sheet.Row, opts MergeOptions) MergeResult {
	opts = opts.withDefaults()
	c := newCollection(existing)
	aliases := make(map[string]string)

	for _, row := range rows {
		rowID := sheet.NormalizeIdentifier(row.TextOf(sheet.AttendanceAliases, sheet.FieldEmployeeCode))
		if rowID == "" {
			c.skipped++
			continue
		}
		dateCell, _ := row.Lookup(sheet.AttendanceAliases, sheet.FieldDate)
		date, ok := sheet.ResolveDate(dateCell)
		if !ok {
			c.skipped++
			continue
		}
		rowName := row.TextOf(sheet.AttendanceAliases, sheet.FieldEmployeeName)

		id := rowID
		if canonical, ok := aliases[rowID]; ok {
			id = canonical
		}

		if emp := c.get(id); emp != nil {
			c.checkConflict(opts.Source, rowID, rowName, emp)
		} else if match := c.byName(rowName); match != nil {
			aliases[rowID] = match.ID
			id = match.ID
		} else {
			c.add(newAttendanceShell(rowID, rowName, row, opts))
		}

		emp := c.get(id)
		emp.PutDay(date.YearMonth, BuildDayRecord(row, date, opts))
		c.touch(emp.ID)
	}
	return c.result()
}

// newAttendanceShell creates an employee first seen in an attendance file.
func newAttendanceShell(id, name string, row sheet.Row, opts MergeOptions) employee.Employee {
	emp := employee.Employee{
		ID:          id,
		Name:        nonEmpty(name, employee.DefaultName),
		Department:  nonEmpty(row.TextOf(sheet.AttendanceAliases, sheet.FieldDepartment), opts.DefaultDepartment),
		Company:     nonEmpty(row.TextOf(sheet.AttendanceAliases, sheet.FieldCompany), opts.DefaultCompany),
		MonthlyData: make(map[string][]employee.DayRecord),
	}

	details := employee.PersonalDetails{
		Designation: row.TextOf(sheet.AttendanceAliases, sheet.FieldDesignation),
		Team:        row.TextOf(sheet.AttendanceAliases, sheet.FieldTeam),
		Category:    row.TextOf(sheet.AttendanceAliases, sheet.FieldCategory),
	}
	if details != (employee.PersonalDetails{}) {
		emp.Details = &details
	}
	return emp
}

func toPunchPairs(cycles []punch.Cycle) []employee.PunchPair {
	pairs := make([]employee.PunchPair, len(cycles))
	for i, c := range cycles {
		pairs[i] = employee.PunchPair{
			In:              c.In,
			Out:             c.Out,
			DurationMinutes: c.DurationMinutes,
			IsComplete:      c.IsComplete,
		}
	}
	return pairs
}
