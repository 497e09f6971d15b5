package ingest

import (
	"strings"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/sheet"
)

// PersonnelRecord is one parsed row of a personnel sheet. Empty strings mean
// "not provided".
type PersonnelRecord struct {
	ID         string
	Name       string
	Department string
	Company    string
	Details    employee.PersonalDetails
}

// ParsePersonnelRows reads personnel rows; rows without an identifier are
// skipped and counted.
func ParsePersonnelRows(rows []sheet.Row) ([]PersonnelRecord, int) {
	records := make([]PersonnelRecord, 0, len(rows))
	skipped := 0

	for _, row := range rows {
		id := sheet.NormalizeIdentifier(row.TextOf(sheet.PersonnelAliases, sheet.FieldEmployeeCode))
		if id == "" {
			skipped++
			continue
		}

		text := func(f sheet.Field) string {
			return row.TextOf(sheet.PersonnelAliases, f)
		}
		display := func(f sheet.Field) string {
			cell, _ := row.Lookup(sheet.PersonnelAliases, f)
			return sheet.CoerceDisplayValue(cell)
		}

		records = append(records, PersonnelRecord{
			ID:         id,
			Name:       text(sheet.FieldEmployeeName),
			Department: text(sheet.FieldDepartment),
			Company:    text(sheet.FieldCompany),
			Details: employee.PersonalDetails{
				FatherName:             display(sheet.FieldFatherName),
				Designation:            text(sheet.FieldDesignation),
				DOB:                    display(sheet.FieldDOB),
				DOJ:                    display(sheet.FieldDOJ),
				DOR:                    display(sheet.FieldDOR),
				DOE:                    display(sheet.FieldDOE),
				ActiveStatus:           normalizeActiveStatus(text(sheet.FieldActiveStatus)),
				Gender:                 text(sheet.FieldGender),
				MaritalStatus:          text(sheet.FieldMaritalStatus),
				Address:                text(sheet.FieldAddress),
				ContactNumber:          display(sheet.FieldContactNumber),
				EmergencyContact:       display(sheet.FieldEmergencyContact),
				EmergencyContactPerson: text(sheet.FieldEmergencyContactPerson),
				BloodGroup:             text(sheet.FieldBloodGroup),
				Aadhar:                 display(sheet.FieldAadhar),
				PAN:                    display(sheet.FieldPAN),
				MailID:                 text(sheet.FieldMailID),
				Team:                   text(sheet.FieldTeam),
				Category:               text(sheet.FieldCategory),
				Grade:                  text(sheet.FieldGrade),
				CTC:                    text(sheet.FieldCTC),
				BondApplicable:         text(sheet.FieldBondApplicable),
			},
		})
	}
	return records, skipped
}

// normalizeActiveStatus maps free text onto Active/Inactive. A missing value
// stays empty so it never overwrites a known status.
func normalizeActiveStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "inactive"):
		return employee.ActiveStatusInactive
	case strings.Contains(s, "active"):
		return employee.ActiveStatusActive
	default:
		return employee.ActiveStatusInactive
	}
}

// MergeField is the single overwrite policy for sparse fields: incoming only
// replaces existing when isPlaceholder rejects it.
func MergeField(existing, incoming string, isPlaceholder func(string) bool) string {
	if isPlaceholder(incoming) {
		return existing
	}
	return strings.TrimSpace(incoming)
}

// IsIdentityPlaceholder extends the blank/sentinel rule with the defaults that
// older exports write into name, department and company columns.
func IsIdentityPlaceholder(v string) bool {
	if sheet.IsBlankOrSentinel(v) {
		return true
	}
	v = strings.TrimSpace(v)
	return strings.EqualFold(v, employee.DefaultDepartment) ||
		strings.EqualFold(v, employee.PlaceholderCompany) ||
		strings.EqualFold(v, employee.DefaultName)
}

// MergeDetails applies MergeField to every detail field.
func MergeDetails(existing *employee.PersonalDetails, incoming employee.PersonalDetails) *employee.PersonalDetails {
	merged := employee.PersonalDetails{}
	if existing != nil {
		merged = *existing
	}
	dst := merged.Fields()
	src := incoming.Fields()
	for i := range dst {
		*dst[i] = MergeField(*dst[i], *src[i], sheet.IsBlankOrSentinel)
	}
	if merged == (employee.PersonalDetails{}) {
		return existing
	}
	return &merged
}

// MergePersonnel folds personnel records into existing and returns a new
// collection. Records match by identifier, then by case-insensitive name;
// unmatched records become new employees with no attendance.
func MergePersonnel(existing []employee.Employee, records []PersonnelRecord, opts MergeOptions) MergeResult {
	opts = opts.withDefaults()
	c := newCollection(existing)

	for _, rec := range records {
		emp := c.get(rec.ID)
		if emp != nil {
			c.checkConflict(opts.Source, rec.ID, rec.Name, emp)
		} else {
			emp = c.byName(rec.Name)
		}

		if emp == nil {
			emp = c.add(employee.Employee{
				ID:          rec.ID,
				Name:        nonEmpty(rec.Name, employee.DefaultName),
				Department:  nonEmpty(rec.Department, opts.DefaultDepartment),
				Company:     nonEmpty(rec.Company, opts.DefaultCompany),
				MonthlyData: make(map[string][]employee.DayRecord),
			})
		} else {
			emp.Name = MergeField(emp.Name, rec.Name, IsIdentityPlaceholder)
			emp.Department = MergeField(emp.Department, rec.Department, IsIdentityPlaceholder)
			emp.Company = MergeField(emp.Company, rec.Company, IsIdentityPlaceholder)
		}

		emp.Details = MergeDetails(emp.Details, rec.Details)
		c.touch(emp.ID)
	}
	return c.result()
}
