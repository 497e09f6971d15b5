package report

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/report"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/sheet"
)

var attendanceSamples = []map[sheet.Field]any{
	{
		sheet.FieldDate:         "01-01-2026",
		sheet.FieldEmployeeCode: "C147",
		sheet.FieldEmployeeName: "VISHAL SINGH",
		sheet.FieldCompany:      "Copes Tech",
		sheet.FieldDepartment:   "CAE",
		sheet.FieldCategory:     "Default",
		sheet.FieldDesignation:  "CAE ENG",
		sheet.FieldShift:        "NS",
		sheet.FieldDuration:     "00:00",
		sheet.FieldLateBy:       "00:00",
		sheet.FieldEarlyBy:      "00:00",
		sheet.FieldStatus:       "Absent",
		sheet.FieldOvertime:     "00:00",
	},
	{
		sheet.FieldDate:         "02-01-2026",
		sheet.FieldEmployeeCode: "C147",
		sheet.FieldEmployeeName: "VISHAL SINGH",
		sheet.FieldCompany:      "Copes Tech",
		sheet.FieldDepartment:   "CAE",
		sheet.FieldCategory:     "Default",
		sheet.FieldDesignation:  "CAE ENG",
		sheet.FieldShift:        "GS",
		sheet.FieldInTime:       "10:14",
		sheet.FieldOutTime:      "20:12",
		sheet.FieldDuration:     "09:58",
		sheet.FieldLateBy:       "00:00",
		sheet.FieldEarlyBy:      "00:00",
		sheet.FieldStatus:       "Present",
		sheet.FieldPunchRecords: "10:14in(T), 20:12out(T)",
		sheet.FieldOvertime:     "00:00",
	},
}

var personnelSamples = []map[sheet.Field]any{
	{
		sheet.FieldEmployeeCode:           "C147",
		sheet.FieldEmployeeName:           "VISHAL SINGH",
		sheet.FieldFatherName:             "AWADESH KUMAR SIN",
		sheet.FieldDesignation:            "CAE ENG",
		sheet.FieldDepartment:             "CAE",
		sheet.FieldCompany:                "Copes Tech",
		sheet.FieldDOB:                    "01-Mar-22",
		sheet.FieldDOJ:                    "01-Mar-22",
		sheet.FieldActiveStatus:           "Active",
		sheet.FieldGender:                 "MALE",
		sheet.FieldMaritalStatus:          "Unmarried",
		sheet.FieldAddress:                "G3, OCC",
		sheet.FieldContactNumber:          "8977257970",
		sheet.FieldEmergencyContact:       "9703886462",
		sheet.FieldEmergencyContactPerson: "Mother",
		sheet.FieldBloodGroup:             "O +VE",
		sheet.FieldAadhar:                 "303668319338",
		sheet.FieldPAN:                    "OUMPS8219B",
		sheet.FieldMailID:                 "singhvishu0301@gmail.com",
		sheet.FieldTeam:                   "Simulation",
		sheet.FieldCategory:               "Default",
		sheet.FieldGrade:                  "E2",
		sheet.FieldBondApplicable:         "No",
	},
}

// buildTemplate writes one representative header per field followed by the
// sample rows laid out in the same column order.
func buildTemplate(filename, sheetName string, table sheet.AliasTable, samples []map[sheet.Field]any) (report.File, error) {
	rows := make([][]any, 0, len(samples))
	for _, sample := range samples {
		row := make([]any, len(table))
		for i, entry := range table {
			if v, ok := sample[entry.Field]; ok {
				row[i] = v
			} else {
				row[i] = ""
			}
		}
		rows = append(rows, row)
	}

	content, err := sheet.Write(sheetName, table.Headers(), rows)
	if err != nil {
		return report.File{}, fmt.Errorf("failed to build template: %w", err)
	}
	return report.File{Filename: filename, Content: content}, nil
}
