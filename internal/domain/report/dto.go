package report

import (
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/validator"
)

// ExportColumns is the fixed column order of the flat export workbook.
var ExportColumns = []string{
	"Emp Code",
	"Employee Name",
	"Department",
	"Company",
	"Designation",
	"Date",
	"Status",
	"Shift",
	"In Time",
	"Out Time",
	"Total Duration",
	"Late By",
	"Early By",
	"Punch Records",
	"Compliance Score",
}

const (
	ExportSheetName     = "Master_Attendance_Report"
	AttendanceSheetName = "Attendance_Log"
	PersonnelSheetName  = "Personnel_Data"

	// SummaryLimit caps how many employees the chat summary carries.
	SummaryLimit = 50
)

// File is a generated workbook ready to be served as a download.
type File struct {
	Filename string
	Content  []byte
}

// ========================================
// MONTH ANALYTICS
// ========================================

type MonthAnalyticsRequest struct {
	// Month is a YYYY-MM key; empty picks the latest month with data
	Month string `json:"month"`
}

func (r *MonthAnalyticsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month != "" && !validator.IsValidMonthKey(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: ErrInvalidMonth.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MonthAnalytics struct {
	Month          string            `json:"month"`
	EmployeeCount  int               `json:"employee_count"`
	TotalPresent   int               `json:"total_present"`
	TotalAbsent    int               `json:"total_absent"`
	TotalWeeklyOff int               `json:"total_weekly_off"`
	TotalAnomalies int               `json:"total_anomalies"`
	AvgPresent     float64           `json:"avg_present"`
	AvgAbsent      float64           `json:"avg_absent"`
	Departments    []DepartmentStats `json:"departments"`
}

type DepartmentStats struct {
	Name          string  `json:"name"`
	EmployeeCount int     `json:"employee_count"`
	Present       int     `json:"present"`
	Absent        int     `json:"absent"`
	Records       int     `json:"records"`
	AvgPresent    float64 `json:"avg_present"`
	AvgAbsent     float64 `json:"avg_absent"`
}

// ========================================
// CHAT SUMMARY
// ========================================

// ChatSummary is the privacy-filtered dataset handed to the chat layer.
type ChatSummary struct {
	RecordsInIndex int               `json:"records_in_index"`
	UserRole       string            `json:"user_role"`
	Dataset        []EmployeeSummary `json:"dataset"`
}

type EmployeeSummary struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Dept     string          `json:"dept"`
	Identity SummaryIdentity `json:"identity"`
	Stats    SummaryStats    `json:"stats"`
}

type SummaryIdentity struct {
	Designation string `json:"desig,omitempty"`
	Status      string `json:"status,omitempty"`
	BloodGroup  string `json:"blood,omitempty"`
}

type SummaryStats struct {
	Present    int `json:"present"`
	Absent     int `json:"absent"`
	Efficiency int `json:"efficiency"`
}

// ========================================
// NOTIFICATIONS
// ========================================

type NotificationList struct {
	Total         int                     `json:"total"`
	Notifications []employee.Notification `json:"notifications"`
}
