package report

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/report"
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/user"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/sheet"
)

type ReportServiceImpl struct {
	employeeRepository employee.EmployeeRepository
	now                func() time.Time
}

func NewReportService(employeeRepository employee.EmployeeRepository) report.ReportService {
	return &ReportServiceImpl{
		employeeRepository: employeeRepository,
		now:                time.Now,
	}
}

// visibleEmployees returns the collection as the caller is allowed to see it.
func (s *ReportServiceImpl) visibleEmployees(ctx context.Context) (user.Principal, []employee.Employee, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return user.Principal{}, nil, err
	}

	all, err := s.employeeRepository.List(ctx)
	if err != nil {
		return user.Principal{}, nil, fmt.Errorf("failed to list employees: %w", err)
	}

	visible := all[:0]
	for _, e := range all {
		if principal.CanSee(e.ID) {
			visible = append(visible, e)
		}
	}
	return principal, visible, nil
}

// Export implements report.ReportService.
func (s *ReportServiceImpl) Export(ctx context.Context) (report.File, error) {
	principal, employees, err := s.visibleEmployees(ctx)
	if err != nil {
		return report.File{}, err
	}
	if !user.HasPermission(principal.Role, user.PermissionReportsExport) {
		return report.File{}, user.ErrInsufficientPermissions
	}

	var rows [][]any
	for _, emp := range employees {
		for _, ym := range emp.MonthKeys() {
			for _, rec := range emp.MonthlyData[ym] {
				rows = append(rows, exportRow(emp, rec))
			}
		}
	}

	content, err := sheet.Write(report.ExportSheetName, report.ExportColumns, rows)
	if err != nil {
		return report.File{}, fmt.Errorf("failed to build export: %w", err)
	}

	return report.File{
		Filename: fmt.Sprintf("Attendance_Export_%s.xlsx", s.now().Format("2006-01-02")),
		Content:  content,
	}, nil
}

func exportRow(emp employee.Employee, rec employee.DayRecord) []any {
	var in, out string
	if n := len(rec.Cycles); n > 0 {
		in = rec.Cycles[0].In
		if last := rec.Cycles[n-1].Out; last != nil {
			out = *last
		}
	}

	duration := rec.TotalDuration
	if duration == "" {
		duration = sheet.FormatMinutes(rec.TotalStayedInMinutes)
	}

	return []any{
		emp.ID,
		emp.Name,
		emp.Department,
		emp.Company,
		emp.Designation(),
		rec.Date,
		string(rec.Status),
		rec.Shift,
		in,
		out,
		duration,
		rec.LateBy,
		rec.EarlyBy,
		rec.PunchRecRaw,
		emp.ComplianceScore,
	}
}

// AttendanceTemplate implements report.ReportService.
func (s *ReportServiceImpl) AttendanceTemplate() (report.File, error) {
	return buildTemplate("Recommended_Attendance_Template.xlsx", report.AttendanceSheetName, sheet.AttendanceAliases, attendanceSamples)
}

// PersonnelTemplate implements report.ReportService.
func (s *ReportServiceImpl) PersonnelTemplate() (report.File, error) {
	return buildTemplate("Recommended_Personnel_Template.xlsx", report.PersonnelSheetName, sheet.PersonnelAliases, personnelSamples)
}

// MonthAnalytics implements report.ReportService.
func (s *ReportServiceImpl) MonthAnalytics(ctx context.Context, req report.MonthAnalyticsRequest) (report.MonthAnalytics, error) {
	if err := req.Validate(); err != nil {
		return report.MonthAnalytics{}, err
	}

	_, employees, err := s.visibleEmployees(ctx)
	if err != nil {
		return report.MonthAnalytics{}, err
	}

	month := req.Month
	if month == "" {
		month = latestMonth(employees)
	}
	if month == "" {
		month = s.now().Format("2006-01")
	}

	result := report.MonthAnalytics{Month: month, EmployeeCount: len(employees)}
	deptIndex := make(map[string]int)

	for _, emp := range employees {
		dept := emp.Department
		if dept == "" {
			dept = employee.DefaultDepartment
		}
		i, ok := deptIndex[dept]
		if !ok {
			i = len(result.Departments)
			deptIndex[dept] = i
			result.Departments = append(result.Departments, report.DepartmentStats{Name: dept})
		}
		stats := &result.Departments[i]
		stats.EmployeeCount++

		for _, rec := range emp.MonthlyData[month] {
			switch bucketOf(rec.Status) {
			case bucketWeeklyOff:
				result.TotalWeeklyOff++
			case bucketPresent:
				result.TotalPresent++
				stats.Present++
			case bucketAbsent:
				result.TotalAbsent++
				stats.Absent++
			}
			if rec.IsCycleImperfect {
				result.TotalAnomalies++
			}
			stats.Records++
		}
	}

	divisor := max(1, len(employees))
	result.AvgPresent = oneDecimal(float64(result.TotalPresent) / float64(divisor))
	result.AvgAbsent = oneDecimal(float64(result.TotalAbsent) / float64(divisor))
	for i := range result.Departments {
		d := &result.Departments[i]
		d.AvgPresent = oneDecimal(float64(d.Present) / float64(max(1, d.EmployeeCount)))
		d.AvgAbsent = oneDecimal(float64(d.Absent) / float64(max(1, d.EmployeeCount)))
	}
	if result.Departments == nil {
		result.Departments = []report.DepartmentStats{}
	}

	return result, nil
}

// ChatSummary implements report.ReportService.
func (s *ReportServiceImpl) ChatSummary(ctx context.Context) (report.ChatSummary, error) {
	principal, employees, err := s.visibleEmployees(ctx)
	if err != nil {
		return report.ChatSummary{}, err
	}

	summary := report.ChatSummary{
		RecordsInIndex: len(employees),
		UserRole:       string(principal.Role),
		Dataset:        make([]report.EmployeeSummary, 0, min(len(employees), report.SummaryLimit)),
	}

	for _, emp := range employees {
		if len(summary.Dataset) == report.SummaryLimit {
			break
		}

		item := report.EmployeeSummary{
			ID:   emp.ID,
			Name: emp.Name,
			Dept: emp.Department,
			Stats: report.SummaryStats{
				Efficiency: emp.ComplianceScore,
			},
		}
		if emp.Details != nil {
			item.Identity = report.SummaryIdentity{
				Designation: emp.Details.Designation,
				Status:      emp.Details.ActiveStatus,
				BloodGroup:  emp.Details.BloodGroup,
			}
		}
		for _, rec := range emp.Records() {
			status := strings.ToLower(string(rec.Status))
			if strings.Contains(status, "present") {
				item.Stats.Present++
			}
			if strings.Contains(status, "absent") {
				item.Stats.Absent++
			}
		}
		summary.Dataset = append(summary.Dataset, item)
	}

	return summary, nil
}

// Notifications implements report.ReportService.
func (s *ReportServiceImpl) Notifications(ctx context.Context) (report.NotificationList, error) {
	_, employees, err := s.visibleEmployees(ctx)
	if err != nil {
		return report.NotificationList{}, err
	}

	list := report.NotificationList{Notifications: []employee.Notification{}}
	for _, emp := range employees {
		list.Notifications = append(list.Notifications, emp.PendingNotifications()...)
	}
	list.Total = len(list.Notifications)
	return list, nil
}

type statusBucket int

const (
	bucketOther statusBucket = iota
	bucketWeeklyOff
	bucketPresent
	bucketAbsent
)

// bucketOf groups a status for dashboards. Week-off labels are checked first
// so "Weekoff Present" counts as present while "WeeklyOff" does not.
func bucketOf(s employee.Status) statusBucket {
	status := strings.ToLower(string(s))
	switch {
	case strings.Contains(status, "weeklyoff"), strings.Contains(status, "week off"), strings.Contains(status, "w/o"):
		return bucketWeeklyOff
	case strings.Contains(status, "present"):
		return bucketPresent
	case strings.Contains(status, "absent"):
		return bucketAbsent
	}
	return bucketOther
}

func latestMonth(employees []employee.Employee) string {
	latest := ""
	for _, emp := range employees {
		for ym, days := range emp.MonthlyData {
			if len(days) > 0 && ym > latest {
				latest = ym
			}
		}
	}
	return latest
}

func oneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
