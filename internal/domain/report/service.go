package report

import "context"

type ReportService interface {
	// Export renders every day record of every employee as one flat workbook
	Export(ctx context.Context) (File, error)

	AttendanceTemplate() (File, error)
	PersonnelTemplate() (File, error)

	MonthAnalytics(ctx context.Context, req MonthAnalyticsRequest) (MonthAnalytics, error)
	ChatSummary(ctx context.Context) (ChatSummary, error)
	Notifications(ctx context.Context) (NotificationList, error)
}
