package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/report"
	"github.com/cmlabs-hris/attendance-normalizer/internal/handler/http/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler interface {
	// Flat workbook of every day record
	Export(w http.ResponseWriter, r *http.Request)

	// Per-month dashboard numbers
	GetMonthAnalytics(w http.ResponseWriter, r *http.Request)

	// Compact context for the assistant
	GetSummary(w http.ResponseWriter, r *http.Request)

	// Blank upload templates
	GetAttendanceTemplate(w http.ResponseWriter, r *http.Request)
	GetPersonnelTemplate(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// Export handles GET /reports/export
func (h *reportHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	file, err := h.reportService.Export(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Report exported", "filename", file.Filename, "bytes", len(file.Content))
	response.File(w, file.Filename, xlsxContentType, file.Content)
}

// GetMonthAnalytics handles GET /reports/analytics?month=YYYY-MM
func (h *reportHandlerImpl) GetMonthAnalytics(w http.ResponseWriter, r *http.Request) {
	req := report.MonthAnalyticsRequest{
		Month: r.URL.Query().Get("month"),
	}

	result, err := h.reportService.MonthAnalytics(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetSummary handles GET /reports/summary
func (h *reportHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.ChatSummary(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetAttendanceTemplate handles GET /templates/attendance
func (h *reportHandlerImpl) GetAttendanceTemplate(w http.ResponseWriter, r *http.Request) {
	file, err := h.reportService.AttendanceTemplate()
	if err != nil {
		slog.Error("Failed to build attendance template", "error", err)
		response.HandleError(w, err)
		return
	}

	response.File(w, file.Filename, xlsxContentType, file.Content)
}

// GetPersonnelTemplate handles GET /templates/personnel
func (h *reportHandlerImpl) GetPersonnelTemplate(w http.ResponseWriter, r *http.Request) {
	file, err := h.reportService.PersonnelTemplate()
	if err != nil {
		slog.Error("Failed to build personnel template", "error", err)
		response.HandleError(w, err)
		return
	}

	response.File(w, file.Filename, xlsxContentType, file.Content)
}
