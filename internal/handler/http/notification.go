package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/report"
	"github.com/cmlabs-hris/attendance-normalizer/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/sse"
)

const streamKeepalive = 30 * time.Second

// NotificationHandler serves the anomaly feed: imperfect punch days that have
// not been acknowledged.
type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	MarkAsRead(w http.ResponseWriter, r *http.Request)
	MarkAllAsRead(w http.ResponseWriter, r *http.Request)

	// SSE
	Stream(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	reportService   report.ReportService
	employeeService employee.EmployeeService
	hub             *sse.Hub
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(reportService report.ReportService, employeeService employee.EmployeeService, hub *sse.Hub) NotificationHandler {
	return &notificationHandlerImpl{
		reportService:   reportService,
		employeeService: employeeService,
		hub:             hub,
	}
}

// List returns every pending notification visible to the caller
func (h *notificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.reportService.Notifications(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, list)
}

// MarkAsRead acknowledges a single notification
func (h *notificationHandlerImpl) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	var req employee.MarkNotificationReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.employeeService.MarkNotificationRead(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Notification marked as read", nil)
}

// MarkAllAsRead acknowledges every notification visible to the caller
func (h *notificationHandlerImpl) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	count, err := h.employeeService.MarkAllNotificationsRead(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Notifications acknowledged", "count", count)
	response.SuccessWithMessage(w, "All notifications marked as read", map[string]int{"marked": count})
}

// Stream pushes an event to the caller whenever a committed upload changes
// records they can see. Staff subscribe to every change, employees only to
// their own record.
func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	principal, err := jwt.PrincipalFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	audience := sse.StaffAudience
	if principal.IsEmployee() {
		audience = principal.EmployeeID
	}

	list, err := h.reportService.Notifications(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// Check if streaming is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(audience)
	defer cleanup()

	// Send initial connection event
	if err := sse.Write(w, sse.Event{Event: "connected", Data: map[string]any{
		"audience":              audience,
		"pending_notifications": list.Total,
	}}); err != nil {
		return
	}
	flusher.Flush()

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := sse.Write(w, event); err != nil {
				slog.Warn("notification stream write failed", "audience", audience, "error", err)
				return
			}
			flusher.Flush()

		case <-keepalive.C:
			if err := sse.Write(w, sse.Event{Event: "ping", Data: map[string]int64{"timestamp": time.Now().Unix()}}); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
