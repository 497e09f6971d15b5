package employee

import (
	"context"
)

// EmployeeService defines business logic for the normalized employee collection
type EmployeeService interface {
	// ListEmployees lists employees; an EMPLOYEE caller only sees their own record
	ListEmployees(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)

	// GetEmployee retrieves a single employee (with role-based access control)
	GetEmployee(ctx context.Context, id string) (Employee, error)

	// UpsertEmployee replaces or appends an employee and re-scores it (manager+ only)
	UpsertEmployee(ctx context.Context, req UpsertEmployeeRequest) (Employee, error)

	// DeleteEmployee removes an employee and records a tombstone (manager+ only)
	DeleteEmployee(ctx context.Context, id string) error

	// MarkNotificationRead acknowledges one anomaly
	MarkNotificationRead(ctx context.Context, req MarkNotificationReadRequest) error

	// MarkAllNotificationsRead acknowledges every anomaly visible to the caller
	MarkAllNotificationsRead(ctx context.Context) (int, error)

	// SyncBaseline reconciles the shared baseline into local state once at startup
	SyncBaseline(ctx context.Context, baseline []Employee) (SyncBaselineResponse, error)
}
