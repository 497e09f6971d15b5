package employee

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/validator"
)

type EmployeeFilter struct {
	Department string `json:"department,omitempty"`
	Search     string `json:"search,omitempty"` // name or identifier substring

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *EmployeeFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 50
	}
	if f.Limit > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 500",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListEmployeeResponse struct {
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
	Showing    string     `json:"showing"`
	Employees  []Employee `json:"employees"`
}

// UpsertEmployeeRequest carries a full employee document from the editor.
// A blank ID asks the service to allocate the next identifier.
type UpsertEmployeeRequest struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Department  string                 `json:"department"`
	Company     string                 `json:"company"`
	Details     *PersonalDetails       `json:"details,omitempty"`
	MonthlyData map[string][]DayRecord `json:"monthlyData,omitempty"`
}

func (r *UpsertEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}
	if len(r.ID) > 64 {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id must not exceed 64 characters",
		})
	}

	for ym, days := range r.MonthlyData {
		if !validator.IsValidMonthKey(ym) {
			errs = append(errs, validator.ValidationError{
				Field:   "monthlyData",
				Message: fmt.Sprintf("%q: %s", ym, ErrInvalidMonthKey.Error()),
			})
			continue
		}
		seen := make(map[int]bool, len(days))
		for _, d := range days {
			if d.Day < 1 || d.Day > 31 {
				errs = append(errs, validator.ValidationError{
					Field:   "monthlyData",
					Message: fmt.Sprintf("%s: day must be between 1 and 31", ym),
				})
				continue
			}
			if seen[d.Day] {
				errs = append(errs, validator.ValidationError{
					Field:   "monthlyData",
					Message: fmt.Sprintf("%s: day %d appears more than once", ym, d.Day),
				})
			}
			seen[d.Day] = true
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MarkNotificationReadRequest struct {
	EmployeeID string `json:"employee_id"`
	Key        string `json:"key"`
}

func (r *MarkNotificationReadRequest) Validate() error {
	var errs validator.ValidationErrors

	r.EmployeeID = strings.TrimSpace(r.EmployeeID)
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.Key) {
		errs = append(errs, validator.ValidationError{
			Field:   "key",
			Message: "key is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Notification is an imperfect punch day that has not been acknowledged yet.
type Notification struct {
	Key          string `json:"key"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Department   string `json:"department"`
	Month        string `json:"month"`
	Date         string `json:"date"`
	Day          int    `json:"day"`
	Status       Status `json:"status"`
	PunchRecRaw  string `json:"punch_rec_raw,omitempty"`
	CyclesCount  int    `json:"cycles_count"`
}

type SyncBaselineResponse struct {
	LocalCount      int `json:"local_count"`
	BaselineCount   int `json:"baseline_count"`
	MergedCount     int `json:"merged_count"`
	SuppressedCount int `json:"suppressed_count"`
}
