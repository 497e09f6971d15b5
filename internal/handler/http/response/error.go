package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/ingest"
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/report"
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/user"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/validator"
)

// processingFailed is the only message a failed batch ever shows.
const processingFailed = "Processing failed, verify column headers"

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, user.ErrPrincipalMissing):
		Unauthorized(w, "Authentication required")
	case errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, "Manager access required")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, employee.ErrUnauthorized):
		Forbidden(w, "You can only access your own record")

	// Ingest domain errors
	case errors.Is(err, ingest.ErrDecodeFailed):
		BadRequest(w, processingFailed, nil)
	case errors.Is(err, ingest.ErrUnsupportedFileType):
		BadRequest(w, "Only .xlsx workbooks are supported", nil)
	case errors.Is(err, ingest.ErrInvalidCategory):
		BadRequest(w, "Category must be attendance or details", nil)
	case errors.Is(err, ingest.ErrEmptyBatch):
		BadRequest(w, "At least one file is required", nil)
	case errors.Is(err, ingest.ErrTooManyFiles):
		BadRequest(w, "Too many files in one batch", nil)
	case errors.Is(err, ingest.ErrFileTooLarge):
		RequestEntityTooLarge(w, "File exceeds the maximum upload size")

	// Report domain errors
	case errors.Is(err, report.ErrInvalidMonth):
		BadRequest(w, "Month must be in YYYY-MM format", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
