package ingest

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/validator"
)

type Category string

const (
	CategoryAttendance Category = "attendance"
	CategoryDetails    Category = "details"
)

const (
	MaxFilesPerBatch = 20
	MaxFileSize      = 10 << 20
)

// UploadFile is one workbook of a batch, already read into memory.
type UploadFile struct {
	Filename string
	Content  []byte
}

type UploadBatchRequest struct {
	Category Category
	Files    []UploadFile
}

func (r *UploadBatchRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Category != CategoryAttendance && r.Category != CategoryDetails {
		errs = append(errs, validator.ValidationError{
			Field:   "category",
			Message: ErrInvalidCategory.Error(),
		})
	}

	if len(r.Files) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "files",
			Message: ErrEmptyBatch.Error(),
		})
	}
	if len(r.Files) > MaxFilesPerBatch {
		errs = append(errs, validator.ValidationError{
			Field:   "files",
			Message: fmt.Sprintf("at most %d files per batch", MaxFilesPerBatch),
		})
	}

	for i, f := range r.Files {
		field := fmt.Sprintf("files[%d]", i)
		if !validator.HasExtension(f.Filename, ".xlsx") {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s: %s", f.Filename, ErrUnsupportedFileType.Error()),
			})
		}
		if len(f.Content) == 0 {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s is empty", f.Filename),
			})
		}
		if len(f.Content) > MaxFileSize {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s: %s", f.Filename, ErrFileTooLarge.Error()),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Conflict records a row whose identifier and name point at different
// employees. The identifier always wins.
type Conflict struct {
	File        string `json:"file"`
	RowIdentity string `json:"row_identity"`
	RowName     string `json:"row_name"`
	MatchedID   string `json:"matched_id"`
	NameOwnerID string `json:"name_owner_id"`
	NameOwner   string `json:"name_owner"`
}

type UploadBatchResponse struct {
	BatchID          string     `json:"batch_id"`
	Category         Category   `json:"category"`
	FilesProcessed   int        `json:"files_processed"`
	RowsSkipped      int        `json:"rows_skipped"`
	EmployeesTouched int        `json:"employees_touched"`
	TotalEmployees   int        `json:"total_employees"`
	Conflicts        []Conflict `json:"conflicts,omitempty"`
}

// EventBatchCommitted is streamed to subscribers after a batch is committed.
const EventBatchCommitted = "attendance.updated"

// BatchCommittedEvent tells a subscriber which records changed and how many
// anomalies of those records are still unacknowledged.
type BatchCommittedEvent struct {
	BatchID              string   `json:"batch_id"`
	Category             Category `json:"category"`
	EmployeeIDs          []string `json:"employee_ids"`
	PendingNotifications int      `json:"pending_notifications"`
}
