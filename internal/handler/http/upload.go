package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/ingest"
	"github.com/cmlabs-hris/attendance-normalizer/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// maxBatchBytes bounds the whole multipart body of one batch.
const maxBatchBytes = ingest.MaxFilesPerBatch*ingest.MaxFileSize + 1<<20

type UploadHandler interface {
	Upload(w http.ResponseWriter, r *http.Request)
}

type uploadHandlerImpl struct {
	ingestService ingest.IngestService
}

func NewUploadHandler(ingestService ingest.IngestService) UploadHandler {
	return &uploadHandlerImpl{
		ingestService: ingestService,
	}
}

// Upload handles POST /uploads/{category} with one or more "files" parts.
func (h *uploadHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBatchBytes)

	// Parse multipart form (max 32MB in memory, the rest spills to disk)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.HandleError(w, ingest.ErrFileTooLarge)
			return
		}
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := ingest.UploadBatchRequest{
		Category: ingest.Category(chi.URLParam(r, "category")),
	}

	for _, fileHeader := range r.MultipartForm.File["files"] {
		if fileHeader.Size > ingest.MaxFileSize {
			response.HandleError(w, fmt.Errorf("%s: %w", fileHeader.Filename, ingest.ErrFileTooLarge))
			return
		}

		content, err := readPart(fileHeader)
		if err != nil {
			slog.Error("Failed to read uploaded file", "filename", fileHeader.Filename, "error", err)
			response.BadRequest(w, "Invalid file upload", nil)
			return
		}
		req.Files = append(req.Files, ingest.UploadFile{
			Filename: fileHeader.Filename,
			Content:  content,
		})
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.ingestService.ProcessBatch(r.Context(), req)
	if err != nil {
		slog.Error("Batch upload failed", "category", req.Category, "files", len(req.Files), "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Batch upload committed",
		"batch_id", result.BatchID,
		"category", result.Category,
		"files", result.FilesProcessed,
		"employees_touched", result.EmployeesTouched,
	)
	response.Created(w, "Upload processed successfully", result)
}

func readPart(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
