package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-normalizer/internal/domain/ingest"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/sheet"
	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-normalizer/internal/service/file"
	"github.com/cmlabs-hris/attendance-normalizer/internal/service/scoring"
	"github.com/google/uuid"
)

type IngestServiceImpl struct {
	// shared with every other writer of the collection; one batch at a time
	mu *sync.Mutex

	employeeRepository employee.EmployeeRepository
	transactor         database.Transactor
	fileService        file.FileService
	events             *sse.Hub
	options            MergeOptions
}

func NewIngestService(
	employeeRepository employee.EmployeeRepository,
	transactor database.Transactor,
	fileService file.FileService,
	events *sse.Hub,
	writeLock *sync.Mutex,
	options MergeOptions,
) ingest.IngestService {
	if writeLock == nil {
		writeLock = &sync.Mutex{}
	}
	return &IngestServiceImpl{
		mu:                 writeLock,
		employeeRepository: employeeRepository,
		transactor:         transactor,
		fileService:        fileService,
		events:             events,
		options:            options.withDefaults(),
	}
}

// ProcessBatch implements ingest.IngestService.
func (s *IngestServiceImpl) ProcessBatch(ctx context.Context, req ingest.UploadBatchRequest) (ingest.UploadBatchResponse, error) {
	if err := req.Validate(); err != nil {
		return ingest.UploadBatchResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchID := uuid.New()
	log := slog.With("batch_id", batchID.String(), "category", string(req.Category), "files", len(req.Files))
	if p, err := jwt.PrincipalFromContext(ctx); err == nil {
		log = log.With("uploaded_by", p.Username)
	}

	employees, err := s.employeeRepository.List(ctx)
	if err != nil {
		return ingest.UploadBatchResponse{}, fmt.Errorf("failed to load employees: %w", err)
	}

	resp := ingest.UploadBatchResponse{
		BatchID:  batchID.String(),
		Category: req.Category,
	}
	touched := make(map[string]bool)
	var touchedOrder []string

	for i, f := range req.Files {
		if err := ctx.Err(); err != nil {
			return ingest.UploadBatchResponse{}, err
		}

		rows, err := sheet.DecodeBytes(f.Content)
		if err != nil {
			log.Warn("failed to decode upload", "file", f.Filename, "index", i, "error", err)
			return ingest.UploadBatchResponse{}, fmt.Errorf("%s: %w", f.Filename, errors.Join(ingest.ErrDecodeFailed, err))
		}

		opts := s.options
		opts.Source = f.Filename

		var result MergeResult
		switch req.Category {
		case ingest.CategoryAttendance:
			result = MergeAttendance(employees, rows, opts)
		case ingest.CategoryDetails:
			records, skipped := ParsePersonnelRows(rows)
			result = MergePersonnel(employees, records, opts)
			result.Skipped += skipped
		}

		for _, c := range result.Conflicts {
			log.Warn("identifier and name point at different employees",
				"file", c.File,
				"row_identity", c.RowIdentity,
				"row_name", c.RowName,
				"matched_id", c.MatchedID,
				"name_owner_id", c.NameOwnerID,
			)
		}
		for _, id := range result.Touched {
			if !touched[id] {
				touched[id] = true
				touchedOrder = append(touchedOrder, id)
			}
		}

		employees = result.Employees
		resp.FilesProcessed++
		resp.RowsSkipped += result.Skipped
		resp.Conflicts = append(resp.Conflicts, result.Conflicts...)

		log.Info("file merged", "file", f.Filename, "rows", len(rows), "skipped", result.Skipped, "touched", len(result.Touched))
	}

	employees = scoring.EnrichAll(employees)

	archived := make([]string, 0, len(req.Files))
	for i, f := range req.Files {
		path, err := s.fileService.ArchiveUpload(ctx, batchID, string(req.Category), i, f.Filename, f.Content)
		if err != nil {
			s.discardArchive(ctx, archived)
			return ingest.UploadBatchResponse{}, fmt.Errorf("failed to archive %s: %w", f.Filename, err)
		}
		archived = append(archived, path)
	}

	err = s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.employeeRepository.UpsertMany(txCtx, employees); err != nil {
			return err
		}
		return s.employeeRepository.RemoveTombstones(txCtx, touchedOrder)
	})
	if err != nil {
		s.discardArchive(ctx, archived)
		return ingest.UploadBatchResponse{}, fmt.Errorf("failed to commit batch: %w", err)
	}

	resp.EmployeesTouched = len(touchedOrder)
	resp.TotalEmployees = len(employees)

	log.Info("batch committed",
		"files_processed", resp.FilesProcessed,
		"rows_skipped", resp.RowsSkipped,
		"employees_touched", resp.EmployeesTouched,
		"total_employees", resp.TotalEmployees,
		"conflicts", len(resp.Conflicts),
	)

	s.publish(resp, employees, touchedOrder)
	return resp, nil
}

// publish streams the commit to staff and to every touched employee.
func (s *IngestServiceImpl) publish(resp ingest.UploadBatchResponse, employees []employee.Employee, touched []string) {
	if s.events == nil || len(touched) == 0 {
		return
	}

	pending := make(map[string]int, len(touched))
	for _, e := range employees {
		pending[e.ID] = len(e.PendingNotifications())
	}

	total := 0
	for _, id := range touched {
		total += pending[id]
		s.events.Publish(id, sse.Event{
			Event: ingest.EventBatchCommitted,
			Data: ingest.BatchCommittedEvent{
				BatchID:              resp.BatchID,
				Category:             resp.Category,
				EmployeeIDs:          []string{id},
				PendingNotifications: pending[id],
			},
		})
	}

	s.events.Publish(sse.StaffAudience, sse.Event{
		Event: ingest.EventBatchCommitted,
		Data: ingest.BatchCommittedEvent{
			BatchID:              resp.BatchID,
			Category:             resp.Category,
			EmployeeIDs:          touched,
			PendingNotifications: total,
		},
	})
}

func (s *IngestServiceImpl) discardArchive(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}
	if err := s.fileService.DeleteFiles(ctx, paths); err != nil {
		slog.Error("failed to discard archived uploads", "error", err)
	}
}
