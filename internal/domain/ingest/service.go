package ingest

import "context"

// IngestService runs workbook uploads against the persisted collection.
type IngestService interface {
	// ProcessBatch merges every file in upload order and commits only when the
	// whole batch succeeded
	ProcessBatch(ctx context.Context, req UploadBatchRequest) (UploadBatchResponse, error)
}
