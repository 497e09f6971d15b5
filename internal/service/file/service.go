package file

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cmlabs-hris/attendance-normalizer/internal/pkg/storage"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type FileService interface {
	// ArchiveUpload stores one accepted source workbook of a batch and returns its path.
	ArchiveUpload(ctx context.Context, batchID uuid.UUID, category string, index int, filename string, content []byte) (string, error)

	// DeleteFiles removes previously archived files, ignoring missing ones.
	DeleteFiles(ctx context.Context, paths []string) error
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

// ArchiveUpload stores content under uploads/<category>/<batch>/<index>-<name>.
func (s *fileServiceImpl) ArchiveUpload(ctx context.Context, batchID uuid.UUID, category string, index int, filename string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" {
		return "", fmt.Errorf("invalid file type: only xlsx allowed")
	}

	base := unsafeNameChars.ReplaceAllString(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)), "_")
	if base == "" || base == "." {
		base = "upload"
	}
	path := filepath.Join("uploads", category, batchID.String(), fmt.Sprintf("%02d-%s%s", index+1, base, ext))

	uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(content), path, xlsxContentType)
	if err != nil {
		return "", fmt.Errorf("failed to archive upload: %w", err)
	}

	return uploadedPath, nil
}

// DeleteFiles deletes every path and reports the first failure.
func (s *fileServiceImpl) DeleteFiles(ctx context.Context, paths []string) error {
	var firstErr error
	for _, p := range paths {
		if err := s.storage.Delete(ctx, p); err != nil {
			slog.Error("failed to delete archived file", "path", p, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
