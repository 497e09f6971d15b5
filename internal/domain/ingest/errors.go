package ingest

import "errors"

var (
	ErrInvalidCategory     = errors.New("category must be attendance or details")
	ErrEmptyBatch          = errors.New("at least one file is required")
	ErrTooManyFiles        = errors.New("too many files in one batch")
	ErrUnsupportedFileType = errors.New("only .xlsx workbooks are supported")
	ErrFileTooLarge        = errors.New("file exceeds the maximum upload size")
	ErrDecodeFailed        = errors.New("processing failed, verify column headers")
)
