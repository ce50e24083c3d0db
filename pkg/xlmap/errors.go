package xlmap

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrNoMapping indicates a run was started without a usable mapping.
var ErrNoMapping = errors.New("no mapping")

// ErrEmptyFileList indicates a run was started without any input file.
var ErrEmptyFileList = errors.New("empty file list")

// FileError represents a workbook that could not be opened or read.
type FileError struct {
	FileID string
	Op     string // "open", "read", "timeout", "panic", "cancelled"
	Err    error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.FileID, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// NewFileError creates a new FileError.
func NewFileError(fileID, op string, err error) *FileError {
	return &FileError{
		FileID: fileID,
		Op:     op,
		Err:    err,
	}
}
