package batch

import (
	"bytes"
	"context"

	"github.com/ukaji3/xlmap-go/pkg/xlmap/models"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/parser"
)

// Source is one input workbook of a run.
type Source interface {
	// ID identifies the file in results.
	ID() string
	// Open opens the workbook. The caller closes it.
	Open(ctx context.Context) (models.Workbook, error)
}

type fileSource struct {
	id   string
	path string
}

// FileSource opens a workbook from the local filesystem. The path is the id.
func FileSource(path string) Source {
	return fileSource{id: path, path: path}
}

// NamedFileSource opens path but reports results under id.
func NamedFileSource(id, path string) Source {
	return fileSource{id: id, path: path}
}

func (s fileSource) ID() string { return s.id }

func (s fileSource) Open(ctx context.Context) (models.Workbook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return parser.OpenFile(s.path)
}

type readerSource struct {
	id   string
	data []byte
}

// ReaderSource opens a workbook held in memory, such as a downloaded file.
func ReaderSource(id string, data []byte) Source {
	return readerSource{id: id, data: data}
}

func (s readerSource) ID() string { return s.id }

func (s readerSource) Open(ctx context.Context) (models.Workbook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return parser.OpenReader(bytes.NewReader(s.data))
}

// FileSources wraps paths as sources.
func FileSources(paths ...string) []Source {
	out := make([]Source, len(paths))
	for i, p := range paths {
		out[i] = FileSource(p)
	}
	return out
}
