package export

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Format identifies an export file type.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatICS   Format = "ics"
	FormatPDF   Format = "pdf"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatCSV, FormatExcel, FormatICS, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// Extension returns the file extension produced for the format.
func (f Format) Extension() string {
	switch f {
	case FormatExcel:
		return "xlsx"
	default:
		return string(f)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv;charset=utf-8"
	case FormatExcel:
		return "application/vnd.ms-excel;charset=utf-8"
	case FormatICS:
		return "text/calendar;charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// File is a rendered export ready for delivery.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Sink delivers a rendered export and returns where it went.
type Sink interface {
	Deliver(ctx context.Context, file File) (string, error)
}

// GenerateFilename returns {base}_{YYYY-MM-DD}.{ext} using the date of now.
func GenerateFilename(base, ext string, now time.Time) string {
	if base == "" {
		base = "academic_calendar"
	}
	return fmt.Sprintf("%s_%s.%s", base, now.Format("2006-01-02"), strings.TrimPrefix(ext, "."))
}

type fileStore interface {
	Save(filename string, data []byte) (string, error)
	Path(filename string) string
}

// FileSink writes exports into a storage directory.
type FileSink struct {
	store fileStore
}

// NewFileSink constructs a FileSink over the given storage.
func NewFileSink(store fileStore) *FileSink {
	return &FileSink{store: store}
}

// Deliver persists the file and returns its path.
func (s *FileSink) Deliver(ctx context.Context, file File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel, err := s.store.Save(file.Name, file.Data)
	if err != nil {
		return "", err
	}
	return s.store.Path(rel), nil
}
