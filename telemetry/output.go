package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// CSVWriter appends GenerationStats records to a CSV stream, writing the
// header with the first record.
type CSVWriter struct {
	w             io.Writer
	closer        io.Closer
	headerWritten bool
}

// NewCSVWriter wraps w. The caller keeps ownership of w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: w}
}

// CreateCSV creates (or truncates) dir/name and returns a writer for it.
func CreateCSV(dir, name string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &CSVWriter{w: f, closer: f}, nil
}

// Write appends one record.
func (cw *CSVWriter) Write(stats GenerationStats) error {
	if cw == nil {
		return nil
	}

	records := []GenerationStats{stats}
	if !cw.headerWritten {
		if err := gocsv.Marshal(records, cw.w); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		cw.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, cw.w); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// Close closes the underlying file if the writer owns one.
func (cw *CSVWriter) Close() error {
	if cw == nil || cw.closer == nil {
		return nil
	}
	return cw.closer.Close()
}

// ReadCSV parses records previously written by a CSVWriter.
func ReadCSV(r io.Reader) ([]GenerationStats, error) {
	var records []GenerationStats
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("reading telemetry: %w", err)
	}
	return records, nil
}
