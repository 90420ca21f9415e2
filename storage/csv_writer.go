package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"house-finder/models"
)

// CSVWriter exports the listings of one search to a CSV file.
type CSVWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

// ExportPath is where the export of the search key is written inside dir.
func ExportPath(dir, key string) string {
	return filepath.Join(dir, key+".csv")
}

// NewCSVWriter creates (or truncates) the export file of key in dir and
// writes the two leading rows: the search key alone, then the header.
// Intermediate directories are created automatically.
func NewCSVWriter(dir, key string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	path := ExportPath(dir, key)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{key}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write search key: %w", err)
	}
	if err := w.Write(models.ExportHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}

	return &CSVWriter{path: path, file: f, writer: w}, nil
}

// Path returns the file being written.
func (c *CSVWriter) Path() string { return c.path }

// Write appends one row per listing, in the given order.
func (c *CSVWriter) Write(listings []models.Listing) error {
	for _, l := range listings {
		if err := c.writer.Write(l.Row()); err != nil {
			return fmt.Errorf("csv: write row %s: %w", l.ID, err)
		}
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		_ = c.file.Close()
		return fmt.Errorf("csv: flush: %w", err)
	}
	return c.file.Close()
}

// ExportSnapshot writes the export of snap for key into dir and returns the
// file path.
func ExportSnapshot(dir, key string, snap *models.Snapshot) (string, error) {
	w, err := NewCSVWriter(dir, key)
	if err != nil {
		return "", err
	}
	if err := w.Write(snap.Listings()); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return w.Path(), nil
}
