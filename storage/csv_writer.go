package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"investimmo-bot/models"
)

var csvHeader = []string{
	"id", "source", "title", "raw_price", "raw_surface", "url", "image_url", "description", "scraped_at",
}

// CSVWriter writes raw (uncleaned) listings to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteRaw appends the raw listings of one scan to the file.
func (c *CSVWriter) WriteRaw(listings []*models.RawListing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		row := []string{
			l.ID,
			l.Source,
			l.Title,
			l.RawPrice,
			l.RawSurface,
			l.URL,
			l.ImageURL,
			l.Description,
			l.ScrapedAt.Format(time.RFC3339),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	return c.file.Close()
}
