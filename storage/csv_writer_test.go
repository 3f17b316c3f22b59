package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"investimmo-bot/models"
)

func TestCSVWriterAppendsScans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "raw.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	first := []*models.RawListing{
		{ID: "1", Source: "demo", Title: "T2, lumineux", RawPrice: "150 000 €", RawSurface: "40 m²", URL: "https://example.com/1", ScrapedAt: at},
	}
	second := []*models.RawListing{
		{ID: "2", Source: "demo", Title: "T3", RawPrice: "210000", RawSurface: "61", URL: "https://example.com/2", ScrapedAt: at},
	}
	if err := w.WriteRaw(first); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}
	if err := w.WriteRaw(second); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(rows))
	}
	if rows[0][0] != "id" || len(rows[0]) != len(csvHeader) {
		t.Errorf("header: got %v", rows[0])
	}
	if rows[1][2] != "T2, lumineux" || rows[1][3] != "150 000 €" {
		t.Errorf("row 1: got %v", rows[1])
	}
	if rows[2][8] != "2024-03-01T10:00:00Z" {
		t.Errorf("scraped_at: got %q", rows[2][8])
	}
}
