package services

import (
	"testing"
	"time"

	"investimmo-bot/models"
	"investimmo-bot/utils"
)

func newTestLogger() *utils.Logger { return utils.Discard() }

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"245 000 €", 245000},
		{"245\u00a0000\u00a0€", 245000},
		{"245\u202f000 €", 245000},
		{"245.000€", 245000},
		{"1 250 000,50 €", 1250000.5},
		{"350000", 350000},
		{"Prix : 189 900 €", 189900},
		{"", 0},
		{"Prix sur demande", 0},
	}

	for _, tt := range tests {
		if got := parsePrice(tt.raw); got != tt.want {
			t.Errorf("parsePrice(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestParseSurface(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"45 m²", 45},
		{"45,5 m2", 45.5},
		{"67.3m²", 67.3},
		{"T3 de 65 m²", 65},
		{"80", 80},
		{"", 0},
		{"n/a", 0},
	}

	for _, tt := range tests {
		if got := parseSurface(tt.raw); got != tt.want {
			t.Errorf("parseSurface(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestCleanerDropsEmptyURL(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawListing{
		{Title: "No URL", RawPrice: "100 000 €", RawSurface: "30 m²", URL: "", Source: "demo", ScrapedAt: time.Now()},
		{Title: "Has URL", RawPrice: "200 000 €", RawSurface: "50 m²", URL: "https://example.fr/ad/1", Source: "demo", ScrapedAt: time.Now()},
	}

	cleaned := c.Clean(raw, "Bordeaux")
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 listing after dropping empty URL, got %d", len(cleaned))
	}
	if cleaned[0].City != "Bordeaux" {
		t.Errorf("City: got %q, want %q", cleaned[0].City, "Bordeaux")
	}
}

func TestCleanerDeduplicatesURL(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawListing{
		{Title: "A", RawPrice: "1", RawSurface: "1", URL: "https://example.fr/ad/1"},
		{Title: "B", RawPrice: "1", RawSurface: "1", URL: "https://example.fr/ad/1"},
	}

	if cleaned := c.Clean(raw, ""); len(cleaned) != 1 {
		t.Errorf("expected 1 listing after deduplication, got %d", len(cleaned))
	}
}

func TestCleanerDropsNonPositiveSurfaceOrPrice(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawListing{
		{RawPrice: "200 000 €", RawSurface: "", URL: "https://example.fr/ad/1"},
		{RawPrice: "", RawSurface: "40 m²", URL: "https://example.fr/ad/2"},
		{RawPrice: "200 000 €", RawSurface: "0 m²", URL: "https://example.fr/ad/3"},
	}

	if cleaned := c.Clean(raw, ""); len(cleaned) != 0 {
		t.Errorf("expected every listing to be dropped, got %d", len(cleaned))
	}
}

func TestCleanerNormalisesFields(t *testing.T) {
	c := NewCleaner(newTestLogger())
	raw := []*models.RawListing{{
		ID:          "",
		Title:       "  Appartement   T2 \n centre ",
		RawPrice:    "180 000 €",
		RawSurface:  "42 m²",
		URL:         " https://example.fr/ad/9 ",
		Source:      " Browser ",
		Description: "Bel  espace",
	}}

	cleaned := c.Clean(raw, "Lyon")
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(cleaned))
	}
	l := cleaned[0]
	if l.Title != "Appartement T2 centre" {
		t.Errorf("Title: got %q", l.Title)
	}
	if l.ID != "https://example.fr/ad/9" {
		t.Errorf("ID should fall back to URL, got %q", l.ID)
	}
	if l.Source != "browser" {
		t.Errorf("Source: got %q, want browser", l.Source)
	}
	if l.Price != 180000 || l.Surface != 42 {
		t.Errorf("Price/Surface: got %v/%v", l.Price, l.Surface)
	}
	if l.Description != "Bel espace" {
		t.Errorf("Description: got %q", l.Description)
	}
}
