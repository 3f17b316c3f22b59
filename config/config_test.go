package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RENT_FACTOR", "")
	t.Setenv("OPPORTUNITY_THRESHOLD", "")
	t.Setenv("LISTING_SOURCE", "")

	cfg := Load()
	if cfg.RentFactor != 0.006 {
		t.Errorf("RentFactor: got %v, want 0.006", cfg.RentFactor)
	}
	if cfg.OpportunityThreshold != 7.0 {
		t.Errorf("OpportunityThreshold: got %v, want 7", cfg.OpportunityThreshold)
	}
	if cfg.ListingSource != "demo" {
		t.Errorf("ListingSource: got %q, want demo", cfg.ListingSource)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RENT_FACTOR", "0,0055")
	t.Setenv("BUDGET", "200000")
	t.Setenv("REFERENCE_TTL", "30m")
	t.Setenv("POSTGRES_ENABLED", "true")
	t.Setenv("LISTING_SOURCE", "Browser")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg := Load()
	if cfg.RentFactor != 0.0055 {
		t.Errorf("RentFactor: got %v, want 0.0055", cfg.RentFactor)
	}
	if cfg.Budget != 200000 {
		t.Errorf("Budget: got %d", cfg.Budget)
	}
	if cfg.ReferenceTTL != 30*time.Minute {
		t.Errorf("ReferenceTTL: got %v", cfg.ReferenceTTL)
	}
	if !cfg.PostgresEnabled {
		t.Error("PostgresEnabled should be true")
	}
	if cfg.ListingSource != "browser" {
		t.Errorf("ListingSource: got %q", cfg.ListingSource)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries should fall back to 3, got %d", cfg.MaxRetries)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "d", PostgresSSLMode: "disable",
	}
	want := "host=db port=5432 user=u password=p dbname=d sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q; want %q", got, want)
	}
}
