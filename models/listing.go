package models

import (
	"fmt"
	"time"
)

// RawListing holds unprocessed listing data exactly as a source returned it.
// This is written to CSV before any cleaning or scoring.
type RawListing struct {
	ID          string
	Title       string
	RawPrice    string
	RawSurface  string
	URL         string
	ImageURL    string
	Description string
	Source      string
	ScrapedAt   time.Time
}

// Listing is a cleaned listing with its derived scores.
type Listing struct {
	ID          string    `json:"id" bson:"listing_id"`
	Source      string    `json:"source" bson:"source"`
	City        string    `json:"city" bson:"city"`
	Title       string    `json:"title" bson:"title"`
	Price       float64   `json:"price" bson:"price"`
	Surface     float64   `json:"surface" bson:"surface"`
	URL         string    `json:"url" bson:"url"`
	ImageURL    string    `json:"image_url" bson:"image_url"`
	Description string    `json:"description" bson:"description"`
	PricePerM2  float64   `json:"price_per_m2" bson:"price_per_m2"`
	Discount    float64   `json:"discount_pct" bson:"discount_pct"`
	Yield       float64   `json:"yield_pct" bson:"yield_pct"`
	ScrapedAt   time.Time `json:"scraped_at" bson:"scraped_at"`
}

// ScanReport is the outcome of one scan of a city.
type ScanReport struct {
	City          string           `json:"city"`
	Budget        int              `json:"budget"`
	Source        string           `json:"source"`
	Reference     *MarketReference `json:"reference"`
	Journey       *Journey         `json:"journey,omitempty"`
	Listings      []*Listing       `json:"listings"`
	Opportunities []*Listing       `json:"opportunities"`
	Warnings      []string         `json:"warnings,omitempty"`
	ScannedAt     time.Time        `json:"scanned_at"`
}

// AddWarning records a user-visible degradation of the scan.
func (r *ScanReport) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// InsightReport holds summary statistics over a set of scored listings.
type InsightReport struct {
	TotalListings     int
	AveragePrice      float64
	MinPrice          float64
	MaxPrice          float64
	AveragePricePerM2 float64
	AverageDiscount   float64
	AverageYield      float64
	BestYield         *Listing
	BestDiscount      *Listing
	Opportunities     int
	TopByYield        []*Listing
}
