package models

import "time"

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsZero reports whether no position is set.
func (c Coordinates) IsZero() bool {
	return c.Lat == 0 && c.Lon == 0
}

// Commune is a geocoded French municipality.
type Commune struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Population  int         `json:"population"`
	Centre      Coordinates `json:"centre"`
	PostalCodes []string    `json:"postal_codes,omitempty"`
}

// Sale is one notarial transaction from the DVF dataset. Missing or
// non-numeric fields are reported through the Valid flags.
type Sale struct {
	Value        float64
	Surface      float64
	ValueValid   bool
	SurfaceValid bool
}

// Reference price computation methods.
const (
	MethodMean   = "mean"
	MethodMedian = "median"
)

// MarketReference is the reference price per m² for a commune.
type MarketReference struct {
	Code       string    `json:"code"`
	Commune    string    `json:"commune"`
	Population int       `json:"population"`
	PricePerM2 float64   `json:"price_per_m2"`
	SampleSize int       `json:"sample_size"`
	Method     string    `json:"method"`
	ComputedAt time.Time `json:"computed_at"`
}

// Journey is a rail journey between two points.
type Journey struct {
	From      Coordinates   `json:"from"`
	To        Coordinates   `json:"to"`
	Duration  time.Duration `json:"duration"`
	Transfers int           `json:"transfers"`
	Departure time.Time     `json:"departure"`
	Arrival   time.Time     `json:"arrival"`
}
