package services

import (
	"strconv"

	"investimmo-bot/models"
)

// DefaultRentFactor is the monthly rent assumed per euro of market value
// per m² (0.6 % of the reference value per month).
const DefaultRentFactor = 0.006

// Score computes the discount of a listing against the reference price per
// m² and its estimated gross yield. Discount is rounded to one decimal,
// yield to two. Non-positive price, surface or reference yields (0, 0).
func Score(price, surface, refPricePerM2, rentFactor float64) (discountPct, yieldPct float64) {
	if price <= 0 || surface <= 0 || refPricePerM2 <= 0 {
		return 0, 0
	}

	pricePerM2 := price / surface
	discount := (refPricePerM2 - pricePerM2) / refPricePerM2 * 100

	monthlyRent := refPricePerM2 * surface * rentFactor
	yield := monthlyRent * 12 / price * 100

	return roundTo(discount, 1), roundTo(yield, 2)
}

// roundTo rounds to the nearest decimal as printed with the given number of
// digits. Exact ties go to the even digit, so 36.25 becomes 36.2 and 5.625
// becomes 5.62.
func roundTo(f float64, decimals int) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(f, 'f', decimals, 64), 64)
	return v
}

// Scorer applies Score with a fixed rent factor.
type Scorer struct {
	rentFactor float64
}

// NewScorer returns a Scorer. A non-positive rent factor falls back to
// DefaultRentFactor.
func NewScorer(rentFactor float64) *Scorer {
	if rentFactor <= 0 {
		rentFactor = DefaultRentFactor
	}
	return &Scorer{rentFactor: rentFactor}
}

// RentFactor returns the factor in use.
func (s *Scorer) RentFactor() float64 {
	return s.rentFactor
}

// Apply fills the derived fields of every listing in place.
func (s *Scorer) Apply(listings []*models.Listing, refPricePerM2 float64) {
	for _, l := range listings {
		if l.Surface > 0 {
			l.PricePerM2 = roundTo(l.Price/l.Surface, 0)
		}
		l.Discount, l.Yield = Score(l.Price, l.Surface, refPricePerM2, s.rentFactor)
	}
}
