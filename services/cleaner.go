package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"investimmo-bot/models"
	"investimmo-bot/utils"
)

var (
	// priceRegexp captures a French-formatted amount: "245 000", "245.000", "1 250 000,00"
	priceRegexp = regexp.MustCompile(`\d[\d \t\x{00a0}\x{202f}.]*(?:,\d+)?`)
	// surfaceUnitRegexp captures a number immediately followed by a m²/m2 unit
	surfaceUnitRegexp = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*m(?:²|2)?\b`)
	// numberRegexp captures the first plain number
	numberRegexp = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

// Cleaner transforms RawListings into Listings ready to be scored.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean parses and validates raw listings. Listings without URL, duplicated
// URLs, and listings whose price or surface is not positive are dropped.
func (c *Cleaner) Clean(raw []*models.RawListing, city string) []*models.Listing {
	seen := utils.NewKeySet()
	result := make([]*models.Listing, 0, len(raw))

	for _, r := range raw {
		url := strings.TrimSpace(r.URL)
		if url == "" {
			c.logger.Warn("[cleaner] Dropping listing with empty URL: %s", r.Title)
			continue
		}
		if !seen.Add(url) {
			c.logger.Debug("[cleaner] Duplicate URL skipped: %s", url)
			continue
		}

		price := parsePrice(r.RawPrice)
		surface := parseSurface(r.RawSurface)
		if price <= 0 || surface <= 0 {
			c.logger.Warn("[cleaner] Dropping %s: price %q / surface %q not usable", url, r.RawPrice, r.RawSurface)
			continue
		}

		id := strings.TrimSpace(r.ID)
		if id == "" {
			id = url
		}

		result = append(result, &models.Listing{
			ID:          id,
			Source:      strings.ToLower(strings.TrimSpace(r.Source)),
			City:        city,
			Title:       normaliseText(r.Title),
			Price:       price,
			Surface:     surface,
			URL:         url,
			ImageURL:    strings.TrimSpace(r.ImageURL),
			Description: normaliseText(r.Description),
			ScrapedAt:   r.ScrapedAt,
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

// parsePrice extracts a euro amount.
// Examples:
//
//	"245 000 €"   → 245000
//	"245.000€"    → 245000
//	"1 250 000,50" → 1250000.5
func parsePrice(raw string) float64 {
	match := priceRegexp.FindString(raw)
	if match == "" {
		return 0
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '.' {
			return -1
		}
		if r == ',' {
			return '.'
		}
		return r
	}, match)

	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return val
}

// parseSurface extracts a floor area in m², preferring a number tagged with
// a unit ("T3 de 65 m²" → 65) and falling back to the first number.
func parseSurface(raw string) float64 {
	raw = strings.ToLower(raw)

	var match string
	if m := surfaceUnitRegexp.FindStringSubmatch(raw); m != nil {
		match = m[1]
	} else {
		match = numberRegexp.FindString(raw)
	}
	if match == "" {
		return 0
	}

	val, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil {
		return 0
	}
	return val
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
