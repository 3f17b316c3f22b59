// Package scraper defines how listings are acquired. Implementations live
// in the sub-packages: demo (simulated), browser (headless Chrome) and
// static (plain HTTP).
package scraper

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"investimmo-bot/models"
)

// Query describes what to look for.
type Query struct {
	City   string
	Budget int
	Limit  int
}

// Source fetches raw listings for a query.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]*models.RawListing, error)
}

// Slug turns a city name into the lowercase, accent-free, hyphenated form
// used in listing site URLs: "Saint-Étienne" → "saint-etienne".
func Slug(city string) string {
	decomposed := norm.NFD.String(strings.ToLower(strings.TrimSpace(city)))

	var b strings.Builder
	dash := false
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// SearchURL fills a search URL template with the query and page number.
// Templates may reference the page with a third verb or omit it.
func SearchURL(template string, q Query, page int) string {
	switch strings.Count(template, "%") - 2*strings.Count(template, "%%") {
	case 0:
		return template
	case 1:
		return fmt.Sprintf(template, Slug(q.City))
	case 2:
		return fmt.Sprintf(template, Slug(q.City), q.Budget)
	default:
		return fmt.Sprintf(template, Slug(q.City), q.Budget, page)
	}
}

// MergePages concatenates per-page results in page order, keeping the first
// listing seen for each URL.
func MergePages(pages [][]*models.RawListing) []*models.RawListing {
	var listings []*models.RawListing
	seen := make(map[string]bool)
	for _, found := range pages {
		for _, l := range found {
			if seen[l.URL] {
				continue
			}
			seen[l.URL] = true
			listings = append(listings, l)
		}
	}
	return listings
}
