// Package demo generates simulated listings. It stands in for a real
// marketplace when none is configured or reachable.
package demo

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"investimmo-bot/models"
	"investimmo-bot/scraper"
)

const (
	name         = "demo"
	defaultLimit = 10
	minSurface   = 20
	maxSurface   = 110
	listingURL   = "https://www.leboncoin.fr/immobilier/offres"
	description  = "Bel espace lumineux, proche commerces, cuisine équipée."
)

// Source produces random listings within the query budget.
type Source struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// New returns a Source seeded from the clock.
func New() *Source {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Source.
func NewSeeded(seed int64) *Source {
	return &Source{rnd: rand.New(rand.NewSource(seed)), now: time.Now}
}

func (s *Source) Name() string { return name }

// Fetch returns q.Limit listings (10 by default). Surfaces are drawn from
// [20, 110] m² and prices from [budget/2, budget].
func (s *Source) Fetch(ctx context.Context, q scraper.Query) ([]*models.RawListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	budget := q.Budget
	if budget < 2 {
		return nil, fmt.Errorf("demo: budget %d too small", q.Budget)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	listings := make([]*models.RawListing, 0, limit)
	for i := 0; i < limit; i++ {
		surface := minSurface + s.rnd.Intn(maxSurface-minSurface+1)
		low := budget / 2
		price := low + s.rnd.Intn(budget-low+1)
		id := strconv.Itoa(100000 + s.rnd.Intn(900000))

		listings = append(listings, &models.RawListing{
			ID:          id,
			Title:       fmt.Sprintf("Appartement T%d central - %s", 1+s.rnd.Intn(4), q.City),
			RawPrice:    strconv.Itoa(price),
			RawSurface:  strconv.Itoa(surface),
			URL:         listingURL + "?ad=" + id,
			ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%d/400/300", 1+s.rnd.Intn(1000)),
			Description: description,
			Source:      name,
			ScrapedAt:   s.now(),
		})
	}
	return listings, nil
}
