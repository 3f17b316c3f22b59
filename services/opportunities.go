package services

import (
	"sort"
	"sync"

	"investimmo-bot/models"
)

// DefaultOpportunityThreshold is the minimum gross yield (percent) for a
// listing to be kept on the board.
const DefaultOpportunityThreshold = 7.0

// OpportunityBoard keeps the best listings found across scans for the life
// of the process. It is safe for concurrent use.
type OpportunityBoard struct {
	threshold float64

	mu    sync.RWMutex
	items map[string]*models.Listing
}

// NewOpportunityBoard creates an empty board with the given yield threshold.
func NewOpportunityBoard(threshold float64) *OpportunityBoard {
	return &OpportunityBoard{
		threshold: threshold,
		items:     make(map[string]*models.Listing),
	}
}

// Threshold returns the minimum yield required to enter the board.
func (b *OpportunityBoard) Threshold() float64 {
	return b.threshold
}

// Qualifies reports whether l is good enough for the board.
func (b *OpportunityBoard) Qualifies(l *models.Listing) bool {
	return l != nil && l.Yield >= b.threshold
}

// Add stores l if it qualifies and its ID is not on the board yet.
// It returns true when the listing was added.
func (b *OpportunityBoard) Add(l *models.Listing) bool {
	if !b.Qualifies(l) {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.items[l.ID]; exists {
		return false
	}
	b.items[l.ID] = l
	return true
}

// AddAll adds every qualifying listing and returns the ones newly added.
func (b *OpportunityBoard) AddAll(listings []*models.Listing) []*models.Listing {
	var added []*models.Listing
	for _, l := range listings {
		if b.Add(l) {
			added = append(added, l)
		}
	}
	return added
}

// All returns the board sorted by yield, best first.
func (b *OpportunityBoard) All() []*models.Listing {
	b.mu.RLock()
	out := make([]*models.Listing, 0, len(b.items))
	for _, l := range b.items {
		out = append(out, l)
	}
	b.mu.RUnlock()

	sortByYield(out)
	return out
}

// Len returns the number of listings on the board.
func (b *OpportunityBoard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// Clear empties the board.
func (b *OpportunityBoard) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = make(map[string]*models.Listing)
}

// sortByYield orders by yield descending, then discount descending, then ID
// so the output is stable.
func sortByYield(listings []*models.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i], listings[j]
		if a.Yield != b.Yield {
			return a.Yield > b.Yield
		}
		if a.Discount != b.Discount {
			return a.Discount > b.Discount
		}
		return a.ID < b.ID
	})
}
