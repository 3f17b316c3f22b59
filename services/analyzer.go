package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"investimmo-bot/models"
	"investimmo-bot/scraper"
	"investimmo-bot/storage"
	"investimmo-bot/utils"
)

// ErrInvalidQuery is returned by Scan for an empty city or a non-positive
// budget.
var ErrInvalidQuery = errors.New("analyzer: invalid query")

// Geocoder resolves a city name to a commune.
type Geocoder interface {
	Lookup(ctx context.Context, name string) (*models.Commune, error)
}

// ReferenceProvider returns the market reference of a commune. On failure
// it still returns a reference with a zero price.
type ReferenceProvider interface {
	Reference(ctx context.Context, commune *models.Commune) (*models.MarketReference, error)
}

// JourneyPlanner computes rail journey times.
type JourneyPlanner interface {
	Enabled() bool
	JourneyTime(ctx context.Context, from, to models.Coordinates) (*models.Journey, error)
}

// Publisher announces new opportunities.
type Publisher interface {
	Publish(listings []*models.Listing) error
}

// Analyzer runs a full scan of a city: geocoding, market reference, journey
// time, listing acquisition, cleaning, scoring and the opportunity board.
// Only geocoding failures abort a scan; everything else becomes a warning.
type Analyzer struct {
	Geo       Geocoder
	Reference ReferenceProvider
	Source    scraper.Source
	Cleaner   *Cleaner
	Scorer    *Scorer
	Board     *OpportunityBoard
	Logger    *utils.Logger

	// Optional.
	Transit     JourneyPlanner
	Destination models.Coordinates
	Limit       int
	RawWriter   storage.RawListingWriter
	Writers     []storage.ListingWriter
	Notifier    Publisher
}

// Scan analyses the listings of city within budget.
func (a *Analyzer) Scan(ctx context.Context, city string, budget int) (*models.ScanReport, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fmt.Errorf("%w: city is required", ErrInvalidQuery)
	}
	if budget <= 0 {
		return nil, fmt.Errorf("%w: budget must be positive, got %d", ErrInvalidQuery, budget)
	}

	start := time.Now()
	a.Logger.Info("[analyzer] Scanning %s (budget %d €, source %s)", city, budget, a.Source.Name())

	commune, err := a.Geo.Lookup(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("analyzer: geocode %q: %w", city, err)
	}

	report := &models.ScanReport{
		City:      commune.Name,
		Budget:    budget,
		Source:    a.Source.Name(),
		ScannedAt: start,
	}

	ref, err := a.Reference.Reference(ctx, commune)
	if err != nil {
		report.AddWarning("Prix de référence DVF indisponible: %v", err)
	}
	if ref == nil {
		ref = &models.MarketReference{Code: commune.Code, Commune: commune.Name, Population: commune.Population}
	}
	report.Reference = ref
	if err == nil && ref.PricePerM2 <= 0 {
		report.AddWarning("Aucune vente DVF exploitable pour %s", commune.Name)
	}

	report.Journey = a.journey(ctx, commune, report)

	raw, err := a.Source.Fetch(ctx, scraper.Query{City: commune.Name, Budget: budget, Limit: a.Limit})
	if err != nil {
		a.Logger.Error("[analyzer] %s fetch failed: %v", a.Source.Name(), err)
		report.AddWarning("Annonces indisponibles (%s): %v", a.Source.Name(), err)
		raw = nil
	}

	if a.RawWriter != nil && len(raw) > 0 {
		if err := a.RawWriter.WriteRaw(raw); err != nil {
			a.Logger.Warn("[analyzer] Raw export failed: %v", err)
		}
	}

	listings := a.Cleaner.Clean(raw, commune.Name)
	a.Scorer.Apply(listings, ref.PricePerM2)
	report.Listings = listings

	var opportunities []*models.Listing
	for _, l := range listings {
		if a.Board.Qualifies(l) {
			opportunities = append(opportunities, l)
		}
	}
	sortByYield(opportunities)
	report.Opportunities = opportunities

	added := a.Board.AddAll(listings)
	a.persist(ctx, listings, added)

	a.Logger.Info("[analyzer] %s: %d listings, %d opportunities (%d new, %d on the board) in %s",
		commune.Name, len(listings), len(opportunities), len(added), a.Board.Len(), time.Since(start).Round(time.Millisecond))
	return report, nil
}

func (a *Analyzer) journey(ctx context.Context, commune *models.Commune, report *models.ScanReport) *models.Journey {
	if a.Transit == nil || !a.Transit.Enabled() || a.Destination.IsZero() || commune.Centre.IsZero() {
		return nil
	}
	j, err := a.Transit.JourneyTime(ctx, commune.Centre, a.Destination)
	if err != nil {
		a.Logger.Warn("[analyzer] Journey time unavailable for %s: %v", commune.Name, err)
		report.AddWarning("Temps de trajet indisponible: %v", err)
		return nil
	}
	return j
}

// persist hands the scan result to the optional sinks. Failures are logged
// and never fail the scan.
func (a *Analyzer) persist(ctx context.Context, listings, added []*models.Listing) {
	if len(listings) > 0 {
		for _, w := range a.Writers {
			if err := w.Write(ctx, listings); err != nil {
				a.Logger.Warn("[analyzer] Snapshot write failed: %v", err)
			}
		}
	}
	if a.Notifier != nil && len(added) > 0 {
		if err := a.Notifier.Publish(added); err != nil {
			a.Logger.Warn("[analyzer] Opportunity notification failed: %v", err)
		}
	}
}
