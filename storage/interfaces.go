package storage

import (
	"context"

	"investimmo-bot/models"
)

// ListingWriter is the interface any snapshot backend for scored listings
// must satisfy.
type ListingWriter interface {
	Write(ctx context.Context, listings []*models.Listing) error
	Close() error
}

// RawListingWriter is the interface for persisting unprocessed scraped data.
type RawListingWriter interface {
	WriteRaw(listings []*models.RawListing) error
	Close() error
}
