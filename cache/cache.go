// Package cache keeps market references between scans.
package cache

import (
	"context"
	"time"

	"investimmo-bot/models"
)

// Cache stores market references with a time to live.
type Cache interface {
	// GetReference returns the cached reference for key. A miss is
	// (nil, false, nil).
	GetReference(ctx context.Context, key string) (*models.MarketReference, bool, error)

	// SetReference stores ref under key for ttl.
	SetReference(ctx context.Context, key string, ref *models.MarketReference, ttl time.Duration) error

	Close() error
}

// ReferenceKey builds the cache key for a commune and computation method.
func ReferenceKey(inseeCode, method string) string {
	return "reference:" + method + ":" + inseeCode
}
