package dvf

import (
	"context"
	"time"

	"investimmo-bot/cache"
	"investimmo-bot/models"
	"investimmo-bot/utils"
)

// SalesFetcher is the part of Client the Service needs.
type SalesFetcher interface {
	Sales(ctx context.Context, inseeCode string) ([]models.Sale, error)
}

// Service computes market references and caches them.
type Service struct {
	sales  SalesFetcher
	cache  cache.Cache
	method string
	ttl    time.Duration
	logger *utils.Logger
	now    func() time.Time
}

// NewService wires a Service. method is models.MethodMean or
// models.MethodMedian.
func NewService(sales SalesFetcher, c cache.Cache, method string, ttl time.Duration, logger *utils.Logger) *Service {
	if method != models.MethodMedian {
		method = models.MethodMean
	}
	return &Service{
		sales:  sales,
		cache:  c,
		method: method,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Reference returns the market reference for a commune. Failures to reach
// DVF are not fatal: the reference comes back with a zero price and the
// error, so callers can warn and keep going. Zero references are not cached.
func (s *Service) Reference(ctx context.Context, commune *models.Commune) (*models.MarketReference, error) {
	key := cache.ReferenceKey(commune.Code, s.method)

	if ref, ok, err := s.cache.GetReference(ctx, key); err != nil {
		s.logger.Warn("[dvf] Cache read failed for %s: %v", key, err)
	} else if ok {
		s.logger.Debug("[dvf] Cache hit for %s", key)
		return ref, nil
	}

	ref := &models.MarketReference{
		Code:       commune.Code,
		Commune:    commune.Name,
		Population: commune.Population,
		Method:     s.method,
		ComputedAt: s.now(),
	}

	sales, err := s.sales.Sales(ctx, commune.Code)
	if err != nil {
		s.logger.Warn("[dvf] Reference unavailable for %s: %v", commune.Name, err)
		return ref, err
	}

	ref.PricePerM2, ref.SampleSize = ReferencePrice(sales, s.method)
	s.logger.Info("[dvf] %s: %.0f €/m² (%s of %d/%d sales)",
		commune.Name, ref.PricePerM2, s.method, ref.SampleSize, len(sales))

	if ref.PricePerM2 > 0 {
		if err := s.cache.SetReference(ctx, key, ref, s.ttl); err != nil {
			s.logger.Warn("[dvf] Cache write failed for %s: %v", key, err)
		}
	}
	return ref, nil
}
