package dvf

import (
	"context"
	"errors"
	"testing"
	"time"

	"investimmo-bot/cache"
	"investimmo-bot/models"
	"investimmo-bot/utils"
)

type fakeSales struct {
	calls int
	sales []models.Sale
	err   error
}

func (f *fakeSales) Sales(_ context.Context, _ string) ([]models.Sale, error) {
	f.calls++
	return f.sales, f.err
}

var bordeaux = &models.Commune{Code: "33063", Name: "Bordeaux", Population: 261804}

func TestServiceCachesReference(t *testing.T) {
	fetcher := &fakeSales{sales: []models.Sale{
		{Value: 240000, Surface: 50, ValueValid: true, SurfaceValid: true},
	}}
	svc := NewService(fetcher, cache.NewMemory(), models.MethodMean, time.Hour, utils.Discard())

	for i := 0; i < 3; i++ {
		ref, err := svc.Reference(context.Background(), bordeaux)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ref.PricePerM2 != 4800 || ref.SampleSize != 1 || ref.Commune != "Bordeaux" {
			t.Errorf("unexpected reference: %+v", ref)
		}
	}
	if fetcher.calls != 1 {
		t.Errorf("DVF calls: got %d, want 1", fetcher.calls)
	}
}

func TestServiceDegradesOnError(t *testing.T) {
	boom := errors.New("dvf down")
	fetcher := &fakeSales{err: boom}
	svc := NewService(fetcher, cache.NewMemory(), models.MethodMedian, time.Hour, utils.Discard())

	ref, err := svc.Reference(context.Background(), bordeaux)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
	if ref == nil || ref.PricePerM2 != 0 || ref.Method != models.MethodMedian {
		t.Errorf("expected zero reference, got %+v", ref)
	}

	fetcher.err = nil
	fetcher.sales = []models.Sale{{Value: 100, Surface: 1, ValueValid: true, SurfaceValid: true}}
	ref, _ = svc.Reference(context.Background(), bordeaux)
	if ref.PricePerM2 != 100 {
		t.Errorf("failed lookups must not be cached, got %+v", ref)
	}
}

func TestServiceDoesNotCacheZero(t *testing.T) {
	fetcher := &fakeSales{}
	svc := NewService(fetcher, cache.NewMemory(), models.MethodMean, time.Hour, utils.Discard())

	_, _ = svc.Reference(context.Background(), bordeaux)
	_, _ = svc.Reference(context.Background(), bordeaux)
	if fetcher.calls != 2 {
		t.Errorf("DVF calls: got %d, want 2", fetcher.calls)
	}
}
