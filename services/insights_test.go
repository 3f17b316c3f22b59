package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"investimmo-bot/models"
)

func sampleListings() []*models.Listing {
	return []*models.Listing{
		{ID: "1", Title: "T2 Chartrons", Price: 200000, Surface: 50, PricePerM2: 4000, Discount: -33.3, Yield: 5.4},
		{ID: "2", Title: "T3 Bastide", Price: 150000, Surface: 50, PricePerM2: 3000, Discount: 0, Yield: 7.2},
		{ID: "3", Title: "Studio Victoire", Price: 100000, Surface: 50, PricePerM2: 2000, Discount: 33.3, Yield: 10.8},
		{ID: "4", Title: "T4 Caudéran", Price: 350000, Surface: 100, PricePerM2: 3500, Discount: -16.7, Yield: 6.17},
	}
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(newTestLogger(), NewOpportunityBoard(7))
	r := svc.Generate(sampleListings())
	if r.TotalListings != 4 {
		t.Errorf("TotalListings: got %d, want 4", r.TotalListings)
	}
	if r.Opportunities != 2 {
		t.Errorf("Opportunities: got %d, want 2", r.Opportunities)
	}
}

func TestInsightPrices(t *testing.T) {
	svc := NewInsightService(newTestLogger(), nil)
	r := svc.Generate(sampleListings())
	if r.AveragePrice != 200000 {
		t.Errorf("AveragePrice: got %.2f, want 200000", r.AveragePrice)
	}
	if r.MinPrice != 100000 || r.MaxPrice != 350000 {
		t.Errorf("Min/Max: got %.0f/%.0f, want 100000/350000", r.MinPrice, r.MaxPrice)
	}
	if r.AveragePricePerM2 != 3125 {
		t.Errorf("AveragePricePerM2: got %.0f, want 3125", r.AveragePricePerM2)
	}
	if r.AverageYield != 7.39 {
		t.Errorf("AverageYield: got %.2f, want 7.39", r.AverageYield)
	}
}

func TestInsightBest(t *testing.T) {
	svc := NewInsightService(newTestLogger(), nil)
	r := svc.Generate(sampleListings())
	if r.BestYield == nil || r.BestYield.ID != "3" {
		t.Fatalf("BestYield: got %+v, want listing 3", r.BestYield)
	}
	if r.BestDiscount == nil || r.BestDiscount.ID != "3" {
		t.Fatalf("BestDiscount: got %+v, want listing 3", r.BestDiscount)
	}
	if len(r.TopByYield) != 4 || r.TopByYield[0].ID != "3" || r.TopByYield[3].ID != "1" {
		t.Errorf("TopByYield order wrong: %v", ids(r.TopByYield))
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger(), nil)
	r := svc.Generate(nil)
	if r.TotalListings != 0 || r.BestYield != nil {
		t.Errorf("expected empty report for empty input, got %+v", r)
	}
}

func TestInsightPrint(t *testing.T) {
	var buf bytes.Buffer
	board := NewOpportunityBoard(7)
	svc := NewInsightService(newTestLogger(), board)
	svc.out = &buf

	listings := sampleListings()
	scan := &models.ScanReport{
		City:   "Bordeaux",
		Budget: 350000,
		Source: "demo",
		Reference: &models.MarketReference{
			Code: "33063", Commune: "Bordeaux", Population: 261804,
			PricePerM2: 3000, SampleSize: 120, Method: models.MethodMean,
		},
		Journey:       &models.Journey{Duration: 2*time.Hour + 4*time.Minute, Transfers: 0},
		Listings:      listings,
		Opportunities: board.AddAll(listings),
	}
	svc.Print(scan, svc.Generate(listings))

	out := buf.String()
	for _, want := range []string{"BORDEAUX", "350 000", "3 000 €/m²", "2h4m0s", "Studio Victoire", "Best discount    : 33.3 % – Studio Victoire (100 000 €)", "2\033[0m listing(s) qualify"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestFormatEuros(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1 000"},
		{245000, "245 000"},
		{1250000, "1 250 000"},
		{-4500, "-4 500"},
	}
	for _, tt := range tests {
		if got := FormatEuros(tt.in); got != tt.want {
			t.Errorf("FormatEuros(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func ids(listings []*models.Listing) []string {
	out := make([]string, len(listings))
	for i, l := range listings {
		out[i] = l.ID
	}
	return out
}
