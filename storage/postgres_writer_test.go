package storage

import (
	"strings"
	"testing"

	"investimmo-bot/models"
)

func TestUpsertQuery(t *testing.T) {
	batch := []*models.Listing{
		{ID: "1", URL: "https://example.com/1", Yield: 7.2},
		{ID: "2", URL: "https://example.com/2", Yield: 5.4},
	}

	query, args := upsertQuery(batch)

	if len(args) != 2*listingColumns {
		t.Errorf("args: got %d, want %d", len(args), 2*listingColumns)
	}
	if !strings.Contains(query, "($13,$14,") || !strings.Contains(query, "$24)") {
		t.Errorf("placeholders of second row missing in %s", query)
	}
	if strings.Contains(query, "$25") {
		t.Errorf("unexpected placeholder $25 in %s", query)
	}
	if !strings.Contains(query, "ON CONFLICT (url) DO UPDATE") {
		t.Errorf("query does not upsert on url: %s", query)
	}
	if args[listingColumns] != "2" {
		t.Errorf("second row first arg: got %v, want 2", args[listingColumns])
	}
}
