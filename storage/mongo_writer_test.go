package storage

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"investimmo-bot/models"
)

func TestUpsertModels(t *testing.T) {
	listings := []*models.Listing{
		{ID: "1", URL: "https://example.com/1"},
		{ID: "2", URL: "https://example.com/2"},
	}

	writes := upsertModels(listings)
	if len(writes) != 2 {
		t.Fatalf("len: got %d, want 2", len(writes))
	}

	m, ok := writes[1].(*mongo.ReplaceOneModel)
	if !ok {
		t.Fatalf("got %T, want *mongo.ReplaceOneModel", writes[1])
	}
	if m.Upsert == nil || !*m.Upsert {
		t.Error("replace model is not an upsert")
	}
	filter, ok := m.Filter.(bson.M)
	if !ok || filter["url"] != "https://example.com/2" {
		t.Errorf("filter: got %v", m.Filter)
	}
	if m.Replacement != listings[1] {
		t.Errorf("replacement: got %v", m.Replacement)
	}
}
