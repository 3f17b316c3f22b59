package services

import (
	"fmt"
	"sync"
	"testing"

	"investimmo-bot/models"
)

func TestBoardThreshold(t *testing.T) {
	b := NewOpportunityBoard(DefaultOpportunityThreshold)

	if b.Add(&models.Listing{ID: "low", Yield: 6.99}) {
		t.Error("listing below threshold should be rejected")
	}
	if !b.Add(&models.Listing{ID: "edge", Yield: 7.0}) {
		t.Error("listing at threshold should be accepted")
	}
	if b.Add(nil) {
		t.Error("nil listing should be rejected")
	}
	if b.Len() != 1 {
		t.Errorf("Len: got %d, want 1", b.Len())
	}
}

func TestBoardIgnoresKnownID(t *testing.T) {
	b := NewOpportunityBoard(7)

	b.Add(&models.Listing{ID: "42", Yield: 8, Title: "first"})
	if b.Add(&models.Listing{ID: "42", Yield: 9, Title: "second"}) {
		t.Error("second listing with same ID should be ignored")
	}

	all := b.All()
	if len(all) != 1 || all[0].Title != "first" {
		t.Errorf("board should keep the first listing, got %+v", all)
	}
}

func TestBoardSortedByYield(t *testing.T) {
	b := NewOpportunityBoard(7)
	added := b.AddAll([]*models.Listing{
		{ID: "a", Yield: 7.5},
		{ID: "b", Yield: 9.1},
		{ID: "c", Yield: 3.0},
		{ID: "d", Yield: 8.2},
	})
	if len(added) != 3 {
		t.Fatalf("AddAll: got %d added, want 3", len(added))
	}

	want := []string{"b", "d", "a"}
	for i, l := range b.All() {
		if l.ID != want[i] {
			t.Errorf("All()[%d] = %s; want %s", i, l.ID, want[i])
		}
	}
}

func TestBoardClear(t *testing.T) {
	b := NewOpportunityBoard(7)
	b.Add(&models.Listing{ID: "a", Yield: 10})
	b.Clear()
	if b.Len() != 0 {
		t.Errorf("Len after Clear: got %d, want 0", b.Len())
	}
}

func TestBoardConcurrentAdds(t *testing.T) {
	b := NewOpportunityBoard(7)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Add(&models.Listing{ID: fmt.Sprintf("id-%d", i%10), Yield: 8})
			_ = b.All()
		}(i)
	}
	wg.Wait()

	if b.Len() != 10 {
		t.Errorf("Len: got %d, want 10", b.Len())
	}
}
