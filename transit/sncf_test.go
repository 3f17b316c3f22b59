package transit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"investimmo-bot/models"
	"investimmo-bot/utils"
)

var (
	bordeaux = models.Coordinates{Lat: 44.8572, Lon: -0.5874}
	paris    = models.Coordinates{Lat: 48.8566, Lon: 2.3522}
)

func newTestClient(t *testing.T, key string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, key, utils.NewHTTPClient(utils.HTTPClientOptions{
		Timeout:    time.Second,
		MaxRetries: 1,
		Logger:     utils.Discard(),
	}))
}

func TestJourneyTimePicksFastest(t *testing.T) {
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		if !ok || user != "secret" {
			t.Errorf("expected basic auth with the API key, got %q", user)
		}
		if r.URL.Path != "/coverage/sncf/journeys" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("from"); got != "-0.5874;44.8572" {
			t.Errorf("from: got %q", got)
		}
		w.Write([]byte(`{"journeys":[
			{"duration":9000,"nb_transfers":1,"departure_date_time":"20240301T070000","arrival_date_time":"20240301T093000"},
			{"duration":7440,"nb_transfers":0,"departure_date_time":"20240301T080000","arrival_date_time":"20240301T100400"}
		]}`))
	})

	j, err := c.JourneyTime(context.Background(), bordeaux, paris)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.Duration != 2*time.Hour+4*time.Minute {
		t.Errorf("Duration: got %v", j.Duration)
	}
	if j.Transfers != 0 {
		t.Errorf("Transfers: got %d, want 0", j.Transfers)
	}
	if j.Departure.Hour() != 8 || j.Arrival.Minute() != 4 {
		t.Errorf("times: got %v → %v", j.Departure, j.Arrival)
	}
}

func TestJourneyTimeWithoutKey(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a key")
	})

	if c.Enabled() {
		t.Error("client without key should be disabled")
	}
	if _, err := c.JourneyTime(context.Background(), bordeaux, paris); !errors.Is(err, ErrNoCredential) {
		t.Errorf("expected ErrNoCredential, got %v", err)
	}
}

func TestJourneyTimeNoJourney(t *testing.T) {
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"journeys":[]}`))
	})

	if _, err := c.JourneyTime(context.Background(), bordeaux, paris); !errors.Is(err, ErrNoJourney) {
		t.Errorf("expected ErrNoJourney, got %v", err)
	}
}

func TestJourneyTimeUnauthorized(t *testing.T) {
	c := newTestClient(t, "wrong", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.JourneyTime(context.Background(), bordeaux, paris)
	var statusErr *utils.StatusError
	if !errors.As(err, &statusErr) {
		t.Errorf("expected StatusError, got %v", err)
	}
}
