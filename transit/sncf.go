// Package transit looks up rail journey times with the SNCF Navitia API.
package transit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"investimmo-bot/models"
	"investimmo-bot/utils"
)

// DefaultBaseURL is the SNCF API root.
const DefaultBaseURL = "https://api.sncf.com/v1"

const navitiaTimeLayout = "20060102T150405"

var (
	// ErrNoCredential is returned when no API key was configured.
	ErrNoCredential = errors.New("transit: no SNCF API key configured")
	// ErrNoJourney is returned when the API finds no itinerary.
	ErrNoJourney = errors.New("transit: no journey found")
)

type journeysResponse struct {
	Journeys []struct {
		Duration          int    `json:"duration"`
		NbTransfers       int    `json:"nb_transfers"`
		DepartureDateTime string `json:"departure_date_time"`
		ArrivalDateTime   string `json:"arrival_date_time"`
	} `json:"journeys"`
}

// Client queries journeys on the SNCF coverage.
type Client struct {
	baseURL string
	apiKey  string
	http    *utils.HTTPClient
}

// NewClient creates a Client. An empty apiKey makes every call return
// ErrNoCredential.
func NewClient(baseURL, apiKey string, httpClient *utils.HTTPClient) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// Enabled reports whether a credential is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// JourneyTime returns the fastest journey between two points.
func (c *Client) JourneyTime(ctx context.Context, from, to models.Coordinates) (*models.Journey, error) {
	if !c.Enabled() {
		return nil, ErrNoCredential
	}

	q := url.Values{}
	q.Set("from", coord(from))
	q.Set("to", coord(to))
	endpoint := c.baseURL + "/coverage/sncf/journeys?" + q.Encode()

	var resp journeysResponse
	err := c.http.GetJSON(ctx, endpoint, &resp, func(r *http.Request) {
		r.SetBasicAuth(c.apiKey, "")
	})
	if err != nil {
		return nil, fmt.Errorf("transit: journeys: %w", err)
	}
	if len(resp.Journeys) == 0 {
		return nil, ErrNoJourney
	}

	best := resp.Journeys[0]
	for _, j := range resp.Journeys[1:] {
		if j.Duration < best.Duration {
			best = j
		}
	}

	journey := &models.Journey{
		From:      from,
		To:        to,
		Duration:  time.Duration(best.Duration) * time.Second,
		Transfers: best.NbTransfers,
	}
	if t, err := time.Parse(navitiaTimeLayout, best.DepartureDateTime); err == nil {
		journey.Departure = t
	}
	if t, err := time.Parse(navitiaTimeLayout, best.ArrivalDateTime); err == nil {
		journey.Arrival = t
	}
	return journey, nil
}

// coord formats a point the way Navitia expects: "lon;lat".
func coord(c models.Coordinates) string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + ";" + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}
