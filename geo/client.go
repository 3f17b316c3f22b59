// Package geo resolves French city names through the geo.api.gouv.fr
// communes endpoint.
package geo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"investimmo-bot/models"
	"investimmo-bot/utils"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://geo.api.gouv.fr"

// ErrCommuneNotFound is returned when no commune matches the name.
var ErrCommuneNotFound = errors.New("geo: commune not found")

type commune struct {
	Nom          string   `json:"nom"`
	Code         string   `json:"code"`
	Population   int      `json:"population"`
	CodesPostaux []string `json:"codesPostaux"`
	Centre       *struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	} `json:"centre"`
}

// Client looks up communes.
type Client struct {
	baseURL string
	http    *utils.HTTPClient
	logger  *utils.Logger
}

// NewClient creates a Client against baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string, httpClient *utils.HTTPClient, logger *utils.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// Lookup returns the best matching commune for a free-text name. The API
// ranks by population when boost=population is set, so the first entry is
// the most likely one ("Saint-Denis" resolves to the largest).
func (c *Client) Lookup(ctx context.Context, name string) (*models.Commune, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCommuneNotFound
	}

	q := url.Values{}
	q.Set("nom", name)
	q.Set("fields", "nom,code,population,centre,codesPostaux")
	q.Set("boost", "population")
	q.Set("limit", "5")
	endpoint := c.baseURL + "/communes?" + q.Encode()

	var results []commune
	if err := c.http.GetJSON(ctx, endpoint, &results, nil); err != nil {
		return nil, fmt.Errorf("geo: lookup %q: %w", name, err)
	}
	if len(results) == 0 {
		c.logger.Warn("[geo] No commune matches %q", name)
		return nil, ErrCommuneNotFound
	}

	first := results[0]
	out := &models.Commune{
		Code:        first.Code,
		Name:        first.Nom,
		Population:  first.Population,
		PostalCodes: first.CodesPostaux,
	}
	// GeoJSON order is [lon, lat].
	if first.Centre != nil && len(first.Centre.Coordinates) == 2 {
		out.Centre = models.Coordinates{
			Lon: first.Centre.Coordinates[0],
			Lat: first.Centre.Coordinates[1],
		}
	}

	c.logger.Debug("[geo] %q → %s (INSEE %s, %d hab.)", name, out.Name, out.Code, out.Population)
	return out, nil
}
