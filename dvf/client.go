// Package dvf computes reference prices per m² from the "Demandes de valeurs
// foncières" notarial sale records.
package dvf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"investimmo-bot/models"
	"investimmo-bot/utils"
)

// DefaultBaseURL is the cquest DVF endpoint.
const DefaultBaseURL = "http://api.cquest.org/dvf"

// number decodes JSON numbers, numeric strings and null. Anything that is
// not a finite number leaves Valid false.
type number struct {
	Value float64
	Valid bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = number{}
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*n = number{}
		return nil
	}
	*n = number{Value: v, Valid: true}
	return nil
}

type featureCollection struct {
	Features []struct {
		Properties struct {
			ValeurFonciere    number `json:"valeur_fonciere"`
			SurfaceReelleBati number `json:"surface_reelle_bati"`
		} `json:"properties"`
	} `json:"features"`
}

// Client queries the DVF API.
type Client struct {
	baseURL string
	http    *utils.HTTPClient
}

// NewClient creates a Client against baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string, httpClient *utils.HTTPClient) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// Sales returns every recorded transaction for an INSEE code.
func (c *Client) Sales(ctx context.Context, inseeCode string) ([]models.Sale, error) {
	endpoint := c.baseURL + "?code_commune=" + url.QueryEscape(inseeCode)

	var fc featureCollection
	if err := c.http.GetJSON(ctx, endpoint, &fc, nil); err != nil {
		return nil, fmt.Errorf("dvf: sales for %s: %w", inseeCode, err)
	}

	sales := make([]models.Sale, 0, len(fc.Features))
	for _, f := range fc.Features {
		p := f.Properties
		sales = append(sales, models.Sale{
			Value:        p.ValeurFonciere.Value,
			ValueValid:   p.ValeurFonciere.Valid,
			Surface:      p.SurfaceReelleBati.Value,
			SurfaceValid: p.SurfaceReelleBati.Valid,
		})
	}
	return sales, nil
}

// ReferencePrice computes the price per m² over the usable sales with the
// given method (mean unless MethodMedian), rounded to the nearest euro
// with ties to even.
// Sales with a missing value or a missing or non-positive surface are
// ignored. It returns the price and the number of sales used; no usable
// sale gives (0, 0).
func ReferencePrice(sales []models.Sale, method string) (float64, int) {
	ratios := make([]float64, 0, len(sales))
	for _, s := range sales {
		if !s.ValueValid || !s.SurfaceValid || s.Surface <= 0 {
			continue
		}
		ratios = append(ratios, s.Value/s.Surface)
	}
	if len(ratios) == 0 {
		return 0, 0
	}

	if method == models.MethodMedian {
		sort.Float64s(ratios)
		mid := len(ratios) / 2
		if len(ratios)%2 == 1 {
			return math.RoundToEven(ratios[mid]), len(ratios)
		}
		return math.RoundToEven((ratios[mid-1] + ratios[mid]) / 2), len(ratios)
	}

	var total float64
	for _, r := range ratios {
		total += r
	}
	return math.RoundToEven(total / float64(len(ratios))), len(ratios)
}
