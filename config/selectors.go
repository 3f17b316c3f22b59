package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Selectors describes where listing fields live on a search results page.
// Every field selector is evaluated inside the card element.
type Selectors struct {
	// SearchURL is a fmt template receiving the city slug and the budget,
	// and, when Pages > 1, the page number: "https://.../%s/?prix_max=%d&page=%d".
	SearchURL string `yaml:"search_url"`

	Card        string `yaml:"card"`
	ID          string `yaml:"id_attr"`
	Title       string `yaml:"title"`
	Price       string `yaml:"price"`
	Surface     string `yaml:"surface"`
	Link        string `yaml:"link"`
	Image       string `yaml:"image"`
	Description string `yaml:"description"`

	// WaitFor is waited on by the browser source before reading the page.
	WaitFor string `yaml:"wait_for"`
}

// SelectorSet is the YAML document: one entry per site, plus the one to use.
type SelectorSet struct {
	Active string               `yaml:"active"`
	Sites  map[string]Selectors `yaml:"sites"`
}

// LoadSelectors reads the YAML selector file and returns the active site.
func LoadSelectors(path string) (*Selectors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("selectors: read %s: %w", path, err)
	}
	return ParseSelectors(data)
}

// ParseSelectors decodes a selector document.
func ParseSelectors(data []byte) (*Selectors, error) {
	var set SelectorSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("selectors: decode: %w", err)
	}

	site, ok := set.Sites[set.Active]
	if !ok {
		return nil, fmt.Errorf("selectors: active site %q not defined", set.Active)
	}
	if site.SearchURL == "" || site.Card == "" || site.Link == "" {
		return nil, fmt.Errorf("selectors: site %q needs search_url, card and link", set.Active)
	}
	if site.Title == "" {
		site.Title = site.Link
	}
	return &site, nil
}
