// Package cards turns a search results page into raw listings using the
// configured CSS selectors.
package cards

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"investimmo-bot/config"
	"investimmo-bot/models"
)

// Extract reads every card under root. Cards without a link are skipped.
// Relative links and image sources are resolved against pageURL.
func Extract(root *goquery.Selection, pageURL string, sel *config.Selectors, source string) []*models.RawListing {
	base, _ := url.Parse(pageURL)
	scrapedAt := time.Now()

	var out []*models.RawListing
	root.Find(sel.Card).Each(func(_ int, card *goquery.Selection) {
		link := attr(card, sel.Link, "href")
		if link == "" {
			return
		}

		l := &models.RawListing{
			Title:       text(card, sel.Title),
			RawPrice:    text(card, sel.Price),
			RawSurface:  text(card, sel.Surface),
			URL:         resolve(base, link),
			Description: text(card, sel.Description),
			Source:      source,
			ScrapedAt:   scrapedAt,
		}
		if sel.ID != "" {
			l.ID, _ = card.Attr(sel.ID)
		}
		if sel.Image != "" {
			img := attr(card, sel.Image, "src")
			if img == "" || strings.HasPrefix(img, "data:") {
				img = attr(card, sel.Image, "data-src")
			}
			if img != "" {
				l.ImageURL = resolve(base, img)
			}
		}
		out = append(out, l)
	})
	return out
}

// FromHTML parses an HTML document and extracts its cards.
func FromHTML(html, pageURL string, sel *config.Selectors, source string) ([]*models.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return Extract(doc.Selection, pageURL, sel, source), nil
}

func text(card *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(card.Find(selector).First().Text())
}

// attr reads name from the first match of selector, or from the card
// itself when the card matches the selector.
func attr(card *goquery.Selection, selector, name string) string {
	if selector == "" {
		return ""
	}
	target := card.Find(selector).First()
	if target.Length() == 0 && card.Is(selector) {
		target = card
	}
	v, _ := target.Attr(name)
	return strings.TrimSpace(v)
}

func resolve(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
