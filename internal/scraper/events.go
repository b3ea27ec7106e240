// Package scraper extracts upcoming events from the community website.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/sarah-larkin/ai-learning-series/internal/model"
)

const defaultTimeout = 30 * time.Second

// Events fetches url and returns every complete div.event record. It is best
// effort: failures are logged at debug level and yield an empty list.
func Events(ctx context.Context, client *http.Client, url string) []model.Event {
	logger := zerolog.Ctx(ctx).With().Str("url", url).Logger()
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	doc, err := fetch(ctx, client, url)
	if err != nil {
		logger.Debug().Err(err).Msg("event scrape failed")
		return []model.Event{}
	}

	events := ParseEvents(doc)
	logger.Debug().Int("events", len(events)).Msg("events scraped")
	return events
}

func fetch(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return doc, nil
}

// ParseEvents reads div.event records. Records without a title, date or
// description are skipped.
func ParseEvents(doc *goquery.Document) []model.Event {
	events := []model.Event{}
	doc.Find("div.event").Each(func(_ int, s *goquery.Selection) {
		event := model.Event{
			Title:       first(s, "h3"),
			Date:        first(s, "span.date"),
			Description: first(s, "p"),
		}
		if event.Title == "" || event.Date == "" || event.Description == "" {
			return
		}
		events = append(events, event)
	})
	return events
}

func first(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}
