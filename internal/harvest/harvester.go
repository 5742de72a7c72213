package harvest

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"docqa/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// Tags removed before extracting visible page text.
const skipSelector = "script,style,nav,footer,header,form,noscript"

// Harvester fetches the pages a document links to and extracts their visible
// text. Harvesting is best effort: any single URL that cannot be fetched or
// parsed is logged and skipped.
type Harvester struct {
	client *http.Client
}

func New(timeout time.Duration) *Harvester {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Harvester{client: &http.Client{Timeout: timeout}}
}

// Harvest fetches each unique URL at most once. URLs are visited in sorted
// order for determinism, though callers must not rely on page order.
func (h *Harvester) Harvest(ctx context.Context, urls []string) []models.HarvestedPage {
	seen := make(map[string]struct{}, len(urls))
	unique := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		unique = append(unique, u)
	}
	sort.Strings(unique)

	pages := make([]models.HarvestedPage, 0, len(unique))
	for _, u := range unique {
		text, err := h.fetch(ctx, u)
		if err != nil {
			log.Printf("harvest: skipping %s: %v", u, err)
			continue
		}
		if text == "" {
			continue
		}
		pages = append(pages, models.HarvestedPage{URL: u, Text: text})
	}
	return pages
}

func (h *Harvester) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find(skipSelector).Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
