package universe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/httputil"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// Scraper pulls index constituent lists from HTML tables. Constituent
// pages are scraped in this package and nowhere else.
type Scraper struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewScraper creates a constituents scraper.
func NewScraper(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Scraper {
	return &Scraper{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// FetchConstituents scrapes the constituent table for an index page
// (for example "/sp500").
func (s *Scraper) FetchConstituents(ctx context.Context, path string) ([]contracts.Instrument, error) {
	fullURL := s.baseURL + path

	resp, err := s.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	})
	if err != nil {
		return nil, fmt.Errorf("constituents request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	instruments, err := parseConstituentsHTML(resp.Body)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"path":  path,
		"count": len(instruments),
	}).Debug("Fetched index constituents")
	return instruments, nil
}

// parseConstituentsHTML extracts symbol, name, and sector from the
// first table whose rows carry at least a symbol cell. Column layout:
// symbol, name, sector when present.
func parseConstituentsHTML(r io.Reader) ([]contracts.Instrument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse constituents page: %w", err)
	}

	var instruments []contracts.Instrument
	seen := make(map[string]bool)

	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		symbol := strings.ToUpper(strings.TrimSpace(cells.Eq(0).Text()))
		if symbol == "" || seen[symbol] {
			return
		}
		seen[symbol] = true

		inst := contracts.Instrument{
			Symbol: symbol,
			Name:   strings.TrimSpace(cells.Eq(1).Text()),
			Kind:   contracts.KindEquity,
		}
		if cells.Length() >= 3 {
			inst.Sector = strings.TrimSpace(cells.Eq(2).Text())
		}
		instruments = append(instruments, inst)
	})

	if len(instruments) == 0 {
		return nil, fmt.Errorf("no constituents found in page")
	}
	return instruments, nil
}
