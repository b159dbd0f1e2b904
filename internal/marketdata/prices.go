package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
)

// chartResponse mirrors the provider's chart payload. Only the fields
// the series builder needs are declared.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchPriceSeries fetches two years of daily bars for a symbol.
func (c *Client) FetchPriceSeries(ctx context.Context, symbol string) (contracts.PriceSeries, error) {
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=2y&interval=1d", c.baseURL, symbol)

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	})
	if err != nil {
		return nil, fmt.Errorf("price series request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, symbol); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	series, err := parseChartResponse(body)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"bars":   len(series),
	}).Debug("Fetched price series")
	return series, nil
}

func parseChartResponse(body []byte) (contracts.PriceSeries, error) {
	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed chart payload: %v", ErrPermanent, err)
	}

	if parsed.Chart.Error != nil {
		if parsed.Chart.Error.Code == "Not Found" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: provider error %s", ErrPermanent, parsed.Chart.Error.Code)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, ErrNotFound
	}

	result := parsed.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: chart payload has no quote block", ErrPermanent)
	}
	quote := result.Indicators.Quote[0]

	var series contracts.PriceSeries
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		// Halted or partial days come back with zero closes; skip them
		// rather than poisoning the moving averages.
		if quote.Close[i] <= 0 {
			continue
		}
		series = append(series, contracts.PricePoint{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  quote.Close[i],
			Volume: atInt(quote.Volume, i),
		})
	}
	return series, nil
}

func at(xs []float64, i int) float64 {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}

func atInt(xs []int64, i int) int64 {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}

// checkStatus maps HTTP status codes onto the error taxonomy.
func checkStatus(statusCode int, symbol string) error {
	switch {
	case statusCode == http.StatusOK:
		return nil
	case statusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, symbol)
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, symbol)
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d for %s", ErrPermanent, statusCode, symbol)
	case statusCode >= 500:
		return fmt.Errorf("transient provider error: status %d for %s", statusCode, symbol)
	default:
		return fmt.Errorf("%w: unexpected status %d for %s", ErrPermanent, statusCode, symbol)
	}
}
