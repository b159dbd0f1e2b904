package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
)

// metricsResponse mirrors the fundamentals provider's key-metrics
// payload. Fields arrive as JSON null when the provider has no value,
// which decodes into nil pointers and flows through as typed absence.
type metricsResponse struct {
	Symbol           string   `json:"symbol"`
	PERatio          *float64 `json:"peRatio"`
	PBRatio          *float64 `json:"pbRatio"`
	PSRatio          *float64 `json:"priceToSalesRatio"`
	RevenueGrowth    *float64 `json:"revenueGrowth"`
	EPSGrowth        *float64 `json:"epsgrowth"`
	RevenueGrowth3Y  *float64 `json:"threeYRevenueGrowthPerShare"`
	RevenueGrowth5Y  *float64 `json:"fiveYRevenueGrowthPerShare"`
	EPSGrowth3Y      *float64 `json:"threeYNetIncomeGrowthPerShare"`
	ROIC             *float64 `json:"roic"`
	WACC             *float64 `json:"wacc"`
	FCFMargin        *float64 `json:"freeCashFlowMargin"`
	RDToRevenue      *float64 `json:"researchAndDevelopementToRevenue"`
	DebtToEBITDA     *float64 `json:"netDebtToEBITDA"`
	InterestCoverage *float64 `json:"interestCoverage"`
	InventoryGrowth  *float64 `json:"inventoryGrowth"`
}

// FetchFundamentals fetches the latest key metrics for a symbol.
// Missing metrics stay nil; scorers treat them as neutral.
func (c *Client) FetchFundamentals(ctx context.Context, symbol string) (contracts.Fundamentals, error) {
	fullURL := fmt.Sprintf("%s/api/v3/key-metrics-ttm/%s?apikey=%s", c.fmpBaseURL, symbol, c.fmpAPIKey)

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return contracts.Fundamentals{}, fmt.Errorf("fundamentals request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, symbol); err != nil {
		return contracts.Fundamentals{}, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return contracts.Fundamentals{}, fmt.Errorf("read response body failed: %w", err)
	}

	f, err := parseMetricsResponse(symbol, body)
	if err != nil {
		return contracts.Fundamentals{}, err
	}

	c.logger.WithField("symbol", symbol).Debug("Fetched fundamentals")
	return f, nil
}

func parseMetricsResponse(symbol string, body []byte) (contracts.Fundamentals, error) {
	var rows []metricsResponse
	if err := json.Unmarshal(body, &rows); err != nil {
		return contracts.Fundamentals{}, fmt.Errorf("%w: malformed metrics payload: %v", ErrPermanent, err)
	}
	if len(rows) == 0 {
		return contracts.Fundamentals{}, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}

	m := rows[0]
	return contracts.Fundamentals{
		Symbol:           symbol,
		FetchedAt:        time.Now().UTC(),
		PE:               m.PERatio,
		PB:               m.PBRatio,
		PS:               m.PSRatio,
		RevenueYoY:       m.RevenueGrowth,
		EPSYoY:           m.EPSGrowth,
		RevenueCAGR3Y:    m.RevenueGrowth3Y,
		RevenueCAGR5Y:    m.RevenueGrowth5Y,
		EPSCAGR3Y:        m.EPSGrowth3Y,
		ROIC:             m.ROIC,
		WACC:             m.WACC,
		FCFMargin:        m.FCFMargin,
		RDToSales:        m.RDToRevenue,
		DebtToEBITDA:     m.DebtToEBITDA,
		InterestCoverage: m.InterestCoverage,
		InventoryQoQ:     m.InventoryGrowth,
	}, nil
}
