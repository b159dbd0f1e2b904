package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want contracts.FetchStatus
	}{
		{"nil", nil, contracts.FetchOK},
		{"not found", fmt.Errorf("chart: %w", ErrNotFound), contracts.FetchNotFound},
		{"rate limited", fmt.Errorf("x: %w", ErrRateLimited), contracts.FetchRateLimited},
		{"permanent", fmt.Errorf("x: %w", ErrPermanent), contracts.FetchPermanentError},
		{"context canceled", context.Canceled, contracts.FetchTransientError},
		{"deadline", context.DeadlineExceeded, contracts.FetchTransientError},
		{"unknown error defaults to transient", errors.New("connection reset"), contracts.FetchTransientError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestCheckStatus(t *testing.T) {
	assert.NoError(t, checkStatus(http.StatusOK, "AAPL"))
	assert.ErrorIs(t, checkStatus(http.StatusNotFound, "AAPL"), ErrNotFound)
	assert.ErrorIs(t, checkStatus(http.StatusTooManyRequests, "AAPL"), ErrRateLimited)
	assert.ErrorIs(t, checkStatus(http.StatusUnauthorized, "AAPL"), ErrPermanent)
	assert.ErrorIs(t, checkStatus(http.StatusTeapot, "AAPL"), ErrPermanent)

	// 5xx is transient: not one of the sentinel errors.
	err := checkStatus(http.StatusBadGateway, "AAPL")
	require.Error(t, err)
	assert.Equal(t, contracts.FetchTransientError, Classify(err))
}

func TestParseChartResponse(t *testing.T) {
	body := []byte(`{
		"chart": {
			"result": [{
				"timestamp": [1700000000, 1700086400, 1700172800],
				"indicators": {"quote": [{
					"open":   [10.0, 10.5, 0],
					"high":   [10.8, 11.0, 0],
					"low":    [9.9, 10.3, 0],
					"close":  [10.5, 10.9, 0],
					"volume": [1000000, 1200000, 0]
				}]}
			}],
			"error": null
		}
	}`)

	series, err := parseChartResponse(body)
	require.NoError(t, err)
	// Third bar has a zero close and is dropped.
	require.Len(t, series, 2)
	assert.Equal(t, 10.5, series[0].Close)
	assert.Equal(t, int64(1200000), series[1].Volume)
	assert.True(t, series[0].Date.Before(series[1].Date))
}

func TestParseChartResponseNotFound(t *testing.T) {
	body := []byte(`{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found"}}}`)
	_, err := parseChartResponse(body)
	assert.ErrorIs(t, err, ErrNotFound)

	body = []byte(`{"chart": {"result": [], "error": null}}`)
	_, err = parseChartResponse(body)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseChartResponseMalformed(t *testing.T) {
	_, err := parseChartResponse([]byte(`not json`))
	assert.ErrorIs(t, err, ErrPermanent)
}

func TestParseMetricsResponse(t *testing.T) {
	body := []byte(`[{
		"symbol": "NVDA",
		"peRatio": 45.2,
		"roic": 0.32,
		"wacc": 0.11,
		"revenueGrowth": 0.6,
		"netDebtToEBITDA": null
	}]`)

	f, err := parseMetricsResponse("NVDA", body)
	require.NoError(t, err)
	require.NotNil(t, f.PE)
	assert.Equal(t, 45.2, *f.PE)
	require.NotNil(t, f.ROIC)
	assert.Equal(t, 0.32, *f.ROIC)
	// null and absent fields stay nil
	assert.Nil(t, f.DebtToEBITDA)
	assert.Nil(t, f.PB)
}

func TestParseMetricsResponseEmpty(t *testing.T) {
	_, err := parseMetricsResponse("GHOST", []byte(`[]`))
	assert.ErrorIs(t, err, ErrNotFound)
}
