package marketdata

import (
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/config"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/httputil"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// Client handles communication with the market data providers.
// Provider HTTP calls happen in this package and nowhere else.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	fmpBaseURL string
	fmpAPIKey  string
}

// NewClient creates a provider client. Retry is disabled on the HTTP
// client; the scan pipeline owns retry accounting so attempts stay
// countable.
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg *config.Config) *Client {
	return &Client{
		httpClient: httpClient.DisableRetry(),
		logger:     log,
		baseURL:    cfg.Provider.BaseURL,
		fmpBaseURL: cfg.Provider.FMPBaseURL,
		fmpAPIKey:  cfg.Provider.FMPAPIKey,
	}
}
