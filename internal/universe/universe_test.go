package universe

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/strategyconfig"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

const constituentsHTML = `
<html><body>
<table>
<thead><tr><th>Symbol</th><th>Company</th><th>Sector</th></tr></thead>
<tbody>
<tr><td>AAPL</td><td>Apple Inc.</td><td>Information Technology</td></tr>
<tr><td>MSFT</td><td>Microsoft Corp.</td><td>Information Technology</td></tr>
<tr><td>lly</td><td>Eli Lilly</td><td>Health Care</td></tr>
<tr><td>AAPL</td><td>Apple duplicate row</td><td>Information Technology</td></tr>
<tr><td></td><td>Blank symbol row</td><td>Nothing</td></tr>
</tbody>
</table>
</body></html>`

func TestParseConstituentsHTML(t *testing.T) {
	instruments, err := parseConstituentsHTML(strings.NewReader(constituentsHTML))
	require.NoError(t, err)
	require.Len(t, instruments, 3, "duplicates and blank rows are dropped")

	assert.Equal(t, "AAPL", instruments[0].Symbol)
	assert.Equal(t, "Apple Inc.", instruments[0].Name)
	assert.Equal(t, "Information Technology", instruments[0].Sector)
	assert.Equal(t, "LLY", instruments[2].Symbol, "symbols are upper-cased")
}

func TestParseConstituentsHTMLEmpty(t *testing.T) {
	_, err := parseConstituentsHTML(strings.NewReader("<html><body><p>maintenance</p></body></html>"))
	assert.Error(t, err)
}

func seriesWith(price float64, volume int64) contracts.PriceSeries {
	series := make(contracts.PriceSeries, 0, 25)
	date := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		series = append(series, contracts.PricePoint{Date: date, Close: price, Volume: volume})
		date = date.AddDate(0, 0, 1)
	}
	return series
}

func TestBuilderFilters(t *testing.T) {
	b := NewBuilder(strategyconfig.Default().Universe, logger.NewNop())

	instruments := []contracts.Instrument{
		{Symbol: "AAPL", Kind: contracts.KindEquity},
		{Symbol: "PENNY", Kind: contracts.KindEquity},
		{Symbol: "THIN", Kind: contracts.KindEquity},
		{Symbol: "BRK.B", Kind: contracts.KindEquity},
		{Symbol: "ACME-WS", Kind: contracts.KindEquity},
		{Symbol: "NEWIPO", Kind: contracts.KindEquity},
	}

	lookup := func(symbol string) contracts.PriceSeries {
		switch symbol {
		case "AAPL":
			return seriesWith(180, 50_000_000)
		case "PENNY":
			return seriesWith(2.50, 5_000_000)
		case "THIN":
			return seriesWith(45, 30_000)
		default:
			return nil
		}
	}

	u := b.Build(instruments, lookup)

	assert.Equal(t, []string{"AAPL", "NEWIPO"}, u.Symbols())
	assert.Equal(t, "price below minimum", u.Excluded["PENNY"])
	assert.Equal(t, "volume below minimum", u.Excluded["THIN"])
	assert.Equal(t, "unsupported symbol format", u.Excluded["BRK.B"])
	assert.Equal(t, "unsupported symbol format", u.Excluded["ACME-WS"])
	// NEWIPO has no cached series yet: it stays in until data exists.
	_, excluded := u.Excluded["NEWIPO"]
	assert.False(t, excluded)
}

func TestBuilderDeduplicates(t *testing.T) {
	b := NewBuilder(strategyconfig.Default().Universe, logger.NewNop())

	u := b.Build([]contracts.Instrument{
		{Symbol: "aapl"}, {Symbol: "AAPL"}, {Symbol: " AAPL "},
	}, func(string) contracts.PriceSeries { return nil })

	assert.Equal(t, []string{"AAPL"}, u.Symbols())
}
