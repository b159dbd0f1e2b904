package report

import (
	"encoding/csv"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/screening"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/selection"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

func sampleData() (*contracts.ScanSummary, *selection.Result, *contracts.Portfolio) {
	summary := &contracts.ScanSummary{
		ScanID:    "20260825",
		StartedAt: time.Date(2026, 8, 25, 17, 30, 0, 0, time.UTC),
		Duration:  90 * time.Second,
		Total:     10, OK: 8, FromCache: 2, NotFound: 1, Transient: 1,
		Retryable: []string{"SLOW"},
	}
	rank := &selection.Result{
		Candidates: []contracts.Candidate{
			{Symbol: "NVDA", Kind: contracts.KindEquity, Sector: "Technology", Score: 88},
			{Symbol: "COST", Kind: contracts.KindEquity, Sector: "Consumer Staples", Score: 72},
		},
		Gate:    screening.GateResult{Open: true, BenchmarkPhase: contracts.PhaseUptrend, BreadthPct: 62},
		Skipped: map[string]string{"NEWIPO": "insufficient history"},
	}
	p := &contracts.Portfolio{
		AsOf: time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		Allocations: []contracts.Allocation{
			{Symbol: "NVDA", Kind: contracts.KindEquity, Tier: contracts.TierCore, WeightPct: 60, Score: 88, Sector: "Technology"},
			{Symbol: "COST", Kind: contracts.KindEquity, Tier: contracts.TierSatellite, WeightPct: 40, Score: 72, Sector: "Consumer Staples"},
		},
	}
	return summary, rank, p
}

func TestScanReportContents(t *testing.T) {
	summary, rank, p := sampleData()
	text := ScanReport(summary, rank, p)

	assert.Contains(t, text, "Scan 20260825")
	assert.Contains(t, text, "10 total, 8 ok (2 cached)")
	assert.Contains(t, text, "Retryable: SLOW")
	assert.Contains(t, text, "Market gate: OPEN")
	assert.Contains(t, text, "breadth 62.0%")
	assert.Contains(t, text, "NEWIPO")
	assert.Contains(t, text, "insufficient history")
	assert.Contains(t, text, "NVDA")
	assert.Contains(t, text, "total 100.0%")
}

func TestScanReportClosedGate(t *testing.T) {
	summary, rank, _ := sampleData()
	rank.Candidates = nil
	rank.Gate = screening.GateResult{Open: false, BenchmarkPhase: contracts.PhaseDowntrend, Reason: "benchmark in downtrend"}

	text := ScanReport(summary, rank, nil)
	assert.Contains(t, text, "Market gate: CLOSED")
	assert.Contains(t, text, "benchmark in downtrend")
	assert.NotContains(t, text, "Top candidates")
}

func TestScanReportBestEffortNote(t *testing.T) {
	summary, rank, p := sampleData()
	p.BestEffort = true
	p.Note = "caps unsatisfiable with 2 candidates"

	text := ScanReport(summary, rank, p)
	assert.Contains(t, text, "BEST EFFORT: caps unsatisfiable")
}

func TestWriteScanReport(t *testing.T) {
	w, err := NewWriter(t.TempDir(), logger.NewNop())
	require.NoError(t, err)

	summary, rank, p := sampleData()
	path, err := w.WriteScanReport(summary, rank, p)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "scan_20260825.txt"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Scan 20260825")
}

func TestWriteAllocationCSV(t *testing.T) {
	w, err := NewWriter(t.TempDir(), logger.NewNop())
	require.NoError(t, err)

	_, _, p := sampleData()
	path, err := w.WriteAllocationCSV(p)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "allocation_2026-08-25.csv"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"symbol", "kind", "tier", "weight_pct", "score", "sector", "theme"}, records[0])
	assert.Equal(t, "NVDA", records[1][0])
	assert.Equal(t, "60.00", records[1][3])
}
