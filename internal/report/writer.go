package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
	"github.com/RyanJHamby/stock-screener-long-hold/internal/selection"
	"github.com/RyanJHamby/stock-screener-long-hold/pkg/logger"
)

// topCandidatesInReport bounds the text report; the full list goes to
// the database and the CSV.
const topCandidatesInReport = 25

// Writer renders scan results to files under its report directory.
// Report files are written here and nowhere else.
type Writer struct {
	dir    string
	logger *logger.Logger
}

// NewWriter creates a writer, making the directory if needed.
func NewWriter(dir string, log *logger.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	return &Writer{dir: dir, logger: log}, nil
}

// ScanReport renders the human-readable run summary.
func ScanReport(summary *contracts.ScanSummary, rank *selection.Result, p *contracts.Portfolio) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Scan %s\n", summary.ScanID)
	fmt.Fprintf(&b, "Started:  %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Duration: %s\n\n", summary.Duration.Round(time.Millisecond))

	fmt.Fprintf(&b, "Fetch: %d total, %d ok (%d cached), %d rate limited, %d not found, %d transient, %d permanent\n",
		summary.Total, summary.OK, summary.FromCache,
		summary.RateLimited, summary.NotFound, summary.Transient, summary.Permanent)
	if len(summary.Retryable) > 0 {
		fmt.Fprintf(&b, "Retryable: %s\n", strings.Join(summary.Retryable, ", "))
	}
	b.WriteString("\n")

	if rank != nil {
		gateState := "OPEN"
		if !rank.Gate.Open {
			gateState = "CLOSED"
		}
		fmt.Fprintf(&b, "Market gate: %s (benchmark %s", gateState, rank.Gate.BenchmarkPhase)
		if rank.Gate.BreadthPct > 0 {
			fmt.Fprintf(&b, ", breadth %.1f%%", rank.Gate.BreadthPct)
		}
		b.WriteString(")\n")
		if rank.Gate.Reason != "" {
			fmt.Fprintf(&b, "Gate reason: %s\n", rank.Gate.Reason)
		}

		fmt.Fprintf(&b, "Scored %d, qualified %d, skipped %d\n\n",
			len(rank.Phases), len(rank.Candidates), len(rank.Skipped))

		if len(rank.Skipped) > 0 {
			b.WriteString("Skipped:\n")
			symbols := make([]string, 0, len(rank.Skipped))
			for s := range rank.Skipped {
				symbols = append(symbols, s)
			}
			sort.Strings(symbols)
			for _, s := range symbols {
				fmt.Fprintf(&b, "  %-8s %s\n", s, rank.Skipped[s])
			}
			b.WriteString("\n")
		}

		if len(rank.Candidates) > 0 {
			b.WriteString("Top candidates:\n")
			for i, c := range rank.Candidates {
				if i >= topCandidatesInReport {
					fmt.Fprintf(&b, "  ... and %d more\n", len(rank.Candidates)-topCandidatesInReport)
					break
				}
				fmt.Fprintf(&b, "  %2d. %-8s %6.1f  %s\n", i+1, c.Symbol, c.Score, c.Sector)
			}
			b.WriteString("\n")
		}
	}

	if p != nil && len(p.Allocations) > 0 {
		fmt.Fprintf(&b, "Portfolio (%d positions, total %.1f%%)\n", len(p.Allocations), p.TotalWeight())
		if p.BestEffort {
			fmt.Fprintf(&b, "BEST EFFORT: %s\n", p.Note)
		}
		for _, a := range p.Allocations {
			fmt.Fprintf(&b, "  %-8s %-9s %5.1f%%  %s\n", a.Symbol, a.Tier, a.WeightPct, a.Sector)
		}
	}

	return b.String()
}

// WriteScanReport writes the text summary, returning its path.
func (w *Writer) WriteScanReport(summary *contracts.ScanSummary, rank *selection.Result, p *contracts.Portfolio) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("scan_%s.txt", summary.ScanID))
	if err := os.WriteFile(path, []byte(ScanReport(summary, rank, p)), 0o644); err != nil {
		return "", fmt.Errorf("write scan report: %w", err)
	}
	w.logger.WithField("path", path).Info("Scan report written")
	return path, nil
}

// WriteAllocationCSV writes the portfolio as CSV for spreadsheet use,
// returning its path.
func (w *Writer) WriteAllocationCSV(p *contracts.Portfolio) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("allocation_%s.csv", p.AsOf.Format("2006-01-02")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create allocation csv: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"symbol", "kind", "tier", "weight_pct", "score", "sector", "theme"}); err != nil {
		return "", err
	}
	for _, a := range p.Allocations {
		record := []string{
			a.Symbol,
			string(a.Kind),
			string(a.Tier),
			strconv.FormatFloat(a.WeightPct, 'f', 2, 64),
			strconv.FormatFloat(a.Score, 'f', 1, 64),
			a.Sector,
			a.Theme,
		}
		if err := cw.Write(record); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("write allocation csv: %w", err)
	}

	w.logger.WithField("path", path).Info("Allocation CSV written")
	return path, nil
}
