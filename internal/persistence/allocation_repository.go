package persistence

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
)

// AllocationRepository stores constructed portfolios.
type AllocationRepository struct {
	pool *pgxpool.Pool
}

// NewAllocationRepository creates an allocation repository.
func NewAllocationRepository(pool *pgxpool.Pool) *AllocationRepository {
	return &AllocationRepository{pool: pool}
}

// Save stores one portfolio in a single transaction, replacing any
// earlier portfolio for the same date.
func (r *AllocationRepository) Save(ctx context.Context, p *contracts.Portfolio) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	asOf := p.AsOf.Truncate(24 * time.Hour)
	if _, err := tx.Exec(ctx, `DELETE FROM screener.allocations WHERE as_of = $1`, asOf); err != nil {
		return err
	}

	for _, a := range p.Allocations {
		_, err := tx.Exec(ctx, `
			INSERT INTO screener.allocations
				(as_of, symbol, kind, tier, weight_pct, score, sector, theme, best_effort)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, asOf, a.Symbol, string(a.Kind), string(a.Tier), a.WeightPct, a.Score, a.Sector, a.Theme, p.BestEffort)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Latest returns the most recent portfolio, or nil when none exists.
func (r *AllocationRepository) Latest(ctx context.Context) (*contracts.Portfolio, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT as_of, symbol, kind, tier, weight_pct, score, sector, theme, best_effort
		FROM screener.allocations
		WHERE as_of = (SELECT MAX(as_of) FROM screener.allocations)
		ORDER BY weight_pct DESC, symbol ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var p *contracts.Portfolio
	for rows.Next() {
		var a contracts.Allocation
		var asOf time.Time
		var kind, tier string
		var bestEffort bool
		if err := rows.Scan(&asOf, &a.Symbol, &kind, &tier, &a.WeightPct, &a.Score, &a.Sector, &a.Theme, &bestEffort); err != nil {
			return nil, err
		}
		if p == nil {
			p = &contracts.Portfolio{AsOf: asOf, BestEffort: bestEffort}
		}
		a.Kind = contracts.Kind(kind)
		a.Tier = contracts.Tier(tier)
		p.Allocations = append(p.Allocations, a)
	}
	return p, rows.Err()
}

// WeightsBySymbol returns the latest portfolio as a symbol-to-percent
// map, the shape the rebalancer consumes.
func (r *AllocationRepository) WeightsBySymbol(ctx context.Context) (map[string]float64, error) {
	p, err := r.Latest(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	if p == nil {
		return out, nil
	}
	for _, a := range p.Allocations {
		out[a.Symbol] = a.WeightPct
	}
	return out, nil
}
