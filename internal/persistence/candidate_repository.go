package persistence

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RyanJHamby/stock-screener-long-hold/internal/contracts"
)

// CandidateRepository stores ranked scan candidates. Candidate rows are
// written here and nowhere else.
type CandidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository creates a candidate repository.
func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

// SaveRun stores all candidates of one scan in a single transaction,
// replacing any earlier run for the same date.
func (r *CandidateRepository) SaveRun(ctx context.Context, scanDate time.Time, configHash string, candidates []contracts.Candidate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM screener.candidates WHERE scan_date = $1`, scanDate); err != nil {
		return err
	}

	for rank, c := range candidates {
		_, err := tx.Exec(ctx, `
			INSERT INTO screener.candidates
				(scan_date, config_hash, rank, symbol, name, kind, sector, theme, score)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, scanDate, configHash, rank+1, c.Symbol, c.Name, string(c.Kind), c.Sector, c.Theme, c.Score)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListByDate returns the candidates of one scan ordered by rank.
func (r *CandidateRepository) ListByDate(ctx context.Context, scanDate time.Time) ([]contracts.Candidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT symbol, name, kind, sector, theme, score
		FROM screener.candidates
		WHERE scan_date = $1
		ORDER BY rank ASC
	`, scanDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCandidates(rows)
}

// ListLatest returns the candidates of the most recent scan.
func (r *CandidateRepository) ListLatest(ctx context.Context) ([]contracts.Candidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT symbol, name, kind, sector, theme, score
		FROM screener.candidates
		WHERE scan_date = (SELECT MAX(scan_date) FROM screener.candidates)
		ORDER BY rank ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCandidates(rows)
}

func scanCandidates(rows pgx.Rows) ([]contracts.Candidate, error) {
	var out []contracts.Candidate
	for rows.Next() {
		var c contracts.Candidate
		var kind string
		if err := rows.Scan(&c.Symbol, &c.Name, &kind, &c.Sector, &c.Theme, &c.Score); err != nil {
			return nil, err
		}
		c.Kind = contracts.Kind(kind)
		out = append(out, c)
	}
	return out, rows.Err()
}
