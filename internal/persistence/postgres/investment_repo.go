package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/aionysus/cellarsight/internal/persistence"
)

// investmentRepo implements InvestmentRepo for PostgreSQL.
type investmentRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewInvestmentRepo creates a PostgreSQL investment record repository.
func NewInvestmentRepo(db *sqlx.DB, timeout time.Duration) persistence.InvestmentRepo {
	return &investmentRepo{
		db:      db,
		timeout: timeout,
	}
}

// Upsert writes the record keyed by wine_id, overwriting all fields and
// refreshing last_updated on conflict.
func (r *investmentRepo) Upsert(ctx context.Context, rec persistence.InvestmentRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if rec.VolatilityScore < 1 || rec.VolatilityScore > 10 {
		return fmt.Errorf("volatility score outside [1,10]: %d", rec.VolatilityScore)
	}
	if rec.LiquidityScore < 1 || rec.LiquidityScore > 10 {
		return fmt.Errorf("liquidity score outside [1,10]: %d", rec.LiquidityScore)
	}

	query := `
		INSERT INTO wine_investments
		(wine_id, price_2020, price_2021, price_2022, price_2023, price_2024, price_2025,
		 annual_return_pct, volatility_score, liquidity_score, investment_rating,
		 projected_5yr_return, analyst_recommendation, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (wine_id) DO UPDATE SET
			price_2020 = EXCLUDED.price_2020,
			price_2021 = EXCLUDED.price_2021,
			price_2022 = EXCLUDED.price_2022,
			price_2023 = EXCLUDED.price_2023,
			price_2024 = EXCLUDED.price_2024,
			price_2025 = EXCLUDED.price_2025,
			annual_return_pct = EXCLUDED.annual_return_pct,
			volatility_score = EXCLUDED.volatility_score,
			liquidity_score = EXCLUDED.liquidity_score,
			investment_rating = EXCLUDED.investment_rating,
			projected_5yr_return = EXCLUDED.projected_5yr_return,
			analyst_recommendation = EXCLUDED.analyst_recommendation,
			last_updated = EXCLUDED.last_updated
		RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		rec.WineID, rec.Price2020, rec.Price2021, rec.Price2022, rec.Price2023,
		rec.Price2024, rec.Price2025, rec.AnnualReturnPct, rec.VolatilityScore,
		rec.LiquidityScore, rec.InvestmentRating, rec.Projected5yrReturn,
		rec.AnalystRecommendation, rec.LastUpdated).
		Scan(&rec.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return fmt.Errorf("wine %d not in catalog: %w", rec.WineID, err)
		}
		return fmt.Errorf("failed to upsert investment record: %w", err)
	}

	return nil
}

// GetByWineID retrieves the record for a wine, nil when absent.
func (r *investmentRepo) GetByWineID(ctx context.Context, wineID int64) (*persistence.InvestmentRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, wine_id, price_2020, price_2021, price_2022, price_2023,
		       price_2024, price_2025, annual_return_pct, volatility_score,
		       liquidity_score, investment_rating, projected_5yr_return,
		       analyst_recommendation, last_updated
		FROM wine_investments
		WHERE wine_id = $1`

	var rec persistence.InvestmentRecord
	if err := r.db.GetContext(ctx, &rec, query, wineID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get investment record: %w", err)
	}

	return &rec, nil
}

const rankedColumns = `
		SELECT i.wine_id, w.name, w.region, w.classification, i.price_2025,
		       i.annual_return_pct, i.investment_rating, i.analyst_recommendation
		FROM wine_investments i
		JOIN wines w ON w.id = i.wine_id`

// ListTopByReturn retrieves the highest annual-return records.
func (r *investmentRepo) ListTopByReturn(ctx context.Context, limit int) ([]persistence.RankedWine, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := rankedColumns + `
		WHERE w.is_active = true
		ORDER BY i.annual_return_pct DESC, i.wine_id
		LIMIT $1`

	var ranked []persistence.RankedWine
	if err := r.db.SelectContext(ctx, &ranked, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list top records by return: %w", err)
	}

	return ranked, nil
}

// ListTopClassified retrieves the highest annual-return records among wines
// carrying a classification label.
func (r *investmentRepo) ListTopClassified(ctx context.Context, limit int) ([]persistence.RankedWine, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := rankedColumns + `
		WHERE w.is_active = true AND w.classification IS NOT NULL AND w.classification <> ''
		ORDER BY i.annual_return_pct DESC, i.wine_id
		LIMIT $1`

	var ranked []persistence.RankedWine
	if err := r.db.SelectContext(ctx, &ranked, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list top classified records: %w", err)
	}

	return ranked, nil
}

// Count returns the number of persisted records.
func (r *investmentRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var count int64
	if err := r.db.QueryRowxContext(ctx, `SELECT COUNT(*) FROM wine_investments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count investment records: %w", err)
	}

	return count, nil
}
