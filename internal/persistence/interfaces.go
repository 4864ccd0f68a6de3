package persistence

import (
	"context"
	"time"
)

// Wine is the read-only catalog projection the valuation engine consumes.
// The wines table itself is owned by the catalog store; nullable columns map
// to pointers.
type Wine struct {
	ID             int64    `json:"id" db:"id"`
	Name           string   `json:"name" db:"name"`
	Slug           string   `json:"slug" db:"slug"`
	Winery         *string  `json:"winery,omitempty" db:"winery"`
	Region         *string  `json:"region,omitempty" db:"region"`
	Country        *string  `json:"country,omitempty" db:"country"`
	Classification *string  `json:"classification,omitempty" db:"classification"`
	Vintage        *int     `json:"vintage,omitempty" db:"vintage"`
	PriceRetail    *float64 `json:"price_retail,omitempty" db:"price_retail"`
}

// InvestmentRecord is the engine's output: one row per wine, overwritten on
// every enrichment run. Scores are clamped to [1,10]; Price2025 equals the
// wine's retail price at computation time.
type InvestmentRecord struct {
	ID                    int64     `json:"id" db:"id"`
	WineID                int64     `json:"wine_id" db:"wine_id"`
	Price2020             float64   `json:"price_2020" db:"price_2020"`
	Price2021             float64   `json:"price_2021" db:"price_2021"`
	Price2022             float64   `json:"price_2022" db:"price_2022"`
	Price2023             float64   `json:"price_2023" db:"price_2023"`
	Price2024             float64   `json:"price_2024" db:"price_2024"`
	Price2025             float64   `json:"price_2025" db:"price_2025"`
	AnnualReturnPct       float64   `json:"annual_return_pct" db:"annual_return_pct"`
	VolatilityScore       int       `json:"volatility_score" db:"volatility_score"`
	LiquidityScore        int       `json:"liquidity_score" db:"liquidity_score"`
	InvestmentRating      string    `json:"investment_rating" db:"investment_rating"`
	Projected5yrReturn    float64   `json:"projected_5yr_return" db:"projected_5yr_return"`
	AnalystRecommendation string    `json:"analyst_recommendation" db:"analyst_recommendation"`
	LastUpdated           time.Time `json:"last_updated" db:"last_updated"`
}

// Prices returns the trajectory oldest-first.
func (r *InvestmentRecord) Prices() [6]float64 {
	return [6]float64{r.Price2020, r.Price2021, r.Price2022, r.Price2023, r.Price2024, r.Price2025}
}

// RankedWine is an investment record joined with catalog identity, used by
// the top-N reports.
type RankedWine struct {
	WineID                int64   `json:"wine_id" db:"wine_id"`
	Name                  string  `json:"name" db:"name"`
	Region                *string `json:"region,omitempty" db:"region"`
	Classification        *string `json:"classification,omitempty" db:"classification"`
	Price2025             float64 `json:"price_2025" db:"price_2025"`
	AnnualReturnPct       float64 `json:"annual_return_pct" db:"annual_return_pct"`
	InvestmentRating      string  `json:"investment_rating" db:"investment_rating"`
	AnalystRecommendation string  `json:"analyst_recommendation" db:"analyst_recommendation"`
}

// WineRepo is the read-only surface over the external catalog store.
type WineRepo interface {
	// ListActive retrieves active catalog wines ordered by id. A limit of 0
	// means no limit. Price filtering is left to the caller: the batch
	// runner counts unpriced items as skips instead of hiding them.
	ListActive(ctx context.Context, limit int) ([]Wine, error)

	// GetByID retrieves a single active wine, nil when absent.
	GetByID(ctx context.Context, id int64) (*Wine, error)
}

// InvestmentRepo persists and serves enrichment results.
type InvestmentRepo interface {
	// Upsert writes the record keyed by wine_id, overwriting all fields and
	// refreshing last_updated on conflict. Atomic per item.
	Upsert(ctx context.Context, rec InvestmentRecord) error

	// GetByWineID retrieves the record for a wine, nil when absent. This is
	// the sole read interface other subsystems may depend on.
	GetByWineID(ctx context.Context, wineID int64) (*InvestmentRecord, error)

	// ListTopByReturn retrieves the highest annual-return records joined
	// with catalog identity.
	ListTopByReturn(ctx context.Context, limit int) ([]RankedWine, error)

	// ListTopClassified retrieves the highest annual-return records among
	// wines carrying a classification label.
	ListTopClassified(ctx context.Context, limit int) ([]RankedWine, error)

	// Count returns the number of persisted records.
	Count(ctx context.Context) (int64, error)
}

// Repository aggregates all persistence interfaces.
type Repository struct {
	Wines       WineRepo
	Investments InvestmentRepo
}

// HealthCheck represents repository health status
type HealthCheck struct {
	Healthy        bool           `json:"healthy"`
	Errors         []string       `json:"errors,omitempty"`
	ConnectionPool map[string]int `json:"connection_pool"`
	LastCheck      time.Time      `json:"last_check"`
	ResponseTimeMS int64          `json:"response_time_ms"`
}

// RepositoryHealth provides health monitoring for the persistence layer
type RepositoryHealth interface {
	// Health returns current repository health status
	Health(ctx context.Context) HealthCheck

	// Ping tests basic connectivity to the database
	Ping(ctx context.Context) error

	// Stats returns connection pool and query statistics
	Stats(ctx context.Context) map[string]interface{}
}
