package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aionysus/cellarsight/internal/persistence"
)

// winesRepo implements WineRepo over the catalog's wines table. Reads only;
// the catalog store owns the schema.
type winesRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewWinesRepo creates a PostgreSQL wine catalog reader.
func NewWinesRepo(db *sqlx.DB, timeout time.Duration) persistence.WineRepo {
	return &winesRepo{
		db:      db,
		timeout: timeout,
	}
}

const wineColumns = `id, name, slug, winery, region, country, classification, vintage, price_retail`

// ListActive retrieves active catalog wines ordered by id.
func (r *winesRepo) ListActive(ctx context.Context, limit int) ([]persistence.Wine, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT ` + wineColumns + `
		FROM wines
		WHERE is_active = true
		ORDER BY id`
	args := []interface{}{}

	if limit > 0 {
		query += `
		LIMIT $1`
		args = append(args, limit)
	}

	var wines []persistence.Wine
	if err := r.db.SelectContext(ctx, &wines, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list active wines: %w", err)
	}

	return wines, nil
}

// GetByID retrieves a single active wine, nil when absent.
func (r *winesRepo) GetByID(ctx context.Context, id int64) (*persistence.Wine, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT ` + wineColumns + `
		FROM wines
		WHERE id = $1 AND is_active = true`

	var wine persistence.Wine
	if err := r.db.GetContext(ctx, &wine, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wine by id: %w", err)
	}

	return &wine, nil
}
