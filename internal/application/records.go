package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aionysus/cellarsight/internal/cache"
	"github.com/aionysus/cellarsight/internal/persistence"
)

// RecordReader is the read accessor other subsystems (chat, display) depend
// on: investment record by wine id, cached with a short TTL.
type RecordReader struct {
	investments persistence.InvestmentRepo
	cache       cache.Cache
	ttl         time.Duration
}

// NewRecordReader creates a cache-backed record reader.
func NewRecordReader(investments persistence.InvestmentRepo, c cache.Cache, ttl time.Duration) *RecordReader {
	return &RecordReader{
		investments: investments,
		cache:       c,
		ttl:         ttl,
	}
}

// Get returns the investment record for a wine, nil when none exists.
func (r *RecordReader) Get(ctx context.Context, wineID int64) (*persistence.InvestmentRecord, error) {
	key := recordKey(wineID)

	if b, ok := r.cache.Get(key); ok {
		var rec persistence.InvestmentRecord
		if err := json.Unmarshal(b, &rec); err == nil {
			return &rec, nil
		}
		// Corrupt cache entry falls through to the store.
	}

	rec, err := r.investments.GetByWineID(ctx, wineID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	if b, err := json.Marshal(rec); err == nil {
		r.cache.Set(key, b, r.ttl)
	}

	return rec, nil
}

func recordKey(wineID int64) string {
	return fmt.Sprintf("cellarsight:record:%d", wineID)
}
