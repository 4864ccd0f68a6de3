package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/aionysus/cellarsight/internal/persistence"
	"github.com/aionysus/cellarsight/internal/reliability"
	"github.com/aionysus/cellarsight/internal/telemetry"
	"github.com/aionysus/cellarsight/internal/valuation"
)

// EnrichConfig tunes the enrichment batch runner.
type EnrichConfig struct {
	Workers       int
	ItemTimeout   time.Duration
	WriteRPS      float64
	WriteBurst    int
	RetryAttempts int
	RetryBackoff  time.Duration
	Limit         int
	DryRun        bool
	MaxFailedIDs  int
}

// DefaultEnrichConfig returns the production defaults.
func DefaultEnrichConfig() EnrichConfig {
	return EnrichConfig{
		Workers:       4,
		ItemTimeout:   10 * time.Second,
		WriteRPS:      25,
		WriteBurst:    5,
		RetryAttempts: 3,
		RetryBackoff:  250 * time.Millisecond,
		MaxFailedIDs:  20,
	}
}

// Summary is the operator-facing result of one enrichment run.
type Summary struct {
	RunID     string        `json:"run_id"`
	Total     int           `json:"total"`
	Processed int           `json:"processed"`
	Skipped   int           `json:"skipped"`
	FailedIDs []int64       `json:"failed_ids,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// EnrichPipeline runs the valuation engine over the catalog: resolve profile,
// jitter metrics once, synthesize the trajectory, score, and upsert one
// record per wine. Items are independent; a bounded worker pool fans them out
// and a token-bucket limiter paces writes against the shared database.
type EnrichPipeline struct {
	repos    *persistence.Repository
	resolver *valuation.Resolver
	src      valuation.Source
	limiter  *rate.Limiter
	breaker  *reliability.Breaker
	metrics  *telemetry.Metrics
	config   EnrichConfig
}

// NewEnrichPipeline creates the batch runner. metrics may be nil.
func NewEnrichPipeline(repos *persistence.Repository, resolver *valuation.Resolver, src valuation.Source, metrics *telemetry.Metrics, config EnrichConfig) *EnrichPipeline {
	return &EnrichPipeline{
		repos:    repos,
		resolver: resolver,
		src:      src,
		limiter:  rate.NewLimiter(rate.Limit(config.WriteRPS), config.WriteBurst),
		breaker:  reliability.New("wine_investments"),
		metrics:  metrics,
		config:   config,
	}
}

// Run enriches the full catalog. Per-item failures are contained: they are
// logged with the wine id, counted as skips, and never abort the batch. Only
// failure to fetch the catalog stream itself is fatal.
func (p *EnrichPipeline) Run(ctx context.Context) (*Summary, error) {
	runID := uuid.NewString()
	start := time.Now()

	if p.metrics != nil {
		p.metrics.TotalRuns.Inc()
		p.metrics.ActiveRuns.Inc()
		defer p.metrics.ActiveRuns.Dec()
	}

	wines, err := p.repos.Wines.ListActive(ctx, p.config.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog items: %w", err)
	}

	log.Info().
		Str("run_id", runID).
		Int("items", len(wines)).
		Int("workers", p.config.Workers).
		Bool("dry_run", p.config.DryRun).
		Msg("Starting enrichment run")

	var processed, skipped atomic.Int64
	var failedMu sync.Mutex
	var failedIDs []int64

	recordFailure := func(wineID int64) {
		failedMu.Lock()
		defer failedMu.Unlock()
		if len(failedIDs) < p.config.MaxFailedIDs {
			failedIDs = append(failedIDs, wineID)
		}
	}

	jobs := make(chan persistence.Wine)
	var wg sync.WaitGroup

	for i := 0; i < p.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for wine := range jobs {
				p.processItem(ctx, runID, wine, &processed, &skipped, recordFailure)
			}
		}()
	}

feed:
	for _, wine := range wines {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- wine:
		}
	}
	close(jobs)
	wg.Wait()

	summary := &Summary{
		RunID:     runID,
		Total:     len(wines),
		Processed: int(processed.Load()),
		Skipped:   int(skipped.Load()),
		FailedIDs: failedIDs,
		Duration:  time.Since(start),
	}

	log.Info().
		Str("run_id", runID).
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Dur("duration", summary.Duration).
		Msg("Enrichment run completed")

	return summary, ctx.Err()
}

// processItem handles one wine end to end. Unpriced items are skips, not
// errors; persistence failures are contained here.
func (p *EnrichPipeline) processItem(ctx context.Context, runID string, wine persistence.Wine, processed, skipped *atomic.Int64, recordFailure func(int64)) {
	if wine.PriceRetail == nil || *wine.PriceRetail <= 0 {
		skipped.Add(1)
		p.countSkip(telemetry.SkipReasonNoPrice)
		log.Debug().Str("run_id", runID).Int64("wine_id", wine.ID).Msg("Skipping unpriced wine")
		return
	}

	computeStart := time.Now()
	rec := p.buildRecord(wine, time.Now().UTC())
	p.observeStep("compute", computeStart)

	if p.config.DryRun {
		processed.Add(1)
		return
	}

	itemCtx, cancel := context.WithTimeout(ctx, p.config.ItemTimeout)
	defer cancel()

	persistStart := time.Now()
	err := p.limiter.Wait(itemCtx)
	if err == nil {
		err = p.persistWithRetry(itemCtx, rec)
	}
	p.observeStep("persist", persistStart)

	if err != nil {
		skipped.Add(1)
		p.countSkip(telemetry.SkipReasonPersistError)
		recordFailure(wine.ID)
		log.Warn().
			Err(err).
			Str("run_id", runID).
			Int64("wine_id", wine.ID).
			Msg("Failed to persist investment record")
		return
	}

	processed.Add(1)
	if p.metrics != nil {
		p.metrics.ItemsProcessed.Inc()
	}
}

// buildRecord is the pure valuation path: resolve, jitter ONCE, synthesize,
// score. The jittered metrics are exactly what gets persisted.
func (p *EnrichPipeline) buildRecord(wine persistence.Wine, now time.Time) persistence.InvestmentRecord {
	profile, _ := p.resolver.Resolve(deref(wine.Region), deref(wine.Country))
	multiplier := p.resolver.ClassificationMultiplier(deref(wine.Classification), wine.Name)

	metrics := valuation.JitterMetrics(profile, multiplier, p.src)
	prices := valuation.Synthesize(*wine.PriceRetail, metrics.AnnualReturnPct, metrics.VolatilityScore, p.src)

	score := valuation.Score(metrics.AnnualReturnPct, metrics.VolatilityScore, metrics.LiquidityScore)
	rating := valuation.Rate(score)

	return persistence.InvestmentRecord{
		WineID:                wine.ID,
		Price2020:             prices[0],
		Price2021:             prices[1],
		Price2022:             prices[2],
		Price2023:             prices[3],
		Price2024:             prices[4],
		Price2025:             prices[5],
		AnnualReturnPct:       metrics.AnnualReturnPct,
		VolatilityScore:       metrics.VolatilityScore,
		LiquidityScore:        metrics.LiquidityScore,
		InvestmentRating:      string(rating),
		Projected5yrReturn:    valuation.ProjectFiveYear(metrics.AnnualReturnPct, p.src),
		AnalystRecommendation: string(valuation.Recommend(rating, metrics.AnnualReturnPct)),
		LastUpdated:           now,
	}
}

// persistWithRetry upserts through the breaker with bounded backoff. Breaker
// rejections are not retried; the next items will fail fast until it
// half-opens.
func (p *EnrichPipeline) persistWithRetry(ctx context.Context, rec persistence.InvestmentRecord) error {
	var lastErr error

	for attempt := 1; attempt <= p.config.RetryAttempts; attempt++ {
		err := p.breaker.Do(func() error {
			return p.repos.Investments.Upsert(ctx, rec)
		})
		if err == nil {
			return nil
		}
		lastErr = err

		if reliability.IsOpen(err) {
			return err
		}
		if attempt == p.config.RetryAttempts {
			break
		}

		if p.metrics != nil {
			p.metrics.UpsertRetries.Inc()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.config.RetryBackoff * time.Duration(attempt)):
		}
	}

	return lastErr
}

func (p *EnrichPipeline) countSkip(reason string) {
	if p.metrics != nil {
		p.metrics.ItemsSkipped.WithLabelValues(reason).Inc()
	}
}

func (p *EnrichPipeline) observeStep(step string, start time.Time) {
	if p.metrics != nil {
		p.metrics.StepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
