package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aionysus/cellarsight/internal/persistence"
)

// RunReport packages a run summary with the operator-facing top-N listings.
// Reporting is cosmetic: it never affects what was persisted.
type RunReport struct {
	Summary       *Summary
	TopByReturn   []persistence.RankedWine
	TopClassified []persistence.RankedWine
}

// BuildRunReport fetches the top-N listings for a completed run. summary may
// be nil when reporting on previously persisted records.
func BuildRunReport(ctx context.Context, investments persistence.InvestmentRepo, summary *Summary, topN int) (*RunReport, error) {
	topByReturn, err := investments.ListTopByReturn(ctx, topN)
	if err != nil {
		return nil, fmt.Errorf("failed to build top-by-return report: %w", err)
	}

	topClassified, err := investments.ListTopClassified(ctx, topN)
	if err != nil {
		return nil, fmt.Errorf("failed to build classified report: %w", err)
	}

	return &RunReport{
		Summary:       summary,
		TopByReturn:   topByReturn,
		TopClassified: topClassified,
	}, nil
}

// Format renders the report for the CLI.
func (r *RunReport) Format() string {
	var b strings.Builder

	if r.Summary != nil {
		fmt.Fprintf(&b, "Run %s: %d processed, %d skipped of %d items in %s\n",
			r.Summary.RunID, r.Summary.Processed, r.Summary.Skipped, r.Summary.Total,
			r.Summary.Duration.Round(time.Millisecond))
		if len(r.Summary.FailedIDs) > 0 {
			fmt.Fprintf(&b, "Failed wine ids: %v\n", r.Summary.FailedIDs)
		}
		b.WriteString("\n")
	}

	writeRanked(&b, fmt.Sprintf("Top %d by annual return", len(r.TopByReturn)), r.TopByReturn)
	b.WriteString("\n")
	writeRanked(&b, fmt.Sprintf("Top %d classified growths", len(r.TopClassified)), r.TopClassified)

	return b.String()
}

func writeRanked(b *strings.Builder, title string, wines []persistence.RankedWine) {
	fmt.Fprintf(b, "%s\n", title)
	if len(wines) == 0 {
		b.WriteString("  (no records)\n")
		return
	}

	for i, w := range wines {
		region := ""
		if w.Region != nil {
			region = " - " + *w.Region
		}
		fmt.Fprintf(b, "  %2d. %s%s  %.1f%%/yr  %s %s  £%.2f\n",
			i+1, w.Name, region, w.AnnualReturnPct, w.InvestmentRating,
			w.AnalystRecommendation, w.Price2025)
	}
}
