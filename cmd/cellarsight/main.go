package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const (
	appName = "cellarsight"
	version = "v1.2.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Wine catalog investment enrichment engine",
		Version: version,
		Long: `cellarsight assigns a synthetic investment profile to every priced wine in
the Aionysus catalog: a six-point price trajectory, annual return, volatility
and liquidity scores, a letter rating, a five-year projection, and an analyst
recommendation.

The figures are illustrative, not financial advice: no market data is
ingested and the generated history is synthetic by design.`,
		Run: runDefaultEntry,
	}

	rootCmd.PersistentFlags().String("config", "config/cellarsight.yaml", "Path to application config")

	enrichCmd := &cobra.Command{
		Use:   "enrich",
		Short: "Run the valuation batch over the full catalog",
		Long:  "Resolves a risk profile per wine, synthesizes its price trajectory, scores it, and upserts one investment record per wine",
		RunE:  runEnrich,
	}
	addEnrichFlags(enrichCmd.Flags())

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print top-N listings from persisted investment records",
		RunE:  runReport,
	}
	reportCmd.Flags().Int("top", 10, "Number of entries per listing")

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Start the read-only monitoring HTTP server",
		Long:  "Serves /health, /metrics, and /records/{wineID} for system monitoring and downstream display components",
		RunE:  runMonitor,
	}
	monitorCmd.Flags().String("host", "", "HTTP server host (default from config)")
	monitorCmd.Flags().Int("port", 0, "HTTP server port (default from config)")

	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(monitorCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// addEnrichFlags registers the batch tuning flags shared with config.
func addEnrichFlags(fs *pflag.FlagSet) {
	fs.Int("workers", 0, "Worker pool size (default from config)")
	fs.Int("limit", 0, "Process at most N catalog items (0 = all)")
	fs.Bool("dry-run", false, "Compute records without persisting")
	fs.Int64("seed", 0, "Fixed random seed for reproducible runs (0 = entropy)")
	fs.Int("top", 10, "Number of entries per report listing")
}

// runDefaultEntry routes non-interactive invocations to automation guidance.
func runDefaultEntry(cmd *cobra.Command, args []string) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "cellarsight requires a subcommand in non-interactive use:\n\n")
		fmt.Fprintf(os.Stderr, "   cellarsight enrich --workers 4\n")
		fmt.Fprintf(os.Stderr, "   cellarsight report --top 10\n")
		fmt.Fprintf(os.Stderr, "   cellarsight monitor --port 8080\n\n")
		os.Exit(2)
	}

	_ = cmd.Help()
}
