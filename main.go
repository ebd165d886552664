package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mapscout/internal/maps"
	"mapscout/internal/report"
)

var version = "dev"

var (
	locality     string
	categories   []string
	headless     bool
	maxResults   int
	maxScrolls   int
	timeout      time.Duration
	pollInterval time.Duration
	outputFile   string
	excelFile    string
	outputFormat string
	logFile      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "mapscout",
		Short:   "Collect business listings from Google Maps",
		Version: version,
		Long: `mapscout drives a Chromium browser to search Google Maps for several
business categories in a target locality, scrolls the results feed to load
more cards, extracts name, rating, review count and address from each card,
and exports the deduplicated record sets as JSON, CSV, Markdown, HTML or a
styled Excel workbook.`,
		Example: `  # Default run: gyms, restaurants and ice cream shops in São Paulo
  mapscout

  # Another city, watching the browser work
  mapscout -c "Rio de Janeiro" --headless=false

  # Only restaurants, 10 per category, markdown to a file
  mapscout --category restaurant -n 10 -f markdown -o results.md

  # JSON plus the Excel workbook
  mapscout -o results.json -x results.xlsx`,
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&locality, "locality", "c", "São Paulo", "City/region to search in")
	rootCmd.Flags().StringSliceVar(&categories, "category", []string{"gym", "restaurant", "ice_cream_shop"}, "Business categories to collect (can be used multiple times)")
	rootCmd.Flags().BoolVar(&headless, "headless", true, "Run the browser without a visible window")
	rootCmd.Flags().IntVarP(&maxResults, "max-results", "n", 20, "Maximum records kept per category")
	rootCmd.Flags().IntVar(&maxScrolls, "max-scrolls", 5, "Maximum scroll cycles per category")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 15*time.Second, "Per-wait timeout for rendered conditions")
	rootCmd.Flags().DurationVar(&pollInterval, "poll-interval", 500*time.Millisecond, "Interval between card count checks while waiting")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "results.json", "Output file path (format inferred from extension if -f not specified)")
	rootCmd.Flags().StringVarP(&excelFile, "excel", "x", "", "Also write a styled Excel workbook to this path")
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Output format (json, csv, text, markdown, html)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "mapscout.log", "Log file path (empty to log to stderr only)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if outputFormat == "" {
		outputFormat = inferFormatFromExtension(outputFile)
		if outputFormat == "" {
			outputFormat = "json"
		}
	}
	if err := validateFormat(outputFormat); err != nil {
		return err
	}

	logger, cleanup, err := newLogger(logFile)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := maps.DefaultConfig()
	cfg.Locality = locality
	cfg.Headless = headless
	cfg.MaxResultsPerCategory = maxResults
	cfg.MaxScrolls = maxScrolls
	cfg.ElementWait = timeout
	cfg.PollInterval = pollInterval

	cfg.Categories = cfg.Categories[:0]
	for _, name := range categories {
		cat, err := maps.ParseCategory(name)
		if err != nil {
			return err
		}
		cfg.Categories = append(cfg.Categories, cat)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	collector := maps.NewCollector(cfg, maps.NewDriver(cfg, logger), logger)
	results, runErr := collector.Run(ctx)

	interrupted := runErr != nil && (errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded))
	if runErr != nil && !interrupted {
		return runErr
	}

	// Whatever was aggregated before an interrupt is still exported.
	rep := report.New(cfg.Locality, results)
	if err := writeReports(rep, logger); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"records": results.Total(),
		"elapsed": time.Since(start).Round(time.Second).String(),
	}).Info("done")

	if interrupted {
		logger.Warn("run was interrupted, exported partial results")
	}
	return nil
}

func writeReports(rep *report.Report, logger *logrus.Logger) error {
	content, err := report.Format(rep, outputFormat)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputFile, []byte(content), 0644); err != nil {
		logger.WithError(err).Error("writing report failed")
		return fmt.Errorf("writing %s: %w", outputFile, err)
	}
	logger.WithField("path", outputFile).Info("report written")

	if excelFile != "" {
		if err := rep.WriteExcel(excelFile); err != nil {
			logger.WithError(err).Error("writing workbook failed")
			return err
		}
		logger.WithField("path", excelFile).Info("workbook written")
	}
	return nil
}

// newLogger builds the run logger: DEBUG and above to the log file,
// everything echoed to stderr.
func newLogger(path string) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if path == "" {
		return logger, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, f))
	return logger, func() { f.Close() }, nil
}

func validateFormat(format string) error {
	switch format {
	case "json", "csv", "text", "markdown", "html":
		return nil
	}
	return fmt.Errorf("invalid output format: %s", format)
}

// inferFormatFromExtension infers the output format from the file extension.
func inferFormatFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return "markdown"
	case ".json":
		return "json"
	case ".html", ".htm":
		return "html"
	case ".txt":
		return "text"
	case ".csv":
		return "csv"
	default:
		return ""
	}
}
