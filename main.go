package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"seo-toolkit/config"
	"seo-toolkit/crawler"
	"seo-toolkit/database"
	"seo-toolkit/keyword"
	"seo-toolkit/metrics"
	"seo-toolkit/mobile"
	"seo-toolkit/models"
	"seo-toolkit/onpage"
	"seo-toolkit/performance"
	"seo-toolkit/report"
	"seo-toolkit/server"
)

var (
	cfg        *config.Config
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "seo-toolkit",
	Short: "Keyword, performance, mobile and on-page SEO scoring",
	Long: `seo-toolkit estimates keyword metrics, generates keyword ideas, scores
page load timing and mobile responsiveness, and audits live pages.
Results can be printed, served over HTTP, or stored in PostgreSQL.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	},
}

func init() {
	cfg = config.Load()

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")

	rootCmd.AddCommand(estimateCmd(), suggestCmd(), perfCmd(), mobileCmd(), onpageCmd(), auditCmd(), serveCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func estimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estimate <keyword>...",
		Short: "Estimate search volume and difficulty for keywords",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := keyword.NewEstimator(nil).EstimateAll(args)

			if db := openStore(); db != nil {
				defer db.Close()
				for _, m := range results {
					if err := db.SaveKeywordEstimate(cmd.Context(), m); err != nil {
						slog.Error("failed to save keyword estimate", "keyword", m.Keyword, "error", err)
					}
				}
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), results)
			}
			report.Keywords(cmd.OutOrStdout(), results)
			return nil
		},
	}
}

func suggestCmd() *cobra.Command {
	var withMetrics bool

	cmd := &cobra.Command{
		Use:   "suggest <niche>",
		Short: "Generate long-tail, question and buying-intent keyword ideas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suggestions := keyword.Suggest(args[0])

			var estimates []models.KeywordMetrics
			if withMetrics {
				estimates = keyword.NewEstimator(nil).EstimateAll(keyword.All(suggestions))
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"niche":       args[0],
					"suggestions": suggestions,
					"metrics":     estimates,
				})
			}
			if withMetrics {
				report.Keywords(cmd.OutOrStdout(), estimates)
				return nil
			}
			report.Suggestions(cmd.OutOrStdout(), suggestions)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "Estimate metrics for every suggestion")
	return cmd
}

func perfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "perf <timing.json>",
		Short: "Score navigation timing captured from a browser ('-' reads stdin)",
		Long: `perf reads a JSON object with the navigation timestamps navigationStart,
requestStart, responseEnd, domLoading, domContentLoadedEventEnd, domComplete
and loadEventEnd (milliseconds) and prints the performance report. A null
document means the browser had no timing support.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			var timing *models.NavigationTiming
			if err := json.Unmarshal(raw, &timing); err != nil {
				return fmt.Errorf("failed to parse timing: %w", err)
			}

			var src performance.TimingSource
			if timing != nil {
				src = performance.StaticTiming(*timing)
			}
			result, err := performance.Analyze(src)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}
			report.Performance(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func mobileCmd() *cobra.Command {
	var facts models.ResponsivenessFacts

	cmd := &cobra.Command{
		Use:   "mobile",
		Short: "Score mobile responsiveness from collected page facts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := mobile.Score(facts)
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}
			report.Mobile(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&facts.HasViewportTag, "viewport", false, "Page has a viewport meta tag")
	cmd.Flags().BoolVar(&facts.HasMediaQueries, "media", false, "Page stylesheets contain media queries")
	cmd.Flags().BoolVar(&facts.HasFlexboxUsage, "flex", false, "Some element uses flex display")
	cmd.Flags().IntVar(&facts.ViewportWidth, "width", cfg.ViewportWidth, "Window inner width in CSS pixels")
	return cmd
}

func onpageCmd() *cobra.Command {
	var (
		in      models.OnPageInput
		pageURL string
	)

	cmd := &cobra.Command{
		Use:   "onpage",
		Short: "Score title, meta description and content length",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pageURL != "" {
				page, err := newFetcher().Fetch(cmd.Context(), pageURL)
				if err != nil {
					return err
				}
				in = onpage.FromDocument(page.Doc)
			}

			result := onpage.Score(in)
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}
			report.OnPage(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Page title")
	cmd.Flags().StringVar(&in.MetaDescription, "meta", "", "Meta description")
	cmd.Flags().StringVar(&in.Content, "content", "", "Body text")
	cmd.Flags().StringVar(&pageURL, "url", "", "Fetch the page and score its title, description and body text")
	return cmd
}

func auditCmd() *cobra.Command {
	var (
		depth    int
		maxPages int
	)

	cmd := &cobra.Command{
		Use:   "audit <url>...",
		Short: "Fetch pages and run every scorer against them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			var store crawler.Store
			if db := openStore(); db != nil {
				defer db.Close()
				store = db
			}

			auditor := crawler.NewAuditor(newFetcher(), store, cfg.Workers, cfg.ViewportWidth)
			auditor.MaxPages = maxPages

			slog.Info("starting audit", "urls", len(args), "depth", depth, "workers", cfg.Workers)
			audits, stats, err := auditor.AuditAll(ctx, args, depth)
			if errors.Is(err, context.Canceled) {
				slog.Warn("audit interrupted, reporting partial results")
			} else if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{"audits": audits, "stats": stats})
			}
			for _, a := range audits {
				report.Audit(cmd.OutOrStdout(), a)
			}
			report.Summary(cmd.OutOrStdout(), audits, stats)
			return nil
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 0, "Follow same-host links this many levels deep")
	cmd.Flags().IntVar(&maxPages, "max-pages", 100, "Audit at most this many pages, seeds included (0 for no limit)")
	cmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of concurrent workers")
	cmd.Flags().IntVar(&cfg.ViewportWidth, "width", cfg.ViewportWidth, "Window inner width assumed for the mobile check")
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scoring API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
				return fmt.Errorf("failed to register metrics: %w", err)
			}

			opts := server.Options{Estimator: keyword.NewEstimator(nil)}
			var store crawler.Store
			if db := openStore(); db != nil {
				defer db.Close()
				store = db
				opts.Audits = db
				opts.Keywords = db
			}
			opts.Auditor = crawler.NewAuditor(newFetcher(), store, cfg.Workers, cfg.ViewportWidth)

			err := server.New(opts).ListenAndServe(ctx, cfg.ListenAddr)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&cfg.ListenAddr, "addr", cfg.ListenAddr, "Listen address")
	return cmd
}

// openStore connects to PostgreSQL when DATABASE_URL is set. A failed
// connection is logged and persistence is skipped.
func openStore() *database.PostgresDB {
	if cfg.DatabaseURL == "" {
		return nil
	}
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database, results will not be stored", "error", err)
		return nil
	}
	return db
}

func newFetcher() *crawler.Fetcher {
	return crawler.NewFetcher(cfg.UserAgent, time.Duration(cfg.RequestTimeout)*time.Second, cfg.RateLimit)
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			slog.Info("shutting down gracefully")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
