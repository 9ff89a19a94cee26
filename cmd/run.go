package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/newswatch-cli/internal/config"
	"github.com/sells-group/newswatch-cli/internal/engine"
	"github.com/sells-group/newswatch-cli/internal/fetch"
	"github.com/sells-group/newswatch-cli/internal/model"
	"github.com/sells-group/newswatch-cli/internal/sink"
	"github.com/sells-group/newswatch-cli/internal/sites"
	"github.com/sells-group/newswatch-cli/pkg/browser"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape search results for a query across the given sites",
	Long:  "Reads target URLs and a query from an input file or flags, scrapes each site's search pagination concurrently, and writes the combined records to the configured store.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "run"))

		input, err := buildInput(cmd)
		if err != nil {
			return err
		}
		if _, clamped := input.ClampedMaxPages(); clamped {
			log.Warn("max_pages out of range, clamped",
				zap.Int("requested", input.MaxPages),
				zap.Int("limit", model.MaxPagesLimit),
			)
		}

		storeCfg := cfg.Store
		if dir, _ := cmd.Flags().GetString("out"); dir != "" {
			storeCfg.Dir = dir
		}
		if driver, _ := cmd.Flags().GetString("store"); driver != "" {
			storeCfg.Driver = driver
		}
		out, err := sink.New(ctx, storeCfg)
		if err != nil {
			return err
		}
		defer out.Close()

		concurrency := cfg.Scrape.Concurrency
		if n, _ := cmd.Flags().GetInt("concurrency"); n > 0 {
			concurrency = n
		}
		timeout := time.Duration(cfg.Scrape.TimeoutSecs) * time.Second
		if secs, _ := cmd.Flags().GetInt("timeout"); secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}

		static := fetch.NewStatic(fetch.StaticOptions{
			UserAgent:   cfg.Scrape.UserAgent,
			Timeout:     time.Duration(cfg.Scrape.FetchTimeoutSecs) * time.Second,
			RatePerHost: rate.Limit(cfg.Scrape.RatePerHost),
			RateBurst:   cfg.Scrape.RateBurst,
		})
		browsers, err := browser.NewPool(browser.Options{
			PoolSize:   cfg.Browser.PoolSize,
			Headless:   cfg.Browser.Headless,
			NavTimeout: time.Duration(cfg.Browser.NavTimeoutSecs) * time.Second,
		})
		if err != nil {
			return err
		}
		defer browsers.Close()

		eng := engine.New(sites.Default(), static, browsers, engine.Options{
			Concurrency: concurrency,
			RunTimeout:  timeout,
			PageDelay:   time.Duration(cfg.Scrape.PageDelaySecs) * time.Second,
		})
		res, err := eng.Run(ctx, *input)
		if err != nil {
			return err
		}
		if err := out.Write(ctx, res); err != nil {
			return err
		}

		writeSummary(os.Stdout, res)
		return nil
	},
}

// buildInput assembles the run input from --input plus flag overrides.
// Flags win over file fields so a saved input can be re-run with a
// different query without editing it.
func buildInput(cmd *cobra.Command) (*model.RunInput, error) {
	var input model.RunInput

	if path, _ := cmd.Flags().GetString("input"); path != "" {
		loaded, err := config.LoadInput(path)
		if err != nil {
			return nil, err
		}
		input = *loaded
	}

	if urls, _ := cmd.Flags().GetStringSlice("url"); len(urls) > 0 {
		input.URLs = urls
	}
	if query, _ := cmd.Flags().GetString("query"); query != "" {
		input.Query = query
	}
	if cmd.Flags().Changed("max-pages") {
		input.MaxPages, _ = cmd.Flags().GetInt("max-pages")
	}

	if len(input.URLs) == 0 {
		return nil, eris.New("run: no urls given (use --input or --url)")
	}
	if err := config.ValidateInput(&input); err != nil {
		return nil, err
	}
	return &input, nil
}

func writeSummary(w io.Writer, res *model.RunResult) {
	r := res.Report
	fmt.Fprintf(w, "Run %s: %d articles from %d/%d targets in %dms\n",
		r.RunID, r.TotalRecords, r.TargetsDone, len(r.Targets), r.Elapsed)
	for _, t := range r.Targets {
		if t.Status == model.TargetStatusFailed {
			fmt.Fprintf(w, "  FAIL %-40s %s\n", t.URL, t.Error)
			continue
		}
		fmt.Fprintf(w, "  ok   %-40s %3d records, %d pages (%s)\n",
			t.URL, t.Records, t.PagesFetched, t.Strategy)
	}
}

func init() {
	f := runCmd.Flags()
	f.String("input", "", "input file with urls, query, and maxPages (json or yaml)")
	f.StringSlice("url", nil, "target search page url (repeatable, overrides input file)")
	f.String("query", "", "search query (overrides input file)")
	f.Int("max-pages", model.DefaultMaxPages, "pages to walk per target (1-10)")
	f.String("out", "", "dataset output directory (default: store.dir config)")
	f.String("store", "", "store driver: dataset, sqlite, or postgres (default: config)")
	f.Int("concurrency", 0, "concurrent targets (default: scrape.concurrency config)")
	f.Int("timeout", 0, "whole-run timeout in seconds (0 = no limit)")
	rootCmd.AddCommand(runCmd)
}
