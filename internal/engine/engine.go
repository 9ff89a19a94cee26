// Package engine fans a run's targets out over a bounded worker pool and
// assembles the combined result. One target failing (or panicking) never
// takes down the others.
package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/newswatch-cli/internal/fetch"
	"github.com/sells-group/newswatch-cli/internal/model"
	"github.com/sells-group/newswatch-cli/internal/paginate"
	"github.com/sells-group/newswatch-cli/internal/sites"
)

type Options struct {
	// Concurrency caps simultaneous targets. Defaults to 3.
	Concurrency int

	// RunTimeout bounds the whole run. Zero means no deadline.
	RunTimeout time.Duration

	// PageDelay is the politeness pause between pages of one target.
	PageDelay time.Duration
}

type Engine struct {
	registry *sites.Registry
	static   fetch.Fetcher
	browsers fetch.SessionPool
	pager    *paginate.Controller
	opts     Options
}

func New(registry *sites.Registry, static fetch.Fetcher, browsers fetch.SessionPool, opts Options) *Engine {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 3
	}
	return &Engine{
		registry: registry,
		static:   static,
		browsers: browsers,
		pager:    paginate.NewController(opts.PageDelay),
		opts:     opts,
	}
}

// targetOutcome is one worker's result, written into a pre-sized slice so
// report order matches input order.
type targetOutcome struct {
	target   model.ScrapeTarget
	strategy string
	state    *paginate.RunState
	err      error
	elapsed  time.Duration
}

// Run scrapes every target in input and returns the combined records plus
// a per-target report. The only error cases are an empty target list and
// cancellation of ctx itself; individual target failures are reported,
// not returned.
func (e *Engine) Run(ctx context.Context, input model.RunInput) (*model.RunResult, error) {
	targets := input.Targets()
	if len(targets) == 0 {
		return nil, eris.New("engine: no target URLs to scrape")
	}
	maxPages, _ := input.ClampedMaxPages()

	log := zap.L().With(zap.String("component", "engine"))
	runID := uuid.New().String()
	started := time.Now().UTC()

	if e.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.RunTimeout)
		defer cancel()
	}

	log.Info("run starting",
		zap.String("run_id", runID),
		zap.String("query", input.Query),
		zap.Int("targets", len(targets)),
		zap.Int("max_pages", maxPages),
		zap.Int("concurrency", e.opts.Concurrency),
	)

	outcomes := make([]targetOutcome, len(targets))
	var done, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for i, t := range targets {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				outcomes[i] = targetOutcome{
					target: t,
					err:    eris.Wrap(gctx.Err(), "engine: run cancelled before target started"),
				}
				failed.Add(1)
				return nil
			default:
			}

			out := e.runTarget(gctx, t)
			outcomes[i] = out
			if out.err != nil {
				failed.Add(1)
			} else {
				done.Add(1)
			}
			return nil // don't abort other targets
		})
	}
	_ = g.Wait()

	records := make([]model.ArticleRecord, 0)
	report := model.RunReport{
		RunID:     runID,
		Query:     input.Query,
		MaxPages:  maxPages,
		StartedAt: started,
		Targets:   make([]model.TargetResult, 0, len(targets)),
	}
	for _, out := range outcomes {
		tr := model.TargetResult{
			URL:      out.target.URL,
			Strategy: out.strategy,
			Elapsed:  out.elapsed.Milliseconds(),
		}
		if out.state != nil {
			tr.PagesFetched = out.state.PagesFetched
		}
		if out.err != nil {
			tr.Status = model.TargetStatusFailed
			tr.Error = out.err.Error()
		} else {
			tr.Status = model.TargetStatusDone
			if out.state != nil {
				recs := out.state.Records()
				tr.Records = len(recs)
				records = append(records, recs...)
			}
		}
		report.Targets = append(report.Targets, tr)
	}
	report.TargetsDone = int(done.Load())
	report.TargetsFail = int(failed.Load())
	report.TotalRecords = len(records)
	report.Elapsed = time.Since(started).Milliseconds()

	log.Info("run complete",
		zap.String("run_id", runID),
		zap.Int64("targets_done", done.Load()),
		zap.Int64("targets_failed", failed.Load()),
		zap.Int("records", len(records)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return &model.RunResult{Records: records, Report: report}, nil
}

// runTarget resolves the strategy, picks the fetcher for its mode, and
// pages through results. A panic anywhere inside is converted into a
// target failure.
func (e *Engine) runTarget(ctx context.Context, target model.ScrapeTarget) (out targetOutcome) {
	out.target = target
	start := time.Now()
	defer func() {
		out.elapsed = time.Since(start)
		if r := recover(); r != nil {
			out.err = eris.Errorf("engine: target %s panicked: %v", target.URL, r)
			zap.L().Error("target panicked",
				zap.String("component", "engine"),
				zap.String("target", target.URL),
				zap.Any("panic", r),
			)
		}
	}()

	log := zap.L().With(zap.String("component", "engine"), zap.String("target", target.URL))

	strat := e.registry.Resolve(target.URL)
	out.strategy = strat.Name()
	log.Info("target starting",
		zap.String("strategy", strat.Name()),
		zap.String("mode", string(strat.Mode())),
	)

	f := e.static
	if strat.Mode() == fetch.ModeRendered {
		sess, err := e.browsers.Acquire(ctx)
		if err != nil {
			out.err = eris.Wrap(err, "engine: acquire browser session")
			return out
		}
		defer e.browsers.Release(sess)
		f = fetch.NewRendered(sess)
	}

	state, err := e.pager.Run(ctx, target, strat, f)
	out.state = state
	if err != nil {
		out.err = err
		return out
	}
	// A fetch failure mid-pagination leaves partial results and counts as
	// done; failing before anything was collected fails the target.
	if state.Count() == 0 && state.FetchErr != nil {
		out.err = state.FetchErr
		return out
	}

	log.Info("target complete",
		zap.Int("pages", state.PagesFetched),
		zap.Int("records", state.Count()),
	)
	return out
}
