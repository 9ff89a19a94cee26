// Package paginate walks a site's result pages for one target,
// accumulating deduplicated records until a stop condition is hit.
package paginate

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/newswatch-cli/internal/fetch"
	"github.com/sells-group/newswatch-cli/internal/model"
	"github.com/sells-group/newswatch-cli/internal/normalize"
	"github.com/sells-group/newswatch-cli/internal/sites"
)

// RunState holds one target's accumulated results. Records keep first-seen
// order; a URL seen on an earlier page is never admitted again.
type RunState struct {
	seen         map[string]struct{}
	records      []model.ArticleRecord
	PagesFetched int

	// FetchErr is the page fetch failure that ended pagination early,
	// nil when every attempted page loaded.
	FetchErr error
}

func NewRunState() *RunState {
	return &RunState{seen: make(map[string]struct{})}
}

// Add admits rec unless it is invalid or its URL was already seen.
func (s *RunState) Add(rec model.ArticleRecord) bool {
	if !rec.Valid() {
		return false
	}
	if _, dup := s.seen[rec.URL]; dup {
		return false
	}
	s.seen[rec.URL] = struct{}{}
	s.records = append(s.records, rec)
	return true
}

func (s *RunState) Records() []model.ArticleRecord { return s.records }

func (s *RunState) Count() int { return len(s.records) }

// Controller drives the fetch/extract/advance loop for single targets.
type Controller struct {
	delay time.Duration
}

// NewController returns a controller that sleeps roughly delay between
// page loads (with jitter, mimicking a human reading pace).
func NewController(delay time.Duration) *Controller {
	return &Controller{delay: delay}
}

// Run pages through target's results with strat and f. The returned state
// always carries whatever was collected; a non-nil error means the run
// context was cancelled and the target should count as failed. Page-level
// fetch failures are not errors: they end pagination and are recorded in
// state.FetchErr.
func (c *Controller) Run(ctx context.Context, target model.ScrapeTarget, strat sites.Strategy, f fetch.Fetcher) (*RunState, error) {
	log := zap.L().With(
		zap.String("component", "paginate"),
		zap.String("target", target.URL),
		zap.String("strategy", strat.Name()),
	)

	state := NewRunState()
	instr := strat.SearchRequest(target)

	for pageIndex := 1; ; pageIndex++ {
		page, err := f.Fetch(ctx, instr)
		if err != nil {
			if ctx.Err() != nil {
				return state, eris.Wrapf(ctx.Err(), "paginate: cancelled on page %d of %s", pageIndex, target.URL)
			}
			state.FetchErr = err
			log.Warn("page fetch failed, keeping earlier pages",
				zap.Int("page", pageIndex),
				zap.Error(err),
			)
			return state, nil
		}
		page.PageIndex = pageIndex
		state.PagesFetched++

		raws := strat.Extract(page)
		newCount := 0
		for _, raw := range raws {
			if state.Add(normalize.Record(raw, target)) {
				newCount++
			}
		}
		log.Debug("page extracted",
			zap.Int("page", pageIndex),
			zap.Int("found", len(raws)),
			zap.Int("new", newCount),
		)

		if pageIndex >= target.MaxPages {
			return state, nil
		}
		if newCount == 0 {
			log.Debug("no new articles, stopping", zap.Int("page", pageIndex))
			return state, nil
		}
		next := strat.NextPage(page, pageIndex)
		if next == nil {
			return state, nil
		}

		c.pause(ctx)
		if ctx.Err() != nil {
			return state, eris.Wrapf(ctx.Err(), "paginate: cancelled before page %d of %s", pageIndex+1, target.URL)
		}
		instr = *next
	}
}

// pause waits the configured delay plus jitter, returning early on
// context cancellation.
func (c *Controller) pause(ctx context.Context) {
	if c.delay <= 0 {
		return
	}
	d := c.delay + time.Duration(rand.Int64N(int64(c.delay)))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
