// Package browser manages a pool of headless Chrome tabs used for rendered
// fetches. Sessions are reused across targets under checkout/return.
package browser

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/rotisserie/eris"

	"github.com/sells-group/newswatch-cli/internal/fetch"
	"github.com/sells-group/newswatch-cli/internal/model"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// settleDelay gives scripted pages a moment to finish reshaping the DOM
// when no explicit wait selector applies.
const settleDelay = 2 * time.Second

// Options configures the session pool.
type Options struct {
	PoolSize   int
	Headless   bool
	UserAgent  string
	NavTimeout time.Duration
}

// Pool is a fixed-size pool of browser sessions sharing one exec allocator.
// Pool size bounds concurrent tabs independently of target concurrency.
type Pool struct {
	opts        Options
	allocCtx    context.Context
	allocCancel context.CancelFunc
	sessions    chan *Session
	closeOnce   sync.Once
}

// NewPool creates the allocator and pre-fills the pool. The browser process
// itself launches lazily on the first render.
func NewPool(opts Options) (*Pool, error) {
	if opts.PoolSize <= 0 {
		opts.PoolSize = 2
	}
	if opts.NavTimeout == 0 {
		opts.NavTimeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.UserAgent(opts.UserAgent),
		chromedp.WindowSize(1280, 800),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	p := &Pool{
		opts:        opts,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		sessions:    make(chan *Session, opts.PoolSize),
	}
	for range opts.PoolSize {
		p.sessions <- p.newSession()
	}
	return p, nil
}

func (p *Pool) newSession() *Session {
	tabCtx, cancel := chromedp.NewContext(p.allocCtx)
	return &Session{
		ctx:        tabCtx,
		cancel:     cancel,
		navTimeout: p.opts.NavTimeout,
	}
}

// Acquire blocks until a session is free or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (fetch.Session, error) {
	select {
	case s := <-p.sessions:
		return s, nil
	case <-ctx.Done():
		return nil, eris.Wrap(ctx.Err(), "browser: acquire session")
	}
}

// Release returns a session to the pool, replacing it when its tab has died.
func (p *Pool) Release(s fetch.Session) {
	sess, ok := s.(*Session)
	if !ok || sess == nil {
		return
	}
	if sess.ctx.Err() != nil {
		sess.cancel()
		sess = p.newSession()
	}
	select {
	case p.sessions <- sess:
	default:
		sess.cancel()
	}
}

// Close tears down all pooled sessions and the allocator. Sessions still
// checked out die with the allocator.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		for {
			select {
			case s := <-p.sessions:
				s.cancel()
			default:
				p.allocCancel()
				return
			}
		}
	})
	return nil
}

// Session is one Chrome tab. Render calls are serialized by the pool's
// checkout discipline; a session is never shared between targets.
type Session struct {
	ctx        context.Context
	cancel     context.CancelFunc
	navTimeout time.Duration
}

// Render navigates (when the request carries a URL), runs the in-page
// actions, awaits the wait selector, and returns the serialized document.
// Interaction requests act on the tab's current page.
func (s *Session) Render(ctx context.Context, req fetch.RenderRequest) (*fetch.RenderResult, error) {
	tasks := buildTasks(req)

	var finalURL, html string
	tasks = append(tasks,
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	rctx, cancel := context.WithTimeout(s.ctx, s.navTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(rctx, tasks...); err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "browser: render cancelled")
		}
		if rctx.Err() == context.DeadlineExceeded {
			return nil, eris.Wrap(context.DeadlineExceeded, "browser: render timed out")
		}
		return nil, eris.Wrap(err, "browser: render")
	}

	return &fetch.RenderResult{URL: finalURL, HTML: html}, nil
}

func buildTasks(req fetch.RenderRequest) chromedp.Tasks {
	var tasks chromedp.Tasks
	if req.URL != "" {
		tasks = append(tasks, chromedp.Navigate(req.URL))
	}
	for _, a := range req.Actions {
		switch a.Op {
		case model.ActionFill:
			tasks = append(tasks,
				chromedp.Clear(a.Selector, chromedp.ByQuery),
				chromedp.SendKeys(a.Selector, a.Value, chromedp.ByQuery),
			)
		case model.ActionPress:
			tasks = append(tasks, chromedp.SendKeys(a.Selector, keyFor(a.Value), chromedp.ByQuery))
		case model.ActionClick:
			if a.XPath {
				tasks = append(tasks, chromedp.Click(a.Selector, chromedp.BySearch))
			} else {
				tasks = append(tasks, chromedp.Click(a.Selector, chromedp.ByQuery))
			}
		}
	}
	if len(req.Actions) > 0 {
		tasks = append(tasks, chromedp.Sleep(settleDelay))
	}
	if req.WaitFor != "" {
		tasks = append(tasks, chromedp.WaitReady(req.WaitFor, chromedp.ByQuery))
	} else if req.URL != "" && len(req.Actions) == 0 {
		tasks = append(tasks, chromedp.Sleep(settleDelay))
	}
	return tasks
}

// keyFor maps a key name to the rune sequence chromedp sends.
func keyFor(name string) string {
	switch name {
	case "Enter":
		return kb.Enter
	case "Tab":
		return kb.Tab
	default:
		return name
	}
}
