package fetch

import (
	"context"

	"github.com/sells-group/newswatch-cli/internal/model"
)

// RenderRequest describes one unit of headless browser work: navigate when
// URL is set, run the actions, await WaitFor, serialize the document.
type RenderRequest struct {
	URL     string
	Actions []model.Action
	WaitFor string
}

// RenderResult is a serialized rendered document and the address the page
// ended on.
type RenderResult struct {
	URL  string
	HTML string
}

// Session is one checked-out browser tab. Interaction requests (empty URL)
// operate on whatever page the session currently shows, which is how
// click-driven pagination works.
type Session interface {
	Render(ctx context.Context, req RenderRequest) (*RenderResult, error)
}

// SessionPool hands out Sessions under a checkout/return discipline. The
// pool size bounds concurrent browser tabs independently of how many targets
// run in parallel.
type SessionPool interface {
	Acquire(ctx context.Context) (Session, error)
	Release(Session)
}

// RenderedFetcher adapts one Session to the Fetcher contract. A rendered
// target holds a single fetcher (and session) for its whole pagination loop.
type RenderedFetcher struct {
	sess Session
}

// NewRendered wraps a checked-out session.
func NewRendered(sess Session) *RenderedFetcher {
	return &RenderedFetcher{sess: sess}
}

// Fetch renders one page. Navigation instructions load instr.URL first;
// interaction instructions act on the session's current page.
func (f *RenderedFetcher) Fetch(ctx context.Context, instr model.Instruction) (*model.RawPage, error) {
	res, err := f.sess.Render(ctx, RenderRequest{
		URL:     instr.URL,
		Actions: instr.Actions,
		WaitFor: instr.WaitFor,
	})
	if err != nil {
		return nil, RenderError(instr.URL, err)
	}
	return &model.RawPage{
		URL:  res.URL,
		HTML: res.HTML,
	}, nil
}
