package fetch

import (
	"context"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/time/rate"

	"github.com/sells-group/newswatch-cli/internal/model"
)

// maxBodyBytes caps how much of a result page is read. Search pages are
// well under this; anything larger is truncated.
const maxBodyBytes = 2 * 1024 * 1024

// StaticOptions configures the static HTTP fetcher.
type StaticOptions struct {
	UserAgent   string
	Timeout     time.Duration
	RatePerHost rate.Limit
	RateBurst   int
}

// StaticFetcher fetches pages with a single plain GET per call. There is no
// retry: one attempt per page, failures end the target's pagination.
type StaticFetcher struct {
	client *http.Client
	opts   StaticOptions

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewStatic creates a StaticFetcher with per-host politeness rate limiting.
func NewStatic(opts StaticOptions) *StaticFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}
	if opts.RatePerHost == 0 {
		opts.RatePerHost = 2
	}
	if opts.RateBurst == 0 {
		opts.RateBurst = 4
	}
	return &StaticFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch performs exactly one GET for a navigation instruction.
func (f *StaticFetcher) Fetch(ctx context.Context, instr model.Instruction) (*model.RawPage, error) {
	if !instr.IsNavigation() {
		return nil, eris.New("static fetch: instruction carries no url")
	}
	if len(instr.Actions) > 0 {
		return nil, eris.Errorf("static fetch: in-page actions not supported for %s", instr.URL)
	}

	if err := f.limiterFor(instr.URL).Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "static fetch: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, instr.URL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "static fetch: create request")
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, TransportError(instr.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, StatusError(instr.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, TransportError(instr.URL, err)
	}

	finalURL := instr.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &model.RawPage{
		URL:  finalURL,
		HTML: decodeBody(body, resp.Header.Get("Content-Type")),
	}, nil
}

func (f *StaticFetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Cache-Control", "max-age=0")
}

// limiterFor returns the politeness limiter for the URL's host, creating it
// on first use.
func (f *StaticFetcher) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(f.opts.RatePerHost, f.opts.RateBurst)
		f.limiters[host] = lim
	}
	return lim
}

// decodeBody converts the response body to UTF-8 using the Content-Type
// charset parameter. Unknown or missing charsets fall back to the raw bytes.
func decodeBody(body []byte, contentType string) string {
	if contentType == "" {
		return string(body)
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(body)
	}
	charset := strings.ToLower(params["charset"])
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return string(body)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}
