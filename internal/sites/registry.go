package sites

import (
	"net/url"
	"strings"
)

// Registry dispatches target URLs to strategies. Order matters: the first
// registered strategy whose domain matches wins. Resolution never fails;
// unknown or unparsable URLs get the fallback.
type Registry struct {
	strategies []Strategy
	fallback   Strategy
}

// NewRegistry creates a registry with the given fallback strategy.
func NewRegistry(fallback Strategy) *Registry {
	return &Registry{fallback: fallback}
}

// Register appends a strategy. Registration order is dispatch order.
func (r *Registry) Register(s Strategy) {
	r.strategies = append(r.strategies, s)
}

// Resolve returns the strategy for the URL's host, or the fallback.
func (r *Registry) Resolve(rawURL string) Strategy {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return r.fallback
	}
	host := strings.ToLower(u.Hostname())
	for _, s := range r.strategies {
		for _, d := range s.Domains() {
			if hostMatches(host, d) {
				return s
			}
		}
	}
	return r.fallback
}

// All returns the registered strategies in dispatch order.
func (r *Registry) All() []Strategy {
	out := make([]Strategy, len(r.strategies))
	copy(out, r.strategies)
	return out
}

// Fallback returns the strategy used when nothing matches.
func (r *Registry) Fallback() Strategy {
	return r.fallback
}

// hostMatches reports whether host is domain or a subdomain of it.
func hostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// Default returns the registry loaded with the supported site strategies in
// their canonical dispatch order, backed by the generic fallback.
func Default() *Registry {
	r := NewRegistry(NewGeneric())
	r.Register(NewAdnoc())
	r.Register(NewAhram())
	r.Register(NewAlJazeera())
	r.Register(NewAfricanReview())
	r.Register(NewAlMonitor())
	return r
}
