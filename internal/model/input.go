package model

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// Page cap bounds applied to run input.
const (
	DefaultMaxPages = 1
	MaxPagesLimit   = 10
)

// URLList decodes either a single string or a list of strings, so inputs
// like {"urls": "https://..."} and {"urls": ["https://..."]} both work.
type URLList []string

// UnmarshalJSON accepts a bare string or an array of strings.
func (u *URLList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*u = URLList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*u = URLList(many)
	return nil
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (u *URLList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var one string
		if err := value.Decode(&one); err != nil {
			return err
		}
		*u = URLList{one}
		return nil
	}
	var many []string
	if err := value.Decode(&many); err != nil {
		return err
	}
	*u = URLList(many)
	return nil
}

// RunInput is the run request: target URLs, an optional free-text query, and
// the per-target page cap.
type RunInput struct {
	URLs     URLList `json:"urls" yaml:"urls"`
	Query    string  `json:"query" yaml:"query"`
	MaxPages int     `json:"maxPages" yaml:"maxPages"`
}

// ClampedMaxPages returns the effective page cap and whether the configured
// value was out of range. Zero means unset and maps to the default silently.
func (in RunInput) ClampedMaxPages() (int, bool) {
	switch {
	case in.MaxPages == 0:
		return DefaultMaxPages, false
	case in.MaxPages < 1:
		return DefaultMaxPages, true
	case in.MaxPages > MaxPagesLimit:
		return MaxPagesLimit, true
	}
	return in.MaxPages, false
}

// Targets expands the input into one ScrapeTarget per URL, with the query
// and clamped page cap shared across targets.
func (in RunInput) Targets() []ScrapeTarget {
	maxPages, _ := in.ClampedMaxPages()
	targets := make([]ScrapeTarget, 0, len(in.URLs))
	for _, u := range in.URLs {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		targets = append(targets, ScrapeTarget{
			URL:      u,
			Query:    in.Query,
			MaxPages: maxPages,
		})
	}
	return targets
}
