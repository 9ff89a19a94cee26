package model

import "strings"

// ScrapeTarget is one search page to scrape: the entry URL plus the
// run-wide query and page cap.
type ScrapeTarget struct {
	URL      string `json:"url"`
	Query    string `json:"query"`
	MaxPages int    `json:"max_pages"`
}

// ActionOp identifies an in-page interaction performed by the rendered fetcher.
type ActionOp string

const (
	ActionFill  ActionOp = "fill"  // type Value into Selector
	ActionPress ActionOp = "press" // send key Value to Selector
	ActionClick ActionOp = "click" // click Selector
)

// Action is a single in-page interaction step.
type Action struct {
	Op       ActionOp `json:"op"`
	Selector string   `json:"selector"`
	Value    string   `json:"value,omitempty"`
	XPath    bool     `json:"xpath,omitempty"` // Selector is an XPath expression
}

// Instruction tells a fetcher what to retrieve next. A navigation carries a
// URL (plus optional post-load Actions for input-driven search); an
// interaction carries only Actions and operates on the current rendered page.
// Static fetchers use the URL alone.
type Instruction struct {
	URL     string   `json:"url,omitempty"`
	Actions []Action `json:"actions,omitempty"`
	WaitFor string   `json:"wait_for,omitempty"` // CSS selector to await after load/actions
}

// IsNavigation reports whether the instruction loads a new URL.
func (in Instruction) IsNavigation() bool {
	return in.URL != ""
}

// RawPage is the serialized document of one fetched result page.
// URL is the address the fetch ended on and anchors relative links;
// PageIndex is 1-based within the target's pagination.
type RawPage struct {
	URL       string
	PageIndex int
	HTML      string
}

// RawArticle is a strategy's extraction output before normalization.
// Category is site-specific color that does not survive normalization.
type RawArticle struct {
	Title    string
	URL      string
	Date     string
	Snippet  string
	Source   string
	Category string
}

// ArticleRecord is the canonical output record. All seven fields are always
// present; Date and Snippet default to "" when the site does not expose them.
type ArticleRecord struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Date      string `json:"date"`
	Snippet   string `json:"snippet"`
	Source    string `json:"source"`
	Query     string `json:"query"`
	SourceURL string `json:"source_url"`
}

// Valid reports whether the record satisfies the output invariant
// (non-blank title and url).
func (r ArticleRecord) Valid() bool {
	return strings.TrimSpace(r.Title) != "" && strings.TrimSpace(r.URL) != ""
}
