// Package normalize converts raw per-site extractions into canonical
// article records stamped with the run's query and originating page.
package normalize

import (
	"net/url"
	"strings"

	"github.com/sells-group/newswatch-cli/internal/model"
)

// Record builds the canonical record for one raw article. Whitespace is
// trimmed, relative links are resolved against the target page, and a
// missing source falls back to the target's hostname. Date and snippet
// stay empty when the site did not provide them.
func Record(raw model.RawArticle, target model.ScrapeTarget) model.ArticleRecord {
	source := strings.TrimSpace(raw.Source)
	if source == "" {
		source = hostOf(target.URL)
	}
	return model.ArticleRecord{
		Title:     strings.TrimSpace(raw.Title),
		URL:       absoluteURL(strings.TrimSpace(raw.URL), target.URL),
		Date:      strings.TrimSpace(raw.Date),
		Snippet:   strings.TrimSpace(raw.Snippet),
		Source:    source,
		Query:     target.Query,
		SourceURL: target.URL,
	}
}

// absoluteURL resolves link against base when link is relative. Links
// that fail to parse are kept as-is.
func absoluteURL(link, base string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if u.IsAbs() {
		return link
	}
	b, err := url.Parse(base)
	if err != nil {
		return link
	}
	return b.ResolveReference(u).String()
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}
