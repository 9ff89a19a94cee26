// Package sites holds the per-site scraping strategies and the registry
// that dispatches target URLs to them.
package sites

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/newswatch-cli/internal/fetch"
	"github.com/sells-group/newswatch-cli/internal/model"
)

// Strategy is the per-site contract. Extract and NextPage are pure functions
// of the serialized page: no I/O, selector mismatch yields empty output.
type Strategy interface {
	// Name is the stable strategy identifier.
	Name() string
	// Mode declares whether pages need headless rendering.
	Mode() fetch.Mode
	// Domains lists the host suffixes this strategy handles.
	Domains() []string
	// SearchRequest builds the first-page fetch instruction from the
	// target URL and query.
	SearchRequest(target model.ScrapeTarget) model.Instruction
	// Extract pulls candidate articles out of one result page. Items
	// missing a title or link are skipped.
	Extract(page *model.RawPage) []model.RawArticle
	// NextPage returns the instruction for the following result page, or
	// nil when the page shows no way forward.
	NextPage(page *model.RawPage, pageIndex int) *model.Instruction
}

// parseDoc parses the serialized page. A nil return means the HTML was
// unusable; callers treat that as zero results.
func parseDoc(page *model.RawPage) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		zap.L().Debug("sites: unparsable page",
			zap.String("url", page.URL),
			zap.Error(err),
		)
		return nil
	}
	return doc
}

// joinQuery rewrites spaces in the query with the site's separator.
func joinQuery(query, sep string) string {
	return strings.ReplaceAll(strings.TrimSpace(query), " ", sep)
}

// resolveLink makes href absolute against the page it appeared on.
func resolveLink(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// cleanText collapses runs of whitespace, matching what a browser shows for
// nested markup.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
