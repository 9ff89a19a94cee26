package sites

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/newswatch-cli/internal/fetch"
	"github.com/sells-group/newswatch-cli/internal/model"
)

// genericCap bounds how many heading links the fallback takes from one page.
const genericCap = 20

// Generic is the fallback for unregistered domains. Unknown news sites are
// assumed JS-heavy, so it renders. Extraction is a low-confidence pass over
// heading links; the target URL is fetched as given (the query, if any, is
// already embedded in it). It never paginates.
type Generic struct{}

// NewGeneric creates the fallback strategy.
func NewGeneric() *Generic { return &Generic{} }

func (*Generic) Name() string      { return "generic" }
func (*Generic) Mode() fetch.Mode  { return fetch.ModeRendered }
func (*Generic) Domains() []string { return nil }

func (*Generic) SearchRequest(target model.ScrapeTarget) model.Instruction {
	return model.Instruction{URL: target.URL}
}

func (*Generic) Extract(page *model.RawPage) []model.RawArticle {
	doc := parseDoc(page)
	if doc == nil {
		return nil
	}

	var out []model.RawArticle
	doc.Find("h1 a[href], h2 a[href], h3 a[href], h4 a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if len(out) >= genericCap {
			return false
		}
		title := cleanText(a.Text())
		href, _ := a.Attr("href")
		if title == "" || href == "" {
			return true
		}
		out = append(out, model.RawArticle{
			Title: title,
			URL:   resolveLink(page.URL, href),
		})
		return true
	})
	return out
}

func (*Generic) NextPage(_ *model.RawPage, _ int) *model.Instruction {
	return nil
}
