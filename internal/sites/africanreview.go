package sites

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/newswatch-cli/internal/fetch"
	"github.com/sells-group/newswatch-cli/internal/model"
)

// bareHeadingCap limits how many bare heading links are taken when the page
// has no recognizable result containers, to avoid sweeping up navigation.
const bareHeadingCap = 10

// AfricanReview scrapes the African Review search page. The markup varies
// between layouts, so extraction cascades through container selectors and
// finally falls back to bare heading links.
type AfricanReview struct{}

// NewAfricanReview creates the African Review strategy.
func NewAfricanReview() *AfricanReview { return &AfricanReview{} }

func (*AfricanReview) Name() string      { return "africanreview" }
func (*AfricanReview) Mode() fetch.Mode  { return fetch.ModeStatic }
func (*AfricanReview) Domains() []string { return []string{"africanreview.com"} }

func (*AfricanReview) SearchRequest(target model.ScrapeTarget) model.Instruction {
	return model.Instruction{
		URL: target.URL + "?q=" + joinQuery(target.Query, "+") + "&Search=",
	}
}

func (*AfricanReview) Extract(page *model.RawPage) []model.RawArticle {
	doc := parseDoc(page)
	if doc == nil {
		return nil
	}

	containers := doc.Find(".search-result, .search-results li, .article-list li")
	if containers.Length() == 0 {
		containers = doc.Find("article, .article, .news-item")
	}
	if containers.Length() == 0 {
		return extractBareHeadings(doc, page.URL)
	}

	var out []model.RawArticle
	containers.Each(func(_ int, item *goquery.Selection) {
		titleEl := item.Find("h3 a, h2 a, .title a").First()
		title := cleanText(titleEl.Text())
		href, _ := titleEl.Attr("href")
		if title == "" || href == "" {
			return
		}
		out = append(out, model.RawArticle{
			Title:   title,
			URL:     resolveLink(page.URL, href),
			Date:    cleanText(item.Find("time, .date, .meta time").First().Text()),
			Snippet: cleanText(item.Find("p, .summary, .excerpt").First().Text()),
			Source:  "African Review",
		})
	})
	return out
}

// extractBareHeadings is the last-resort pass over heading links.
func extractBareHeadings(doc *goquery.Document, pageURL string) []model.RawArticle {
	var out []model.RawArticle
	doc.Find("h3 a, h2 a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if len(out) >= bareHeadingCap {
			return false
		}
		title := cleanText(a.Text())
		href, _ := a.Attr("href")
		if title == "" || href == "" {
			return true
		}
		out = append(out, model.RawArticle{
			Title:  title,
			URL:    resolveLink(pageURL, href),
			Source: "African Review",
		})
		return true
	})
	return out
}

func (*AfricanReview) NextPage(_ *model.RawPage, _ int) *model.Instruction {
	return nil
}
