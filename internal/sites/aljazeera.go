package sites

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/newswatch-cli/internal/fetch"
	"github.com/sells-group/newswatch-cli/internal/model"
)

const aljazeeraSearchBox = `input[placeholder="Search"]`

// AlJazeera scrapes the Al Jazeera search page. The search is input-driven:
// the query goes into the page's search box, not the URL. Pagination is a
// "Next" button matched by text.
type AlJazeera struct{}

// NewAlJazeera creates the Al Jazeera strategy.
func NewAlJazeera() *AlJazeera { return &AlJazeera{} }

func (*AlJazeera) Name() string      { return "aljazeera" }
func (*AlJazeera) Mode() fetch.Mode  { return fetch.ModeRendered }
func (*AlJazeera) Domains() []string { return []string{"aljazeera.com"} }

func (*AlJazeera) SearchRequest(target model.ScrapeTarget) model.Instruction {
	return model.Instruction{
		URL: target.URL + "?sort=date",
		Actions: []model.Action{
			{Op: model.ActionFill, Selector: aljazeeraSearchBox, Value: target.Query},
			{Op: model.ActionPress, Selector: aljazeeraSearchBox, Value: "Enter"},
		},
		WaitFor: "article",
	}
}

func (*AlJazeera) Extract(page *model.RawPage) []model.RawArticle {
	doc := parseDoc(page)
	if doc == nil {
		return nil
	}

	var out []model.RawArticle
	doc.Find("article").Each(func(_ int, item *goquery.Selection) {
		titleEl := item.Find("h3 a, h2 a").First()
		title := cleanText(titleEl.Text())
		href, _ := titleEl.Attr("href")
		if title == "" || href == "" {
			return
		}
		out = append(out, model.RawArticle{
			Title:    title,
			URL:      resolveLink(page.URL, href),
			Date:     cleanText(item.Find("time, .date").First().Text()),
			Snippet:  cleanText(item.Find("p").First().Text()),
			Source:   "Al Jazeera",
			Category: cleanText(item.Find(".category").First().Text()),
		})
	})
	return out
}

func (*AlJazeera) NextPage(page *model.RawPage, _ int) *model.Instruction {
	doc := parseDoc(page)
	if doc == nil {
		return nil
	}

	found := false
	doc.Find("button").EachWithBreak(func(_ int, b *goquery.Selection) bool {
		if strings.Contains(cleanText(b.Text()), "Next") {
			found = true
			return false
		}
		return true
	})
	if !found {
		return nil
	}
	return &model.Instruction{
		Actions: []model.Action{
			{Op: model.ActionClick, Selector: `//button[contains(., "Next")]`, XPath: true},
		},
		WaitFor: "article",
	}
}
