package sites

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/newswatch-cli/internal/fetch"
	"github.com/sells-group/newswatch-cli/internal/model"
)

// Adnoc scrapes the ADNOC site search. Results render client-side and
// pagination is a next button.
type Adnoc struct{}

// NewAdnoc creates the ADNOC strategy.
func NewAdnoc() *Adnoc { return &Adnoc{} }

func (*Adnoc) Name() string      { return "adnoc" }
func (*Adnoc) Mode() fetch.Mode  { return fetch.ModeRendered }
func (*Adnoc) Domains() []string { return []string{"adnoc.ae"} }

func (*Adnoc) SearchRequest(target model.ScrapeTarget) model.Instruction {
	return model.Instruction{
		URL:     target.URL + "?query=" + joinQuery(target.Query, "+"),
		WaitFor: ".search-results",
	}
}

func (*Adnoc) Extract(page *model.RawPage) []model.RawArticle {
	doc := parseDoc(page)
	if doc == nil {
		return nil
	}

	var out []model.RawArticle
	doc.Find(".search-result-item").Each(func(_ int, item *goquery.Selection) {
		title := cleanText(item.Find(".title").First().Text())
		href, _ := item.Find("a").First().Attr("href")
		if title == "" || href == "" {
			return
		}
		out = append(out, model.RawArticle{
			Title:   title,
			URL:     resolveLink(page.URL, href),
			Date:    cleanText(item.Find(".date").First().Text()),
			Snippet: cleanText(item.Find(".snippet").First().Text()),
			Source:  "ADNOC",
		})
	})
	return out
}

func (*Adnoc) NextPage(page *model.RawPage, _ int) *model.Instruction {
	doc := parseDoc(page)
	if doc == nil {
		return nil
	}
	if doc.Find(".pagination-next:not(.disabled)").Length() == 0 {
		return nil
	}
	return &model.Instruction{
		Actions: []model.Action{
			{Op: model.ActionClick, Selector: ".pagination-next:not(.disabled)"},
		},
		WaitFor: ".search-result-item",
	}
}
