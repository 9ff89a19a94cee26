package sites

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/newswatch-cli/internal/fetch"
	"github.com/sells-group/newswatch-cli/internal/model"
)

// Ahram scrapes the Ahram Online search page. Results come back as a plain
// server-rendered table; the site exposes no pagination controls.
type Ahram struct{}

// NewAhram creates the Ahram Online strategy.
func NewAhram() *Ahram { return &Ahram{} }

func (*Ahram) Name() string      { return "ahram" }
func (*Ahram) Mode() fetch.Mode  { return fetch.ModeStatic }
func (*Ahram) Domains() []string { return []string{"ahram.org.eg"} }

func (*Ahram) SearchRequest(target model.ScrapeTarget) model.Instruction {
	return model.Instruction{
		URL: target.URL + "?Text=" + joinQuery(target.Query, "%20"),
	}
}

func (*Ahram) Extract(page *model.RawPage) []model.RawArticle {
	doc := parseDoc(page)
	if doc == nil {
		return nil
	}

	var out []model.RawArticle
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		titleEl := row.Find("div h5 a").First()
		title := cleanText(titleEl.Text())
		href, _ := titleEl.Attr("href")
		if title == "" || href == "" {
			return
		}
		out = append(out, model.RawArticle{
			Title:    title,
			URL:      resolveLink(page.URL, href),
			Date:     cleanText(row.Find("p span:first-of-type").First().Text()),
			Snippet:  cleanText(row.Find("p:last-of-type span").First().Text()),
			Source:   "Ahram Online",
			Category: cleanText(row.Find("p:first-child").First().Text()),
		})
	})
	return out
}

func (*Ahram) NextPage(_ *model.RawPage, _ int) *model.Instruction {
	return nil
}
