package sites

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/newswatch-cli/internal/fetch"
	"github.com/sells-group/newswatch-cli/internal/model"
)

// AlMonitor scrapes the Al-Monitor search page. Articles carry a section
// label that is folded into the source field.
type AlMonitor struct{}

// NewAlMonitor creates the Al-Monitor strategy.
func NewAlMonitor() *AlMonitor { return &AlMonitor{} }

func (*AlMonitor) Name() string      { return "almonitor" }
func (*AlMonitor) Mode() fetch.Mode  { return fetch.ModeRendered }
func (*AlMonitor) Domains() []string { return []string{"al-monitor.com"} }

func (*AlMonitor) SearchRequest(target model.ScrapeTarget) model.Instruction {
	return model.Instruction{
		URL:     target.URL + "?text=" + joinQuery(target.Query, "+"),
		WaitFor: "article",
	}
}

func (*AlMonitor) Extract(page *model.RawPage) []model.RawArticle {
	doc := parseDoc(page)
	if doc == nil {
		return nil
	}

	var out []model.RawArticle
	doc.Find("article").Each(func(_ int, item *goquery.Selection) {
		titleEl := item.Find("h2 a, h3 a").First()
		title := cleanText(titleEl.Text())
		href, _ := titleEl.Attr("href")
		if title == "" || href == "" {
			return
		}
		source := "Al-Monitor"
		if section := cleanText(item.Find(".source").First().Text()); section != "" {
			source = "Al-Monitor: " + section
		}
		out = append(out, model.RawArticle{
			Title:  title,
			URL:    resolveLink(page.URL, href),
			Date:   cleanText(item.Find("time").First().Text()),
			Source: source,
		})
	})
	return out
}

func (*AlMonitor) NextPage(page *model.RawPage, _ int) *model.Instruction {
	doc := parseDoc(page)
	if doc == nil {
		return nil
	}

	if doc.Find("a.next").Length() > 0 {
		return &model.Instruction{
			Actions: []model.Action{
				{Op: model.ActionClick, Selector: "a.next"},
			},
			WaitFor: "article",
		}
	}

	found := false
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.Contains(cleanText(a.Text()), "Next") {
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
			{Op: model.ActionClick, Selector: `//a[contains(., "Next")]`, XPath: true},
		},
		WaitFor: "article",
	}
}
