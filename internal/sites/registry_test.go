package sites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/newswatch-cli/internal/fetch"
	"github.com/sells-group/newswatch-cli/internal/model"
)

func TestRegistry_Resolve_KnownDomains(t *testing.T) {
	r := Default()

	cases := map[string]string{
		"https://www.adnoc.ae/en/search":                  "adnoc",
		"https://english.ahram.org.eg/Search/Result.aspx": "ahram",
		"https://www.aljazeera.com/search":                "aljazeera",
		"https://www.africanreview.com/search-results":    "africanreview",
		"https://www.al-monitor.com/search":               "almonitor",
		"https://subdomain.deep.aljazeera.com/search":     "aljazeera",
		"http://adnoc.ae/search":                          "adnoc",
	}
	for rawURL, want := range cases {
		assert.Equal(t, want, r.Resolve(rawURL).Name(), "url %s", rawURL)
	}
}

func TestRegistry_Resolve_UnknownFallsBack(t *testing.T) {
	r := Default()

	assert.Equal(t, "generic", r.Resolve("https://news.example.com/search?q=oil").Name())
}

func TestRegistry_Resolve_SimilarDomainFallsBack(t *testing.T) {
	r := Default()

	// Suffix match must respect label boundaries.
	assert.Equal(t, "generic", r.Resolve("https://notadnoc.ae/search").Name())
	assert.Equal(t, "generic", r.Resolve("https://aljazeera.com.evil.net/search").Name())
}

func TestRegistry_Resolve_MalformedFallsBack(t *testing.T) {
	r := Default()

	assert.Equal(t, "generic", r.Resolve("://not-a-url").Name())
	assert.Equal(t, "generic", r.Resolve("relative/path").Name())
	assert.Equal(t, "generic", r.Resolve("").Name())
}

func TestRegistry_Resolve_FirstMatchWins(t *testing.T) {
	r := NewRegistry(NewGeneric())
	r.Register(NewAlJazeera())
	r.Register(&shadowStrategy{})

	// Both claim aljazeera.com; registration order decides.
	assert.Equal(t, "aljazeera", r.Resolve("https://www.aljazeera.com/search").Name())
}

func TestRegistry_All_DispatchOrder(t *testing.T) {
	r := Default()

	names := make([]string, 0)
	for _, s := range r.All() {
		names = append(names, s.Name())
	}
	require.Equal(t, []string{"adnoc", "ahram", "aljazeera", "africanreview", "almonitor"}, names)
	assert.Equal(t, "generic", r.Fallback().Name())
}

// shadowStrategy claims an already-registered domain.
type shadowStrategy struct{}

func (*shadowStrategy) Name() string      { return "shadow" }
func (*shadowStrategy) Mode() fetch.Mode  { return fetch.ModeStatic }
func (*shadowStrategy) Domains() []string { return []string{"aljazeera.com"} }
func (*shadowStrategy) SearchRequest(target model.ScrapeTarget) model.Instruction {
	return model.Instruction{URL: target.URL}
}
func (*shadowStrategy) Extract(*model.RawPage) []model.RawArticle       { return nil }
func (*shadowStrategy) NextPage(*model.RawPage, int) *model.Instruction { return nil }
