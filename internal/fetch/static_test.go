package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/newswatch-cli/internal/model"
)

func newTestStatic() *StaticFetcher {
	return NewStatic(StaticOptions{
		UserAgent:   "test-agent",
		Timeout:     5 * time.Second,
		RatePerHost: 100,
		RateBurst:   100,
	})
}

func navTo(url string) model.Instruction {
	return model.Instruction{URL: url}
}

func TestStatic_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "en-US,en;q=0.5", r.Header.Get("Accept-Language"))
		assert.Equal(t, "1", r.Header.Get("Upgrade-Insecure-Requests"))
		w.Write([]byte("<html><body>results</body></html>"))
	}))
	defer srv.Close()

	page, err := newTestStatic().Fetch(context.Background(), navTo(srv.URL+"/search?q=oil"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/search?q=oil", page.URL)
	assert.Contains(t, page.HTML, "results")
}

func TestStatic_Fetch_SingleAttemptOnServerError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestStatic().Fetch(context.Background(), navTo(srv.URL+"/flaky"))
	require.Error(t, err)

	fe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindHTTPStatus, fe.Kind)
	assert.Equal(t, http.StatusInternalServerError, fe.Status)
	assert.Equal(t, int32(1), attempts.Load(), "a failed page must not be refetched")
}

func TestStatic_Fetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newTestStatic().Fetch(context.Background(), navTo(srv.URL+"/missing"))
	require.Error(t, err)

	fe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindHTTPStatus, fe.Kind)
	assert.Equal(t, http.StatusNotFound, fe.Status)
}

func TestStatic_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	f := NewStatic(StaticOptions{Timeout: 50 * time.Millisecond, RatePerHost: 100, RateBurst: 100})
	_, err := f.Fetch(context.Background(), navTo(srv.URL+"/slow"))
	require.Error(t, err)

	fe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindTimeout, fe.Kind)
}

func TestStatic_Fetch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse everything from here on

	_, err := newTestStatic().Fetch(context.Background(), navTo(srv.URL+"/gone"))
	require.Error(t, err)

	fe, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, fe.Kind)
}

func TestStatic_Fetch_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>landed</html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page, err := newTestStatic().Fetch(context.Background(), navTo(srv.URL+"/start"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/final", page.URL)
	assert.Contains(t, page.HTML, "landed")
}

func TestStatic_Fetch_DecodesLegacyCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1252")
		// "café" with 0xE9 for é in windows-1252.
		w.Write([]byte{'c', 'a', 'f', 0xE9})
	}))
	defer srv.Close()

	page, err := newTestStatic().Fetch(context.Background(), navTo(srv.URL+"/latin"))
	require.NoError(t, err)
	assert.Equal(t, "café", page.HTML)
}

func TestStatic_Fetch_RejectsNonNavigation(t *testing.T) {
	f := newTestStatic()

	_, err := f.Fetch(context.Background(), model.Instruction{
		Actions: []model.Action{{Op: model.ActionClick, Selector: ".next"}},
	})
	require.Error(t, err)

	_, err = f.Fetch(context.Background(), model.Instruction{
		URL:     "https://example.com",
		Actions: []model.Action{{Op: model.ActionClick, Selector: ".next"}},
	})
	require.Error(t, err)
}

func TestStatic_Fetch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestStatic().Fetch(ctx, navTo("https://example.com/never"))
	require.Error(t, err)
}

func TestDecodeBody_Fallbacks(t *testing.T) {
	assert.Equal(t, "plain", decodeBody([]byte("plain"), ""))
	assert.Equal(t, "plain", decodeBody([]byte("plain"), "text/html; charset=utf-8"))
	assert.Equal(t, "plain", decodeBody([]byte("plain"), "text/html; charset=no-such-charset"))
	assert.Equal(t, "plain", decodeBody([]byte("plain"), "garbage;;;"))
}
