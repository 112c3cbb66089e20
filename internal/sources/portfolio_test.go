package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-pipeline/internal/types"
)

func staticPortfolioAdapter(timeout time.Duration) *PortfolioAdapter {
	a := NewPortfolioAdapter(timeout)
	a.UseBrowser = false
	return a
}

func TestPortfolioAdapter_StaticExtraction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`
			<html><body>
				<nav>Home About</nav>
				<main>
					<h1>Projects</h1>
					<p>Wrote a columnar storage engine in Go.</p>
				</main>
				<footer>fine print</footer>
			</body></html>`))
	}))
	defer server.Close()

	adapter := staticPortfolioAdapter(5 * time.Second)
	res := adapter.Extract(context.Background(), types.SourceRequest{PortfolioURL: server.URL})

	require.Equal(t, types.StatusPresent, res.Status)
	require.NotNil(t, res.Portfolio)
	assert.Equal(t, server.URL, res.Portfolio.URL)
	assert.Contains(t, res.Portfolio.Text, "columnar storage engine")
	assert.NotContains(t, res.Portfolio.Text, "fine print")
	assert.Equal(t, len(res.Portfolio.Text), res.Portfolio.Chars)
}

func TestPortfolioAdapter_EmptyPageIsAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><main>   </main></body></html>`))
	}))
	defer server.Close()

	adapter := staticPortfolioAdapter(5 * time.Second)
	res := adapter.Extract(context.Background(), types.SourceRequest{PortfolioURL: server.URL})

	assert.Equal(t, types.StatusAbsent, res.Status)
}

func TestPortfolioAdapter_HTTPErrorFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := staticPortfolioAdapter(5 * time.Second)
	res := adapter.Extract(context.Background(), types.SourceRequest{PortfolioURL: server.URL})

	assert.Equal(t, types.StatusFailed, res.Status)
	assert.Contains(t, res.Error, "404")
}

func TestPortfolioAdapter_CeilingFailsSlowPage(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	adapter := staticPortfolioAdapter(100 * time.Millisecond)

	start := time.Now()
	res := adapter.Extract(context.Background(), types.SourceRequest{PortfolioURL: server.URL})
	elapsed := time.Since(start)

	assert.Equal(t, types.StatusFailed, res.Status)
	assert.Contains(t, res.Error, "render timed out after 100ms")
	assert.Less(t, elapsed, 2*time.Second, "ceiling must bound the extraction")
}

func TestPortfolioAdapter_BrowserRendering(t *testing.T) {
	if os.Getenv("BROWSER_TESTS") == "" {
		t.Skip("BROWSER_TESTS not set, skipping headless browser test")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<div id="root"></div>
			<script>document.getElementById("root").textContent = "client rendered portfolio";</script>
		</body></html>`))
	}))
	defer server.Close()

	adapter := NewPortfolioAdapter(30 * time.Second)
	res := adapter.Extract(context.Background(), types.SourceRequest{PortfolioURL: server.URL})

	require.Equal(t, types.StatusPresent, res.Status)
	assert.Contains(t, res.Portfolio.Text, "client rendered portfolio")
}
