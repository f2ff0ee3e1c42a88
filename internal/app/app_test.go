package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"multifeed/internal/config"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssTemplate = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>%s</title>
<item><guid>%s-1</guid><title>Go release notes</title><description>golang news</description><pubDate>Mon, 06 May 2024 10:00:00 GMT</pubDate></item>
<item><guid>%s-2</guid><title>Cooking</title><description>pasta</description><pubDate>Mon, 06 May 2024 11:00:00 GMT</pubDate></item>
</channel></rss>`

func feedServer(t *testing.T, name string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, rssTemplate, name, name, name)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func memoryConfig(urls ...string) *config.Config {
	cfg := config.New()
	cfg.Storage.Driver = config.DriverMemory
	cfg.Server.Address = "127.0.0.1:0"
	for i, u := range urls {
		cfg.App.FeedURLs = append(cfg.App.FeedURLs, config.FeedURL{Name: fmt.Sprintf("feed-%d", i), URL: u})
	}
	return cfg
}

func TestApp_RunPipelineWithMemoryStorage(t *testing.T) {
	a := feedServer(t, "a")
	b := feedServer(t, "b")
	cfg := memoryConfig(a.URL, b.URL)
	cfg.App.Keywords = []string{"golang"}

	application, err := NewWithLogger(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.NoError(t, application.run.Activate(context.Background()))

	report, err := application.run.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Fetched)
	assert.Equal(t, 2, report.Emitted)

	rec := httptest.NewRecorder()
	application.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"a-1"`)
	assert.Contains(t, rec.Body.String(), `"b-1"`)
	assert.NotContains(t, rec.Body.String(), `"a-2"`)

	report, err = application.run.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Emitted)
}

func TestApp_ActivateFailsOnUnreachableFeed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	application, err := NewWithLogger(memoryConfig(srv.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Error(t, application.Activate(context.Background()))
}
