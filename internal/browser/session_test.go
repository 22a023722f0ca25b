package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/gotrs-smoke/internal/scenario"
)

const homePage = `<!doctype html>
<html><head><title>Fast and reliable end-to-end testing for modern web apps | Playwright</title></head>
<body>
<nav><a class="navbar__brand" href="/">Playwright</a></nav>
<main><a href="/docs/intro">Get started</a></main>
<p id="hidden" style="display:none">hidden</p>
<ul><li class="item">one</li><li class="item">two</li></ul>
</body></html>`

const installPage = `<!doctype html>
<html><head><title>Installation | Playwright</title></head>
<body><h1>Installation</h1></body></html>`

func staticSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(homePage))
	})
	mux.HandleFunc("GET /docs/intro", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(installPage))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func startHelper(t *testing.T, baseURL string) *Helper {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if os.Getenv("SKIP_BROWSER") == "true" {
		t.Skip("Skipping browser test")
	}

	cfg := testConfig(baseURL)
	cfg.SlowMo = 0
	cfg.ArtifactsDir = t.TempDir()

	h := NewHelper(cfg)
	if err := h.Setup(); err != nil {
		t.Skipf("Playwright not available: %v", err)
	}
	t.Cleanup(h.TearDown)
	return h
}

func newSession(t *testing.T, h *Helper) *Session {
	t.Helper()
	s, err := h.NewSession()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSessionRunsCatalogAgainstStaticSite(t *testing.T) {
	srv := staticSite(t)
	h := startHelper(t, srv.URL)
	ctx := context.Background()

	for _, sc := range scenario.Catalog() {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			s := newSession(t, h)
			err := scenario.Run(ctx, s, sc)
			if sc.ExpectFailure {
				require.Error(t, err)
				assert.True(t, scenario.IsAssertionFailure(err), "got %v", err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSessionDriver(t *testing.T) {
	srv := staticSite(t)
	h := startHelper(t, srv.URL)
	ctx := context.Background()
	s := newSession(t, h)

	require.NoError(t, s.Goto(ctx, "/"))
	title, err := s.Title(ctx)
	require.NoError(t, err)
	assert.Contains(t, title, "Playwright")

	t.Run("Hidden elements are not visible", func(t *testing.T) {
		err := s.ExpectVisible(ctx, scenario.CSS("#hidden"))
		assert.ErrorIs(t, err, scenario.ErrNotVisible)
	})

	t.Run("Several matches are a framework error", func(t *testing.T) {
		err := s.ExpectVisible(ctx, scenario.CSS("li.item"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, scenario.ErrNotVisible)

		serr := scenario.Run(ctx, s, scenario.Scenario{
			Name:  "ambiguous",
			URL:   "/",
			Title: regexp.MustCompile("Playwright"),
			Steps: []scenario.Step{{Kind: scenario.ExpectVisible, Target: scenario.CSS("li.item")}},
		})
		require.Error(t, serr)
		assert.False(t, scenario.IsAssertionFailure(serr))
	})

	t.Run("Role locators resolve by accessible name", func(t *testing.T) {
		assert.NoError(t, s.ExpectVisible(ctx, scenario.Role("link", "Get started")))
	})

	t.Run("Click navigates", func(t *testing.T) {
		require.NoError(t, s.Click(ctx, scenario.Role("link", "Get started")))
		assert.NoError(t, s.ExpectVisible(ctx, scenario.Role("heading", "Installation")))
		assert.Equal(t, srv.URL+"/docs/intro", s.Page.URL())
	})

	t.Run("Screenshot lands under the artifacts dir", func(t *testing.T) {
		path, err := s.Screenshot(t.Name())
		require.NoError(t, err)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})

	t.Run("Cancelled context stops before touching the page", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, s.Goto(cctx, "/"), context.Canceled)
		assert.ErrorIs(t, s.Click(cctx, scenario.CSS("a")), context.Canceled)
	})
}

func TestSessionCloseAfterPageClosed(t *testing.T) {
	srv := staticSite(t)
	h := startHelper(t, srv.URL)

	s, err := h.NewSession()
	require.NoError(t, err)
	require.NoError(t, s.Goto(context.Background(), "/"))

	require.NoError(t, s.Page.Close())
	assert.True(t, s.Page.IsClosed())
	assert.NoError(t, s.Close(), "closing an already closed page is not an error")
}

func TestSetupInstallsBrowsers(t *testing.T) {
	if os.Getenv("SMOKE_TEST_INSTALL") != "true" {
		t.Skip("set SMOKE_TEST_INSTALL=true to exercise browser installation")
	}
	srv := staticSite(t)
	cfg := testConfig(srv.URL)
	cfg.InstallBrowsers = true

	h := NewHelper(cfg)
	require.NoError(t, h.Setup())
	defer h.TearDown()

	s, err := h.NewSession()
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, scenario.Run(context.Background(), s, scenario.Catalog()[0]))
}
