package helpers

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/gotrs-io/gotrs-smoke/internal/browser"
	"github.com/gotrs-io/gotrs-smoke/internal/config"
	"github.com/gotrs-io/gotrs-smoke/internal/scenario"
)

// Env is shared by every scenario test in one test binary
type Env struct {
	Config  *config.Config
	Browser *browser.Helper
}

var (
	envMu     sync.Mutex
	sharedEnv *Env
	// setupErr is remembered so later tests skip without relaunching
	setupErr error
)

// Setup returns the shared environment, starting the browser on first use.
// The test is skipped when browsers are disabled, the target site is
// unreachable, or Playwright cannot start.
func Setup(t *testing.T) *Env {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if os.Getenv("SKIP_BROWSER") == "true" {
		t.Skip("Skipping browser test")
	}

	envMu.Lock()
	defer envMu.Unlock()

	if sharedEnv != nil {
		return sharedEnv
	}
	if setupErr != nil {
		t.Skipf("browser environment unavailable: %v", setupErr)
	}

	cfg, err := config.Load(os.Getenv("SMOKE_CONFIG"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if !config.Reachable(cfg.BaseURL) {
		setupErr = fmt.Errorf("target %s is not reachable", cfg.BaseURL)
		t.Skipf("browser environment unavailable: %v", setupErr)
	}

	h := browser.NewHelper(cfg)
	if err := h.Setup(); err != nil {
		setupErr = err
		t.Skipf("Playwright not available: %v", err)
	}

	sharedEnv = &Env{Config: cfg, Browser: h}
	return sharedEnv
}

// Shutdown tears down the shared browser; call it from TestMain
func Shutdown() {
	envMu.Lock()
	defer envMu.Unlock()

	if sharedEnv != nil {
		sharedEnv.Browser.TearDown()
		sharedEnv = nil
	}
}

// NewSession opens an isolated page for t. On failure a screenshot is
// captured when screenshots are enabled.
func (e *Env) NewSession(t *testing.T) *browser.Session {
	t.Helper()

	s, err := e.Browser.NewSession()
	if err != nil {
		t.Fatalf("Failed to open browser session: %v", err)
	}
	t.Cleanup(func() {
		if t.Failed() && e.Config.Screenshots {
			if path, err := s.Screenshot(t.Name()); err == nil {
				t.Logf("Screenshot saved to %s", path)
			} else {
				t.Logf("Screenshot failed: %v", err)
			}
		}
		_ = s.Close()
	})
	return s
}

// FileScenarios loads the scenarios file named in the config, if any
func (e *Env) FileScenarios(t *testing.T) []scenario.Scenario {
	t.Helper()

	if e.Config.ScenariosFile == "" {
		return nil
	}
	scenarios, err := scenario.LoadFile(e.Config.ScenariosFile)
	if err != nil {
		t.Fatalf("Failed to load scenarios file: %v", err)
	}
	return scenarios
}
