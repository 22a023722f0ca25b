// Package browser drives a real browser through playwright-go and exposes
// each page as a scenario.Driver.
package browser

import (
	"fmt"
	"log"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/gotrs-io/gotrs-smoke/internal/config"
)

// Helper owns the Playwright driver and one launched browser.
// Sessions opened from it are isolated contexts and may be used concurrently.
type Helper struct {
	Playwright *playwright.Playwright
	Browser    playwright.Browser
	Config     *config.Config

	mu sync.Mutex
}

// NewHelper creates a helper; nothing is started until Setup
func NewHelper(cfg *config.Config) *Helper {
	return &Helper{Config: cfg}
}

// Install downloads the Playwright driver and the given browsers
func Install(browsers ...string) error {
	if err := playwright.Install(&playwright.RunOptions{Browsers: browsers}); err != nil {
		return fmt.Errorf("could not install playwright browsers: %w", err)
	}
	return nil
}

// Setup starts Playwright and launches the configured browser. Calling it
// again after a successful Setup is a no-op.
func (h *Helper) Setup() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.Browser != nil {
		return nil
	}

	if h.Config.InstallBrowsers {
		if err := Install(h.Config.Browser); err != nil {
			return err
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("could not start playwright: %w", err)
	}

	bt, err := browserType(pw, h.Config.Browser)
	if err != nil {
		_ = pw.Stop()
		return err
	}

	b, err := bt.Launch(launchOptions(h.Config))
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("could not launch %s: %w", h.Config.Browser, err)
	}

	h.Playwright = pw
	h.Browser = b
	log.Printf("[browser] Launched %s %s (headless=%t)", h.Config.Browser, b.Version(), h.Config.Headless)
	return nil
}

// TearDown closes the browser and stops Playwright
func (h *Helper) TearDown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.Browser != nil {
		_ = h.Browser.Close()
		h.Browser = nil
	}
	if h.Playwright != nil {
		_ = h.Playwright.Stop()
		h.Playwright = nil
	}
}

// NewSession opens a fresh browser context and page
func (h *Helper) NewSession() (*Session, error) {
	h.mu.Lock()
	b := h.Browser
	h.mu.Unlock()

	if b == nil {
		return nil, fmt.Errorf("browser not started: call Setup first")
	}

	bctx, err := b.NewContext(contextOptions(h.Config))
	if err != nil {
		return nil, fmt.Errorf("could not create context: %w", err)
	}
	bctx.SetDefaultTimeout(h.Config.TimeoutMS())
	bctx.SetDefaultNavigationTimeout(h.Config.TimeoutMS())

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}

	return &Session{
		Context: bctx,
		Page:    page,
		cfg:     h.Config,
		expect:  playwright.NewPlaywrightAssertions(h.Config.TimeoutMS()),
	}, nil
}

func browserType(pw *playwright.Playwright, name string) (playwright.BrowserType, error) {
	switch name {
	case config.BrowserChromium:
		return pw.Chromium, nil
	case config.BrowserFirefox:
		return pw.Firefox, nil
	case config.BrowserWebKit:
		return pw.WebKit, nil
	default:
		return nil, fmt.Errorf("unsupported browser %q", name)
	}
}

func launchOptions(cfg *config.Config) playwright.BrowserTypeLaunchOptions {
	return playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		SlowMo:   playwright.Float(float64(cfg.SlowMo)),
	}
}

func contextOptions(cfg *config.Config) playwright.BrowserNewContextOptions {
	return playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  cfg.Viewport.Width,
			Height: cfg.Viewport.Height,
		},
	}
}
