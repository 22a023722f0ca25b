package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/gotrs-io/gotrs-smoke/internal/config"
	"github.com/gotrs-io/gotrs-smoke/internal/scenario"
)

var _ scenario.Driver = (*Session)(nil)

// strictModeViolation prefixes Playwright's error when a locator resolves to more than one element
const strictModeViolation = "strict mode violation"

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Session is one isolated browser context with a single page.
type Session struct {
	Context playwright.BrowserContext
	Page    playwright.Page

	cfg    *config.Config
	expect playwright.PlaywrightAssertions
}

// Goto navigates to target, resolved against the configured base URL
func (s *Session) Goto(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u, err := s.cfg.ResolveURL(target)
	if err != nil {
		return err
	}
	if _, err := s.Page.Goto(u, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return fmt.Errorf("goto %s: %w", u, err)
	}
	return nil
}

// Title returns the current document title
func (s *Session) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Page.Title()
}

// ExpectVisible waits for target to become visible using the framework's
// default expect timeout. Failures wrap scenario.ErrNotVisible.
func (s *Session) ExpectVisible(ctx context.Context, target scenario.Locator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.expect.Locator(s.locate(target)).ToBeVisible()
	return classifyVisibleError(target, err)
}

// Click clicks target. Multiple matches are an error, as in the framework's strict mode.
func (s *Session) Click(ctx context.Context, target scenario.Locator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.locate(target).Click(); err != nil {
		return fmt.Errorf("click %s: %w", target, err)
	}
	return nil
}

// Screenshot writes a full-page PNG for name under the artifacts dir and returns its path
func (s *Session) Screenshot(name string) (string, error) {
	path := screenshotPath(s.cfg.ArtifactsDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("could not create screenshot dir: %w", err)
	}
	if _, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return "", fmt.Errorf("could not take screenshot: %w", err)
	}
	return path, nil
}

// Close closes the page and its context
func (s *Session) Close() error {
	if err := s.Page.Close(); err != nil && !errors.Is(err, playwright.ErrTargetClosed) {
		_ = s.Context.Close()
		return err
	}
	return s.Context.Close()
}

func (s *Session) locate(target scenario.Locator) playwright.Locator {
	if target.Kind == scenario.LocatorRole {
		opts := playwright.PageGetByRoleOptions{}
		if target.Name != "" {
			opts.Name = target.Name
		}
		return s.Page.GetByRole(playwright.AriaRole(target.Role), opts)
	}
	return s.Page.Locator(target.Selector)
}

func classifyVisibleError(target scenario.Locator, err error) error {
	if err == nil {
		return nil
	}
	// A target closed under us or a locator matching several elements is a
	// framework error, not a failed expectation.
	if errors.Is(err, playwright.ErrTargetClosed) || strings.Contains(err.Error(), strictModeViolation) {
		return fmt.Errorf("visible %s: %w", target, err)
	}
	return fmt.Errorf("%w: %s: %v", scenario.ErrNotVisible, target, err)
}

func screenshotPath(dir, name string) string {
	safe := unsafeFileChars.ReplaceAllString(name, "_")
	return filepath.Join(dir, "screenshots", fmt.Sprintf("%s-%s.png", safe, uuid.NewString()))
}
