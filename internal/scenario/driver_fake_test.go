package scenario

import (
	"context"
	"fmt"
	"sync"
)

// fakeDriver models a static page: a title plus the set of visible locators.
type fakeDriver struct {
	mu      sync.Mutex
	title   string
	visible map[string]bool
	// pages maps a locator clicked to the page it leads to
	pages map[string]*fakePage

	gotoErr  error
	titleErr error
	clickErr error

	calls []string
}

type fakePage struct {
	title   string
	visible map[string]bool
}

func newFakeDriver(title string, visible ...Locator) *fakeDriver {
	d := &fakeDriver{
		title:   title,
		visible: make(map[string]bool),
		pages:   make(map[string]*fakePage),
	}
	for _, l := range visible {
		d.visible[l.String()] = true
	}
	return d
}

func (d *fakeDriver) record(format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *fakeDriver) Goto(_ context.Context, url string) error {
	d.record("goto %s", url)
	return d.gotoErr
}

func (d *fakeDriver) Title(_ context.Context) (string, error) {
	d.record("title")
	return d.title, d.titleErr
}

func (d *fakeDriver) ExpectVisible(_ context.Context, target Locator) error {
	d.record("visible %s", target)
	if d.visible[target.String()] {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotVisible, target)
}

func (d *fakeDriver) Click(_ context.Context, target Locator) error {
	d.record("click %s", target)
	if d.clickErr != nil {
		return d.clickErr
	}
	if !d.visible[target.String()] {
		return fmt.Errorf("timeout clicking %s", target)
	}
	if next, ok := d.pages[target.String()]; ok {
		d.title = next.title
		d.visible = next.visible
	}
	return nil
}

func (d *fakeDriver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// playwrightSite mirrors the home page the built-in catalog targets.
func playwrightSite() *fakeDriver {
	d := newFakeDriver("Fast and reliable end-to-end testing for modern web apps | Playwright", getStartedLink)
	d.pages[getStartedLink.String()] = &fakePage{
		title:   "Installation | Playwright",
		visible: map[string]bool{installingHeading.String(): true},
	}
	return d
}
