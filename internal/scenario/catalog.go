package scenario

import (
	"fmt"
	"regexp"
)

// Names of the built-in scenarios
const (
	HasTitle          = "has-title"
	GetStartedVisible = "get-started-visible"
	MissingElement    = "missing-element"
	GetStartedClick   = "get-started-click"
)

// DefaultBaseURL is the static site the built-in scenarios target
const DefaultBaseURL = "https://playwright.dev"

var (
	siteTitle         = regexp.MustCompile(`Playwright`)
	getStartedLink    = Role("link", "Get started")
	installingHeading = Role("heading", "Installation")
	missingLocator    = CSS("#this-element-does-not-exist")
)

// Catalog returns the built-in scenarios in a stable order.
// Each call returns fresh values, callers may modify them.
func Catalog() []Scenario {
	return []Scenario{
		{
			Name:        HasTitle,
			Description: "home page title matches /Playwright/",
			URL:         "/",
			Title:       siteTitle,
		},
		{
			Name:        GetStartedVisible,
			Description: "home page shows the Get started link",
			URL:         "/",
			Title:       siteTitle,
			Steps: []Step{
				{Kind: ExpectVisible, Target: getStartedLink},
			},
		},
		{
			Name:        MissingElement,
			Description: "expects an element that does not exist; always fails",
			URL:         "/",
			Title:       siteTitle,
			Steps: []Step{
				{Kind: ExpectVisible, Target: missingLocator},
			},
			ExpectFailure: true,
		},
		{
			Name:        GetStartedClick,
			Description: "clicks Get started and lands on Installation",
			URL:         "/",
			Title:       siteTitle,
			Steps: []Step{
				{Kind: Click, Target: getStartedLink},
				{Kind: ExpectVisible, Target: installingHeading},
			},
		},
	}
}

// Lookup returns the built-in scenario with the given name
func Lookup(name string) (Scenario, error) {
	for _, s := range Catalog() {
		if s.Name == name {
			return s, nil
		}
	}
	return Scenario{}, fmt.Errorf("%w: %s", ErrUnknownScenario, name)
}
