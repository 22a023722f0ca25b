// Package scenario describes page smoke scenarios and executes their steps
// against a browser Driver.
//
// Every scenario follows the same shape: navigate to a fixed URL, assert the
// page title matches a fixed pattern, then run its remaining steps in order.
// The first failing step ends the scenario; nothing is retried.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotVisible is wrapped by drivers when an element did not become visible
// within the framework's default timeout.
var ErrNotVisible = errors.New("element not visible")

// StepKind is the action a Step performs
type StepKind int

const (
	// ExpectVisible asserts the target element is visible
	ExpectVisible StepKind = iota + 1
	// Click clicks the target element
	Click
)

func (k StepKind) String() string {
	switch k {
	case ExpectVisible:
		return "visible"
	case Click:
		return "click"
	default:
		return fmt.Sprintf("StepKind(%d)", int(k))
	}
}

// Step is one action after the title assertion
type Step struct {
	Kind   StepKind
	Target Locator
}

func (s Step) String() string {
	return s.Kind.String() + " " + s.Target.String()
}

// Scenario is one self-contained page check
type Scenario struct {
	Name        string
	Description string
	// URL is absolute or a path resolved against the driver's base URL
	URL   string
	Title *regexp.Regexp
	Steps []Step
	// ExpectFailure marks scenarios written to always end in an AssertionFailure
	ExpectFailure bool
}

// Driver is the page handle supplied by the automation framework.
// Implementations own timeouts; scenario code never configures them.
type Driver interface {
	Goto(ctx context.Context, url string) error
	Title(ctx context.Context) (string, error)
	ExpectVisible(ctx context.Context, target Locator) error
	Click(ctx context.Context, target Locator) error
}

// Validate checks a scenario is runnable
func (s Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("scenario name is required")
	}
	if s.URL == "" {
		return fmt.Errorf("scenario %q: url is required", s.Name)
	}
	if s.Title == nil {
		return fmt.Errorf("scenario %q: title pattern is required", s.Name)
	}
	for i, step := range s.Steps {
		if step.Kind != ExpectVisible && step.Kind != Click {
			return fmt.Errorf("scenario %q: step %d: unknown kind %v", s.Name, i, step.Kind)
		}
		if step.Target.IsZero() {
			return fmt.Errorf("scenario %q: step %d: %w: no target", s.Name, i, ErrInvalidLocator)
		}
	}
	return nil
}

// Run executes the scenario against d. It returns nil on success, an
// *AssertionFailure when an expectation is not met, or the wrapped framework
// error of the step that broke.
func Run(ctx context.Context, d Driver, s Scenario) error {
	if err := s.Validate(); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.Goto(ctx, s.URL); err != nil {
		return fmt.Errorf("scenario %q: navigate to %s: %w", s.Name, s.URL, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	title, err := d.Title(ctx)
	if err != nil {
		return fmt.Errorf("scenario %q: read title: %w", s.Name, err)
	}
	if !s.Title.MatchString(title) {
		return &AssertionFailure{
			Scenario: s.Name,
			Step:     "title",
			Expected: fmt.Sprintf("title matching /%s/", s.Title),
			Actual:   fmt.Sprintf("%q", title),
		}
	}

	for _, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runStep(ctx, d, s.Name, step); err != nil {
			return err
		}
	}
	return nil
}

func runStep(ctx context.Context, d Driver, name string, step Step) error {
	switch step.Kind {
	case ExpectVisible:
		err := d.ExpectVisible(ctx, step.Target)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNotVisible) {
			return &AssertionFailure{
				Scenario: name,
				Step:     step.String(),
				Expected: step.Target.String() + " to be visible",
				Err:      err,
			}
		}
		return fmt.Errorf("scenario %q: %s: %w", name, step, err)
	case Click:
		if err := d.Click(ctx, step.Target); err != nil {
			return fmt.Errorf("scenario %q: %s: %w", name, step, err)
		}
		return nil
	default:
		return fmt.Errorf("scenario %q: unknown step kind %v", name, step.Kind)
	}
}
