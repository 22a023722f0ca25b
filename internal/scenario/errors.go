package scenario

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownScenario is returned by Lookup for names outside the catalog
var ErrUnknownScenario = errors.New("unknown scenario")

// AssertionFailure is raised when an expectation of a scenario is not met.
// It is the only scenario-level failure kind; it is never recovered inside Run.
type AssertionFailure struct {
	Scenario string
	Step     string
	Expected string
	Actual   string
	Err      error
}

func (e *AssertionFailure) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario %q: %s: expected %s", e.Scenario, e.Step, e.Expected)
	if e.Actual != "" {
		fmt.Fprintf(&b, ", got %s", e.Actual)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *AssertionFailure) Unwrap() error {
	return e.Err
}

// IsAssertionFailure reports whether err carries an AssertionFailure
func IsAssertionFailure(err error) bool {
	var af *AssertionFailure
	return errors.As(err, &af)
}

// ValidationError lists every problem found in a scenario file
type ValidationError struct {
	Source   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d problem(s): %s", e.Source, len(e.Problems), strings.Join(e.Problems, "; "))
}
