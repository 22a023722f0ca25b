package scenario

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidLocator is returned when a locator string cannot be parsed
var ErrInvalidLocator = errors.New("invalid locator")

// LocatorKind selects how a Locator is resolved against the page
type LocatorKind int

const (
	// LocatorCSS resolves a CSS selector
	LocatorCSS LocatorKind = iota
	// LocatorRole resolves an ARIA role plus accessible name
	LocatorRole
)

const (
	cssPrefix  = "css="
	rolePrefix = "role="
)

var roleName = regexp.MustCompile(`^[a-z]+$`)

// Locator identifies a page element, either by CSS selector or by role
type Locator struct {
	Kind     LocatorKind
	Selector string
	Role     string
	Name     string
}

// CSS builds a CSS selector locator
func CSS(selector string) Locator {
	return Locator{Kind: LocatorCSS, Selector: selector}
}

// Role builds a role-based locator. An empty name matches any element with the role.
func Role(role, name string) Locator {
	return Locator{Kind: LocatorRole, Role: role, Name: name}
}

// ParseLocator parses the text form of a locator:
//
//	css=<selector>
//	role=<role>
//	role=<role>[name="<accessible name>"]
//
// Anything without a known prefix is treated as a CSS selector.
func ParseLocator(s string) (Locator, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Locator{}, fmt.Errorf("%w: empty", ErrInvalidLocator)
	}

	switch {
	case strings.HasPrefix(s, cssPrefix):
		sel := strings.TrimSpace(strings.TrimPrefix(s, cssPrefix))
		if sel == "" {
			return Locator{}, fmt.Errorf("%w: empty css selector", ErrInvalidLocator)
		}
		return CSS(sel), nil
	case strings.HasPrefix(s, rolePrefix):
		return parseRole(strings.TrimPrefix(s, rolePrefix))
	default:
		return CSS(s), nil
	}
}

func parseRole(s string) (Locator, error) {
	role, rest, hasOpts := strings.Cut(s, "[")
	if !roleName.MatchString(role) {
		return Locator{}, fmt.Errorf("%w: bad role %q", ErrInvalidLocator, role)
	}
	if !hasOpts {
		return Role(role, ""), nil
	}

	rest = "[" + rest
	if !strings.HasPrefix(rest, `[name=`) || !strings.HasSuffix(rest, "]") {
		return Locator{}, fmt.Errorf("%w: expected [name=\"...\"] after role %q", ErrInvalidLocator, role)
	}
	quoted := strings.TrimSuffix(strings.TrimPrefix(rest, "[name="), "]")
	name, err := strconv.Unquote(quoted)
	if err != nil {
		return Locator{}, fmt.Errorf("%w: name %s: %v", ErrInvalidLocator, quoted, err)
	}
	return Role(role, name), nil
}

// String returns the text form accepted by ParseLocator
func (l Locator) String() string {
	switch l.Kind {
	case LocatorRole:
		if l.Name == "" {
			return rolePrefix + l.Role
		}
		return rolePrefix + l.Role + "[name=" + strconv.Quote(l.Name) + "]"
	default:
		return cssPrefix + l.Selector
	}
}

// IsZero reports whether the locator is unset
func (l Locator) IsZero() bool {
	return l == Locator{}
}
