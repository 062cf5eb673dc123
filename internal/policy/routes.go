package policy

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrInvalidPattern is returned for a route pattern that cannot be compiled
var ErrInvalidPattern = errors.New("invalid route pattern")

// Access is the classification of a route
type Access int

const (
	// Protected routes require a valid session token
	Protected Access = iota
	// Public routes are served without authentication
	Public
)

func (a Access) String() string {
	if a == Public {
		return "public"
	}
	return "protected"
}

const subtreeSuffix = "/**"

// RoutePolicy maps request paths to an Access level.
// Supported patterns:
//   - exact paths, "/api/accounts/signin"
//   - single-segment wildcards, "/api/*/status" (path.Match syntax)
//   - subtrees, "/actuator/**", matching "/actuator" and everything below it
type RoutePolicy struct {
	exact    map[string]struct{}
	globs    []string
	subtrees []string
}

// NewRoutePolicy compiles the public patterns. An empty list protects every route.
func NewRoutePolicy(publicPatterns []string) (*RoutePolicy, error) {
	p := &RoutePolicy{exact: make(map[string]struct{})}

	for _, raw := range publicPatterns {
		pattern := strings.TrimSpace(raw)
		if !strings.HasPrefix(pattern, "/") {
			return nil, fmt.Errorf("%w: %q must start with /", ErrInvalidPattern, raw)
		}

		if strings.HasSuffix(pattern, subtreeSuffix) {
			prefix := path.Clean(strings.TrimSuffix(pattern, subtreeSuffix) + "/")
			if strings.ContainsAny(prefix, `*?[\`) {
				return nil, fmt.Errorf("%w: %q has a wildcard before /**", ErrInvalidPattern, raw)
			}
			p.subtrees = append(p.subtrees, strings.TrimSuffix(prefix, "/"))
			continue
		}

		if strings.Contains(pattern, "**") {
			return nil, fmt.Errorf("%w: %q uses ** outside a trailing segment", ErrInvalidPattern, raw)
		}

		pattern = path.Clean(pattern)
		if strings.ContainsAny(pattern, `*?[\`) {
			if _, err := path.Match(pattern, "/"); err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, raw, err)
			}
			p.globs = append(p.globs, pattern)
			continue
		}

		p.exact[pattern] = struct{}{}
	}

	return p, nil
}

// Classify returns the access level for requestPath. The path is cleaned
// before matching so dot segments and trailing slashes cannot reach a
// public pattern they do not belong to.
func (p *RoutePolicy) Classify(requestPath string) Access {
	cleaned := path.Clean("/" + requestPath)

	if _, ok := p.exact[cleaned]; ok {
		return Public
	}

	for _, prefix := range p.subtrees {
		if cleaned == prefix || strings.HasPrefix(cleaned, prefix+"/") {
			return Public
		}
	}

	for _, glob := range p.globs {
		if ok, _ := path.Match(glob, cleaned); ok {
			return Public
		}
	}

	return Protected
}

// IsPublic reports whether requestPath is served without authentication
func (p *RoutePolicy) IsPublic(requestPath string) bool {
	return p.Classify(requestPath) == Public
}
