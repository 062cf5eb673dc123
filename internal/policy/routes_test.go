package policy

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultPublic = []string{
	"/api/accounts/signin",
	"/api/accounts/signup",
	"/actuator/**",
}

func TestRoutePolicy_Classify(t *testing.T) {
	p, err := NewRoutePolicy(append(defaultPublic, "/api/*/status"))
	require.NoError(t, err)

	tests := []struct {
		path string
		want Access
	}{
		{"/api/accounts/signin", Public},
		{"/api/accounts/signin/", Public},
		{"/api/accounts/signup", Public},
		{"/actuator", Public},
		{"/actuator/health", Public},
		{"/actuator/health/readiness", Public},
		{"/api/customers/status", Public},
		{"/api/customers/nested/status", Protected},
		{"/api/accounts/me", Protected},
		{"/api/accounts/signin/extra", Protected},
		{"/api/accounts/signin/../me", Protected},
		{"/actuator/../api/accounts/me", Protected},
		{"/actuatorx", Protected},
		{"/", Protected},
		{"", Protected},
		{"/API/accounts/signin", Protected},
		{"/api/tasks", Protected},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.path), func(t *testing.T) {
			assert.Equal(t, tt.want, p.Classify(tt.path))
			assert.Equal(t, tt.want == Public, p.IsPublic(tt.path))
		})
	}
}

func TestRoutePolicy_FailClosed(t *testing.T) {
	p, err := NewRoutePolicy(nil)
	require.NoError(t, err)

	for _, path := range []string{"/", "/api/accounts/signin", "/actuator/health"} {
		assert.Equal(t, Protected, p.Classify(path), path)
	}
}

func TestRoutePolicy_RootSubtree(t *testing.T) {
	p, err := NewRoutePolicy([]string{"/**"})
	require.NoError(t, err)

	assert.Equal(t, Public, p.Classify("/"))
	assert.Equal(t, Public, p.Classify("/anything/at/all"))
}

func TestNewRoutePolicy_InvalidPatterns(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
	}{
		{"relative", "api/accounts"},
		{"empty", ""},
		{"inner double star", "/api/**/status"},
		{"malformed class", "/api/[a-"},
		{"wildcard before subtree", "/api/*/**"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewRoutePolicy([]string{tt.pattern})
			assert.ErrorIs(t, err, ErrInvalidPattern)
			assert.Nil(t, p)
		})
	}
}

func TestAccess_String(t *testing.T) {
	assert.Equal(t, "public", Public.String())
	assert.Equal(t, "protected", Protected.String())
}

func TestRoutePolicy_ConcurrentReads(t *testing.T) {
	p, err := NewRoutePolicy(defaultPublic)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				assert.Equal(t, Public, p.Classify("/actuator/health"))
			} else {
				assert.Equal(t, Protected, p.Classify("/api/accounts/me"))
			}
		}(i)
	}
	wg.Wait()
}
