package toolconf

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScopes(t *testing.T) {
	scopes := DefaultScopes()
	assert.Equal(t, []string{ScopeApplication, ScopePage, ScopeRequest, ScopeSession}, scopes.Names())
	assert.True(t, scopes.Exists(DefaultScope))
	assert.False(t, scopes.Exists("portlet"))
}

func TestScopes_AddIsIsolated(t *testing.T) {
	a := DefaultScopes()
	b := DefaultScopes()
	require.NoError(t, a.Add("portlet"))

	assert.True(t, a.Exists("portlet"))
	assert.False(t, b.Exists("portlet"))
}

func TestScopes_AddRejectsEmpty(t *testing.T) {
	err := NewScopes().Add("")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestScopes_ZeroAndNil(t *testing.T) {
	var zero Scopes
	assert.False(t, zero.Exists(ScopeRequest))
	require.NoError(t, zero.Add(ScopeRequest))
	assert.True(t, zero.Exists(ScopeRequest))

	var nilScopes *Scopes
	assert.False(t, nilScopes.Exists(ScopeRequest))
	assert.Nil(t, nilScopes.Names())
}

func TestNewScopes_SkipsEmpty(t *testing.T) {
	scopes := NewScopes("", "a", "b", "a")
	assert.Equal(t, []string{"a", "b"}, scopes.Names())
}

func TestScopes_ConcurrentAdd(t *testing.T) {
	scopes := NewScopes()
	var wg sync.WaitGroup
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_ = scopes.Add(name)
			_ = scopes.Exists(name)
		}(name)
	}
	wg.Wait()
	assert.Len(t, scopes.Names(), 8)
}
