package toolconf

import (
	"sort"
	"sync"
)

// Standard scopes.
const (
	ScopeApplication = "application"
	ScopePage        = "page"
	ScopeRequest     = "request"
	ScopeSession     = "session"
)

// DefaultScope is the scope a new toolbox starts with.
const DefaultScope = ScopeRequest

// Scopes is a set of recognized scope names, passed explicitly to toolbox
// validation. It is safe for concurrent use, so custom scopes may be added
// at runtime.
type Scopes struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

// NewScopes returns a set holding names. Empty names are skipped.
func NewScopes(names ...string) *Scopes {
	s := &Scopes{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		if name != "" {
			s.names[name] = struct{}{}
		}
	}
	return s
}

// DefaultScopes returns a fresh set of the standard scopes.
func DefaultScopes() *Scopes {
	return NewScopes(ScopeApplication, ScopePage, ScopeRequest, ScopeSession)
}

// Exists reports whether name is recognized.
func (s *Scopes) Exists(name string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.names[name]
	return ok
}

// Add registers a custom scope.
func (s *Scopes) Add(name string) error {
	if name == "" {
		return invalidArgument("scope name cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.names == nil {
		s.names = make(map[string]struct{})
	}
	s.names[name] = struct{}{}
	return nil
}

// Names returns the recognized scopes in sorted order.
func (s *Scopes) Names() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.names))
	for name := range s.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
