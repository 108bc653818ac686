package toolconf

import (
	"fmt"
	"strings"
)

// ToolConfiguration configures a single tool. Its properties are the tool's
// parameters; its key identifies it inside a toolbox.
//
// InvalidScopes lists scopes the tool must never be placed in. ValidScopes,
// when non-empty, is the complete list of scopes it may be placed in.
type ToolConfiguration struct {
	Configuration
	key           string
	className     string
	restrictTo    string
	invalidScopes []string
	validScopes   []string
}

// NewToolConfiguration returns a tool keyed by key. The key is fixed for the
// life of the tool.
func NewToolConfiguration(key string) *ToolConfiguration {
	return &ToolConfiguration{key: key}
}

// Key identifies the tool.
func (t *ToolConfiguration) Key() string { return t.key }

// ClassName names the implementation the tool is built from.
func (t *ToolConfiguration) ClassName() string { return t.className }

func (t *ToolConfiguration) SetClassName(name string) { t.className = name }

// RestrictTo is an optional request path pattern the tool is limited to.
// It is carried for consumers and not interpreted here.
func (t *ToolConfiguration) RestrictTo() string { return t.restrictTo }

func (t *ToolConfiguration) SetRestrictTo(path string) { t.restrictTo = path }

func (t *ToolConfiguration) InvalidScopes() []string { return copyStrings(t.invalidScopes) }

func (t *ToolConfiguration) SetInvalidScopes(scopes ...string) { t.invalidScopes = copyStrings(scopes) }

func (t *ToolConfiguration) ValidScopes() []string { return copyStrings(t.validScopes) }

func (t *ToolConfiguration) SetValidScopes(scopes ...string) { t.validScopes = copyStrings(scopes) }

// AllowedIn reports whether the tool may be placed in a toolbox of scope.
func (t *ToolConfiguration) AllowedIn(scope string) error {
	for _, invalid := range t.invalidScopes {
		if invalid == scope {
			return &ScopeConflictError{Tool: t.key, Scope: scope, Reason: ReasonInvalidScope}
		}
	}
	if len(t.validScopes) > 0 && !containsString(t.validScopes, scope) {
		return &ScopeConflictError{Tool: t.key, Scope: scope, Reason: ReasonNotAllowed}
	}
	return nil
}

// Validate checks the key and every property.
func (t *ToolConfiguration) Validate() error {
	if t.key == "" {
		return &ConfigurationError{
			Subject: "tool",
			Message: "tool key cannot be empty",
			Err:     ErrInvalidArgument,
		}
	}
	return t.Configuration.Validate()
}

// Equal reports structural equality.
func (t *ToolConfiguration) Equal(other *ToolConfiguration) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}
	return t.key == other.key &&
		t.className == other.className &&
		t.restrictTo == other.restrictTo &&
		equalStrings(t.invalidScopes, other.invalidScopes) &&
		equalStrings(t.validScopes, other.validScopes) &&
		t.Configuration.Equal(&other.Configuration)
}

// Clone returns a deep copy.
func (t *ToolConfiguration) Clone() *ToolConfiguration {
	return &ToolConfiguration{
		Configuration: *t.Configuration.Clone(),
		key:           t.key,
		className:     t.className,
		restrictTo:    t.restrictTo,
		invalidScopes: copyStrings(t.invalidScopes),
		validScopes:   copyStrings(t.validScopes),
	}
}

func (t *ToolConfiguration) String() string {
	var out strings.Builder
	fmt.Fprintf(&out, "Tool '%s'", t.key)
	if t.className != "" {
		fmt.Fprintf(&out, " => %s", t.className)
	}
	if t.restrictTo != "" {
		fmt.Fprintf(&out, " for path '%s'", t.restrictTo)
	}
	if len(t.invalidScopes) > 0 {
		fmt.Fprintf(&out, " invalid in %v", t.invalidScopes)
	}
	if len(t.validScopes) > 0 {
		fmt.Fprintf(&out, " valid in %v", t.validScopes)
	}
	out.WriteString(" ")
	t.appendProperties(&out)
	return strings.TrimSpace(out.String())
}

func copyStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
