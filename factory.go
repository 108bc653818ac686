package toolconf

import (
	"fmt"
	"sort"
	"strings"
)

// FactoryConfiguration is the root of a configuration tree: factory-wide
// properties plus at most one toolbox per scope. Adding a toolbox for a scope
// that is already present merges the two toolboxes rather than replacing.
type FactoryConfiguration struct {
	Configuration
	toolboxes []*ToolboxConfiguration // sorted by scope
}

// NewFactoryConfiguration returns an empty factory configuration.
func NewFactoryConfiguration() *FactoryConfiguration {
	return &FactoryConfiguration{}
}

func (f *FactoryConfiguration) searchToolbox(scope string) (int, bool) {
	i := sort.Search(len(f.toolboxes), func(i int) bool {
		return f.toolboxes[i].Scope() >= scope
	})
	return i, i < len(f.toolboxes) && f.toolboxes[i].Scope() == scope
}

// AddToolbox adds a copy of tb. When a toolbox with the same scope exists,
// tb's properties and tools are merged into it, tb winning on collision.
func (f *FactoryConfiguration) AddToolbox(tb *ToolboxConfiguration) error {
	if tb == nil {
		return invalidArgument("toolbox cannot be nil")
	}
	if tb.Scope() == "" {
		return invalidArgument("toolbox scope cannot be empty")
	}

	i, found := f.searchToolbox(tb.Scope())
	if found {
		return f.toolboxes[i].AddConfiguration(tb)
	}
	f.insertToolbox(i, tb.Clone())
	return nil
}

func (f *FactoryConfiguration) insertToolbox(i int, tb *ToolboxConfiguration) {
	f.toolboxes = append(f.toolboxes, nil)
	copy(f.toolboxes[i+1:], f.toolboxes[i:])
	f.toolboxes[i] = tb
	tb.owner = f
}

// rescope moves a held toolbox to scope, keeping toolboxes sorted and unique.
func (f *FactoryConfiguration) rescope(tb *ToolboxConfiguration, scope string) error {
	if _, taken := f.searchToolbox(scope); taken {
		return invalidArgument("scope %q already has a toolbox", scope)
	}
	if i, found := f.searchToolbox(tb.scope); found && f.toolboxes[i] == tb {
		f.toolboxes = append(f.toolboxes[:i], f.toolboxes[i+1:]...)
	}
	tb.scope = scope
	i, _ := f.searchToolbox(scope)
	f.insertToolbox(i, tb)
	return nil
}

// RemoveToolbox removes the toolbox with tb's scope.
func (f *FactoryConfiguration) RemoveToolbox(tb *ToolboxConfiguration) bool {
	if tb == nil {
		return false
	}
	return f.RemoveToolboxScope(tb.Scope())
}

// RemoveToolboxScope removes the toolbox for scope and reports whether it existed.
func (f *FactoryConfiguration) RemoveToolboxScope(scope string) bool {
	i, found := f.searchToolbox(scope)
	if !found {
		return false
	}
	f.toolboxes[i].owner = nil
	f.toolboxes = append(f.toolboxes[:i], f.toolboxes[i+1:]...)
	return true
}

// Toolbox returns the toolbox for scope. The toolbox is still held by f:
// changes to it, including SetScope, are reflected in f.
func (f *FactoryConfiguration) Toolbox(scope string) (*ToolboxConfiguration, bool) {
	i, found := f.searchToolbox(scope)
	if !found {
		return nil, false
	}
	return f.toolboxes[i], true
}

// Toolboxes returns the toolboxes in scope order.
func (f *FactoryConfiguration) Toolboxes() []*ToolboxConfiguration {
	out := make([]*ToolboxConfiguration, len(f.toolboxes))
	copy(out, f.toolboxes)
	return out
}

// PropertyMapFor resolves the properties seen by tools in scope: factory
// properties overlaid by the toolbox's own. It reports false when no toolbox
// exists for scope.
func (f *FactoryConfiguration) PropertyMapFor(scope string) (map[string]any, bool) {
	tb, ok := f.Toolbox(scope)
	if !ok {
		return nil, false
	}
	m := f.Configuration.PropertyMap()
	for name, value := range tb.PropertyMap() {
		m[name] = value
	}
	return m, true
}

// AddConfiguration merges other into f. Toolboxes are copied, never shared.
func (f *FactoryConfiguration) AddConfiguration(other *FactoryConfiguration) error {
	if other == nil {
		return nil
	}
	if err := f.Configuration.AddConfiguration(&other.Configuration); err != nil {
		return err
	}
	for _, tb := range other.toolboxes {
		if err := f.AddToolbox(tb); err != nil {
			return err
		}
	}
	return nil
}

// MergeFactories returns a new factory configuration holding base overridden
// by override. Neither argument is modified.
func MergeFactories(base, override *FactoryConfiguration) *FactoryConfiguration {
	out := base.Clone()
	_ = out.AddConfiguration(override)
	return out
}

// Validate checks factory properties, then every toolbox against scopes.
// A toolbox failure is returned as a *ChildError keyed by scope.
func (f *FactoryConfiguration) Validate(scopes *Scopes) error {
	if err := f.Configuration.Validate(); err != nil {
		return err
	}
	if scopes == nil {
		scopes = DefaultScopes()
	}
	for _, tb := range f.toolboxes {
		if err := tb.Validate(scopes); err != nil {
			return &ChildError{Key: tb.Scope(), Err: err}
		}
	}
	return nil
}

// ValidateAll reports every failure in the tree as a *ValidationError, or nil.
func (f *FactoryConfiguration) ValidateAll(scopes *Scopes) error {
	if scopes == nil {
		scopes = DefaultScopes()
	}
	problems := f.Configuration.problems("factory")
	for _, tb := range f.toolboxes {
		problems = append(problems, tb.Problems(scopes)...)
	}
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{FieldErrors: problems}
}

// Equal reports structural equality of properties and toolbox contents.
func (f *FactoryConfiguration) Equal(other *FactoryConfiguration) bool {
	if f == other {
		return true
	}
	if f == nil || other == nil {
		return false
	}
	if !f.Configuration.Equal(&other.Configuration) || len(f.toolboxes) != len(other.toolboxes) {
		return false
	}
	for i := range f.toolboxes {
		if !f.toolboxes[i].SameContents(other.toolboxes[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (f *FactoryConfiguration) Clone() *FactoryConfiguration {
	out := NewFactoryConfiguration()
	if f == nil {
		return out
	}
	out.Configuration = *f.Configuration.Clone()
	out.toolboxes = make([]*ToolboxConfiguration, len(f.toolboxes))
	for i, tb := range f.toolboxes {
		out.toolboxes[i] = tb.Clone()
		out.toolboxes[i].owner = out
	}
	return out
}

func (f *FactoryConfiguration) String() string {
	var out strings.Builder
	out.WriteString("FactoryConfiguration ")
	f.appendProperties(&out)
	for _, tb := range f.toolboxes {
		fmt.Fprintf(&out, "\n %s", tb)
	}
	return strings.TrimSpace(out.String())
}
