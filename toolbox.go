package toolconf

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
)

// ScopeProperty is the name under which a toolbox exposes its scope as a property.
const ScopeProperty = "scope"

// ToolboxConfiguration is a scoped set of tools plus toolbox-level properties.
//
// The scope field is the single source of truth for the toolbox's scope; the
// "scope" property is derived from it whenever properties are read, and
// writing the "scope" property sets the scope.
//
// Toolboxes are identified and ordered by scope alone: two toolboxes with the
// same scope are Equal whatever tools they hold. Use SameContents for a
// structural comparison.
type ToolboxConfiguration struct {
	tools CompoundConfiguration[*ToolConfiguration]
	scope string
	owner *FactoryConfiguration // set while held by a factory
}

// NewToolboxConfiguration returns an empty toolbox in DefaultScope.
func NewToolboxConfiguration() *ToolboxConfiguration {
	return &ToolboxConfiguration{scope: DefaultScope}
}

// NewToolboxConfigurationFor returns an empty toolbox in scope.
func NewToolboxConfigurationFor(scope string) (*ToolboxConfiguration, error) {
	tb := &ToolboxConfiguration{}
	if err := tb.SetScope(scope); err != nil {
		return nil, err
	}
	return tb, nil
}

// Scope returns the toolbox scope.
func (tb *ToolboxConfiguration) Scope() string { return tb.scope }

// SetScope sets the toolbox scope. An empty scope is rejected. A toolbox
// held by a factory is re-keyed there, and may not take a scope another
// toolbox of that factory already has.
func (tb *ToolboxConfiguration) SetScope(scope string) error {
	if scope == "" {
		return invalidArgument("toolbox scope cannot be empty")
	}
	if scope == tb.scope {
		return nil
	}
	if tb.owner != nil {
		return tb.owner.rescope(tb, scope)
	}
	tb.scope = scope
	return nil
}

func (tb *ToolboxConfiguration) scopeProperty() Property {
	return Property{Name: ScopeProperty, Value: tb.scope}
}

// AddProperty adds a toolbox property. The "scope" property sets the scope
// and must hold a non-empty string.
func (tb *ToolboxConfiguration) AddProperty(p Property) error {
	if p.Name != ScopeProperty {
		return tb.tools.AddProperty(p)
	}
	scope, ok := p.ConvertedValue().(string)
	if !ok {
		return invalidArgument("toolbox scope must be a string, got %T", p.Value)
	}
	return tb.SetScope(scope)
}

// SetProperty adds an untyped toolbox property.
func (tb *ToolboxConfiguration) SetProperty(name string, value any) error {
	return tb.SetTypedProperty(name, value, TypeNone)
}

// SetTypedProperty adds a typed toolbox property.
func (tb *ToolboxConfiguration) SetTypedProperty(name string, value any, typ Type) error {
	p, err := NewProperty(name, value, typ)
	if err != nil {
		return err
	}
	return tb.AddProperty(p)
}

// SetProperties adds each property in turn.
func (tb *ToolboxConfiguration) SetProperties(props []Property) error {
	for _, p := range props {
		if err := tb.AddProperty(p); err != nil {
			return err
		}
	}
	return nil
}

// RemoveProperty removes the property named like p. The scope cannot be removed.
func (tb *ToolboxConfiguration) RemoveProperty(p Property) bool {
	return tb.RemovePropertyNamed(p.Name)
}

// RemovePropertyNamed removes the named property. The scope cannot be removed.
func (tb *ToolboxConfiguration) RemovePropertyNamed(name string) bool {
	if name == ScopeProperty {
		return false
	}
	return tb.tools.RemovePropertyNamed(name)
}

// HasProperties reports whether the toolbox has any property, scope included.
func (tb *ToolboxConfiguration) HasProperties() bool {
	return tb.scope != "" || tb.tools.HasProperties()
}

// Property returns the named property, deriving "scope" from the scope field.
func (tb *ToolboxConfiguration) Property(name string) (Property, bool) {
	if name == ScopeProperty {
		if tb.scope == "" {
			return Property{}, false
		}
		return tb.scopeProperty(), true
	}
	return tb.tools.Property(name)
}

// Properties returns all properties in name order, the derived scope included.
func (tb *ToolboxConfiguration) Properties() []Property {
	props := tb.tools.Properties()
	if tb.scope == "" {
		return props
	}
	i := sort.Search(len(props), func(i int) bool { return props[i].Name >= ScopeProperty })
	props = append(props, Property{})
	copy(props[i+1:], props[i:])
	props[i] = tb.scopeProperty()
	return props
}

// PropertyMap resolves every property, the derived scope included.
func (tb *ToolboxConfiguration) PropertyMap() map[string]any {
	m := tb.tools.PropertyMap()
	if tb.scope != "" {
		m[ScopeProperty] = tb.scope
	}
	return m
}

// AddTool adds a copy of tool, replacing any tool with the same key.
func (tb *ToolboxConfiguration) AddTool(tool *ToolConfiguration) error {
	return tb.tools.AddChild(tool)
}

// RemoveTool removes the tool keyed like tool.
func (tb *ToolboxConfiguration) RemoveTool(tool *ToolConfiguration) bool {
	return tb.tools.RemoveChild(tool)
}

// Tool returns the tool with key.
func (tb *ToolboxConfiguration) Tool(key string) (*ToolConfiguration, bool) {
	return tb.tools.Child(key)
}

// Tools returns the tools in key order.
func (tb *ToolboxConfiguration) Tools() []*ToolConfiguration {
	return tb.tools.Children()
}

// SetTools adds each tool in turn.
func (tb *ToolboxConfiguration) SetTools(tools []*ToolConfiguration) error {
	return tb.tools.SetChildren(tools)
}

// HasTools reports whether the toolbox holds any tool.
func (tb *ToolboxConfiguration) HasTools() bool {
	return tb.tools.HasChildren()
}

// AddConfiguration merges other's scope, properties and tools into tb.
func (tb *ToolboxConfiguration) AddConfiguration(other *ToolboxConfiguration) error {
	if other == nil {
		return nil
	}
	if other.scope != "" {
		if err := tb.SetScope(other.scope); err != nil {
			return err
		}
	}
	return tb.tools.AddConfiguration(&other.tools)
}

// MergeToolboxes returns a new toolbox holding base overridden by override.
func MergeToolboxes(base, override *ToolboxConfiguration) *ToolboxConfiguration {
	out := base.Clone()
	_ = out.AddConfiguration(override)
	return out
}

// Validate checks the toolbox properties and every tool, then that the scope
// is recognized by scopes and that every tool is permitted in it. A nil
// scopes means DefaultScopes. The first failure is returned; scope
// violations are *ScopeConflictError.
func (tb *ToolboxConfiguration) Validate(scopes *Scopes) error {
	if err := tb.tools.Validate(); err != nil {
		return err
	}

	if scopes == nil {
		scopes = DefaultScopes()
	}
	if tb.scope == "" {
		return &ConfigurationError{Subject: "toolbox", Message: "toolbox scope cannot be empty", Err: ErrInvalidArgument}
	}
	if !scopes.Exists(tb.scope) {
		return &ConfigurationError{
			Subject: tb.subject(),
			Message: fmt.Sprintf("scope %q is not recognized; register it with Scopes.Add(%q)", tb.scope, tb.scope),
			Err:     ErrUnknownScope,
		}
	}

	for _, tool := range tb.tools.children {
		if err := tool.AllowedIn(tb.scope); err != nil {
			return err
		}
	}
	return nil
}

// Problems reports every failure Validate would find instead of the first.
func (tb *ToolboxConfiguration) Problems(scopes *Scopes) []FieldError {
	if scopes == nil {
		scopes = DefaultScopes()
	}
	path := fmt.Sprintf("toolbox[%s]", tb.scope)

	problems := tb.tools.Configuration.problems(path)
	for _, tool := range tb.tools.children {
		toolPath := fmt.Sprintf("%s.tool[%s]", path, tool.Key())
		problems = append(problems, tool.Configuration.problems(toolPath)...)
	}

	switch {
	case tb.scope == "":
		problems = append(problems, FieldError{FieldPath: path, Code: ErrCodeMissingKey, Message: "toolbox scope cannot be empty"})
	case !scopes.Exists(tb.scope):
		problems = append(problems, FieldError{
			FieldPath: path,
			Code:      ErrCodeUnknownScope,
			Message:   fmt.Sprintf("scope %q is not recognized", tb.scope),
		})
	}

	for _, tool := range tb.tools.children {
		if err := tool.AllowedIn(tb.scope); err != nil {
			problems = append(problems, FieldError{
				FieldPath: fmt.Sprintf("%s.tool[%s]", path, tool.Key()),
				Code:      ErrCodeScopeConflict,
				Message:   err.Error(),
			})
		}
	}
	return problems
}

// Compare orders toolboxes by scope only.
func (tb *ToolboxConfiguration) Compare(other *ToolboxConfiguration) int {
	return strings.Compare(tb.scope, other.scope)
}

// Equal reports whether both toolboxes have the same scope.
func (tb *ToolboxConfiguration) Equal(other *ToolboxConfiguration) bool {
	if tb == nil || other == nil {
		return tb == other
	}
	return tb.scope == other.scope
}

// Hash returns a digest of the scope, consistent with Equal.
func (tb *ToolboxConfiguration) Hash() uint64 {
	sum := blake3.Sum256([]byte(tb.scope))
	return binary.LittleEndian.Uint64(sum[:8])
}

// SameContents reports whether both toolboxes have the same scope,
// properties and tools.
func (tb *ToolboxConfiguration) SameContents(other *ToolboxConfiguration) bool {
	if tb == nil || other == nil {
		return tb == other
	}
	return tb.scope == other.scope && tb.tools.Equal(&other.tools)
}

// Clone returns a deep copy.
func (tb *ToolboxConfiguration) Clone() *ToolboxConfiguration {
	if tb == nil {
		return NewToolboxConfiguration()
	}
	return &ToolboxConfiguration{tools: *tb.tools.Clone(), scope: tb.scope}
}

func (tb *ToolboxConfiguration) subject() string {
	return fmt.Sprintf("toolbox '%s'", tb.scope)
}

func (tb *ToolboxConfiguration) String() string {
	var out strings.Builder
	fmt.Fprintf(&out, "Toolbox '%s' ", tb.scope)
	tb.tools.appendProperties(&out)
	tb.tools.appendChildren(&out, " tools: \n  ", "\n  ")
	return strings.TrimSpace(out.String())
}
