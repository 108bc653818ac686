package toolconf

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolbox(t *testing.T, scope string, tools ...*ToolConfiguration) *ToolboxConfiguration {
	t.Helper()
	tb, err := NewToolboxConfigurationFor(scope)
	require.NoError(t, err)
	require.NoError(t, tb.SetTools(tools))
	return tb
}

func TestToolbox_DefaultScopeIsAProperty(t *testing.T) {
	tb := NewToolboxConfiguration()
	assert.Equal(t, DefaultScope, tb.Scope())

	p, ok := tb.Property(ScopeProperty)
	require.True(t, ok)
	assert.Equal(t, DefaultScope, p.Value)
	assert.True(t, tb.HasProperties())
}

func TestToolbox_SetScopeKeepsPropertyInSync(t *testing.T) {
	tb := NewToolboxConfiguration()
	for _, scope := range []string{ScopeSession, ScopeApplication, "custom"} {
		require.NoError(t, tb.SetScope(scope))

		assert.Equal(t, scope, tb.Scope())
		p, ok := tb.Property(ScopeProperty)
		require.True(t, ok)
		assert.Equal(t, scope, p.Value)
		assert.Equal(t, scope, tb.PropertyMap()[ScopeProperty])
	}
}

func TestToolbox_SetScopeRejectsEmpty(t *testing.T) {
	tb := NewToolboxConfiguration()
	err := tb.SetScope("")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Equal(t, DefaultScope, tb.Scope())
}

func TestToolbox_ScopePropertyWritesScope(t *testing.T) {
	tb := NewToolboxConfiguration()
	require.NoError(t, tb.SetProperty(ScopeProperty, ScopeSession))
	assert.Equal(t, ScopeSession, tb.Scope())

	err := tb.SetProperty(ScopeProperty, 42)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Equal(t, ScopeSession, tb.Scope())

	assert.False(t, tb.RemovePropertyNamed(ScopeProperty))
	assert.Equal(t, ScopeSession, tb.Scope())
}

func TestToolbox_PropertiesIncludeDerivedScope(t *testing.T) {
	tb := NewToolboxConfiguration()
	require.NoError(t, tb.SetProperty("xhtml", true))
	require.NoError(t, tb.SetProperty("locale", "en"))

	props := tb.Properties()
	assert.Equal(t, []string{"locale", "scope", "xhtml"}, names(props))
	assert.True(t, sort.SliceIsSorted(props, func(i, j int) bool { return props[i].Name < props[j].Name }))
	assert.Equal(t, map[string]any{"locale": "en", "scope": DefaultScope, "xhtml": true}, tb.PropertyMap())
}

func TestToolbox_ToolLookup(t *testing.T) {
	tb := toolbox(t, ScopeRequest, tool("math", "Math"), tool("date", "Date"))

	math, ok := tb.Tool("math")
	require.True(t, ok)
	assert.Equal(t, "Math", math.ClassName())

	_, ok = tb.Tool("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"date", "math"}, keys(tb.Tools()))
	assert.True(t, tb.RemoveTool(tool("math", "")))
	assert.False(t, tb.RemoveTool(tool("math", "")))
	assert.Equal(t, []string{"date"}, keys(tb.Tools()))
}

func TestToolbox_Validate_InvalidScopeScenario(t *testing.T) {
	restricted := tool("cart", "tools.Cart")
	restricted.SetInvalidScopes(ScopeSession)
	tb := toolbox(t, ScopeSession, restricted)

	err := tb.Validate(DefaultScopes())
	var conflict *ScopeConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "cart", conflict.Tool)
	assert.Equal(t, ScopeSession, conflict.Scope)

	require.NoError(t, tb.SetScope(ScopeRequest))
	assert.NoError(t, tb.Validate(DefaultScopes()))
}

func TestToolbox_Validate_ValidScopesScenario(t *testing.T) {
	appOnly := tool("cache", "tools.Cache")
	appOnly.SetValidScopes(ScopeApplication)

	page := toolbox(t, ScopePage, appOnly)
	err := page.Validate(DefaultScopes())
	assert.True(t, errors.Is(err, ErrScopeConflict))

	app := toolbox(t, ScopeApplication, appOnly.Clone())
	assert.NoError(t, app.Validate(DefaultScopes()))
}

func TestToolbox_Validate_UnknownScope(t *testing.T) {
	tb := toolbox(t, "portlet")

	err := tb.Validate(DefaultScopes())
	assert.True(t, errors.Is(err, ErrUnknownScope))
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Error(), "portlet")

	scopes := DefaultScopes()
	require.NoError(t, scopes.Add("portlet"))
	assert.NoError(t, tb.Validate(scopes))
}

func TestToolbox_Validate_NilScopesUsesDefaults(t *testing.T) {
	assert.NoError(t, toolbox(t, ScopeApplication).Validate(nil))
	assert.Error(t, toolbox(t, "portlet").Validate(nil))
}

func TestToolbox_Validate_EmptyScope(t *testing.T) {
	var tb ToolboxConfiguration
	err := tb.Validate(nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestToolbox_Validate_ChildFailureBeforeScopeChecks(t *testing.T) {
	broken := tool("math", "")
	require.NoError(t, broken.SetTypedProperty("precision", "many", TypeInteger))
	broken.SetInvalidScopes(ScopeRequest)
	tb := toolbox(t, ScopeRequest, broken)

	err := tb.Validate(nil)
	var childErr *ChildError
	require.True(t, errors.As(err, &childErr))
	assert.Equal(t, "math", childErr.Key)
	assert.False(t, errors.Is(err, ErrScopeConflict))
}

func TestToolbox_Problems_ReportsEverything(t *testing.T) {
	a := tool("a", "")
	a.SetInvalidScopes("portlet")
	b := tool("b", "")
	require.NoError(t, b.SetTypedProperty("n", "x", TypeInteger))
	tb := toolbox(t, "portlet", a, b)
	require.NoError(t, tb.SetTypedProperty("flag", "maybe", TypeBoolean))

	problems := tb.Problems(nil)

	codes := make(map[string]string)
	for _, p := range problems {
		codes[p.FieldPath] = p.Code
	}
	assert.Equal(t, map[string]string{
		"toolbox[portlet].flag":      ErrCodeConversion,
		"toolbox[portlet].tool[b].n": ErrCodeConversion,
		"toolbox[portlet]":           ErrCodeUnknownScope,
		"toolbox[portlet].tool[a]":   ErrCodeScopeConflict,
	}, codes)
}

func TestToolbox_CompareAndEqualByScopeOnly(t *testing.T) {
	var many []*ToolConfiguration
	for _, key := range []string{"a", "b", "c", "d", "e"} {
		many = append(many, tool(key, ""))
	}
	full := toolbox(t, ScopePage, many...)
	empty := toolbox(t, ScopePage)

	assert.Zero(t, full.Compare(empty))
	assert.True(t, full.Equal(empty))
	assert.Equal(t, full.Hash(), empty.Hash())
	assert.False(t, full.SameContents(empty))

	request := toolbox(t, ScopeRequest, many...)
	assert.Negative(t, full.Compare(request))
	assert.Positive(t, request.Compare(full))
	assert.False(t, full.Equal(request))
}

func TestToolbox_SortByScope(t *testing.T) {
	boxes := []*ToolboxConfiguration{
		toolbox(t, ScopeSession),
		toolbox(t, ScopeApplication),
		toolbox(t, ScopeRequest),
	}
	sort.Slice(boxes, func(i, j int) bool { return boxes[i].Compare(boxes[j]) < 0 })

	var scopes []string
	for _, tb := range boxes {
		scopes = append(scopes, tb.Scope())
	}
	assert.Equal(t, []string{ScopeApplication, ScopeRequest, ScopeSession}, scopes)
}

func TestToolbox_AddConfiguration(t *testing.T) {
	base := toolbox(t, ScopeRequest, tool("math", "old.Math"), tool("date", "Date"))
	require.NoError(t, base.SetProperty("locale", "en"))

	override := toolbox(t, ScopeRequest, tool("math", "new.Math"))
	require.NoError(t, override.SetProperty("locale", "fr"))

	merged := MergeToolboxes(base, override)
	assert.Equal(t, []string{"date", "math"}, keys(merged.Tools()))
	math, _ := merged.Tool("math")
	assert.Equal(t, "new.Math", math.ClassName())
	assert.Equal(t, "fr", merged.PropertyMap()["locale"])

	// inputs untouched
	baseMath, _ := base.Tool("math")
	assert.Equal(t, "old.Math", baseMath.ClassName())
	assert.Equal(t, "en", base.PropertyMap()["locale"])

	require.NoError(t, base.AddConfiguration(override))
	assert.True(t, base.SameContents(merged))
}

func TestToolbox_String(t *testing.T) {
	tb := toolbox(t, ScopeRequest, tool("math", "Math"))
	require.NoError(t, tb.SetProperty("xhtml", true))

	assert.Equal(t,
		"Toolbox 'request' with 1 properties [xhtml -none-> true; ] tools: \n  Tool 'math' => Math",
		tb.String())
}

func TestToolbox_AddTool_SameToolInTwoToolboxes(t *testing.T) {
	math := tool("math", "Math")
	request := toolbox(t, ScopeRequest, math)
	session := toolbox(t, ScopeSession, math)

	math.SetInvalidScopes(ScopeSession)
	require.NoError(t, math.SetProperty("precision", 4))

	inRequest, _ := request.Tool("math")
	inSession, _ := session.Tool("math")
	assert.NotSame(t, inRequest, inSession)
	assert.Empty(t, inRequest.PropertyMap())
	assert.Empty(t, inSession.PropertyMap())
	assert.NoError(t, request.Validate(nil))
	assert.NoError(t, session.Validate(nil))
}

func TestToolbox_AddTool_RejectsNil(t *testing.T) {
	tb := NewToolboxConfiguration()
	assert.True(t, errors.Is(tb.AddTool(nil), ErrInvalidArgument))
	assert.False(t, tb.RemoveTool(nil))
	assert.False(t, tb.HasTools())
}

func TestToolbox_Problems_MissingScope(t *testing.T) {
	var tb ToolboxConfiguration
	problems := tb.Problems(nil)

	require.Len(t, problems, 1)
	assert.Equal(t, "toolbox[]", problems[0].FieldPath)
	assert.Equal(t, ErrCodeMissingKey, problems[0].Code)
}
