package toolconf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolConfiguration_AllowedIn(t *testing.T) {
	tests := []struct {
		name    string
		invalid []string
		valid   []string
		scope   string
		reason  string
	}{
		{name: "unrestricted", scope: ScopeSession},
		{name: "declared invalid", invalid: []string{ScopeSession}, scope: ScopeSession, reason: ReasonInvalidScope},
		{name: "other scope invalid", invalid: []string{ScopeSession}, scope: ScopeRequest},
		{name: "in allow-list", valid: []string{ScopeApplication}, scope: ScopeApplication},
		{name: "outside allow-list", valid: []string{ScopeApplication}, scope: ScopePage, reason: ReasonNotAllowed},
		{name: "invalid beats allow-list", invalid: []string{ScopeRequest}, valid: []string{ScopeRequest}, scope: ScopeRequest, reason: ReasonInvalidScope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := NewToolConfiguration("tiles")
			tc.SetInvalidScopes(tt.invalid...)
			tc.SetValidScopes(tt.valid...)

			err := tc.AllowedIn(tt.scope)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			var conflict *ScopeConflictError
			require.True(t, errors.As(err, &conflict))
			assert.Equal(t, "tiles", conflict.Tool)
			assert.Equal(t, tt.scope, conflict.Scope)
			assert.Equal(t, tt.reason, conflict.Reason)
			assert.True(t, errors.Is(err, ErrScopeConflict))
		})
	}
}

func TestToolConfiguration_Validate(t *testing.T) {
	err := NewToolConfiguration("").Validate()
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	tc := NewToolConfiguration("math")
	require.NoError(t, tc.SetTypedProperty("precision", "4", TypeInteger))
	assert.NoError(t, tc.Validate())

	require.NoError(t, tc.SetTypedProperty("precision", "four", TypeInteger))
	assert.True(t, errors.Is(tc.Validate(), ErrConversion))
}

func TestToolConfiguration_ScopeAccessorsCopy(t *testing.T) {
	scopes := []string{ScopeSession}
	tc := NewToolConfiguration("math")
	tc.SetInvalidScopes(scopes...)
	scopes[0] = ScopePage

	got := tc.InvalidScopes()
	assert.Equal(t, []string{ScopeSession}, got)
	got[0] = ScopeRequest
	assert.Equal(t, []string{ScopeSession}, tc.InvalidScopes())
}

func TestToolConfiguration_CloneAndEqual(t *testing.T) {
	tc := NewToolConfiguration("date")
	tc.SetClassName("tools.DateTool")
	tc.SetRestrictTo("/admin/*")
	tc.SetValidScopes(ScopeApplication)
	require.NoError(t, tc.SetProperty("format", "medium"))

	clone := tc.Clone()
	assert.True(t, tc.Equal(clone))
	assert.NotSame(t, tc, clone)

	clone.SetValidScopes(ScopeRequest)
	assert.False(t, tc.Equal(clone))
}

func TestToolConfiguration_String(t *testing.T) {
	tc := NewToolConfiguration("date")
	tc.SetClassName("tools.DateTool")
	require.NoError(t, tc.SetProperty("format", "medium"))

	assert.Equal(t, "Tool 'date' => tools.DateTool with 1 properties [format -none-> medium; ]", tc.String())
}
