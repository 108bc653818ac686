package toolconf

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Typed errors below match these through errors.Is.
var (
	// ErrInvalidArgument is returned immediately by mutators given malformed input
	// (unnamed property, empty scope, unkeyed child).
	ErrInvalidArgument = errors.New("toolconf: invalid argument")

	// ErrConversion marks a property value that cannot be converted to its declared type.
	ErrConversion = errors.New("toolconf: conversion failed")

	// ErrScopeConflict marks a tool placed in a toolbox whose scope it does not permit.
	ErrScopeConflict = errors.New("toolconf: scope conflict")

	// ErrUnknownScope marks a toolbox scope missing from the recognized scopes.
	ErrUnknownScope = errors.New("toolconf: scope is not recognized")
)

// Error codes used in FieldError.
const (
	ErrCodeConversion    = "conversion"
	ErrCodeScopeConflict = "scope_conflict"
	ErrCodeUnknownScope  = "unknown_scope"
	ErrCodeMissingKey    = "missing_key"
)

// ConversionError reports a property whose value does not convert to its type.
type ConversionError struct {
	Property string
	Value    any
	Type     Type
	Err      error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("property %q: cannot convert %v (%T) to %s", e.Property, e.Value, e.Value, e.Type)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

func (e *ConversionError) Unwrap() error { return e.Err }

// Scope conflict reasons.
const (
	ReasonInvalidScope = "scope is declared invalid for this tool"
	ReasonNotAllowed   = "scope is not among the tool's valid scopes"
)

// ScopeConflictError reports a tool that may not appear in a toolbox of Scope.
type ScopeConflictError struct {
	Tool   string
	Scope  string
	Reason string
}

func (e *ScopeConflictError) Error() string {
	return fmt.Sprintf("tool %q is not permitted in scope %q: %s", e.Tool, e.Scope, e.Reason)
}

func (e *ScopeConflictError) Is(target error) bool { return target == ErrScopeConflict }

// ChildError tags a child's validation failure with the child's key.
type ChildError struct {
	Key string
	Err error
}

func (e *ChildError) Error() string {
	return fmt.Sprintf("child %q: %v", e.Key, e.Err)
}

func (e *ChildError) Unwrap() error { return e.Err }

// ConfigurationError reports a configuration node that is invalid as a whole.
type ConfigurationError struct {
	Subject string // e.g. "toolbox 'request'"
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Subject == "" {
		return e.Message
	}
	return e.Subject + ": " + e.Message
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ValidationError aggregates every failure found by a full validation pass.
type ValidationError struct {
	FieldErrors []FieldError
}

// Error formats validation errors as a multi-line message.
func (e *ValidationError) Error() string {
	if len(e.FieldErrors) == 0 {
		return "config validation failed: no errors"
	}

	var b strings.Builder
	if len(e.FieldErrors) == 1 {
		b.WriteString("config validation failed: 1 error\n")
	} else {
		fmt.Fprintf(&b, "config validation failed: %d errors\n", len(e.FieldErrors))
	}

	for _, fe := range e.FieldErrors {
		fmt.Fprintf(&b, "  - %s: %s (%s)\n", fe.FieldPath, fe.Code, fe.Message)
	}

	return strings.TrimRight(b.String(), "\n")
}

// FieldError represents a single validation failure.
type FieldError struct {
	FieldPath string // e.g. "toolbox[request].tool[math].format"
	Code      string // e.g. "conversion", "scope_conflict"
	Message   string
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}
