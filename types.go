package toolconf

import (
	"context"
)

// Source provides configuration from a backend (files, env vars, code).
// Missing optional sources should return an empty configuration.
type Source interface {
	// Load builds a configuration tree. The returned tree is owned by the caller.
	Load(ctx context.Context) (*FactoryConfiguration, error)

	// Name identifies the source in errors and logs (e.g. "file:tools.yaml").
	Name() string
}

// Validator performs custom validation after the built-in validation.
// Use for cross-toolbox or deployment-specific rules.
type Validator interface {
	Validate(ctx context.Context, cfg *FactoryConfiguration) error
}

// ValidatorFunc is a function adapter for Validator.
type ValidatorFunc func(ctx context.Context, cfg *FactoryConfiguration) error

func (f ValidatorFunc) Validate(ctx context.Context, cfg *FactoryConfiguration) error {
	return f(ctx, cfg)
}

// StaticSource is a Source serving a configuration built in code.
type StaticSource struct {
	name   string
	config *FactoryConfiguration
}

// NewStaticSource returns a source that serves a copy of cfg on every Load.
func NewStaticSource(name string, cfg *FactoryConfiguration) *StaticSource {
	return &StaticSource{name: name, config: cfg}
}

func (s *StaticSource) Load(ctx context.Context) (*FactoryConfiguration, error) {
	return s.config.Clone(), nil
}

func (s *StaticSource) Name() string { return "static:" + s.name }
