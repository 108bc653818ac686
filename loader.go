package toolconf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Loader loads, merges and validates configuration from multiple sources.
// Sources are processed in order (later override earlier).
// Not safe for concurrent configuration changes.
type Loader struct {
	sources    []Source
	validators []Validator
	scopes     *Scopes
	logger     *slog.Logger
}

// NewLoader creates a Loader with no sources, the default scopes and a
// logger that discards output.
func NewLoader() *Loader {
	return &Loader{
		sources:    make([]Source, 0),
		validators: make([]Validator, 0),
		scopes:     DefaultScopes(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithSource adds a source. Sources are processed in order (later override earlier).
func (l *Loader) WithSource(src Source) *Loader {
	l.sources = append(l.sources, src)
	return l
}

// WithValidator adds a custom validator (executed after built-in validation).
func (l *Loader) WithValidator(v Validator) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// WithScopes sets the recognized scopes used for toolbox validation.
func (l *Loader) WithScopes(scopes *Scopes) *Loader {
	l.scopes = scopes
	return l
}

// WithLogger sets the logger used to report merge progress at debug level.
func (l *Loader) WithLogger(logger *slog.Logger) *Loader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Load merges every source and validates the result once.
func (l *Loader) Load(ctx context.Context) (*FactoryConfiguration, error) {
	merged, err := l.Merge(ctx)
	if err != nil {
		return nil, err
	}

	if err := merged.Validate(l.scopes); err != nil {
		deleteProvenance(merged)
		return nil, err
	}

	for i, validator := range l.validators {
		if err := validator.Validate(ctx, merged); err != nil {
			deleteProvenance(merged)
			return nil, fmt.Errorf("validator %d failed: %w", i, err)
		}
	}

	return merged, nil
}

// Merge loads and merges every source without validating. Callers that want
// every problem rather than the first can pass the result to ValidateAll.
// Provenance for the result is available through GetProvenance.
func (l *Loader) Merge(ctx context.Context) (*FactoryConfiguration, error) {
	merged := NewFactoryConfiguration()
	sources := make(tracker)

	for _, source := range l.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cfg, err := source.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load source %s: %w", source.Name(), err)
		}
		if cfg == nil {
			l.logger.Debug("source returned no configuration", "source", source.Name())
			continue
		}

		if err := merged.AddConfiguration(cfg); err != nil {
			return nil, fmt.Errorf("merge source %s: %w", source.Name(), err)
		}
		sources.record(cfg, source.Name())
		l.logger.Debug("merged source",
			"source", source.Name(),
			"properties", cfg.Len(),
			"toolboxes", len(cfg.toolboxes),
		)
	}

	storeProvenance(merged, sources.provenance(merged))
	return merged, nil
}

// Scopes returns the scopes the loader validates against.
func (l *Loader) Scopes() *Scopes {
	return l.scopes
}
