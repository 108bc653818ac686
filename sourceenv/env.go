package sourceenv

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Azhovan/toolconf"
	"github.com/Azhovan/toolconf/internal/normalize"
)

// Options configures environment variable source behavior.
type Options struct {
	// Prefix filters vars starting with prefix (stripped before normalization).
	// Empty = load all vars.
	// Prefix matching behavior is controlled by CaseSensitive.
	Prefix string

	// CaseSensitive controls prefix matching (default: false).
	// When false, prefix matching is case-insensitive (APP_ matches app_, App_, etc.).
	// When true, prefix must match exactly.
	// Keys are always normalized to lowercase after prefix stripping.
	CaseSensitive bool
}

type envSource struct {
	opts Options
}

// New creates an environment variable source.
func New(opts Options) toolconf.Source {
	return &envSource{opts: opts}
}

// Load scans environment variables, filters by prefix, and maps normalized
// keys onto factory and toolbox properties.
func (e *envSource) Load(ctx context.Context) (*toolconf.FactoryConfiguration, error) {
	cfg := toolconf.NewFactoryConfiguration()

	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := parts[0]
		value := parts[1]

		if e.opts.Prefix != "" {
			var hasPrefix bool
			if e.opts.CaseSensitive {
				hasPrefix = strings.HasPrefix(key, e.opts.Prefix)
			} else {
				hasPrefix = strings.HasPrefix(strings.ToUpper(key), strings.ToUpper(e.opts.Prefix))
			}

			if !hasPrefix {
				continue
			}
			key = key[len(e.opts.Prefix):]
		}

		if key == "" {
			continue
		}

		// Normalize: REQUEST__LOCALE → request.locale
		path := normalize.Split(normalize.ToLowerDotPath(key))
		switch len(path) {
		case 1:
			if err := cfg.SetProperty(path[0], value); err != nil {
				return nil, fmt.Errorf("env %s: %w", parts[0], err)
			}
		case 2:
			if err := setToolboxProperty(cfg, path[0], path[1], value); err != nil {
				return nil, fmt.Errorf("env %s: %w", parts[0], err)
			}
		}
	}

	return cfg, nil
}

func setToolboxProperty(cfg *toolconf.FactoryConfiguration, scope, name, value string) error {
	if name == toolconf.ScopeProperty {
		return fmt.Errorf("%w: toolbox scope is taken from the key, not set as a property", toolconf.ErrInvalidArgument)
	}
	if tb, ok := cfg.Toolbox(scope); ok {
		return tb.SetProperty(name, value)
	}
	tb, err := toolconf.NewToolboxConfigurationFor(scope)
	if err != nil {
		return err
	}
	if err := tb.SetProperty(name, value); err != nil {
		return err
	}
	return cfg.AddToolbox(tb)
}

// Name returns a human-readable identifier for this source.
func (e *envSource) Name() string {
	if e.opts.Prefix == "" {
		return "env"
	}
	return "env:" + e.opts.Prefix
}
