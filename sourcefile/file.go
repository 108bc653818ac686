package sourcefile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azhovan/toolconf"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Options configures file source behavior.
type Options struct {
	// Format: "yaml", "json", "jsonc", or "toml". Auto-detected from extension if empty.
	Format string

	// Required: if true, missing files cause an error. Default: false (returns empty configuration).
	Required bool

	// Lenient: if true, unknown document keys are ignored. Default: false (unknown keys are errors).
	Lenient bool
}

type fileSource struct {
	path string
	opts Options
}

// New creates a file-based configuration source.
func New(path string, opts Options) toolconf.Source {
	return &fileSource{
		path: path,
		opts: opts,
	}
}

// Load reads and parses the file into a configuration tree.
func (f *fileSource) Load(ctx context.Context) (*toolconf.FactoryConfiguration, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			if f.opts.Required {
				return nil, fmt.Errorf("required config file not found: %s: %w", f.path, err)
			}
			return toolconf.NewFactoryConfiguration(), nil
		}
		return nil, fmt.Errorf("read config file %s: %w", f.path, err)
	}

	format := f.opts.Format
	if format == "" {
		format = inferFormat(f.path)
	}

	raw, err := parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}

	cfg, err := Build(raw, f.opts.Lenient)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	return cfg, nil
}

// Name returns a human-readable identifier for this source.
func (f *fileSource) Name() string {
	return "file:" + filepath.Base(f.path)
}

// Parse decodes data in format into a configuration tree.
func Parse(data []byte, format string) (*toolconf.FactoryConfiguration, error) {
	raw, err := parse(data, format)
	if err != nil {
		return nil, err
	}
	return Build(raw, false)
}

func parse(data []byte, format string) (map[string]any, error) {
	var raw map[string]any
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	case "json", "jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: yaml, json, jsonc, toml)", format)
	}
	if raw == nil {
		raw = make(map[string]any)
	}
	return raw, nil
}

type document struct {
	Properties map[string]any    `mapstructure:"properties"`
	Toolboxes  []toolboxDocument `mapstructure:"toolboxes"`
}

type toolboxDocument struct {
	Scope      string         `mapstructure:"scope"`
	Properties map[string]any `mapstructure:"properties"`
	Tools      []toolDocument `mapstructure:"tools"`
}

type toolDocument struct {
	Key           string         `mapstructure:"key"`
	Class         string         `mapstructure:"class"`
	RestrictTo    string         `mapstructure:"restrictTo"`
	InvalidScopes []string       `mapstructure:"invalidScopes"`
	ValidScopes   []string       `mapstructure:"validScopes"`
	Properties    map[string]any `mapstructure:"properties"`
}

// Build maps a decoded document onto a configuration tree. Unless lenient,
// unknown keys are rejected. A toolbox without a scope gets DefaultScope.
func Build(raw map[string]any, lenient bool) (*toolconf.FactoryConfiguration, error) {
	var doc document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
		ErrorUnused:      !lenient,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return nil, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	cfg := toolconf.NewFactoryConfiguration()
	if err := setProperties(&cfg.Configuration, doc.Properties); err != nil {
		return nil, fmt.Errorf("factory properties: %w", err)
	}

	for i, tbDoc := range doc.Toolboxes {
		tb := toolconf.NewToolboxConfiguration()
		if tbDoc.Scope != "" {
			if err := tb.SetScope(tbDoc.Scope); err != nil {
				return nil, fmt.Errorf("toolbox %d: %w", i, err)
			}
		}
		if err := setProperties(tb, tbDoc.Properties); err != nil {
			return nil, fmt.Errorf("toolbox %q properties: %w", tb.Scope(), err)
		}

		for j, toolDoc := range tbDoc.Tools {
			if toolDoc.Key == "" {
				return nil, fmt.Errorf("toolbox %q: tool %d has no key", tb.Scope(), j)
			}
			tool := toolconf.NewToolConfiguration(toolDoc.Key)
			tool.SetClassName(toolDoc.Class)
			tool.SetRestrictTo(toolDoc.RestrictTo)
			tool.SetInvalidScopes(trimAll(toolDoc.InvalidScopes)...)
			tool.SetValidScopes(trimAll(toolDoc.ValidScopes)...)
			if err := setProperties(&tool.Configuration, toolDoc.Properties); err != nil {
				return nil, fmt.Errorf("tool %q properties: %w", toolDoc.Key, err)
			}
			if err := tb.AddTool(tool); err != nil {
				return nil, fmt.Errorf("toolbox %q: %w", tb.Scope(), err)
			}
		}

		if err := cfg.AddToolbox(tb); err != nil {
			return nil, fmt.Errorf("toolbox %d: %w", i, err)
		}
	}

	return cfg, nil
}

type propertySetter interface {
	SetTypedProperty(name string, value any, typ toolconf.Type) error
}

func setProperties(target propertySetter, props map[string]any) error {
	for name, value := range props {
		value, typ := typedValue(value)
		if err := target.SetTypedProperty(name, value, typ); err != nil {
			return err
		}
	}
	return nil
}

// typedValue unpacks the {value, type} form of a property.
func typedValue(v any) (any, toolconf.Type) {
	m, ok := v.(map[string]any)
	if !ok {
		return v, toolconf.TypeNone
	}
	typ, ok := m["type"].(string)
	if !ok {
		return v, toolconf.TypeNone
	}
	for key := range m {
		if key != "type" && key != "value" {
			return v, toolconf.TypeNone
		}
	}
	return m["value"], toolconf.Type(typ)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func inferFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".jsonc":
		return "jsonc"
	case ".toml":
		return "toml"
	default:
		return ""
	}
}
