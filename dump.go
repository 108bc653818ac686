package toolconf

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DumpOption configures dump behavior using the functional options pattern.
type DumpOption func(*dumpConfig)

type dumpConfig struct {
	asJSON      bool
	asYAML      bool
	withSources bool   // Append the source of each line in text format
	indent      string // Indentation for JSON and YAML output (default: "  ")
}

// WithSources appends " (source: name)" to each text line whose source is
// known. It needs a configuration returned by Loader.Load or Loader.Merge.
func WithSources() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.withSources = true
	}
}

// AsJSON outputs configuration as JSON instead of text format.
func AsJSON() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.asJSON = true
		cfg.asYAML = false
	}
}

// AsYAML outputs configuration as YAML instead of text format.
func AsYAML() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.asYAML = true
		cfg.asJSON = false
	}
}

// WithIndent sets the indentation for JSON and YAML output.
// Default is two spaces ("  ").
func WithIndent(indent string) DumpOption {
	return func(cfg *dumpConfig) {
		cfg.indent = indent
	}
}

// Dump writes cfg to w. The text format prints one "path: value" line per
// entry with converted values; the JSON and YAML formats use the document
// layout sourcefile reads, so a dump can be loaded back.
func Dump(w io.Writer, cfg *FactoryConfiguration, opts ...DumpOption) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	config := dumpConfig{
		indent: "  ",
	}
	for _, opt := range opts {
		opt(&config)
	}

	switch {
	case config.asJSON:
		return dumpAsJSON(w, cfg, config)
	case config.asYAML:
		return dumpAsYAML(w, cfg, config)
	default:
		return dumpAsText(w, cfg, config)
	}
}

// entry is one "path: value" line of the text format.
type entry struct {
	path  string
	value any
}

// flatten lists every path of cfg in dump order with converted values.
func flatten(cfg *FactoryConfiguration) []entry {
	var out []entry
	for _, p := range cfg.Properties() {
		out = append(out, entry{p.Name, p.ConvertedValue()})
	}
	for _, tb := range cfg.toolboxes {
		prefix := "toolbox[" + tb.Scope() + "]"
		out = append(out, entry{prefix + ".scope", tb.Scope()})
		for _, p := range tb.tools.Properties() {
			out = append(out, entry{prefix + "." + p.Name, p.ConvertedValue()})
		}
		for _, tool := range tb.tools.children {
			toolPrefix := prefix + ".tool[" + tool.Key() + "]"
			if tool.ClassName() != "" {
				out = append(out, entry{toolPrefix + ".class", tool.ClassName()})
			}
			if tool.RestrictTo() != "" {
				out = append(out, entry{toolPrefix + ".restrictTo", tool.RestrictTo()})
			}
			for _, p := range tool.Properties() {
				out = append(out, entry{toolPrefix + "." + p.Name, p.ConvertedValue()})
			}
		}
	}
	return out
}

func dumpAsText(w io.Writer, cfg *FactoryConfiguration, config dumpConfig) error {
	var prov *Provenance
	if config.withSources {
		prov, _ = GetProvenance(cfg)
	}

	for _, e := range flatten(cfg) {
		line := fmt.Sprintf("%s: %s", e.path, formatValue(e.value))
		if name, ok := prov.Source(e.path); ok {
			line += fmt.Sprintf(" (source: %s)", name)
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
	}
	return nil
}

func dumpAsJSON(w io.Writer, cfg *FactoryConfiguration, config dumpConfig) error {
	doc := buildDocument(cfg)

	var data []byte
	var err error
	if config.indent != "" {
		data, err = json.MarshalIndent(doc, "", config.indent)
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

func dumpAsYAML(w io.Writer, cfg *FactoryConfiguration, config dumpConfig) error {
	enc := yaml.NewEncoder(w)
	if n := len(config.indent); n > 0 {
		enc.SetIndent(n)
	}
	if err := enc.Encode(buildDocument(cfg)); err != nil {
		return fmt.Errorf("yaml marshal error: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

type dumpDocument struct {
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	Toolboxes  []dumpToolbox  `json:"toolboxes,omitempty" yaml:"toolboxes,omitempty"`
}

type dumpToolbox struct {
	Scope      string         `json:"scope" yaml:"scope"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	Tools      []dumpTool     `json:"tools,omitempty" yaml:"tools,omitempty"`
}

type dumpTool struct {
	Key           string         `json:"key" yaml:"key"`
	Class         string         `json:"class,omitempty" yaml:"class,omitempty"`
	RestrictTo    string         `json:"restrictTo,omitempty" yaml:"restrictTo,omitempty"`
	InvalidScopes []string       `json:"invalidScopes,omitempty" yaml:"invalidScopes,omitempty"`
	ValidScopes   []string       `json:"validScopes,omitempty" yaml:"validScopes,omitempty"`
	Properties    map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

func buildDocument(cfg *FactoryConfiguration) dumpDocument {
	doc := dumpDocument{Properties: documentProperties(cfg.Properties())}
	for _, tb := range cfg.toolboxes {
		dtb := dumpToolbox{
			Scope:      tb.Scope(),
			Properties: documentProperties(tb.tools.Properties()),
		}
		for _, tool := range tb.tools.children {
			dtb.Tools = append(dtb.Tools, dumpTool{
				Key:           tool.Key(),
				Class:         tool.ClassName(),
				RestrictTo:    tool.RestrictTo(),
				InvalidScopes: tool.InvalidScopes(),
				ValidScopes:   tool.ValidScopes(),
				Properties:    documentProperties(tool.Properties()),
			})
		}
		doc.Toolboxes = append(doc.Toolboxes, dtb)
	}
	return doc
}

// documentProperties renders typed properties as {value, type} so the type
// survives a round trip.
func documentProperties(props []Property) map[string]any {
	if len(props) == 0 {
		return nil
	}
	m := make(map[string]any, len(props))
	for _, p := range props {
		if p.Type == TypeNone {
			m[p.Name] = p.Value
			continue
		}
		m[p.Name] = map[string]any{"value": p.Value, "type": string(p.Type)}
	}
	return m
}

func formatValue(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v", v)
}
