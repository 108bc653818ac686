package toolconf

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func dumpFixture(t *testing.T) *FactoryConfiguration {
	t.Helper()
	math := tool("math", "tools.MathTool")
	math.SetRestrictTo("/admin/*")
	math.SetInvalidScopes(ScopeSession)
	if err := math.SetTypedProperty("precision", "4", TypeInteger); err != nil {
		t.Fatal(err)
	}

	tb := toolbox(t, ScopeRequest, math)
	if err := tb.SetProperty("xhtml", true); err != nil {
		t.Fatal(err)
	}
	return factoryWith(t, map[string]any{"locale": "en"}, tb)
}

func TestDump_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, dumpFixture(t)); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	want := strings.Join([]string{
		"locale: en",
		"toolbox[request].scope: request",
		"toolbox[request].xhtml: true",
		"toolbox[request].tool[math].class: tools.MathTool",
		"toolbox[request].tool[math].restrictTo: /admin/*",
		"toolbox[request].tool[math].precision: 4",
	}, "\n") + "\n"

	if got := buf.String(); got != want {
		t.Errorf("Dump text output\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestDump_TextShowsRawValueOnConversionFailure(t *testing.T) {
	cfg := NewFactoryConfiguration()
	if err := cfg.SetTypedProperty("timeout", "soon", TypeDuration); err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetProperty("empty", nil); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Dump(&buf, cfg); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if got, want := buf.String(), "empty: <nil>\ntimeout: soon\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDump_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, dumpFixture(t), AsJSON()); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	props := doc["properties"].(map[string]any)
	if props["locale"] != "en" {
		t.Errorf("properties.locale = %v", props["locale"])
	}

	boxes := doc["toolboxes"].([]any)
	if len(boxes) != 1 {
		t.Fatalf("expected 1 toolbox, got %d", len(boxes))
	}
	box := boxes[0].(map[string]any)
	if box["scope"] != ScopeRequest {
		t.Errorf("scope = %v", box["scope"])
	}
	if _, ok := box["properties"].(map[string]any)["scope"]; ok {
		t.Error("scope should not be duplicated among toolbox properties")
	}

	tools := box["tools"].([]any)
	math := tools[0].(map[string]any)
	if math["key"] != "math" || math["class"] != "tools.MathTool" || math["restrictTo"] != "/admin/*" {
		t.Errorf("unexpected tool: %v", math)
	}
	if _, ok := math["validScopes"]; ok {
		t.Error("empty validScopes should be omitted")
	}
	precision := math["properties"].(map[string]any)["precision"].(map[string]any)
	if precision["type"] != "integer" || precision["value"] != "4" {
		t.Errorf("typed property should keep its type, got %v", precision)
	}
}

func TestDump_JSONIndent(t *testing.T) {
	cfg := factoryWith(t, map[string]any{"a": "1"})

	var compact bytes.Buffer
	if err := Dump(&compact, cfg, AsJSON(), WithIndent("")); err != nil {
		t.Fatal(err)
	}
	if got, want := compact.String(), `{"properties":{"a":"1"}}`+"\n"; got != want {
		t.Errorf("compact JSON = %q, want %q", got, want)
	}

	var tabbed bytes.Buffer
	if err := Dump(&tabbed, cfg, AsJSON(), WithIndent("\t")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(tabbed.String(), "\n\t\"properties\"") {
		t.Errorf("expected tab indentation, got %q", tabbed.String())
	}
}

func TestDump_YAMLFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, dumpFixture(t), AsYAML()); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	var doc struct {
		Properties map[string]any `yaml:"properties"`
		Toolboxes  []struct {
			Scope string `yaml:"scope"`
			Tools []struct {
				Key           string   `yaml:"key"`
				InvalidScopes []string `yaml:"invalidScopes"`
			} `yaml:"tools"`
		} `yaml:"toolboxes"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, buf.String())
	}

	if doc.Properties["locale"] != "en" {
		t.Errorf("locale = %v", doc.Properties["locale"])
	}
	if len(doc.Toolboxes) != 1 || doc.Toolboxes[0].Scope != ScopeRequest {
		t.Fatalf("unexpected toolboxes: %+v", doc.Toolboxes)
	}
	if got := doc.Toolboxes[0].Tools[0].InvalidScopes; len(got) != 1 || got[0] != ScopeSession {
		t.Errorf("invalidScopes = %v", got)
	}
}

func TestDump_LastFormatOptionWins(t *testing.T) {
	cfg := factoryWith(t, map[string]any{"a": "1"})

	var buf bytes.Buffer
	if err := Dump(&buf, cfg, AsYAML(), AsJSON()); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
}

func TestDump_NilConfig(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, nil); err == nil {
		t.Error("expected error for nil config")
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("closed") }

func TestDump_WriteError(t *testing.T) {
	err := Dump(failingWriter{}, factoryWith(t, map[string]any{"a": "1"}))
	if err == nil || !strings.Contains(err.Error(), "write error") {
		t.Errorf("expected write error, got %v", err)
	}
}
