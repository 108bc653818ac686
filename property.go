package toolconf

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Type is a conversion hint for a property's raw value.
type Type string

// Supported property types. TypeNone leaves the value as given.
const (
	TypeNone     Type = ""
	TypeString   Type = "string"
	TypeBoolean  Type = "boolean"
	TypeInteger  Type = "integer"
	TypeNumber   Type = "number"
	TypeList     Type = "list"
	TypeDuration Type = "duration"
)

func (t Type) String() string {
	if t == TypeNone {
		return "none"
	}
	return string(t)
}

// Property is a single named configuration entry.
// Properties are identified and ordered by Name alone.
type Property struct {
	Name  string
	Value any
	Type  Type
}

// NewProperty returns a named property. An empty name is rejected.
func NewProperty(name string, value any, typ Type) (Property, error) {
	if name == "" {
		return Property{}, invalidArgument("property name cannot be empty")
	}
	return Property{Name: name, Value: value, Type: typ}, nil
}

// ConvertedValue returns Value converted to Type. If the conversion fails the
// raw value is returned; Validate reports the failure.
func (p Property) ConvertedValue() any {
	v, err := convert(p.Value, p.Type)
	if err != nil {
		return p.Value
	}
	return v
}

// Validate checks that Value converts to Type.
func (p Property) Validate() error {
	if _, err := convert(p.Value, p.Type); err != nil {
		return &ConversionError{Property: p.Name, Value: p.Value, Type: p.Type, Err: err}
	}
	return nil
}

// Compare orders properties by name.
func (p Property) Compare(other Property) int {
	return strings.Compare(p.Name, other.Name)
}

// Equal reports whether both properties carry the same name, type and value.
func (p Property) Equal(other Property) bool {
	return p.Name == other.Name && p.Type == other.Type && reflect.DeepEqual(p.Value, other.Value)
}

func (p Property) String() string {
	return fmt.Sprintf("%s -%s-> %v", p.Name, p.Type, p.Value)
}

func (p Property) clone() Property {
	p.Value = cloneValue(p.Value)
	return p
}

// convert decodes value into the Go type named by typ using weak typing,
// so "42" becomes 42 and "a,b" becomes []string{"a", "b"}.
func convert(value any, typ Type) (any, error) {
	if typ == TypeNone || value == nil {
		return value, nil
	}

	var target any
	switch typ {
	case TypeString:
		target = new(string)
	case TypeBoolean:
		target = new(bool)
	case TypeInteger:
		target = new(int64)
	case TypeNumber:
		target = new(float64)
	case TypeList:
		target = new([]string)
	case TypeDuration:
		target = new(time.Duration)
	default:
		return nil, fmt.Errorf("unknown type %q", string(typ))
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(value); err != nil {
		return nil, err
	}

	return reflect.ValueOf(target).Elem().Interface(), nil
}

// cloneValue deep-copies the container shapes configuration values take.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if val == nil {
			return val
		}
		dst := make(map[string]any, len(val))
		for k, item := range val {
			dst[k] = cloneValue(item)
		}
		return dst
	case []any:
		if val == nil {
			return val
		}
		dst := make([]any, len(val))
		for i, item := range val {
			dst[i] = cloneValue(item)
		}
		return dst
	case []string:
		if val == nil {
			return val
		}
		dst := make([]string, len(val))
		copy(dst, val)
		return dst
	default:
		return v
	}
}
