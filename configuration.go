package toolconf

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
)

// Configuration is a set of properties, unique and ordered by name.
// Adding a property whose name is already present replaces it; this
// replace-on-collision is the merge primitive every other operation uses.
//
// The zero value is an empty configuration ready to use. A Configuration is
// not safe for concurrent mutation.
type Configuration struct {
	properties []Property // sorted by Name
}

// NewConfiguration returns a configuration holding props, merged in order.
func NewConfiguration(props ...Property) (*Configuration, error) {
	c := &Configuration{}
	if err := c.SetProperties(props); err != nil {
		return nil, err
	}
	return c, nil
}

// search returns the index of name and whether it is present.
func (c *Configuration) search(name string) (int, bool) {
	i := sort.Search(len(c.properties), func(i int) bool {
		return c.properties[i].Name >= name
	})
	return i, i < len(c.properties) && c.properties[i].Name == name
}

// AddProperty inserts p, replacing any property with the same name.
func (c *Configuration) AddProperty(p Property) error {
	if p.Name == "" {
		return invalidArgument("all properties must be named before they can be added to a configuration")
	}

	p = p.clone()
	i, found := c.search(p.Name)
	if found {
		c.properties[i] = p
		return nil
	}
	c.properties = append(c.properties, Property{})
	copy(c.properties[i+1:], c.properties[i:])
	c.properties[i] = p
	return nil
}

// SetProperty adds an untyped property.
func (c *Configuration) SetProperty(name string, value any) error {
	return c.SetTypedProperty(name, value, TypeNone)
}

// SetTypedProperty adds a property converted through typ.
func (c *Configuration) SetTypedProperty(name string, value any, typ Type) error {
	p, err := NewProperty(name, value, typ)
	if err != nil {
		return err
	}
	return c.AddProperty(p)
}

// RemoveProperty removes the property named like p. The value of p is ignored.
func (c *Configuration) RemoveProperty(p Property) bool {
	return c.RemovePropertyNamed(p.Name)
}

// RemovePropertyNamed removes the named property and reports whether it existed.
func (c *Configuration) RemovePropertyNamed(name string) bool {
	i, found := c.search(name)
	if !found {
		return false
	}
	c.properties = append(c.properties[:i], c.properties[i+1:]...)
	return true
}

// HasProperties reports whether the configuration holds any property.
func (c *Configuration) HasProperties() bool {
	return len(c.properties) > 0
}

// Len returns the number of properties.
func (c *Configuration) Len() int {
	return len(c.properties)
}

// Property returns the named property. A missing property is not an error.
func (c *Configuration) Property(name string) (Property, bool) {
	i, found := c.search(name)
	if !found {
		return Property{}, false
	}
	return c.properties[i].clone(), true
}

// Properties returns a copy of all properties in ascending name order.
func (c *Configuration) Properties() []Property {
	out := make([]Property, len(c.properties))
	for i, p := range c.properties {
		out[i] = p.clone()
	}
	return out
}

// PropertyMap resolves every property to its converted value.
func (c *Configuration) PropertyMap() map[string]any {
	m := make(map[string]any, len(c.properties))
	for _, p := range c.properties {
		m[p.Name] = p.ConvertedValue()
	}
	return m
}

// SetProperties adds each property in turn. Later entries with a repeated
// name replace earlier ones; iteration order stays by name.
func (c *Configuration) SetProperties(props []Property) error {
	for _, p := range props {
		if err := c.AddProperty(p); err != nil {
			return err
		}
	}
	return nil
}

// AddConfiguration merges other's properties into c; other wins on collision.
func (c *Configuration) AddConfiguration(other *Configuration) error {
	if other == nil {
		return nil
	}
	return c.SetProperties(other.properties)
}

// Merge returns a new configuration holding base overridden by override.
// Neither argument is modified.
func Merge(base, override *Configuration) *Configuration {
	out := base.Clone()
	// Properties in a Configuration are always named, so this cannot fail.
	_ = out.AddConfiguration(override)
	return out
}

// Validate validates every property and returns the first failure.
func (c *Configuration) Validate() error {
	for _, p := range c.properties {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// problems reports every property that fails validation, rooted at path.
func (c *Configuration) problems(path string) []FieldError {
	var out []FieldError
	for _, p := range c.properties {
		if err := p.Validate(); err != nil {
			out = append(out, FieldError{
				FieldPath: path + "." + p.Name,
				Code:      ErrCodeConversion,
				Message:   err.Error(),
			})
		}
	}
	return out
}

// Equal reports whether both configurations hold the same properties,
// regardless of how they were built.
func (c *Configuration) Equal(other *Configuration) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	if len(c.properties) != len(other.properties) {
		return false
	}
	for i := range c.properties {
		if !c.properties[i].Equal(other.properties[i]) {
			return false
		}
	}
	return true
}

// Hash returns a digest of the property set, consistent with Equal.
func (c *Configuration) Hash() uint64 {
	h := blake3.New()
	if c != nil {
		c.writeCanonical(h)
	}
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}

func (c *Configuration) writeCanonical(w interface{ Write([]byte) (int, error) }) {
	for _, p := range c.properties {
		fmt.Fprintf(w, "%s\x00%s\x00%T\x00%s\x00", p.Name, p.Type, p.Value, canonicalValue(p.Value))
	}
}

// canonicalValue renders v by content so that values reflect.DeepEqual
// treats as equal render the same, pointers included.
func canonicalValue(v any) []byte {
	if data, err := json.Marshal(v); err == nil {
		return data
	}
	return []byte(fmt.Sprintf("%#v", v))
}

// Clone returns a deep copy.
func (c *Configuration) Clone() *Configuration {
	if c == nil {
		return &Configuration{}
	}
	return &Configuration{properties: c.Properties()}
}

func (c *Configuration) String() string {
	var out strings.Builder
	out.WriteString("Configuration ")
	c.appendProperties(&out)
	return strings.TrimSpace(out.String())
}

func (c *Configuration) appendProperties(out *strings.Builder) {
	if !c.HasProperties() {
		return
	}
	fmt.Fprintf(out, "with %d properties [", len(c.properties))
	for _, p := range c.properties {
		out.WriteString(p.String())
		out.WriteString("; ")
	}
	out.WriteString("]")
}
