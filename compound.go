package toolconf

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Child is a configuration node that can live inside a CompoundConfiguration.
// Children are identified and ordered by Key.
type Child[T any] interface {
	Key() string
	Validate() error
	Clone() T
	Equal(T) bool
}

// CompoundConfiguration is a Configuration that also owns children of a
// single kind, unique and ordered by key. Adding a child whose key is already
// present replaces the existing child.
type CompoundConfiguration[T Child[T]] struct {
	Configuration
	children []T // sorted by Key
}

func (c *CompoundConfiguration[T]) searchChild(key string) (int, bool) {
	i := sort.Search(len(c.children), func(i int) bool {
		return c.children[i].Key() >= key
	})
	return i, i < len(c.children) && c.children[i].Key() == key
}

// AddChild inserts a copy of child, replacing any child with the same key.
// Later changes to child do not reach c; use Child to modify the stored node.
func (c *CompoundConfiguration[T]) AddChild(child T) error {
	if isNil(child) {
		return invalidArgument("child cannot be nil")
	}
	key := child.Key()
	if key == "" {
		return invalidArgument("children must have a key before they can be added")
	}

	i, found := c.searchChild(key)
	if found {
		c.children[i] = child.Clone()
		return nil
	}
	var zero T
	c.children = append(c.children, zero)
	copy(c.children[i+1:], c.children[i:])
	c.children[i] = child.Clone()
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// RemoveChild removes the child keyed like child.
func (c *CompoundConfiguration[T]) RemoveChild(child T) bool {
	if isNil(child) {
		return false
	}
	return c.RemoveChildKey(child.Key())
}

// RemoveChildKey removes the child with key and reports whether it existed.
func (c *CompoundConfiguration[T]) RemoveChildKey(key string) bool {
	i, found := c.searchChild(key)
	if !found {
		return false
	}
	c.children = append(c.children[:i], c.children[i+1:]...)
	return true
}

// Child returns the child with key.
func (c *CompoundConfiguration[T]) Child(key string) (T, bool) {
	i, found := c.searchChild(key)
	if !found {
		var zero T
		return zero, false
	}
	return c.children[i], true
}

// HasChildren reports whether any child is present.
func (c *CompoundConfiguration[T]) HasChildren() bool {
	return len(c.children) > 0
}

// Children returns the children in key order. The slice is a copy; the
// nodes themselves are still owned by c.
func (c *CompoundConfiguration[T]) Children() []T {
	out := make([]T, len(c.children))
	copy(out, c.children)
	return out
}

// SetChildren adds each child in turn with replace semantics.
func (c *CompoundConfiguration[T]) SetChildren(children []T) error {
	for _, child := range children {
		if err := c.AddChild(child); err != nil {
			return err
		}
	}
	return nil
}

// AddConfiguration merges both the properties and the children of other
// into c. Other wins on name or key collision. Children are copied, so c
// never shares a node with other.
func (c *CompoundConfiguration[T]) AddConfiguration(other *CompoundConfiguration[T]) error {
	if other == nil {
		return nil
	}
	if err := c.Configuration.AddConfiguration(&other.Configuration); err != nil {
		return err
	}
	for _, child := range other.children {
		if err := c.AddChild(child); err != nil {
			return err
		}
	}
	return nil
}

// MergeCompound returns a new compound holding base overridden by override.
func MergeCompound[T Child[T]](base, override *CompoundConfiguration[T]) *CompoundConfiguration[T] {
	out := base.Clone()
	// Both inputs only ever hold named properties and keyed children.
	_ = out.AddConfiguration(override)
	return out
}

// Validate checks the compound's own properties, then each child in key
// order. A child failure is returned as a *ChildError.
func (c *CompoundConfiguration[T]) Validate() error {
	if err := c.Configuration.Validate(); err != nil {
		return err
	}
	for _, child := range c.children {
		if err := child.Validate(); err != nil {
			return &ChildError{Key: child.Key(), Err: err}
		}
	}
	return nil
}

// Equal reports structural equality of properties and children.
func (c *CompoundConfiguration[T]) Equal(other *CompoundConfiguration[T]) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	if !c.Configuration.Equal(&other.Configuration) || len(c.children) != len(other.children) {
		return false
	}
	for i := range c.children {
		if !c.children[i].Equal(other.children[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy, children included.
func (c *CompoundConfiguration[T]) Clone() *CompoundConfiguration[T] {
	out := &CompoundConfiguration[T]{}
	if c == nil {
		return out
	}
	out.Configuration = *c.Configuration.Clone()
	out.children = make([]T, len(c.children))
	for i, child := range c.children {
		out.children[i] = child.Clone()
	}
	return out
}

func (c *CompoundConfiguration[T]) appendChildren(out *strings.Builder, label, delim string) {
	if !c.HasChildren() {
		return
	}
	out.WriteString(label)
	for i, child := range c.children {
		if i > 0 {
			out.WriteString(delim)
		}
		fmt.Fprint(out, child)
	}
}
