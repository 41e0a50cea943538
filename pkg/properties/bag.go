// Package properties holds the immutable key/value bag that configuration
// classes are bound from.
package properties

import (
	"maps"
	"slices"
)

// Bag is an immutable mapping of property key to raw string value.
// Keys are case-sensitive. The zero value is an empty bag.
type Bag struct {
	values map[string]string
}

// New returns a bag holding a copy of values.
func New(values map[string]string) Bag {
	return Bag{values: maps.Clone(values)}
}

// Lookup returns the raw value stored under key.
func (b Bag) Lookup(key string) (string, bool) {
	v, ok := b.values[key]
	return v, ok
}

// Has reports whether key is present, even with an empty value.
func (b Bag) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

// Keys returns all keys in sorted order.
func (b Bag) Keys() []string {
	return slices.Sorted(maps.Keys(b.values))
}

// Len returns the number of properties.
func (b Bag) Len() int {
	return len(b.values)
}

// Map returns a copy of the underlying values.
func (b Bag) Map() map[string]string {
	out := make(map[string]string, len(b.values))
	maps.Copy(out, b.values)
	return out
}

// With returns a new bag with key set to value. The receiver is unchanged.
func (b Bag) With(key, value string) Bag {
	out := b.Map()
	out[key] = value
	return Bag{values: out}
}

// Merge layers bags in order; a key in a later bag replaces the same key
// from an earlier one.
func Merge(bags ...Bag) Bag {
	out := make(map[string]string)
	for _, b := range bags {
		maps.Copy(out, b.values)
	}
	return Bag{values: out}
}

// Join applies a registration prefix to a key. An empty prefix leaves the key
// untouched; otherwise the two are separated by a dot.
func Join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
