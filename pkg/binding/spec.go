// Package binding derives the property layout of a configuration struct from
// its tags.
//
// A field becomes a property when it carries a config tag:
//
//	type HTTPConfig struct {
//		Port    int           `config:"port" legacy:"http-port" validate:"min=1,max=65535" description:"listen port"`
//		Timeout time.Duration `config:"timeout,deprecated"`
//		Token   string        `config:"token,secret"`
//	}
//
// Keys removed for good are declared by the class itself:
//
//	func (HTTPConfig) DefunctProperties() []string { return []string{"max-threads"} }
//
// Anonymous embedded structs without a config tag are flattened into the
// outer class.
package binding

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/nauticalab/propbind/pkg/coerce"
)

// DefunctDeclarer is implemented by classes that reject keys which no longer
// exist.
type DefunctDeclarer interface {
	DefunctProperties() []string
}

var defunctDeclarerType = reflect.TypeOf((*DefunctDeclarer)(nil)).Elem()

// Property is one settable field of a class.
type Property struct {
	// Name is the Go field name.
	Name string
	// Path is the dotted field path from the class root, through embedded structs.
	Path string
	// Index is the reflect field index path.
	Index []int
	// Key is the current key, without prefix.
	Key string
	// Legacy keys in declaration order, without prefix.
	Legacy      []string
	Deprecated  bool
	Secret      bool
	Description string
	Type        reflect.Type
	Converter   *coerce.Converter
}

// Spec describes a configuration class.
type Spec struct {
	Type reflect.Type
	// Name is the package qualified type name used in messages.
	Name       string
	Properties []Property
	// Defunct keys, without prefix.
	Defunct []string
}

// Property returns the property whose current key is key.
func (s *Spec) Property(key string) (*Property, bool) {
	for i := range s.Properties {
		if s.Properties[i].Key == key {
			return &s.Properties[i], true
		}
	}
	return nil, false
}

// PropertyAt returns the property declared at the given field path.
func (s *Spec) PropertyAt(path string) (*Property, bool) {
	for i := range s.Properties {
		if s.Properties[i].Path == path {
			return &s.Properties[i], true
		}
	}
	return nil, false
}

// RegistrationError reports a class that cannot be bound.
type RegistrationError struct {
	Class  string
	Field  string
	Reason string
}

func (e *RegistrationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s is not a valid configuration class: %s", e.Class, e.Reason)
	}
	return fmt.Sprintf("%s.%s is not a valid configuration property: %s", e.Class, e.Field, e.Reason)
}

// Build derives the Spec of struct type t, resolving a converter for every
// property through registry. All problems found are returned together.
func Build(t reflect.Type, registry *coerce.Registry) (*Spec, error) {
	if t.Kind() != reflect.Struct {
		return nil, &RegistrationError{Class: t.String(), Reason: "not a struct"}
	}

	b := &builder{
		spec:     &Spec{Type: t, Name: t.String()},
		registry: registry,
		keys:     make(map[string]string),
	}
	b.walk(t, nil, "")

	if reflect.PointerTo(t).Implements(defunctDeclarerType) {
		declarer := reflect.New(t).Interface().(DefunctDeclarer)
		for _, key := range declarer.DefunctProperties() {
			b.claim(key, "", "defunct property")
			b.spec.Defunct = append(b.spec.Defunct, key)
		}
	}

	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	return b.spec, nil
}

type builder struct {
	spec     *Spec
	registry *coerce.Registry
	// keys maps every claimed key to the field that claimed it.
	keys map[string]string
	errs []error
}

func (b *builder) fail(field, format string, args ...any) {
	b.errs = append(b.errs, &RegistrationError{
		Class:  b.spec.Name,
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	})
}

func (b *builder) claim(key, field, owner string) {
	if key == "" {
		b.fail(field, "empty property key")
		return
	}
	if prev, ok := b.keys[key]; ok {
		b.fail(field, "key '%s' is already used by %s", key, prev)
		return
	}
	if field == "" {
		b.keys[key] = owner
		return
	}
	b.keys[key] = field
}

func (b *builder) walk(t reflect.Type, index []int, path string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fieldIndex := append(append([]int(nil), index...), i)
		fieldPath := f.Name
		if path != "" {
			fieldPath = path + "." + f.Name
		}

		tag, tagged := f.Tag.Lookup(TagConfig)
		legacy, hasLegacy := f.Tag.Lookup(TagLegacy)

		if !tagged {
			if hasLegacy {
				b.fail(fieldPath, "legacy keys declared without a config key")
				continue
			}
			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				b.walk(f.Type, fieldIndex, fieldPath)
			}
			continue
		}

		if !f.IsExported() {
			b.fail(fieldPath, "field is not exported")
			continue
		}

		ct, err := parseConfigTag(tag)
		if err != nil {
			b.fail(fieldPath, "%v", err)
			continue
		}

		prop := Property{
			Name:        f.Name,
			Path:        fieldPath,
			Index:       fieldIndex,
			Key:         ct.key,
			Deprecated:  ct.deprecated,
			Secret:      ct.secret,
			Description: strings.TrimSpace(f.Tag.Get(TagDescription)),
			Type:        f.Type,
		}
		b.claim(prop.Key, fieldPath, "")

		if hasLegacy {
			keys, err := parseLegacyTag(legacy)
			if err != nil {
				b.fail(fieldPath, "%v", err)
				continue
			}
			for _, k := range keys {
				b.claim(k, fieldPath, "")
			}
			prop.Legacy = keys
		}

		conv, err := b.registry.Converter(f.Type)
		if err != nil {
			b.fail(fieldPath, "%v", err)
			continue
		}
		prop.Converter = conv

		b.spec.Properties = append(b.spec.Properties, prop)
	}
}

// Cache derives each Spec once.
type Cache struct {
	registry *coerce.Registry

	mu    sync.Mutex
	specs map[reflect.Type]*Spec
}

// NewCache returns a cache building specs with registry.
func NewCache(registry *coerce.Registry) *Cache {
	return &Cache{registry: registry, specs: make(map[reflect.Type]*Spec)}
}

// Spec returns the cached spec of t, building it on first use. Failures are
// not cached.
func (c *Cache) Spec(t reflect.Type) (*Spec, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.specs[t]; ok {
		return s, nil
	}
	s, err := Build(t, c.registry)
	if err != nil {
		return nil, err
	}
	c.specs[t] = s
	return s, nil
}
