// Package coerce converts raw property strings into typed Go values.
//
// A Registry picks exactly one conversion strategy per target type, in this
// order:
//
//  1. string: identity
//  2. unnamed bool and numeric types: strict parse ("true"/"false" only for bool)
//  3. []string: comma separated, tokens trimmed, empty tokens dropped
//  4. string factory: RegisterFromString, else encoding.TextUnmarshaler
//  5. enum: RegisterEnum, names matched case-insensitively with '-' as '_'
//  6. parse factory: RegisterValueOf (time.Duration is preregistered)
//  7. string constructor: RegisterConstructor
//  8. slices whose element type resolves through 1-7, converted element-wise
//
// The first strategy that applies is used exclusively. A value rejected by
// the chosen strategy is an error even if a later strategy would accept it.
// Types matching none of the above are rejected when the Converter is
// requested, which happens when a class is registered.
package coerce

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
)

// Strategy identifies how a type is converted.
type Strategy int

const (
	StrategyString Strategy = iota + 1
	StrategyPrimitive
	StrategyStringList
	StrategyFromString
	StrategyEnum
	StrategyValueOf
	StrategyConstructor
	StrategyElements
)

var strategyNames = map[Strategy]string{
	StrategyString:      "string",
	StrategyPrimitive:   "primitive",
	StrategyStringList:  "string-list",
	StrategyFromString:  "from-string",
	StrategyEnum:        "enum",
	StrategyValueOf:     "value-of",
	StrategyConstructor: "constructor",
	StrategyElements:    "elements",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

type convertFunc func(raw string) (reflect.Value, error)

var (
	stringType          = reflect.TypeOf("")
	stringSliceType     = reflect.TypeOf([]string(nil))
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// Registry holds explicit converter registrations and caches the converter
// chosen for each type. It is safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	fromString   map[reflect.Type]convertFunc
	enums        map[reflect.Type]map[string]reflect.Value
	valueOf      map[reflect.Type]convertFunc
	constructors map[reflect.Type]convertFunc
	cache        map[reflect.Type]*Converter
}

// NewRegistry returns a registry with the built-in parse factories
// (time.Duration) registered.
func NewRegistry() *Registry {
	r := &Registry{
		fromString:   make(map[reflect.Type]convertFunc),
		enums:        make(map[reflect.Type]map[string]reflect.Value),
		valueOf:      make(map[reflect.Type]convertFunc),
		constructors: make(map[reflect.Type]convertFunc),
		cache:        make(map[reflect.Type]*Converter),
	}
	RegisterValueOf(r, time.ParseDuration)
	return r
}

// RegisterFromString registers the string factory for T.
func RegisterFromString[T any](r *Registry, fn func(string) (T, error)) {
	r.register(r.fromString, typeOf[T](), wrap(fn))
}

// RegisterValueOf registers the parse factory for T.
func RegisterValueOf[T any](r *Registry, fn func(string) (T, error)) {
	r.register(r.valueOf, typeOf[T](), wrap(fn))
}

// RegisterConstructor registers the single-string constructor for T.
func RegisterConstructor[T any](r *Registry, fn func(string) (T, error)) {
	r.register(r.constructors, typeOf[T](), wrap(fn))
}

// RegisterEnum registers the named constants of T. Names are matched
// case-insensitively, with '-' in the raw value read as '_'.
func RegisterEnum[T any](r *Registry, constants map[string]T) {
	byName := make(map[string]reflect.Value, len(constants))
	for name, c := range constants {
		v := c
		byName[enumKey(name)] = reflect.ValueOf(&v).Elem()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.enums[typeOf[T]()] = byName
	clear(r.cache)
}

func (r *Registry) register(table map[reflect.Type]convertFunc, t reflect.Type, fn convertFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	table[t] = fn
	clear(r.cache)
}

// Converter returns the converter for t, choosing its strategy on first use.
func (r *Registry) Converter(t reflect.Type) (*Converter, error) {
	r.mu.RLock()
	c, ok := r.cache[t]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.resolve(t)
	if err != nil {
		return nil, err
	}
	r.cache[t] = c
	return c, nil
}

// resolve must be called with r.mu held.
func (r *Registry) resolve(t reflect.Type) (*Converter, error) {
	if t.Kind() == reflect.Pointer {
		if c, ok := r.registered(t); ok {
			return c, nil
		}
		elem, err := r.resolve(t.Elem())
		if err != nil {
			return nil, &UnsupportedTypeError{Type: t}
		}
		return &Converter{
			Type:     t,
			Strategy: elem.Strategy,
			name:     elem.name,
			convert:  addressOf(elem.convert),
		}, nil
	}

	if t == stringType {
		return r.newConverter(t, StrategyString, func(raw string) (reflect.Value, error) {
			return reflect.ValueOf(raw), nil
		}), nil
	}
	if fn, ok := primitive(t); ok {
		return r.newConverter(t, StrategyPrimitive, fn), nil
	}
	if t == stringSliceType {
		return r.newConverter(t, StrategyStringList, func(raw string) (reflect.Value, error) {
			return reflect.ValueOf(splitList(raw)), nil
		}), nil
	}
	if c, ok := r.registered(t); ok {
		return c, nil
	}
	if t.Kind() == reflect.Slice {
		elem, err := r.resolve(t.Elem())
		if err == nil {
			return r.newConverter(t, StrategyElements, elements(t, elem.convert)), nil
		}
	}
	return nil, &UnsupportedTypeError{Type: t}
}

// registered covers strategies 4 to 7.
func (r *Registry) registered(t reflect.Type) (*Converter, bool) {
	if fn, ok := r.fromString[t]; ok {
		return r.newConverter(t, StrategyFromString, fn), true
	}
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return r.newConverter(t, StrategyFromString, unmarshalText(t)), true
	}
	if constants, ok := r.enums[t]; ok {
		return r.newConverter(t, StrategyEnum, enum(constants)), true
	}
	if fn, ok := r.valueOf[t]; ok {
		return r.newConverter(t, StrategyValueOf, fn), true
	}
	if fn, ok := r.constructors[t]; ok {
		return r.newConverter(t, StrategyConstructor, fn), true
	}
	return nil, false
}

func (r *Registry) newConverter(t reflect.Type, s Strategy, fn convertFunc) *Converter {
	return &Converter{Type: t, Strategy: s, name: TypeName(t), convert: fn}
}

// Converter converts raw strings into values of one type.
type Converter struct {
	Type     reflect.Type
	Strategy Strategy
	name     string
	convert  convertFunc
}

// TypeName is the type name used in error messages.
func (c *Converter) TypeName() string {
	return c.name
}

// Convert parses raw. key is only used to describe the failure.
func (c *Converter) Convert(raw, key string) (reflect.Value, error) {
	v, err := c.convert(raw)
	if err != nil {
		return reflect.Value{}, &Error{Raw: raw, TypeName: c.name, Key: key, Err: err}
	}
	return v, nil
}

// TypeName returns the display name of t: "boolean" for bool, the Go type
// string otherwise.
func TypeName(t reflect.Type) string {
	if t.Kind() == reflect.Bool && t.PkgPath() == "" {
		return "boolean"
	}
	return t.String()
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func wrap[T any](fn func(string) (T, error)) convertFunc {
	return func(raw string) (reflect.Value, error) {
		v, err := fn(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(&v).Elem(), nil
	}
}

func addressOf(fn convertFunc) convertFunc {
	return func(raw string) (reflect.Value, error) {
		v, err := fn(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		return p, nil
	}
}

func unmarshalText(t reflect.Type) convertFunc {
	return func(raw string) (reflect.Value, error) {
		p := reflect.New(t)
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
			return reflect.Value{}, err
		}
		return p.Elem(), nil
	}
}

func enumKey(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func enum(constants map[string]reflect.Value) convertFunc {
	return func(raw string) (reflect.Value, error) {
		if v, ok := constants[enumKey(raw)]; ok {
			return v, nil
		}
		return reflect.Value{}, fmt.Errorf("no constant named %q", raw)
	}
}

func splitList(raw string) []string {
	out := []string{}
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

func elements(t reflect.Type, fn convertFunc) convertFunc {
	return func(raw string) (reflect.Value, error) {
		toks := splitList(raw)
		out := reflect.MakeSlice(t, 0, len(toks))
		for _, tok := range toks {
			v, err := fn(tok)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %q: %w", tok, err)
			}
			out = reflect.Append(out, v)
		}
		return out, nil
	}
}
