package config

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/nauticalab/propbind/pkg/binding"
	"github.com/nauticalab/propbind/pkg/coerce"
	"github.com/nauticalab/propbind/pkg/problems"
	"github.com/nauticalab/propbind/pkg/properties"
	"github.com/nauticalab/propbind/pkg/resolve"
	"github.com/nauticalab/propbind/pkg/validation"
)

// Factory binds registered configuration classes from one property bag.
// A Factory is not safe for concurrent use; create one per object graph.
type Factory struct {
	bag       properties.Bag
	monitor   Monitor
	registry  *coerce.Registry
	validator *validation.Validator
	specs     *binding.Cache

	registrations []*Registration
	used          map[string]struct{}
	problems      problems.Problems
}

// Option configures a Factory.
type Option func(*Factory)

// WithRegistry sets the coercion registry. Use it to bind types that need
// RegisterFromString, RegisterEnum, RegisterValueOf or RegisterConstructor.
func WithRegistry(r *coerce.Registry) Option {
	return func(f *Factory) {
		f.registry = r
	}
}

// WithValidator sets the constraint validator.
func WithValidator(v *validation.Validator) Option {
	return func(f *Factory) {
		f.validator = v
	}
}

// NewFactory returns a factory over bag. A nil monitor discards messages.
func NewFactory(bag properties.Bag, monitor Monitor, opts ...Option) *Factory {
	if monitor == nil {
		monitor = NopMonitor{}
	}
	f := &Factory{
		bag:     bag,
		monitor: monitor,
		used:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.registry == nil {
		f.registry = coerce.NewRegistry()
	}
	if f.validator == nil {
		f.validator = validation.New()
	}
	f.specs = binding.NewCache(f.registry)
	return f
}

// Registration is a class registered under a prefix.
type Registration struct {
	Spec   *binding.Spec
	Prefix string

	target   reflect.Value
	defaults reflect.Value
	bound    bool
}

// Defaults returns a copy of the values the target held when registered.
func (r *Registration) Defaults() any {
	return r.defaults.Interface()
}

// Bound reports whether the last Validate wrote this class to its target.
func (r *Registration) Bound() bool {
	return r.bound
}

// Register adds the class pointed to by target. The current field values of
// target are the defaults. An error means the class cannot be bound at all.
func (f *Factory) Register(target any, prefix string) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("configuration target must be a non-nil pointer to a struct, got %T", target)
	}

	spec, err := f.specs.Spec(v.Elem().Type())
	if err != nil {
		return err
	}

	defaults := reflect.New(spec.Type).Elem()
	defaults.Set(v.Elem())

	f.registrations = append(f.registrations, &Registration{
		Spec:     spec,
		Prefix:   prefix,
		target:   v,
		defaults: defaults,
	})
	return nil
}

// Registrations returns the registered classes in registration order.
func (f *Factory) Registrations() []*Registration {
	return slices.Clone(f.registrations)
}

// Module registers a group of classes.
type Module func(*Factory) error

// RegisterModules runs every module and returns all of their errors joined.
func (f *Factory) RegisterModules(modules ...Module) error {
	var errs []error
	for _, m := range modules {
		if err := m(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Validate binds every registered class and returns the errors and warnings
// of this pass. Messages are also forwarded to the monitor and accumulated
// in Problems.
func (f *Factory) Validate() *problems.Problems {
	return f.validate(false)
}

// ValidateStrict is Validate plus one error for every bag key no class
// consumed.
func (f *Factory) ValidateStrict() *problems.Problems {
	return f.validate(true)
}

func (f *Factory) validate(strict bool) *problems.Problems {
	pass := &problems.Problems{}
	for _, reg := range f.registrations {
		pass.Merge(f.bind(reg))
	}
	if strict {
		for _, key := range f.UnusedProperties() {
			pass.Add(problems.Unused(key))
		}
	}

	for _, m := range pass.Errors {
		f.monitor.OnError(m)
	}
	for _, m := range pass.Warnings {
		f.monitor.OnWarning(m)
	}
	f.problems.Merge(pass)
	return pass
}

// bind resolves, coerces and validates one class into a fresh copy of its
// defaults, committing the copy only when the class is clean.
func (f *Factory) bind(reg *Registration) *problems.Problems {
	spec := reg.Spec
	out := &problems.Problems{}

	res := resolve.Resolve(spec, f.bag, reg.Prefix, out)
	for _, key := range res.Consumed {
		f.used[key] = struct{}{}
	}

	instance := reflect.New(spec.Type)
	instance.Elem().Set(reg.defaults)

	for _, o := range res.Bound() {
		v, err := o.Property.Converter.Convert(o.Value, o.Key)
		if err != nil {
			out.Add(problems.InvalidValue(spec.Name, o.Key, err.Error()))
			continue
		}
		instance.Elem().FieldByIndex(o.Property.Index).Set(v)
	}

	reg.bound = false
	if out.HasErrors() {
		return out
	}
	if f.validator.Check(instance.Interface(), spec, reg.Prefix, out) {
		reg.target.Elem().Set(instance.Elem())
		reg.bound = true
	}
	return out
}

// UsedProperties returns every bag key matched to a property so far, sorted.
func (f *Factory) UsedProperties() []string {
	return slices.Sorted(maps.Keys(f.used))
}

// UnusedProperties returns the bag keys not matched to any property so far.
func (f *Factory) UnusedProperties() []string {
	var out []string
	for _, key := range f.bag.Keys() {
		if _, ok := f.used[key]; !ok {
			out = append(out, key)
		}
	}
	return out
}

// Problems returns every message produced by all passes so far.
func (f *Factory) Problems() *problems.Problems {
	out := &problems.Problems{}
	out.Merge(&f.problems)
	return out
}

// Bind registers modules against bag, validates them once and returns a
// *problems.CreationError if anything failed. It is the usual entry point
// for programs that configure themselves at startup.
func Bind(bag properties.Bag, monitor Monitor, modules ...Module) error {
	f := NewFactory(bag, monitor)
	if err := f.RegisterModules(modules...); err != nil {
		return err
	}
	return f.Validate().Err()
}

// Class returns a Module registering a single class.
func Class(target any, prefix string) Module {
	return func(f *Factory) error {
		return f.Register(target, prefix)
	}
}
