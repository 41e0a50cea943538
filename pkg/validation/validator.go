// Package validation checks declared constraints on bound configuration
// instances with go-playground/validator and reports violations against the
// property keys they came from.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	k8svalidation "k8s.io/apimachinery/pkg/util/validation"

	"github.com/nauticalab/propbind/pkg/binding"
	"github.com/nauticalab/propbind/pkg/problems"
	"github.com/nauticalab/propbind/pkg/properties"
)

// Checker is implemented by classes with constraints that are easier to
// express in code than in tags. It runs after the tag constraints passed.
type Checker interface {
	Validate() error
}

// Validator wraps a validator.Validate together with the messages of its
// custom constraints.
type Validator struct {
	validate *validator.Validate
	messages map[string]string
}

// New returns a Validator with required-on-structs semantics and the
// built-in custom constraints registered.
func New() *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		messages: make(map[string]string),
	}

	if err := v.RegisterConstraint("dns_label", validateDNSLabel, "must be a valid DNS-1123 label"); err != nil {
		panic(fmt.Errorf("register validator dns_label: %w", err))
	}
	if err := v.RegisterConstraint("log_format", validateLogFormat, "must be one of [console json]"); err != nil {
		panic(fmt.Errorf("register validator log_format: %w", err))
	}
	return v
}

// RegisterConstraint adds a custom tag. message is reported on violation;
// it may reference the tag parameter with %s.
func (v *Validator) RegisterConstraint(tag string, fn validator.Func, message string) error {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		return err
	}
	v.messages[tag] = message
	return nil
}

// Check validates instance, a pointer to a struct described by spec, and adds
// one error per violation to sink. It reports whether instance is valid.
func (v *Validator) Check(instance any, spec *binding.Spec, prefix string, sink *problems.Problems) bool {
	err := v.validate.Struct(instance)

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		sink.Add(problems.InvalidConfiguration(spec.Name, err))
		return false
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			key := keyFor(fe, spec, prefix)
			sink.Add(problems.Constraint(spec.Name, key, v.message(fe)))
		}
		return false
	}

	if checker, ok := instance.(Checker); ok {
		if err := checker.Validate(); err != nil {
			sink.Add(problems.InvalidConfiguration(spec.Name, err))
			return false
		}
	}
	return true
}

// keyFor maps a violation back to the prefixed key of the offending property.
// Fields without a config tag are reported by field path.
func keyFor(fe validator.FieldError, spec *binding.Spec, prefix string) string {
	path := fe.StructNamespace()
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.IndexByte(path, '['); i >= 0 {
		path = path[:i]
	}
	if prop, ok := spec.PropertyAt(path); ok {
		return properties.Join(prefix, prop.Key)
	}
	return properties.Join(prefix, path)
}

func validateDNSLabel(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || len(k8svalidation.IsDNS1123Label(s)) == 0
}

func validateLogFormat(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "console", "json":
		return true
	}
	return false
}
