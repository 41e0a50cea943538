package loader

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/nauticalab/propbind/pkg/properties"
)

var envRefRe = regexp.MustCompile(`\$\{ENV:([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnv replaces ${ENV:NAME} in every value with the variable's value.
// Every reference to an unset variable is reported.
func ExpandEnv(bag properties.Bag, lookup func(string) (string, bool)) (properties.Bag, error) {
	out := bag.Map()
	var errs []error

	for _, key := range bag.Keys() {
		value := out[key]
		if !envRefRe.MatchString(value) {
			continue
		}
		out[key] = envRefRe.ReplaceAllStringFunc(value, func(ref string) string {
			name := envRefRe.FindStringSubmatch(ref)[1]
			v, ok := lookup(name)
			if !ok {
				errs = append(errs, fmt.Errorf("configuration property '%s' references environment variable '%s' that is not set", key, name))
				return ref
			}
			return v
		})
	}

	if len(errs) > 0 {
		return properties.Bag{}, errors.Join(errs...)
	}
	return properties.New(out), nil
}
