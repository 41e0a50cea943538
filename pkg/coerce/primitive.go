package coerce

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// primitive returns the strict parser for predeclared bool and numeric types.
// Named types (type Port int) are not primitives and need a registration.
func primitive(t reflect.Type) (convertFunc, bool) {
	if t.PkgPath() != "" || t.Name() == "" {
		return nil, false
	}

	switch t.Kind() {
	case reflect.Bool:
		return parseBool, true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		bits := t.Bits()
		return func(raw string) (reflect.Value, error) {
			n, err := strconv.ParseInt(raw, 10, bits)
			if err != nil {
				return reflect.Value{}, err
			}
			v := reflect.New(t).Elem()
			v.SetInt(n)
			return v, nil
		}, true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		bits := t.Bits()
		return func(raw string) (reflect.Value, error) {
			n, err := strconv.ParseUint(raw, 10, bits)
			if err != nil {
				return reflect.Value{}, err
			}
			v := reflect.New(t).Elem()
			v.SetUint(n)
			return v, nil
		}, true

	case reflect.Float32, reflect.Float64:
		bits := t.Bits()
		return func(raw string) (reflect.Value, error) {
			f, err := strconv.ParseFloat(raw, bits)
			if err != nil {
				return reflect.Value{}, err
			}
			v := reflect.New(t).Elem()
			v.SetFloat(f)
			return v, nil
		}, true
	}
	return nil, false
}

// parseBool accepts "true" and "false" in any case and nothing else.
func parseBool(raw string) (reflect.Value, error) {
	switch {
	case strings.EqualFold(raw, "true"):
		return reflect.ValueOf(true), nil
	case strings.EqualFold(raw, "false"):
		return reflect.ValueOf(false), nil
	}
	return reflect.Value{}, fmt.Errorf("not a boolean: %q", raw)
}
