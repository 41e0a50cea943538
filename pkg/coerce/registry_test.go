package coerce

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fromStringType struct{ value string }

type answer int

const (
	answerTrue answer = iota + 1
	answerFalse
)

type color int

const (
	colorRed color = iota + 1
	colorDarkBlue
)

type valueOfType struct{ value string }

type constructorType struct{ value string }

type port int

type opaque struct{ a, b int }

func newTestRegistry() *Registry {
	r := NewRegistry()

	RegisterFromString(r, func(s string) (fromStringType, error) {
		if s != "value-good-for-fromString" {
			return fromStringType{}, errors.New("bad value")
		}
		return fromStringType{value: s}, nil
	})
	RegisterValueOf(r, func(s string) (fromStringType, error) {
		return fromStringType{value: "from valueOf"}, nil
	})

	RegisterEnum(r, map[string]answer{"TRUE": answerTrue, "FALSE": answerFalse})
	RegisterFromString(r, func(s string) (answer, error) {
		switch s {
		case "yes":
			return answerTrue, nil
		case "no":
			return answerFalse, nil
		}
		return 0, fmt.Errorf("unknown answer %q", s)
	})

	RegisterEnum(r, map[string]color{"RED": colorRed, "DARK_BLUE": colorDarkBlue})

	RegisterValueOf(r, func(s string) (valueOfType, error) {
		if s != "value-good-for-valueOf" {
			return valueOfType{}, errors.New("bad value")
		}
		return valueOfType{value: s}, nil
	})
	RegisterConstructor(r, func(s string) (valueOfType, error) {
		return valueOfType{value: "from constructor"}, nil
	})

	RegisterConstructor(r, func(s string) (constructorType, error) {
		if strings.HasPrefix(s, "bad") {
			return constructorType{}, errors.New("bad value")
		}
		return constructorType{value: "constructor-argument: " + s}, nil
	})
	return r
}

func convert[T any](t *testing.T, r *Registry, raw string) (T, error) {
	t.Helper()
	c, err := r.Converter(reflect.TypeOf((*T)(nil)).Elem())
	require.NoError(t, err)
	v, err := c.Convert(raw, "key")
	if err != nil {
		var zero T
		return zero, err
	}
	return v.Interface().(T), nil
}

func TestStrategySelection(t *testing.T) {
	r := newTestRegistry()

	cases := []struct {
		name string
		typ  reflect.Type
		want Strategy
	}{
		{"string", reflect.TypeOf(""), StrategyString},
		{"bool", reflect.TypeOf(false), StrategyPrimitive},
		{"int", reflect.TypeOf(0), StrategyPrimitive},
		{"float64", reflect.TypeOf(0.0), StrategyPrimitive},
		{"string list", reflect.TypeOf([]string(nil)), StrategyStringList},
		{"from string wins over value of", reflect.TypeOf(fromStringType{}), StrategyFromString},
		{"from string wins over enum", reflect.TypeOf(answer(0)), StrategyFromString},
		{"text unmarshaler", reflect.TypeOf(net.IP{}), StrategyFromString},
		{"enum", reflect.TypeOf(color(0)), StrategyEnum},
		{"value of wins over constructor", reflect.TypeOf(valueOfType{}), StrategyValueOf},
		{"duration", reflect.TypeOf(time.Duration(0)), StrategyValueOf},
		{"constructor", reflect.TypeOf(constructorType{}), StrategyConstructor},
		{"int slice", reflect.TypeOf([]int(nil)), StrategyElements},
		{"pointer follows element", reflect.TypeOf((*int)(nil)), StrategyPrimitive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := r.Converter(tc.typ)
			require.NoError(t, err)
			assert.Equal(t, tc.want, c.Strategy, "got %s", c.Strategy)
		})
	}
}

func TestUnsupportedTypes(t *testing.T) {
	r := newTestRegistry()

	for _, typ := range []reflect.Type{
		reflect.TypeOf(port(0)),
		reflect.TypeOf(opaque{}),
		reflect.TypeOf(map[string]string{}),
		reflect.TypeOf([]opaque(nil)),
		reflect.TypeOf((*opaque)(nil)),
	} {
		t.Run(typ.String(), func(t *testing.T) {
			_, err := r.Converter(typ)
			var unsupported *UnsupportedTypeError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, typ, unsupported.Type)
		})
	}
}

func TestBoolean(t *testing.T) {
	r := NewRegistry()

	for raw, want := range map[string]bool{"true": true, "TRUE": true, "True": true, "false": false, "FaLsE": false} {
		got, err := convert[bool](t, r, raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"yes", "no", "1", "0", "", " true"} {
		_, err := convert[bool](t, r, raw)
		require.Error(t, err, raw)
		assert.Equal(t, fmt.Sprintf("Invalid value '%s' for type boolean (property 'key')", raw), err.Error())
	}
}

func TestNumbers(t *testing.T) {
	r := NewRegistry()

	n, err := convert[int](t, r, "42")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = convert[int](t, r, "abc")
	assert.EqualError(t, err, "Invalid value 'abc' for type int (property 'key')")

	_, err = convert[int8](t, r, "300")
	assert.EqualError(t, err, "Invalid value '300' for type int8 (property 'key')")

	_, err = convert[uint](t, r, "-1")
	assert.Error(t, err)

	f, err := convert[float64](t, r, "2.5")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, f, 0)
}

func TestStringList(t *testing.T) {
	r := NewRegistry()

	got, err := convert[[]string](t, r, "ala, ma ,kota, ")
	require.NoError(t, err)
	assert.Equal(t, []string{"ala", "ma", "kota"}, got)

	got, err = convert[[]string](t, r, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFromString(t *testing.T) {
	r := newTestRegistry()

	got, err := convert[fromStringType](t, r, "value-good-for-fromString")
	require.NoError(t, err)
	assert.Equal(t, "value-good-for-fromString", got.value)

	// the registered parse factory would accept anything but is never consulted
	_, err = convert[fromStringType](t, r, "anything")
	assert.EqualError(t, err, "Invalid value 'anything' for type coerce.fromStringType (property 'key')")
}

func TestEnumWithFromString(t *testing.T) {
	r := newTestRegistry()

	got, err := convert[answer](t, r, "yes")
	require.NoError(t, err)
	assert.Equal(t, answerTrue, got)

	got, err = convert[answer](t, r, "no")
	require.NoError(t, err)
	assert.Equal(t, answerFalse, got)

	_, err = convert[answer](t, r, "TRUE")
	assert.Error(t, err)
}

func TestEnum(t *testing.T) {
	r := newTestRegistry()

	for raw, want := range map[string]color{
		"RED":       colorRed,
		"red":       colorRed,
		"Dark_Blue": colorDarkBlue,
		"dark-blue": colorDarkBlue,
		"DARK-BLUE": colorDarkBlue,
	} {
		got, err := convert[color](t, r, raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := convert[color](t, r, "green")
	assert.EqualError(t, err, "Invalid value 'green' for type coerce.color (property 'key')")
}

func TestValueOf(t *testing.T) {
	r := newTestRegistry()

	got, err := convert[valueOfType](t, r, "value-good-for-valueOf")
	require.NoError(t, err)
	assert.Equal(t, "value-good-for-valueOf", got.value)

	_, err = convert[valueOfType](t, r, "anything")
	assert.Error(t, err)
}

func TestConstructor(t *testing.T) {
	r := newTestRegistry()

	got, err := convert[constructorType](t, r, "constructor-value")
	require.NoError(t, err)
	assert.Equal(t, "constructor-argument: constructor-value", got.value)

	_, err = convert[constructorType](t, r, "bad-value")
	assert.Error(t, err)
}

func TestDuration(t *testing.T) {
	r := NewRegistry()

	got, err := convert[time.Duration](t, r, "1m30s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, got)

	_, err = convert[time.Duration](t, r, "90")
	assert.EqualError(t, err, "Invalid value '90' for type time.Duration (property 'key')")
}

func TestTextUnmarshaler(t *testing.T) {
	r := NewRegistry()

	got, err := convert[net.IP](t, r, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", got.String())

	_, err = convert[net.IP](t, r, "not-an-ip")
	assert.Error(t, err)
}

func TestPointer(t *testing.T) {
	r := NewRegistry()

	got, err := convert[*int](t, r, "7")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 7, *got)

	_, err = convert[*bool](t, r, "yes")
	assert.EqualError(t, err, "Invalid value 'yes' for type boolean (property 'key')")
}

func TestElements(t *testing.T) {
	r := NewRegistry()

	ints, err := convert[[]int](t, r, "1, 2,3,")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ints)

	durations, err := convert[[]time.Duration](t, r, "1s,2m")
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Minute}, durations)

	_, err = convert[[]int](t, r, "1,x")
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "1,x", cerr.Raw)
	assert.Equal(t, "[]int", cerr.TypeName)
}

func TestErrorUnwraps(t *testing.T) {
	r := newTestRegistry()

	_, err := convert[constructorType](t, r, "bad")
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.EqualError(t, errors.Unwrap(err), "bad value")
	assert.Equal(t, "key", cerr.Key)
}

func TestRegistrationResetsCache(t *testing.T) {
	r := NewRegistry()

	_, err := r.Converter(reflect.TypeOf(port(0)))
	require.Error(t, err)

	RegisterValueOf(r, func(s string) (port, error) { return port(len(s)), nil })

	got, err := convert[port](t, r, "abc")
	require.NoError(t, err)
	assert.Equal(t, port(3), got)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "boolean", TypeName(reflect.TypeOf(true)))
	assert.Equal(t, "int", TypeName(reflect.TypeOf(0)))
	assert.Equal(t, "[]string", TypeName(reflect.TypeOf([]string{})))
	assert.Equal(t, "time.Duration", TypeName(reflect.TypeOf(time.Second)))
}
