package coerce

import (
	"fmt"
	"reflect"
)

// Error is returned when a raw value cannot be converted to its target type.
type Error struct {
	Raw      string
	TypeName string
	Key      string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("Invalid value '%s' for type %s (property '%s')", e.Raw, e.TypeName, e.Key)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UnsupportedTypeError is returned for a type no strategy can produce.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("type %s cannot be created from a string", e.Type)
}
