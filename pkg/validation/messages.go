package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// message renders a violation the way constraint messages read in
// configuration reports ("must not be null", "must be less than or equal to 100").
func (v *Validator) message(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	if custom, ok := v.messages[tag]; ok {
		if strings.Contains(custom, "%s") {
			return fmt.Sprintf(custom, param)
		}
		return custom
	}

	sized := isSized(fe.Kind())

	switch tag {
	case "required":
		// only a nil pointer or interface is absent; a supplied zero value is empty
		if k := fe.Kind(); k == reflect.Pointer || k == reflect.Interface {
			return "must not be null"
		}
		return "must not be empty"
	case "min", "gte":
		if sized {
			return fmt.Sprintf("size must be greater than or equal to %s", param)
		}
		return fmt.Sprintf("must be greater than or equal to %s", param)
	case "max", "lte":
		if sized {
			return fmt.Sprintf("size must be less than or equal to %s", param)
		}
		return fmt.Sprintf("must be less than or equal to %s", param)
	case "gt":
		if sized {
			return fmt.Sprintf("size must be greater than %s", param)
		}
		return fmt.Sprintf("must be greater than %s", param)
	case "lt":
		if sized {
			return fmt.Sprintf("size must be less than %s", param)
		}
		return fmt.Sprintf("must be less than %s", param)
	case "len":
		return fmt.Sprintf("size must be %s", param)
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", param)
	case "email":
		return "must be a well-formed email address"
	case "url":
		return "must be a valid URL"
	case "hostname":
		return "must be a valid hostname"
	case "hostname_port":
		return "must be a valid host:port"
	case "ip":
		return "must be a valid IP address"
	case "cidr":
		return "must be a valid CIDR"
	case "file":
		return "must be an existing file"
	case "dir":
		return "must be an existing directory"
	default:
		return fmt.Sprintf("failed constraint '%s'", tag)
	}
}

func isSized(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return true
	}
	return false
}
