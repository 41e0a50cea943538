package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/nauticalab/propbind/pkg/properties"
)

// Redacted replaces the default value of secret properties.
const Redacted = "[REDACTED]"

// PropertyInfo describes one registered property with its prefix applied.
type PropertyInfo struct {
	Class       string   `json:"class"`
	Key         string   `json:"key"`
	Legacy      []string `json:"legacy,omitempty"`
	Defunct     bool     `json:"defunct,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty"`
	Secret      bool     `json:"secret,omitempty"`
	Type        string   `json:"type"`
	Default     string   `json:"default"`
	Description string   `json:"description,omitempty"`
}

// Describe lists every property of every registered class in registration
// order, followed by the class's defunct keys.
func (f *Factory) Describe() []PropertyInfo {
	var out []PropertyInfo
	for _, reg := range f.registrations {
		spec := reg.Spec
		for _, p := range spec.Properties {
			info := PropertyInfo{
				Class:       spec.Name,
				Key:         properties.Join(reg.Prefix, p.Key),
				Deprecated:  p.Deprecated,
				Secret:      p.Secret,
				Type:        p.Converter.TypeName(),
				Description: p.Description,
			}
			for _, l := range p.Legacy {
				info.Legacy = append(info.Legacy, properties.Join(reg.Prefix, l))
			}
			if p.Secret {
				info.Default = Redacted
			} else {
				info.Default = formatValue(reg.defaults.FieldByIndex(p.Index))
			}
			out = append(out, info)
		}
		for _, key := range spec.Defunct {
			out = append(out, PropertyInfo{
				Class:   spec.Name,
				Key:     properties.Join(reg.Prefix, key),
				Defunct: true,
			})
		}
	}
	return out
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return ""
		}
		return formatValue(v.Elem())
	case reflect.Slice:
		if _, ok := v.Interface().(fmt.Stringer); ok {
			return fmt.Sprint(v.Interface())
		}
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = formatValue(v.Index(i))
		}
		return strings.Join(parts, ",")
	default:
		if v.CanAddr() {
			if s, ok := v.Addr().Interface().(fmt.Stringer); ok {
				return s.String()
			}
		}
		return fmt.Sprint(v.Interface())
	}
}
