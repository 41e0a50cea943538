// Package loader reads property bags from files, Kubernetes ConfigMaps and
// command line overrides.
package loader

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nauticalab/propbind/pkg/properties"
)

// ConfigMapReader fetches the data of a ConfigMap.
type ConfigMapReader interface {
	ConfigMapData(ctx context.Context, namespace, name string) (map[string]string, error)
}

// ConfigMapRef names a ConfigMap.
type ConfigMapRef struct {
	Namespace string
	Name      string
}

// ParseConfigMapRef parses "namespace/name".
func ParseConfigMapRef(s string) (ConfigMapRef, error) {
	ns, name, ok := strings.Cut(s, "/")
	if !ok || ns == "" || name == "" {
		return ConfigMapRef{}, fmt.Errorf("invalid ConfigMap reference %q, expected namespace/name", s)
	}
	return ConfigMapRef{Namespace: ns, Name: name}, nil
}

func (r ConfigMapRef) String() string {
	return r.Namespace + "/" + r.Name
}

// Sources lists where a bag comes from. Later sources override earlier ones:
// files in order, then ConfigMaps in order, then overrides.
type Sources struct {
	Files      []string
	ConfigMaps []ConfigMapRef
	// Overrides are "key=value" pairs.
	Overrides []string
	// LookupEnv resolves ${ENV:NAME} references; defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load reads every source and merges them into one bag. cm may be nil when
// no ConfigMaps are requested.
func Load(ctx context.Context, src Sources, cm ConfigMapReader) (properties.Bag, error) {
	var bags []properties.Bag

	for _, path := range src.Files {
		bag, err := LoadFile(path)
		if err != nil {
			return properties.Bag{}, err
		}
		bags = append(bags, bag)
	}

	for _, ref := range src.ConfigMaps {
		if cm == nil {
			return properties.Bag{}, fmt.Errorf("cannot read ConfigMap %s: no Kubernetes client", ref)
		}
		data, err := cm.ConfigMapData(ctx, ref.Namespace, ref.Name)
		if err != nil {
			return properties.Bag{}, fmt.Errorf("failed to read ConfigMap %s: %w", ref, err)
		}
		bag, err := FromConfigMap(data)
		if err != nil {
			return properties.Bag{}, fmt.Errorf("invalid ConfigMap %s: %w", ref, err)
		}
		bags = append(bags, bag)
	}

	overrides, err := ParseOverrides(src.Overrides)
	if err != nil {
		return properties.Bag{}, err
	}
	bags = append(bags, overrides)

	lookup := src.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return ExpandEnv(properties.Merge(bags...), lookup)
}

// LoadFile reads a .properties, .yaml or .yml file.
func LoadFile(path string) (properties.Bag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return properties.Bag{}, fmt.Errorf("failed to read property file %s: %w", path, err)
	}

	var bag properties.Bag
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".properties":
		bag, err = ParseProperties(data)
	case ".yaml", ".yml":
		bag, err = ParseYAML(data)
	default:
		return properties.Bag{}, fmt.Errorf("unsupported property file %s: extension %q", path, ext)
	}
	if err != nil {
		return properties.Bag{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return bag, nil
}

// IsPropertyFile reports whether LoadFile understands path.
func IsPropertyFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".properties", ".yaml", ".yml":
		return true
	}
	return false
}

// FromConfigMap turns ConfigMap data into a bag. A data entry whose key ends
// in .properties, .yaml or .yml is parsed as a file; other entries are
// properties themselves and win over file contents. Files are merged in key
// order.
func FromConfigMap(data map[string]string) (properties.Bag, error) {
	plain := make(map[string]string)
	var files []properties.Bag

	for _, key := range slices.Sorted(maps.Keys(data)) {
		value := data[key]
		var (
			bag properties.Bag
			err error
		)
		switch strings.ToLower(filepath.Ext(key)) {
		case ".properties":
			bag, err = ParseProperties([]byte(value))
		case ".yaml", ".yml":
			bag, err = ParseYAML([]byte(value))
		default:
			plain[key] = value
			continue
		}
		if err != nil {
			return properties.Bag{}, fmt.Errorf("data key %s: %w", key, err)
		}
		files = append(files, bag)
	}
	return properties.Merge(append(files, properties.New(plain))...), nil
}

// ParseOverrides parses "key=value" pairs. The value may contain '='.
func ParseOverrides(pairs []string) (properties.Bag, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return properties.Bag{}, fmt.Errorf("invalid override %q, expected key=value", pair)
		}
		out[key] = value
	}
	return properties.New(out), nil
}
