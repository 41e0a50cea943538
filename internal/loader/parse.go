package loader

import (
	"fmt"
	"strings"

	javaprops "github.com/magiconair/properties"
	"gopkg.in/yaml.v3"

	"github.com/nauticalab/propbind/pkg/properties"
)

// ParseProperties parses .properties text. ${...} references are left as
// they are; only ${ENV:NAME} is resolved later by ExpandEnv.
func ParseProperties(data []byte) (properties.Bag, error) {
	l := &javaprops.Loader{Encoding: javaprops.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes(data)
	if err != nil {
		return properties.Bag{}, err
	}
	return properties.New(p.Map()), nil
}

// ParseYAML parses a YAML document into a bag. Nested mappings are flattened
// with '.', sequences of scalars are joined with ','. Scalars keep their
// literal text so "0x1F" or "1.10" reach coercion unchanged.
func ParseYAML(data []byte) (properties.Bag, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return properties.Bag{}, err
	}

	out := make(map[string]string)
	if len(doc.Content) == 0 {
		return properties.New(out), nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return properties.Bag{}, fmt.Errorf("line %d: top level must be a mapping", root.Line)
	}
	if err := flatten(root, "", out); err != nil {
		return properties.Bag{}, err
	}
	return properties.New(out), nil
}

func flatten(node *yaml.Node, prefix string, out map[string]string) error {
	switch node.Kind {
	case yaml.AliasNode:
		return flatten(node.Alias, prefix, out)

	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			k, v := node.Content[i], node.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: keys must be scalars", k.Line)
			}
			if err := flatten(v, properties.Join(prefix, k.Value), out); err != nil {
				return err
			}
		}
		return nil

	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind == yaml.AliasNode {
				item = item.Alias
			}
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: %s: lists may only contain scalars", item.Line, prefix)
			}
			items = append(items, item.Value)
		}
		return set(out, prefix, strings.Join(items, ","), node.Line)

	case yaml.ScalarNode:
		value := node.Value
		if node.Tag == "!!null" {
			value = ""
		}
		return set(out, prefix, value, node.Line)
	}
	return fmt.Errorf("line %d: unsupported node", node.Line)
}

func set(out map[string]string, key, value string, line int) error {
	if key == "" {
		return fmt.Errorf("line %d: value without a key", line)
	}
	if _, dup := out[key]; dup {
		return fmt.Errorf("line %d: duplicate property %s", line, key)
	}
	out[key] = value
	return nil
}
