package binding

import (
	"fmt"
	"strings"
)

// Struct tags understood by Build.
const (
	TagConfig      = "config"
	TagLegacy      = "legacy"
	TagDescription = "description"
)

// Options accepted after the key in a config tag.
const (
	optionDeprecated = "deprecated"
	optionSecret     = "secret"
)

type configTag struct {
	key        string
	deprecated bool
	secret     bool
}

// parseConfigTag parses `config:"key[,deprecated][,secret]"`.
func parseConfigTag(tag string) (configTag, error) {
	parts := strings.Split(tag, ",")
	ct := configTag{key: strings.TrimSpace(parts[0])}
	if ct.key == "" {
		return ct, fmt.Errorf("empty property key")
	}
	for _, opt := range parts[1:] {
		switch strings.TrimSpace(opt) {
		case optionDeprecated:
			ct.deprecated = true
		case optionSecret:
			ct.secret = true
		case "":
		default:
			return ct, fmt.Errorf("unknown option %q", opt)
		}
	}
	return ct, nil
}

// parseLegacyTag parses `legacy:"a,b"` keeping declaration order.
func parseLegacyTag(tag string) ([]string, error) {
	var keys []string
	for _, k := range strings.Split(tag, ",") {
		k = strings.TrimSpace(k)
		if k == "" {
			return nil, fmt.Errorf("empty legacy key in %q", tag)
		}
		keys = append(keys, k)
	}
	return keys, nil
}
