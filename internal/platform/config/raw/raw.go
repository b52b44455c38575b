// Package raw is the lookup layer under platform/config.
// It has NO dependency on the logger package so the logger can bootstrap from it.
// Values resolve from the process environment first, then from an optional
// YAML overlay file flattened into env-style keys
package raw

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Conf is a namespaced view over environment variables (e.g., "SOURCE_", "LOG_")
// with an optional read-only file overlay shared by all prefixed children
type Conf struct {
	prefix string
	file   map[string]string
}

// New returns a root Conf backed by the environment only
func New() Conf { return Conf{} }

// FromFile returns a root Conf whose lookups fall back to the YAML document at path.
// An empty path is the same as New()
func FromFile(path string) (Conf, error) {
	if strings.TrimSpace(path) == "" {
		return New(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Conf{}, fmt.Errorf("read config file %s: %w", path, err)
	}
	return FromYAML(b)
}

// FromYAML builds a root Conf from an in-memory YAML document
//
//	source:
//	  sql:
//	    driver: pg     -> SOURCE_SQL_DRIVER=pg
//	clean:
//	  extra_stopwords: [meh, ok] -> CLEAN_EXTRA_STOPWORDS=meh,ok
func FromYAML(b []byte) (Conf, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Conf{}, fmt.Errorf("parse config yaml: %w", err)
	}
	flat := map[string]string{}
	flatten("", doc, flat)
	return Conf{file: flat}, nil
}

func flatten(prefix string, v any, out map[string]string) {
	switch x := v.(type) {
	case map[string]any:
		for k, child := range x {
			key := strings.ToUpper(strings.TrimSpace(k))
			if prefix != "" {
				key = prefix + "_" + key
			}
			flatten(key, child, out)
		}
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			parts = append(parts, fmt.Sprint(item))
		}
		out[prefix] = strings.Join(parts, ",")
	case nil:
		// explicit null leaves the key unset
	default:
		out[prefix] = fmt.Sprint(x)
	}
}

// Prefix returns a child Conf with an additional prefix (e.g. "LOG_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p, file: c.file} }

// Key composes the fully-qualified key
func (c Conf) Key(k string) string { return c.prefix + k }

// Lookup returns the trimmed value for key; the environment wins over the file
func (c Conf) Lookup(key string) string {
	k := c.Key(key)
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return strings.TrimSpace(c.file[k])
}

// Keys lists the file-provided keys under this prefix, sorted
func (c Conf) Keys() []string {
	var out []string
	for k := range c.file {
		if strings.HasPrefix(k, c.prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Get returns the value or the provided default if empty
func (c Conf) Get(key, def string) string {
	if v := c.Lookup(key); v != "" {
		return v
	}
	return def
}

// GetBool parses a bool-like value ("1|true|yes") with default fallback
func (c Conf) GetBool(key string, def bool) bool {
	v := strings.ToLower(c.Lookup(key))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

// GetInt parses a non-negative integer with default fallback; non-numeric -> def
func (c Conf) GetInt(key string, def int) int {
	s := c.Lookup(key)
	if s == "" {
		return def
	}
	n := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch < '0' || ch > '9' {
			return def
		}
		n = n*10 + int(ch-'0')
	}
	return n
}
