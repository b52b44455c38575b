// Package config handles application configuration via environment variables
// with an optional YAML overlay (CONFIG_FILE or the -config flag)
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"reviewpipe/internal/platform/config/raw"
	"reviewpipe/internal/platform/logger"
)

// Conf is a namespaced view over configuration keys (e.g., "SOURCE_", "TRAIN_")
// Use New() for env-only access, Load(path) to add a file overlay, and
// Prefix("TRAIN_") for module scopes.
type Conf struct{ r raw.Conf }

// New creates a root Conf (no prefix, env only)
func New() Conf { return Conf{r: raw.New()} }

// Load creates a root Conf backed by the environment and the YAML file at path.
// An empty path falls back to CONFIG_FILE; if that is empty too the result is env only.
func Load(path string) (Conf, error) {
	if strings.TrimSpace(path) == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	r, err := raw.FromFile(path)
	if err != nil {
		return Conf{}, err
	}
	return Conf{r: r}, nil
}

// Raw exposes the logging-free view, used to bootstrap the logger
func (c Conf) Raw() raw.Conf { return c.r }

// Prefix creates a child Conf with an additional prefix, e.g. cfg.Prefix("TRAIN_")
func (c Conf) Prefix(p string) Conf { return Conf{r: c.r.Prefix(p)} }

// key composes the fully-qualified name
func (c Conf) key(k string) string { return c.r.Key(k) }

func (c Conf) lookup(k string) string { return c.r.Lookup(k) }

// MustString panics if the given key is missing or empty
func (c Conf) MustString(key string) string {
	v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required config")
	}
	return v
}

// MustInt panics if the given key is missing, empty, or not an int
func (c Conf) MustInt(key string) int {
	s := c.MustString(key)
	v, err := strconv.Atoi(s)
	if err != nil {
		logger.Get().Panic().Str("key", c.key(key)).Str("value", s).Msg("invalid int value")
	}
	return v
}

// MustDuration panics if the given key is missing, empty, or not a valid duration
func (c Conf) MustDuration(key string) time.Duration {
	s := c.MustString(key)
	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Get().Panic().Str("key", c.key(key)).Str("value", s).Msg("invalid duration (e.g., 250ms, 2s, 1h)")
	}
	return d
}

// MustURL panics if the given key is missing, empty, or not a valid absolute URL
func (c Conf) MustURL(key string) *url.URL {
	s := c.MustString(key)
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		logger.Get().Panic().Str("key", c.key(key)).Str("value", s).Msg("invalid absolute URL")
	}
	return u
}

// MustPort returns a Go net/http addr like ":4000" after validation 1..65535
func (c Conf) MustPort(key string) string {
	s := c.MustString(key)
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		logger.Get().Panic().Str("key", c.key(key)).Str("value", s).Msg("invalid TCP port; expected 1..65535")
	}
	return ":" + s
}

// Require ensures that all given keys are present (non-empty). Panics otherwise.
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		if c.lookup(k) == "" {
			logger.Get().Panic().Str("key", c.key(k)).Msg("missing required config")
		}
	}
}

// MayString returns the value or def if missing/empty
func (c Conf) MayString(key, def string) string {
	if v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayInt(key string, def int) int {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Int("default", def).Msg("invalid int; using default")
	return def
}

// MayUint64 returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayUint64(key string, def uint64) uint64 {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	if v, err := strconv.ParseUint(s, 10, 64); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Uint64("default", def).Msg("invalid uint; using default")
	return def
}

// MayFloat64 returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayFloat64(key string, def float64) float64 {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Float64("default", def).
		Msg("invalid float64; using default")
	return def
}

// MayBool returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayBool(key string, def bool) bool {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Bool("default", def).Msg("invalid bool; using default")
	return def
}

// MayDuration returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Dur("default", def).Msg("invalid duration; using default")
	return def
}

// MayCSV returns a slice of strings from a comma-separated value; def if missing/empty
func (c Conf) MayCSV(key string, def []string) []string {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum ensures value is one of allowed; returns def if empty; panics if invalid.
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(v)
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return "" // unreachable
}

// MayClock parses a wall-clock "HH:MM" value into hour and minute; def if missing/empty; panics if invalid
func (c Conf) MayClock(key, def string) (hour, minute int) {
	s := c.MayString(key, def)
	h, m, ok := ParseClock(s)
	if !ok {
		logger.Get().Panic().Str("key", c.key(key)).Str("value", s).Msg("invalid clock; expected HH:MM")
	}
	return h, m
}

// ParseClock parses "HH:MM" (24h)
func ParseClock(s string) (hour, minute int, ok bool) {
	hh, mm, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, 0, false
	}
	h, err1 := strconv.Atoi(hh)
	m, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 || len(mm) != 2 {
		return 0, 0, false
	}
	return h, m, true
}
