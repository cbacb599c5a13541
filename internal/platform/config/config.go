// Package config reads settings from the environment through prefixed views,
// e.g. config.New().Prefix("REVIEWS_").MayInt("NGRAM", 3)
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"reviewguard/internal/platform/logger"
)

// Conf is a prefixed view over the environment. The zero value reads
// unprefixed keys
type Conf struct{ prefix string }

// New returns the root view
func New() Conf { return Conf{} }

// Prefix returns a child view, prefixes accumulate
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Key returns the environment variable name for key
func (c Conf) Key(key string) string { return c.prefix + key }

func (c Conf) lookup(key string) string { return strings.TrimSpace(os.Getenv(c.Key(key))) }

// must panics through the logger when key is unset or fails parse
func must[T any](c Conf, key string, parse func(string) (T, error)) T {
	s := c.lookup(key)
	if s == "" {
		logger.Get().Panic().Str("key", c.Key(key)).Msg("missing required env")
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Panic().Err(err).Str("key", c.Key(key)).Str("value", s).Msg("invalid env value")
	}
	return v
}

// may returns def for unset keys and warns then returns def on parse failure
func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.Key(key)).Str("value", s).Interface("default", def).Msg("invalid env value, using default")
		return def
	}
	return v
}

func parseString(s string) (string, error) { return s, nil }
func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// MustString panics when key is unset or blank
func (c Conf) MustString(key string) string { return must(c, key, parseString) }

// MustInt panics when key is unset or not an int
func (c Conf) MustInt(key string) int { return must(c, key, strconv.Atoi) }

// MustDuration panics when key is unset or not a duration like 250ms
func (c Conf) MustDuration(key string) time.Duration { return must(c, key, time.ParseDuration) }

// Require panics on the first unset key
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		_ = c.MustString(k)
	}
}

// MayString returns the trimmed value or def
func (c Conf) MayString(key, def string) string { return may(c, key, def, parseString) }

// MayInt returns the value or def
func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

// MayFloat64 returns the value or def
func (c Conf) MayFloat64(key string, def float64) float64 { return may(c, key, def, parseFloat) }

// MayBool returns the value or def, accepting what strconv.ParseBool does
func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration returns the value or def
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayCSV splits a comma separated value, dropping blanks. def when nothing is left
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.lookup(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the allowed entry matching the value case-insensitively,
// or def when unset. Any other value panics
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.lookup(key)
	if v == "" {
		return def
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	logger.Get().Panic().Str("key", c.Key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
