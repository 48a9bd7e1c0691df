package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Duration wraps time.Duration for clearer type usage in Config.
type Duration = time.Duration

// source resolves settings from the environment first and the optional config file second.
// Config file keys are the lower-case environment names (port, cache_ttl_overrides, ...).
type source struct {
	v *viper.Viper
}

func newSource(configFile string) (source, error) {
	v := viper.New()
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return source{}, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}
	return source{v: v}, nil
}

func (s source) raw(key string) string {
	return strings.TrimSpace(s.v.GetString(key))
}

func (s source) stringOrDefault(key, defaultValue string) string {
	if val := s.raw(key); val != "" {
		return val
	}
	return defaultValue
}

func (s source) durationOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := s.raw(key)
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

func (s source) intOrDefault(key string, defaultValue int) int {
	raw := s.raw(key)
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return defaultValue
	}
	return val
}

func (s source) floatOrDefault(key string, defaultValue float64) float64 {
	raw := s.raw(key)
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val <= 0 {
		return defaultValue
	}
	return val
}

func (s source) boolOrDefault(key string, defaultValue bool) bool {
	raw := s.raw(key)
	if raw == "" {
		return defaultValue
	}
	if raw == "1" || strings.EqualFold(raw, "true") || strings.EqualFold(raw, "yes") {
		return true
	}
	if raw == "0" || strings.EqualFold(raw, "false") || strings.EqualFold(raw, "no") {
		return false
	}
	return defaultValue
}

// durationMap reads "name=duration" pairs from a comma separated string, or a map when
// the value comes from the config file.
func (s source) durationMap(key string) (map[string]time.Duration, error) {
	out := map[string]time.Duration{}
	switch val := s.v.Get(key).(type) {
	case nil:
		return out, nil
	case map[string]any:
		for name, d := range val {
			parsed, err := time.ParseDuration(strings.TrimSpace(fmt.Sprint(d)))
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", key, name, err)
			}
			out[strings.ToLower(strings.TrimSpace(name))] = parsed
		}
	default:
		for _, pair := range strings.Split(fmt.Sprint(val), ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			name, raw, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("%s: %q is not name=duration", key, pair)
			}
			parsed, err := time.ParseDuration(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", key, strings.TrimSpace(name), err)
			}
			out[strings.ToLower(strings.TrimSpace(name))] = parsed
		}
	}
	return out, nil
}
