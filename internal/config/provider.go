package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Provider gives access to raw configuration keys such as "datadog.api_key".
type Provider interface {
	// Lookup returns the value stored under key and whether it is set.
	Lookup(key string) (any, bool)
}

// KeyNotFoundError is returned by Value when a key is absent and no
// default was supplied.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("config key %q not found", e.Key)
}

// Value reads key from p and converts it to T.
func Value[T any](p Provider, key string) (T, error) {
	var zero T
	raw, ok := p.Lookup(key)
	if !ok {
		return zero, &KeyNotFoundError{Key: key}
	}
	return convert[T](key, raw)
}

// ValueOr reads key from p, falling back to def when the key is absent.
// A present value that cannot be converted to T is an error.
func ValueOr[T any](p Provider, key string, def T) (T, error) {
	raw, ok := p.Lookup(key)
	if !ok {
		return def, nil
	}
	return convert[T](key, raw)
}

func convert[T any](key string, raw any) (T, error) {
	var zero T
	var out any
	var err error

	switch any(zero).(type) {
	case string:
		out, err = cast.ToStringE(raw)
	case int:
		out, err = cast.ToIntE(raw)
	case bool:
		out, err = cast.ToBoolE(raw)
	case []string:
		// Env vars arrive as a single comma separated string.
		if s, ok := raw.(string); ok {
			out = splitList(s)
		} else {
			out, err = cast.ToStringSliceE(raw)
		}
	default:
		v, ok := raw.(T)
		if !ok {
			return zero, fmt.Errorf("config key %q: unsupported type %T", key, raw)
		}
		return v, nil
	}
	if err != nil {
		return zero, fmt.Errorf("config key %q: %w", key, err)
	}
	return out.(T), nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// viperProvider adapts a viper instance to Provider.
type viperProvider struct {
	v *viper.Viper
}

// NewViperProvider wraps v.
func NewViperProvider(v *viper.Viper) Provider {
	return &viperProvider{v: v}
}

func (p *viperProvider) Lookup(key string) (any, bool) {
	if !p.v.IsSet(key) {
		return nil, false
	}
	raw := p.v.Get(key)
	if s, ok := raw.(string); ok && s == "" {
		return nil, false
	}
	return raw, true
}

// MapProvider is a Provider over a flat map of dotted keys. Useful in
// tests and for wiring defaults by hand.
type MapProvider map[string]any

func (m MapProvider) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}
