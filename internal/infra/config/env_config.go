package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ErrInvalidConfig is returned when the provided config is not a pointer to a struct.
var ErrInvalidConfig = errors.New("config must be a pointer to a struct")

// Parse loads configuration values from environment variables into the provided struct.
// Fields use `env`, `envDefault` and `envPrefix` tags. Every variable may be
// qualified with the underscore-separated namespace or any leading part of it;
// the most specific match wins, so with namespace "DEMO_STOREFRONT" the
// variable DEMO_STOREFRONT_LOG_LEVEL overrides DEMO_LOG_LEVEL, which
// overrides LOG_LEVEL. Fields without a default are required.
func Parse(_ context.Context, cfg any, namespace string) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrInvalidConfig
	}

	//nolint:exhaustruct
	if err := env.ParseWithOptions(cfg, env.Options{
		Environment:     environment(os.Environ(), namespace),
		RequiredIfNoDef: true,
	}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	return nil
}

// environment flattens the process environment so that namespaced
// variables shadow their less specific counterparts.
func environment(environ []string, namespace string) map[string]string {
	raw := make(map[string]string, len(environ))

	for _, kv := range environ {
		if key, value, ok := strings.Cut(kv, "="); ok {
			raw[key] = value
		}
	}

	resolved := make(map[string]string, len(raw))
	for key, value := range raw {
		resolved[key] = value
	}

	if namespace == "" {
		return resolved
	}

	parts := strings.Split(namespace, "_")
	for i := 1; i <= len(parts); i++ {
		prefix := strings.Join(parts[:i], "_") + "_"

		for key, value := range raw {
			if name, ok := strings.CutPrefix(key, prefix); ok && name != "" {
				resolved[name] = value
			}
		}
	}

	return resolved
}
