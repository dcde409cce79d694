// Package config loads the client's configuration from defaults, an
// optional YAML file, and environment variable overrides, the layering
// koanfutil.WithDefaults and koanfutil.FileResolver were built for.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/deepworx/go-httpclient/pkg/health"
	"github.com/deepworx/go-httpclient/pkg/interceptors/deadline"
	"github.com/deepworx/go-httpclient/pkg/interceptors/requestid"
	"github.com/deepworx/go-httpclient/pkg/koanfutil"
	"github.com/deepworx/go-httpclient/pkg/otel"
	"github.com/deepworx/go-httpclient/pkg/postgres"
	"github.com/deepworx/go-httpclient/pkg/slogutil"
)

// Config is every ambient and first-party-interceptor knob the client
// exposes, assembled from nested sub-configs the way the underlying
// packages already declare them.
type Config struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`

	Log       slogutil.Config  `koanf:"log"`
	Deadline  deadline.Config  `koanf:"deadline"`
	RequestID requestid.Config `koanf:"request_id"`
	Otel      otel.Config      `koanf:"otel"`
	Health    health.Config    `koanf:"health"`
	Postgres  postgres.Config  `koanf:"postgres"`
}

// DefaultConfig returns a Config with every sub-config at its own default.
func DefaultConfig() Config {
	return Config{
		Timeout:   30 * time.Second,
		Log:       slogutil.DefaultConfig(),
		Deadline:  deadline.DefaultConfig(),
		RequestID: requestid.DefaultConfig(),
		Health:    health.DefaultConfig(),
	}
}

// Load builds a Config by layering, in order: built-in defaults, an
// optional YAML file at path (skipped if path is empty), and environment
// variables prefixed with envPrefix (e.g. "HTTPCLIENT_POSTGRES_DSN" for
// Postgres.DSN when envPrefix is "HTTPCLIENT_"). file:// URIs anywhere in
// the resulting tree are resolved to their file contents last, so a
// Postgres.DSN of "file:///run/secrets/dsn" works regardless of which
// layer set it.
func Load(path, envPrefix string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(koanfutil.WithDefaults(DefaultConfig()), nil); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if envPrefix != "" {
		transform := func(s string) string {
			s = strings.TrimPrefix(s, envPrefix)
			return strings.ToLower(strings.ReplaceAll(s, "_", "."))
		}
		if err := k.Load(env.Provider(envPrefix, ".", transform), nil); err != nil {
			return nil, fmt.Errorf("load config env: %w", err)
		}
	}

	if err := k.Load(koanfutil.FileResolver(k), nil); err != nil {
		return nil, fmt.Errorf("resolve config secrets: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
