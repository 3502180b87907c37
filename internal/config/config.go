package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// EnvPrefix is the prefix of environment overrides. Nested keys use a double
// underscore: COFFEESHOP_GENAI__MODEL -> genai.model.
const EnvPrefix = "COFFEESHOP_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (COFFEESHOP_*). A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DynamoDB.Table) == "" {
		return fmt.Errorf("dynamodb.table is required")
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return fmt.Errorf("http.addr is required")
	}
	if strings.TrimSpace(c.GenAI.Model) == "" {
		return fmt.Errorf("genai.model is required")
	}
	if strings.TrimSpace(c.GenAI.APIKey) == "" && strings.TrimSpace(c.Params.Prefix) == "" {
		return fmt.Errorf("either genai.api_key or params.prefix is required")
	}
	if c.GenAI.Timeout <= 0 {
		return fmt.Errorf("genai.timeout must be positive")
	}
	if c.Sessions.Capacity <= 0 {
		return fmt.Errorf("sessions.capacity must be positive")
	}
	if c.Sessions.TTL < 0 {
		return fmt.Errorf("sessions.ttl must be non-negative")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	return nil
}
