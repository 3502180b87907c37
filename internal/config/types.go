package config

import "time"

// Config is the top-level coffee-shop configuration, corresponding to coffeeshop.yml.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http" koanf:"http"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb" koanf:"dynamodb"`
	Params   ParamsConfig   `yaml:"params" koanf:"params"`
	GenAI    GenAIConfig    `yaml:"genai" koanf:"genai"`
	Sessions SessionsConfig `yaml:"sessions" koanf:"sessions"`
	Catalog  CatalogConfig  `yaml:"catalog" koanf:"catalog"`
	Admin    AdminConfig    `yaml:"admin" koanf:"admin"`
	Log      LogConfig      `yaml:"log" koanf:"log"`
}

// HTTPConfig holds listener settings for the long-running server mode.
type HTTPConfig struct {
	Addr           string   `yaml:"addr" koanf:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
}

// DynamoDBConfig selects the single table backing every collection.
type DynamoDBConfig struct {
	Table    string `yaml:"table" koanf:"table"`
	Endpoint string `yaml:"endpoint" koanf:"endpoint"` // DynamoDB Local, empty for AWS
}

// ParamsConfig locates secrets in SSM Parameter Store.
type ParamsConfig struct {
	Prefix string `yaml:"prefix" koanf:"prefix"`
}

// GenAIConfig configures the text oracle used for mood recommendations.
type GenAIConfig struct {
	BaseURL string        `yaml:"base_url" koanf:"base_url"`
	Model   string        `yaml:"model" koanf:"model"`
	APIKey  string        `yaml:"api_key" koanf:"api_key"`
	Timeout time.Duration `yaml:"timeout" koanf:"timeout"`
}

// SessionsConfig bounds the in-process conversation store.
type SessionsConfig struct {
	Capacity int           `yaml:"capacity" koanf:"capacity"`
	TTL      time.Duration `yaml:"ttl" koanf:"ttl"`
}

// CatalogConfig controls catalog bootstrap.
type CatalogConfig struct {
	Seed bool `yaml:"seed" koanf:"seed"`
}

// AdminConfig lists accounts granted the admin role at login.
type AdminConfig struct {
	Emails []string `yaml:"emails" koanf:"emails"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Pretty bool   `yaml:"pretty" koanf:"pretty"`
}
