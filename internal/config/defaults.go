package config

import "time"

// DefaultConfig returns the configuration used when no file or env overrides exist.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:           ":8000",
			AllowedOrigins: []string{"*"},
		},
		DynamoDB: DynamoDBConfig{
			Table: "coffee-shop",
		},
		Params: ParamsConfig{
			Prefix: "/coffee-shop",
		},
		GenAI: GenAIConfig{
			BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai",
			Model:   "gemini-1.5-flash",
			Timeout: 10 * time.Second,
		},
		Sessions: SessionsConfig{
			Capacity: 10000,
			TTL:      24 * time.Hour,
		},
		Catalog: CatalogConfig{
			Seed: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
