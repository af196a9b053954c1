package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads the TOML configuration file at path, applies env var secret
// overrides and validates the result. An empty path yields the defaults,
// which is enough to boot a development instance.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to unmarshal TOML: %w", err)
		}
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides secrets from the environment. Env always wins over the
// file so deployments never need secrets on disk.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvJwtAuthSecret); v != "" {
		cfg.Jwt.AuthSecret = v
	}
	if v := os.Getenv(EnvJwtRefreshSecret); v != "" {
		cfg.Jwt.RefreshSecret = v
	}
	if v := os.Getenv(EnvSmtpPassword); v != "" {
		cfg.Smtp.Password = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv(EnvStorageSecretKey); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := os.Getenv(EnvAssistantApiKey); v != "" {
		cfg.Assistant.ApiKey = v
	}
	if p, ok := cfg.OAuth2Providers["google"]; ok {
		if v := os.Getenv(EnvGoogleClientID); v != "" {
			p.ClientID = v
		}
		if v := os.Getenv(EnvGoogleClientSecret); v != "" {
			p.ClientSecret = v
		}
		cfg.OAuth2Providers["google"] = p
	}
}
