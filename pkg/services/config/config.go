package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type Config struct {
	Server    ServerConfig   `mapstructure:"server"`
	DBPath    string         `mapstructure:"db_path"`
	Sources   ProviderConfig `mapstructure:"sources"`
	Embedding ProviderConfig `mapstructure:"embedding"`
	Insight   ProviderConfig `mapstructure:"insight"`

	FetchTimeoutSeconds    int `mapstructure:"fetch_timeout_seconds"`
	ProviderTimeoutSeconds int `mapstructure:"provider_timeout_seconds"`
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

// Load reads the yaml config at path, with environment variables
// (SITE_ATLAS_*) taking precedence over file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("SITE_ATLAS")
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("db_path", "site-atlas.db")
	v.SetDefault("fetch_timeout_seconds", 30)
	v.SetDefault("provider_timeout_seconds", 20)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if config.Sources.BaseURL == "" {
		return nil, fmt.Errorf("sources.base_url is required")
	}
	return &config, nil
}
