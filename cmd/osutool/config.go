package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type HTTPConfig struct {
	BaseURL       string `yaml:"base_url"`
	RateLimit     int    `yaml:"rate_limit"`
	MaxConcurrent int    `yaml:"max_concurrent"`
	Session       string `yaml:"session"`
}

type Config struct {
	FloatPrecision  bool       `yaml:"float_precision"`
	RoundedStacking bool       `yaml:"rounded_stacking"`
	HashCachePath   string     `yaml:"hash_cache_path"`
	HTTP            HTTPConfig `yaml:"http"`
}

func defaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			BaseURL:       "https://osu.ppy.sh",
			RateLimit:     30,
			MaxConcurrent: 2,
		},
	}
}

// loadConfig reads the YAML file at path, when given, over the defaults and
// then applies OSUTOOL_* environment overrides.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.FloatPrecision = getEnvAsBool("OSUTOOL_FLOAT_PRECISION", cfg.FloatPrecision)
	cfg.RoundedStacking = getEnvAsBool("OSUTOOL_ROUNDED_STACKING", cfg.RoundedStacking)
	cfg.HashCachePath = getEnv("OSUTOOL_HASH_CACHE", cfg.HashCachePath)
	cfg.HTTP.BaseURL = getEnv("OSUTOOL_BASE_URL", cfg.HTTP.BaseURL)
	cfg.HTTP.Session = getEnv("OSUTOOL_SESSION", cfg.HTTP.Session)
	cfg.HTTP.RateLimit = getEnvAsInt("OSUTOOL_RATE_LIMIT", cfg.HTTP.RateLimit)
	cfg.HTTP.MaxConcurrent = getEnvAsInt("OSUTOOL_MAX_CONCURRENT", cfg.HTTP.MaxConcurrent)

	if cfg.HTTP.RateLimit <= 0 || cfg.HTTP.MaxConcurrent <= 0 {
		return cfg, fmt.Errorf("http.rate_limit and http.max_concurrent must be positive")
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}
