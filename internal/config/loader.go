package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	defaultConfigPath = "./config.yaml"
	defaultEnvFile    = ".env"
)

// Load builds the configuration. Sources in decreasing priority: process
// environment, the dotenv file (ENV_FILE, default ./.env), the YAML file
// (CONFIG_PATH, default ./config.yaml), env-default tags.
//
// A missing default YAML or dotenv file is not an error; a missing file
// named explicitly is.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := readInto(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func loadDotEnv() error {
	path, explicit := lookupPath("ENV_FILE", defaultEnvFile)

	// godotenv never overrides variables that are already set.
	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("config: read %s: %w", path, err)
}

func readInto(cfg *Config) error {
	path, explicit := lookupPath("CONFIG_PATH", defaultConfigPath)

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit:
		return fmt.Errorf("config: file %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return fmt.Errorf("config: read env: %w", err)
		}
	}
	return nil
}

func lookupPath(env, fallback string) (string, bool) {
	if v := os.Getenv(env); v != "" {
		return v, true
	}
	return fallback, false
}
