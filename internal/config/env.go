package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that provide a token, in lookup order.
var TokenEnvVars = []string{"GHULS_TOKEN", "GITHUB_TOKEN"}

// LoadEnv loads variables from the given .env files. Missing files are
// skipped and variables already set in the environment are kept.
func LoadEnv(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// EnvToken returns the first non-empty token variable.
func EnvToken() string {
	for _, name := range TokenEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
