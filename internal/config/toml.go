// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Auth      AuthConfig      `toml:"auth"`
	Report    ReportConfig    `toml:"report"`
	Discovery DiscoveryConfig `toml:"discovery"`
	Colors    ColorsConfig    `toml:"colors"`
}

// AuthConfig maps credential settings. Secret names an AWS Secrets Manager
// secret holding the token.
type AuthConfig struct {
	Token        *string `toml:"token"`
	User         *string `toml:"user"`
	Pass         *string `toml:"pass"`
	Secret       *string `toml:"secret"`
	SecretRegion *string `toml:"secret-region"`
}

// ReportConfig maps the optional report sections.
type ReportConfig struct {
	Orgs     *bool `toml:"orgs"`
	Calendar *bool `toml:"calendar"`
	Issues   *bool `toml:"issues"`
	Top      *int  `toml:"top"`
}

// DiscoveryConfig maps random subject search settings.
type DiscoveryConfig struct {
	MaxAttempts *int   `toml:"max-attempts"`
	MaxID       *int64 `toml:"max-id"`
}

// ColorsConfig maps language color settings. File replaces the built-in
// table; Overrides are applied on top.
type ColorsConfig struct {
	File      *string           `toml:"file"`
	Overrides map[string]string `toml:"overrides"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
