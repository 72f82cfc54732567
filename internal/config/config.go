// Package config loads clipotp's optional configuration file.
//
// The file lives at $XDG_CONFIG_HOME/clipotp/config.toml (falling back to
// $HOME/.config/clipotp/config.toml). A missing file yields defaults: empty
// lists and no deadline. A malformed or invalid file is an error.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"go.klb.dev/clipotp/internal/policy"
)

// AppName names the per-app configuration directory.
const AppName = "clipotp"

var validate = validator.New()

// Config is the effective configuration of one run.
type Config struct {
	// Allow lists executables that receive the secret without a prompt.
	Allow []string `mapstructure:"allow" toml:"allow" validate:"dive,required,startswith=/"`

	// Deny lists executables that are always refused. It seeds the deny-list,
	// which grows while the broker runs.
	Deny []string `mapstructure:"deny" toml:"deny" validate:"dive,required,startswith=/"`

	// Timeout in milliseconds. Zero waits indefinitely.
	Timeout int `mapstructure:"timeout" toml:"timeout" validate:"gte=0"`

	TrimNewline bool   `mapstructure:"trim-newline" toml:"trim-newline"`
	Quiet       bool   `mapstructure:"quiet" toml:"quiet"`
	Display     string `mapstructure:"display" toml:"display,omitempty"`
	LogFormat   string `mapstructure:"log-format" toml:"log-format" validate:"omitempty,oneof=auto text tint human json"`
	LogLevel    string `mapstructure:"log-level" toml:"log-level,omitempty"`
}

// Dir returns the per-app configuration directory.
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", AppName)
	}
	return ""
}

// Path returns the default configuration file path.
func Path() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// ReadInConfig points v at the configuration file and reads it. An explicit
// path must exist; the default location may be absent.
func ReadInConfig(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		if dir := Dir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

// Load decodes and validates the merged view held by v.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Lists returns fresh policy lists seeded from the configuration.
func (c *Config) Lists() *policy.Lists {
	return policy.NewLists(c.Allow, c.Deny)
}

// Deadline returns the absolute deadline measured from now, or the zero time
// when no timeout is configured.
func (c *Config) Deadline(now time.Time) time.Time {
	if c.Timeout <= 0 {
		return time.Time{}
	}
	return now.Add(time.Duration(c.Timeout) * time.Millisecond)
}

// WriteTOML renders c in configuration file syntax.
func (c *Config) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
