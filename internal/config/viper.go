// Package config provides Viper-based hierarchical configuration management.
//
// Values are resolved in this order: defaults, config.yaml (in
// $HOME/.extracto-ofx, .extracto-ofx or the working directory), then
// EXTRACTO_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the configuration.
const EnvPrefix = "EXTRACTO"

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CSVConfig configures the CSV export.
type CSVConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// OFXConfig configures the produced statement.
type OFXConfig struct {
	Currency        string `mapstructure:"currency" yaml:"currency"`
	EscapeMarkup    bool   `mapstructure:"escape_markup" yaml:"escape_markup"`
	FitIDMemoLength int    `mapstructure:"fitid_memo_length" yaml:"fitid_memo_length"`
}

// ProfilesConfig points at an optional profile overrides file.
type ProfilesConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string `mapstructure:"addr" yaml:"addr"`
	BodyLimitMB int    `mapstructure:"body_limit_mb" yaml:"body_limit_mb"`
}

// Config represents the complete application configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	CSV      CSVConfig      `mapstructure:"csv" yaml:"csv"`
	OFX      OFXConfig      `mapstructure:"ofx" yaml:"ofx"`
	Profiles ProfilesConfig `mapstructure:"profiles" yaml:"profiles"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		CSV:    CSVConfig{Delimiter: ","},
		OFX:    OFXConfig{Currency: "EUR", EscapeMarkup: true, FitIDMemoLength: 5},
		Server: ServerConfig{Addr: ":8080", BodyLimitMB: 20},
	}
}

// InitializeConfig loads configuration from the default locations.
func InitializeConfig() (*Config, error) {
	return load("")
}

// InitializeConfigFromFile loads configuration from an explicit file; the
// default search paths are not used.
func InitializeConfigFromFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.extracto-ofx")
		v.AddConfigPath(".extracto-ofx")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Read config file (optional unless explicit)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("csv.delimiter", d.CSV.Delimiter)

	v.SetDefault("ofx.currency", d.OFX.Currency)
	v.SetDefault("ofx.escape_markup", d.OFX.EscapeMarkup)
	v.SetDefault("ofx.fitid_memo_length", d.OFX.FitIDMemoLength)

	v.SetDefault("profiles.file", d.Profiles.File)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.body_limit_mb", d.Server.BodyLimitMB)
}

// Validate checks the configuration values.
func Validate(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %q", config.CSV.Delimiter)
	}

	if len(config.OFX.Currency) != 3 {
		return fmt.Errorf("ofx.currency must be a three-letter ISO 4217 code, got: %q", config.OFX.Currency)
	}

	if config.OFX.FitIDMemoLength < 1 || config.OFX.FitIDMemoLength > 32 {
		return fmt.Errorf("ofx.fitid_memo_length must be between 1 and 32, got: %d", config.OFX.FitIDMemoLength)
	}

	if config.Server.BodyLimitMB < 1 {
		return fmt.Errorf("server.body_limit_mb must be positive, got: %d", config.Server.BodyLimitMB)
	}

	return nil
}

// Delimiter returns the CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	r := []rune(c.CSV.Delimiter)
	if len(r) == 0 {
		return ','
	}
	return r[0]
}
