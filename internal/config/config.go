// Copyright 2025 ERP Chatbot Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the chatbot configuration from a YAML file and
// environment variables, with env vars taking precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ErrMissingRequiredField is returned when a required configuration field is missing
var ErrMissingRequiredField = errors.New("missing required configuration field")

// Config represents the complete application configuration
type Config struct {
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Backends BackendsConfig `mapstructure:"backends"`
	Session  SessionConfig  `mapstructure:"session"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// OpenAIConfig contains settings for the language-model collaborators
type OpenAIConfig struct {
	APIKey         string `mapstructure:"apikey"`
	Endpoint       string `mapstructure:"endpoint"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// BackendsConfig contains the leave/clock system-of-record settings
type BackendsConfig struct {
	LeaveBaseURL   string `mapstructure:"leave_base_url"`
	ClockBaseURL   string `mapstructure:"clock_base_url"`
	Token          string `mapstructure:"token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SessionConfig contains conversation session storage settings
type SessionConfig struct {
	StorageType     string `mapstructure:"storage_type"`
	DBPath          string `mapstructure:"db_path"`
	TTLMinutes      int    `mapstructure:"ttl_minutes"`
	MaxSessions     int    `mapstructure:"max_sessions"`
	CleanupInterval int    `mapstructure:"cleanup_interval_minutes"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed for field '%s': %s", e.Field, e.Message)
}

// LoadOptions contains options for configuration loading
type LoadOptions struct {
	ConfigPath       string
	ValidateRequired bool
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over config file values.
func Load(configPath string) (*Config, error) {
	return LoadWithOptions(LoadOptions{ConfigPath: configPath, ValidateRequired: true})
}

// LoadWithOptions loads configuration with additional options.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	setConfigFile(v, opts.ConfigPath)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("ERP_CHATBOT")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error when env vars carry the settings
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setEnvironmentMappings(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if opts.ValidateRequired {
		if err := validateConfig(&config); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("openai.endpoint", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.timeout_seconds", 15)

	v.SetDefault("backends.timeout_seconds", 10)

	v.SetDefault("session.storage_type", "memory")
	v.SetDefault("session.db_path", "./sessions.db")
	v.SetDefault("session.ttl_minutes", 30)
	v.SetDefault("session.max_sessions", 1000)
	v.SetDefault("session.cleanup_interval_minutes", 5)

	v.SetDefault("server.port", "8080")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// setConfigFile points viper at the config file, falling back to the default
// locations when no explicit path is given.
func setConfigFile(v *viper.Viper, configPath string) {
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		v.SetConfigFile(envPath)
		return
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
}

// setEnvironmentMappings sets explicit environment variable mappings
func setEnvironmentMappings(v *viper.Viper) {
	envMappings := map[string]string{
		"OPENAI_API_KEY":  "openai.apikey",
		"OPENAI_ENDPOINT": "openai.endpoint",
		"BACKEND_TOKEN":   "backends.token",
		"LEAVE_BASE_URL":  "backends.leave_base_url",
		"CLOCK_BASE_URL":  "backends.clock_base_url",
		"LOG_LEVEL":       "logging.level",
		"LOG_FORMAT":      "logging.format",
		"PORT":            "server.port",
	}

	for envVar, configKey := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			v.Set(configKey, value)
		}
	}
}

// validateConfig validates the configuration for required fields and valid values
func validateConfig(config *Config) error {
	var errs []ValidationError

	if config.OpenAI.APIKey == "" {
		errs = append(errs, ValidationError{
			Field:   "openai.apikey",
			Message: "OpenAI API key is required. Set via config file or OPENAI_API_KEY environment variable",
		})
	}

	if config.Backends.LeaveBaseURL == "" {
		errs = append(errs, ValidationError{
			Field:   "backends.leave_base_url",
			Message: "leave backend URL is required. Set via config file or LEAVE_BASE_URL environment variable",
		})
	}

	if config.Backends.ClockBaseURL == "" {
		errs = append(errs, ValidationError{
			Field:   "backends.clock_base_url",
			Message: "clock backend URL is required. Set via config file or CLOCK_BASE_URL environment variable",
		})
	}

	if config.OpenAI.TimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{
			Field:   "openai.timeout_seconds",
			Message: "timeout_seconds must be greater than 0",
		})
	}

	if config.Backends.TimeoutSeconds <= 0 {
		errs = append(errs, ValidationError{
			Field:   "backends.timeout_seconds",
			Message: "timeout_seconds must be greater than 0",
		})
	}

	if config.Session.MaxSessions <= 0 {
		errs = append(errs, ValidationError{
			Field:   "session.max_sessions",
			Message: "max_sessions must be greater than 0",
		})
	}

	validStorageTypes := []string{"memory", "sqlite"}
	if !contains(validStorageTypes, config.Session.StorageType) {
		errs = append(errs, ValidationError{
			Field:   "session.storage_type",
			Message: fmt.Sprintf("storage type must be one of: %s", strings.Join(validStorageTypes, ", ")),
		})
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, config.Logging.Level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("log level must be one of: %s", strings.Join(validLogLevels, ", ")),
		})
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, config.Logging.Format) {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("log format must be one of: %s", strings.Join(validLogFormats, ", ")),
		})
	}

	if len(errs) > 0 {
		var errorMessages []string
		for _, err := range errs {
			errorMessages = append(errorMessages, err.Error())
		}
		return fmt.Errorf("%w:\n%s", ErrMissingRequiredField, strings.Join(errorMessages, "\n"))
	}

	return nil
}

// MaskSensitiveValues returns a copy of the config with sensitive values masked
func (c *Config) MaskSensitiveValues() *Config {
	masked := *c

	if masked.OpenAI.APIKey != "" {
		masked.OpenAI.APIKey = maskValue(masked.OpenAI.APIKey)
	}
	if masked.Backends.Token != "" {
		masked.Backends.Token = maskValue(masked.Backends.Token)
	}

	return &masked
}

// maskValue masks sensitive values, showing only the first 8 characters
func maskValue(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:8] + strings.Repeat("*", len(value)-8)
}

// contains checks if a slice contains a specific string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// WatchConfig enables configuration hot-reloading for development
func WatchConfig(configPath string, callback func(*Config)) error {
	v := viper.New()

	setConfigFile(v, configPath)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		config, err := LoadWithOptions(LoadOptions{
			ConfigPath:       configPath,
			ValidateRequired: true,
		})
		if err != nil {
			fmt.Printf("Failed to reload config after change to %s: %v\n", e.Name, err)
			return
		}
		callback(config)
	})

	return nil
}
