package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"fhirmcp/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/fhirmcp"
	configFileName = "config.yaml"

	// Environment variable names. These take precedence over the config
	// file so containerized deployments can point at their servers without
	// mounting one.
	envFHIRServerURL     = "FHIR_SERVER_URL"
	envMatchboxServerURL = "MATCHBOX_SERVER_URL"
	envTimeoutSeconds    = "FHIR_REQUEST_TIMEOUT"
	envLogLevel          = "FHIRMCP_LOG_LEVEL"
)

// GetDefaultConfigPath returns the per-user configuration directory.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads configuration from the specified directory, layering the
// config.yaml (if present) and environment overrides on top of the defaults.
func LoadConfig(configPath string) (Config, error) {
	config := GetDefaultConfig()

	configFilePath := filepath.Join(configPath, configFileName)
	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Info("config", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
		}
		logging.Info("config", "Loaded configuration from %s", configFilePath)
	}

	applyEnvOverrides(&config)
	return config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv(envFHIRServerURL); v != "" {
		config.FHIR.BaseURL = v
	}
	if v := os.Getenv(envMatchboxServerURL); v != "" {
		config.Matchbox.BaseURL = v
	}
	if v := os.Getenv(envTimeoutSeconds); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds <= 0 {
			logging.Warn("config", "Ignoring invalid %s value %q", envTimeoutSeconds, v)
		} else {
			config.FHIR.TimeoutSeconds = seconds
			config.Matchbox.TimeoutSeconds = seconds
		}
	}
	if v := os.Getenv(envLogLevel); v != "" {
		config.Serve.LogLevel = v
	}
}
