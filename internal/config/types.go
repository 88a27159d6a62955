package config

import "time"

// Config is the top-level configuration structure for fhirmcp.
type Config struct {
	FHIR     ServerConfig `yaml:"fhir"`
	Matchbox ServerConfig `yaml:"matchbox"`
	Serve    ServeConfig  `yaml:"serve"`
}

// ServerConfig describes one upstream FHIR endpoint.
type ServerConfig struct {
	// BaseURL is the FHIR base, e.g. http://localhost:8080/fhir.
	// Request paths are resolved relative to it.
	BaseURL string `yaml:"baseUrl,omitempty"`
	// TimeoutSeconds is the per-request timeout. One attempt, no retry:
	// FHIR writes are not safe to blindly replay.
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"`
}

// Timeout returns the request timeout as a duration.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// ServeConfig controls the MCP serving loop.
type ServeConfig struct {
	// LogLevel is one of debug, info, warn, error (default: info).
	LogLevel string `yaml:"logLevel,omitempty"`
	// DefaultFormat is the response format used when a tool call does not
	// specify one: "markdown" or "json" (default: markdown).
	DefaultFormat string `yaml:"defaultFormat,omitempty"`
}

const (
	// DefaultFHIRBaseURL is used when no base URL is configured.
	DefaultFHIRBaseURL = "http://localhost:8080/fhir"
	// DefaultMatchboxBaseURL points at the transform ("Matchbox") server.
	DefaultMatchboxBaseURL = "http://localhost:8081/matchboxv3/fhir"
	// DefaultTimeoutSeconds is the fixed per-request timeout.
	DefaultTimeoutSeconds = 60
)

// GetDefaultConfig returns the built-in defaults, used when no config file
// exists and no environment overrides are set.
func GetDefaultConfig() Config {
	return Config{
		FHIR: ServerConfig{
			BaseURL:        DefaultFHIRBaseURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Matchbox: ServerConfig{
			BaseURL:        DefaultMatchboxBaseURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Serve: ServeConfig{
			LogLevel:      "info",
			DefaultFormat: "markdown",
		},
	}
}
