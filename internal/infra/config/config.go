// Package config provides runtime configuration loaded from an optional YAML
// file and environment variables, with safe defaults so the binary runs
// against a local Ghidra instance without any setup. Precedence, lowest to
// highest: defaults, config file, environment, command-line flags (applied by
// the caller).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Transport values accepted by Config.Transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds runtime configuration for the bridge.
type Config struct {
	ServerURL      string `yaml:"server_url"`      // GHIDRA_SERVER_URL — default: "http://127.0.0.1:8080/"
	TimeoutSeconds int    `yaml:"timeout_seconds"` // GHIDRA_REQUEST_TIMEOUT — default: 5
	Transport      string `yaml:"transport"`       // MCP_TRANSPORT — "stdio" or "http", default: "stdio"
	HTTPAddr       string `yaml:"http_addr"`       // MCP_HTTP_ADDR — default: "127.0.0.1:8081"
	AuthSecret     string `yaml:"auth_secret"`     // MCP_AUTH_SECRET — empty disables HTTP auth
	LogLevel       string `yaml:"log_level"`       // LOG_LEVEL — default: "info"
}

const (
	envKeyServerURL  = "GHIDRA_SERVER_URL"
	envKeyTimeout    = "GHIDRA_REQUEST_TIMEOUT"
	envKeyTransport  = "MCP_TRANSPORT"
	envKeyHTTPAddr   = "MCP_HTTP_ADDR"
	envKeyAuthSecret = "MCP_AUTH_SECRET"
	envKeyLogLevel   = "LOG_LEVEL"
)

// defaults returns the built-in configuration.
func defaults() Config {
	return Config{
		ServerURL:      "http://127.0.0.1:8080/",
		TimeoutSeconds: 5,
		Transport:      TransportStdio,
		HTTPAddr:       "127.0.0.1:8081",
		LogLevel:       "info",
	}
}

// Load reads configuration from environment variables over the defaults.
func Load() Config {
	cfg, _ := LoadWithFile("")
	return cfg
}

// LoadWithFile layers an optional YAML config file between the defaults and
// the environment. An empty path skips the file entirely.
func LoadWithFile(path string) (Config, error) {
	_ = godotenv.Load(".env")

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.merge(fileCfg)
	}

	cfg.merge(fromEnv())
	return cfg, nil
}

// fromEnv builds a partial Config from environment variables; unset variables
// leave zero values that merge ignores.
func fromEnv() Config {
	var env Config
	env.ServerURL = os.Getenv(envKeyServerURL)
	env.Transport = os.Getenv(envKeyTransport)
	env.HTTPAddr = os.Getenv(envKeyHTTPAddr)
	env.AuthSecret = os.Getenv(envKeyAuthSecret)
	env.LogLevel = os.Getenv(envKeyLogLevel)
	if raw := os.Getenv(envKeyTimeout); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil {
			env.TimeoutSeconds = secs
		}
	}
	return env
}

// merge overlays non-zero fields of other onto c.
func (c *Config) merge(other Config) {
	if other.ServerURL != "" {
		c.ServerURL = other.ServerURL
	}
	if other.TimeoutSeconds != 0 {
		c.TimeoutSeconds = other.TimeoutSeconds
	}
	if other.Transport != "" {
		c.Transport = other.Transport
	}
	if other.HTTPAddr != "" {
		c.HTTPAddr = other.HTTPAddr
	}
	if other.AuthSecret != "" {
		c.AuthSecret = other.AuthSecret
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

// Timeout returns the request timeout as a Duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate rejects configurations the binary cannot run with.
func (c Config) Validate() error {
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("request timeout must be positive, got %d", c.TimeoutSeconds)
	}
	if c.Transport != TransportStdio && c.Transport != TransportHTTP {
		return fmt.Errorf("unknown transport %q (want %q or %q)", c.Transport, TransportStdio, TransportHTTP)
	}
	if c.Transport == TransportHTTP && c.HTTPAddr == "" {
		return fmt.Errorf("http transport requires a listen address")
	}
	return nil
}
