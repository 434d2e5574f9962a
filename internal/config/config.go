package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Session  SessionConfig  `mapstructure:"session"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	MCP      MCPConfig      `mapstructure:"mcp"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Debug    bool           `mapstructure:"debug"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"`
}

// UpstreamConfig describes the single GraphQL endpoint all requests target.
// Agent-supplied URLs are never accepted; this is the SSRF boundary.
type UpstreamConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`        // DEFAULT_GRAPHQL_ENDPOINT
	HeadersJSON    string        `mapstructure:"headers"`         // DEFAULT_GRAPHQL_HEADERS (JSON object)
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // introspection and validate path
	ExecuteTimeout time.Duration `mapstructure:"execute_timeout"` // execute-query path

	headers map[string]string
}

// SessionConfig contains session store settings
type SessionConfig struct {
	RedisURL       string        `mapstructure:"redis_url"` // REDIS_URL; empty = memory only
	TTL            time.Duration `mapstructure:"ttl"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// LimitsConfig bounds query complexity and input size
type LimitsConfig struct {
	MaxDepth          int     `mapstructure:"max_depth"`          // maximum query depth
	MaxFields         int     `mapstructure:"max_fields"`         // maximum field count
	MaxComplexity     float64 `mapstructure:"max_complexity"`     // maximum weighted score
	MaxPagination     int     `mapstructure:"max_pagination"`     // cap for first/last/limit/top/count args
	MaxStringLength   int     `mapstructure:"max_string_length"`  // per string input
	MaxInputDepth     int     `mapstructure:"max_input_depth"`    // nesting of input blobs
	MaxInputElements  int     `mapstructure:"max_input_elements"` // total elements in an input blob
	MaxVariableDepth  int     `mapstructure:"max_variable_depth"` // list nesting in variable type strings
	MaxHeaderKeyLen   int     `mapstructure:"max_header_key_len"` // default upstream header keys
	MaxHeaderValueLen int     `mapstructure:"max_header_value_len"`
}

// MCPConfig contains Model Context Protocol server settings
type MCPConfig struct {
	BasePath        string `mapstructure:"base_path"`          // Base path for MCP endpoints (default: "/mcp")
	MaxMessageSize  int    `mapstructure:"max_message_size"`   // Maximum message size in bytes
	RateLimitPerMin int    `mapstructure:"rate_limit_per_min"` // Rate limit per minute per client
}

// MetricsConfig contains Prometheus metrics settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from .env, environment variables, and optional
// config file, then validates it.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		log.Debug().Msg("No .env file found - using environment variables and defaults")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("QUERYSCULPTOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unprefixed env vars that predate the QUERYSCULPTOR_ namespace
	_ = viper.BindEnv("upstream.endpoint", "QUERYSCULPTOR_UPSTREAM_ENDPOINT", "DEFAULT_GRAPHQL_ENDPOINT")
	_ = viper.BindEnv("upstream.headers", "QUERYSCULPTOR_UPSTREAM_HEADERS", "DEFAULT_GRAPHQL_HEADERS")
	_ = viper.BindEnv("session.redis_url", "QUERYSCULPTOR_SESSION_REDIS_URL", "REDIS_URL")

	configPaths := []string{
		"./querysculptor.yaml",
		"./querysculptor.yml",
		"/etc/querysculptor/querysculptor.yaml",
	}

	var configLoaded bool
	for _, configPath := range configPaths {
		if _, err := os.Stat(configPath); err == nil {
			viper.SetConfigFile(configPath)
			if err := viper.ReadInConfig(); err != nil {
				log.Warn().Err(err).Str("file", configPath).Msg("Config file found but could not be parsed, using environment variables and defaults")
			} else {
				log.Info().Str("file", configPath).Msg("Config file loaded")
				configLoaded = true
			}
			break
		}
	}

	if !configLoaded {
		log.Info().Msg("No config file found, using environment variables and defaults")
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads environment variables from .env file
func loadEnvFile() error {
	locations := []string{
		".env",
		".env.local",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			if err := godotenv.Load(location); err != nil {
				return fmt.Errorf("error loading .env file from %s: %w", location, err)
			}
			log.Info().Str("file", location).Msg(".env file loaded")
			return nil
		}
	}

	return fmt.Errorf("no .env file found")
}

func setDefaults() {
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "90s") // execute path may hold the connection up to 60s
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.body_limit", 1024*1024)

	viper.SetDefault("upstream.request_timeout", "30s")
	viper.SetDefault("upstream.execute_timeout", "60s")

	viper.SetDefault("session.ttl", "3600s")
	viper.SetDefault("session.connect_timeout", "2s")

	viper.SetDefault("limits.max_depth", 12)
	viper.SetDefault("limits.max_fields", 200)
	viper.SetDefault("limits.max_complexity", 2500)
	viper.SetDefault("limits.max_pagination", 500)
	viper.SetDefault("limits.max_string_length", 8192)
	viper.SetDefault("limits.max_input_depth", 10)
	viper.SetDefault("limits.max_input_elements", 1000)
	viper.SetDefault("limits.max_variable_depth", 5)
	viper.SetDefault("limits.max_header_key_len", 100)
	viper.SetDefault("limits.max_header_value_len", 1000)

	viper.SetDefault("mcp.base_path", "/mcp")
	viper.SetDefault("mcp.max_message_size", 1024*1024)
	viper.SetDefault("mcp.rate_limit_per_min", 0)

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.path", "/metrics")
}

// Validate validates the full configuration
func (c *Config) Validate() error {
	if err := c.Upstream.Validate(c.Limits.MaxHeaderKeyLen, c.Limits.MaxHeaderValueLen); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.Limits.Validate(); err != nil {
		return err
	}
	if err := c.MCP.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate validates upstream configuration and parses the default headers.
func (uc *UpstreamConfig) Validate(maxKeyLen, maxValueLen int) error {
	if uc.Endpoint == "" {
		return fmt.Errorf("upstream endpoint is required (set DEFAULT_GRAPHQL_ENDPOINT)")
	}

	u, err := url.Parse(uc.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream endpoint %q is not a valid URL", uc.Endpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("upstream endpoint scheme must be http or https, got: %s", u.Scheme)
	}

	uc.headers = make(map[string]string)
	if uc.HeadersJSON != "" {
		if err := json.Unmarshal([]byte(uc.HeadersJSON), &uc.headers); err != nil {
			return fmt.Errorf("DEFAULT_GRAPHQL_HEADERS must be a JSON object of string to string: %w", err)
		}
		for k, v := range uc.headers {
			if len(k) > maxKeyLen {
				return fmt.Errorf("default header key %q exceeds %d characters", k, maxKeyLen)
			}
			if len(v) > maxValueLen {
				return fmt.Errorf("default header value for %q exceeds %d characters", k, maxValueLen)
			}
		}
	}

	if uc.RequestTimeout <= 0 {
		return fmt.Errorf("upstream request_timeout must be positive, got: %v", uc.RequestTimeout)
	}
	if uc.ExecuteTimeout <= 0 {
		return fmt.Errorf("upstream execute_timeout must be positive, got: %v", uc.ExecuteTimeout)
	}

	return nil
}

// Headers returns the parsed default upstream headers. Validate must have
// been called first.
func (uc *UpstreamConfig) Headers() map[string]string {
	return uc.headers
}

// Validate validates session store configuration
func (sc *SessionConfig) Validate() error {
	if sc.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got: %v", sc.TTL)
	}
	if sc.ConnectTimeout <= 0 {
		return fmt.Errorf("session connect_timeout must be positive, got: %v", sc.ConnectTimeout)
	}
	return nil
}

// Validate validates limit configuration
func (lc *LimitsConfig) Validate() error {
	if lc.MaxDepth < 1 {
		return fmt.Errorf("limits max_depth must be at least 1, got: %d", lc.MaxDepth)
	}
	if lc.MaxFields < 1 {
		return fmt.Errorf("limits max_fields must be at least 1, got: %d", lc.MaxFields)
	}
	if lc.MaxComplexity < 1 {
		return fmt.Errorf("limits max_complexity must be at least 1, got: %v", lc.MaxComplexity)
	}
	if lc.MaxPagination < 1 {
		return fmt.Errorf("limits max_pagination must be at least 1, got: %d", lc.MaxPagination)
	}
	if lc.MaxVariableDepth < 1 {
		return fmt.Errorf("limits max_variable_depth must be at least 1, got: %d", lc.MaxVariableDepth)
	}
	return nil
}

// Validate validates MCP configuration
func (mc *MCPConfig) Validate() error {
	if mc.BasePath == "" {
		return fmt.Errorf("mcp base_path cannot be empty")
	}
	if mc.MaxMessageSize < 0 {
		return fmt.Errorf("mcp max_message_size cannot be negative, got: %d", mc.MaxMessageSize)
	}
	if mc.RateLimitPerMin < 0 {
		return fmt.Errorf("mcp rate_limit_per_min cannot be negative, got: %d", mc.RateLimitPerMin)
	}
	return nil
}
