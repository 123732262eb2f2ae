// Package config loads server configuration from an optional YAML file and
// the environment. Environment variables win over the file.
package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvConfigFile            = "PINCHECK_CONFIG"
	EnvAddr                  = "PINCHECK_ADDR"
	EnvPostalAPIBaseURL      = "POSTAL_API_BASE_URL"
	EnvPostalAPITimeout      = "POSTAL_API_TIMEOUT"
	EnvWidgetIdleTTL         = "WIDGET_IDLE_TTL"
	EnvWidgetCleanupInterval = "WIDGET_CLEANUP_INTERVAL"
	EnvWidgetMaxActive       = "WIDGET_MAX_ACTIVE"
	EnvLogLevel              = "LOG_LEVEL"
	EnvEnvironment           = "ENVIRONMENT"
	EnvTrustedProxies        = "TRUSTED_PROXIES"
)

// DefaultPostalAPIBaseURL is the public postal lookup endpoint.
const DefaultPostalAPIBaseURL = "https://api.postalpincode.in/pincode/"

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string `yaml:"addr" validate:"required"`
	Environment string `yaml:"environment" validate:"required"`
	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn error"`

	PostalAPIBaseURL string        `yaml:"postal_api_base_url" validate:"required,url"`
	PostalAPITimeout time.Duration `yaml:"postal_api_timeout" validate:"gte=0"`

	WidgetIdleTTL         time.Duration `yaml:"widget_idle_ttl" validate:"gt=0"`
	WidgetCleanupInterval time.Duration `yaml:"widget_cleanup_interval" validate:"gt=0"`
	WidgetMaxActive       int           `yaml:"widget_max_active" validate:"gt=0"`

	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" validate:"gt=0"`
	TrustedProxies []string      `yaml:"trusted_proxies" validate:"dive,cidr"`
}

// Default returns the configuration used when nothing is set.
func Default() Server {
	return Server{
		Addr:                  ":8080",
		Environment:           "development",
		LogLevel:              "info",
		PostalAPIBaseURL:      DefaultPostalAPIBaseURL,
		PostalAPITimeout:      10 * time.Second,
		WidgetIdleTTL:         30 * time.Minute,
		WidgetCleanupInterval: time.Minute,
		WidgetMaxActive:       10000,
		RequestTimeout:        30 * time.Second,
		MaxBodyBytes:          64 << 10,
	}
}

// Load builds the configuration from the process environment.
func Load() (Server, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom builds the configuration with lookup as the environment.
func LoadFrom(lookup func(string) (string, bool)) (Server, error) {
	cfg := Default()

	if path, ok := lookup(EnvConfigFile); ok && path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Server{}, err
		}
	}
	if err := cfg.mergeEnv(lookup); err != nil {
		return Server{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c *Server) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Server) mergeEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str(EnvAddr, &c.Addr)
	str(EnvEnvironment, &c.Environment)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvPostalAPIBaseURL, &c.PostalAPIBaseURL)
	c.LogLevel = strings.ToLower(c.LogLevel)

	if v, ok := lookup(EnvTrustedProxies); ok && v != "" {
		c.TrustedProxies = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				c.TrustedProxies = append(c.TrustedProxies, p)
			}
		}
	}

	if v, ok := lookup(EnvWidgetMaxActive); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWidgetMaxActive, err)
		}
		c.WidgetMaxActive = n
	}

	for key, dst := range map[string]*time.Duration{
		EnvPostalAPITimeout:      &c.PostalAPITimeout,
		EnvWidgetIdleTTL:         &c.WidgetIdleTTL,
		EnvWidgetCleanupInterval: &c.WidgetCleanupInterval,
	} {
		if err := dur(key, dst); err != nil {
			return err
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c Server) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ProxyPrefixes parses TrustedProxies. Validate has already checked the format.
func (c Server) ProxyPrefixes() []netip.Prefix {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, p := range c.TrustedProxies {
		if prefix, err := netip.ParsePrefix(p); err == nil {
			prefixes = append(prefixes, prefix)
		}
	}
	return prefixes
}

// IsProduction reports whether the server runs in production.
func (c Server) IsProduction() bool {
	return c.Environment == "production"
}
