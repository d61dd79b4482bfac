package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key read from the environment.
const EnvPrefix = "AUDIT"

// ErrInvalidConfig is returned by Load when a required setting is missing or
// malformed. The process must not start serving in that case.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the application configuration
type Config struct {
	// Database connection string (DSN)
	DatabaseURL string

	// Server bind address (host:port)
	ServerAddr string

	// Prometheus scrape address; empty disables the metrics listener
	MetricsAddr string

	// Maximum database connection pool size
	MaxDBConnections int

	// Enable debug logging
	Debug bool

	Auth          AuthConfig
	RBAC          RBACConfig
	Master        MasterConfig
	Observability ObservabilityConfig

	// Peers maps upper-cased service names to base URLs, from <NAME>_BASE_URL.
	Peers map[string]string
}

// AuthConfig describes the identity service and this service's own credentials.
type AuthConfig struct {
	BaseURL   string
	ServiceID string
	// ServiceSecret is wrapped in auth.Secret before use and must never be logged.
	ServiceSecret string

	// JWKSURL defaults to {BaseURL}/.well-known/jwks.json
	JWKSURL  string
	Issuer   string
	Audience string

	JWKSCacheTTL    time.Duration
	ServiceTokenTTL time.Duration
	Timeout         time.Duration
}

// RBACConfig locates the policy decision service among the peers.
type RBACConfig struct {
	ServiceName string
	Timeout     time.Duration
}

// MasterConfig tunes the reference data cache.
type MasterConfig struct {
	CacheTTL  time.Duration
	CacheSize int
}

// ObservabilityConfig configures tracing export and resource attributes.
type ObservabilityConfig struct {
	OTLPEndpoint   string
	OTLPProtocol   string
	OTLPInsecure   bool
	ServiceName    string
	ServiceVersion string
	Environment    string
}

// legacyEnv lists the unprefixed variable names deployments already use.
// The AUDIT_ form is always accepted first.
var legacyEnv = map[string]string{
	"database_url":                "DATABASE_URL",
	"auth.base_url":               "AUTH_BASE_URL",
	"auth.service_id":             "SERVICE_ID",
	"auth.service_secret":         "SERVICE_SECRET",
	"auth.jwks_url":               "SERVICE_JWKS_URL",
	"auth.issuer":                 "SERVICE_JWT_ISSUER",
	"auth.audience":               "SERVICE_JWT_AUDIENCE",
	"rbac.service_name":           "RBAC_SERVICE_NAME",
	"rbac.timeout":                "RBAC_TIMEOUT",
	"observability.otlp_endpoint": "OTEL_EXPORTER_OTLP_ENDPOINT",
	"observability.otlp_protocol": "OTEL_EXPORTER_OTLP_PROTOCOL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "file:audit.db?cache=shared")
	v.SetDefault("server_addr", "localhost:8080")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("max_db_connections", 25)
	v.SetDefault("debug", false)

	v.SetDefault("auth.issuer", "auth-service")
	v.SetDefault("auth.audience", "itmtb-internal")
	v.SetDefault("auth.jwks_cache_ttl", "300s")
	v.SetDefault("auth.service_token_ttl", "9m")
	v.SetDefault("auth.timeout", "10s")

	v.SetDefault("rbac.service_name", "RBAC")
	v.SetDefault("rbac.timeout", "5s")

	v.SetDefault("master.cache_ttl", "5m")
	v.SetDefault("master.cache_size", 64)

	v.SetDefault("observability.otlp_protocol", "http/protobuf")
	v.SetDefault("observability.otlp_insecure", true)
	v.SetDefault("observability.service_name", "internal-audit-be")
	v.SetDefault("observability.service_version", "dev")
	v.SetDefault("observability.environment", "development")
}

// Load reads the configuration with Read and validates it.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads configuration from the global viper instance: config file (if
// one was read), AUDIT_ prefixed environment variables and the legacy
// unprefixed names, in increasing order of precedence for the environment.
// Required settings are not checked.
func Read() (*Config, error) {
	v := viper.GetViper()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{
		DatabaseURL:      v.GetString("database_url"),
		ServerAddr:       v.GetString("server_addr"),
		MetricsAddr:      v.GetString("metrics_addr"),
		MaxDBConnections: v.GetInt("max_db_connections"),
		Debug:            v.GetBool("debug"),
		Auth: AuthConfig{
			BaseURL:       strings.TrimRight(v.GetString("auth.base_url"), "/"),
			ServiceID:     v.GetString("auth.service_id"),
			ServiceSecret: v.GetString("auth.service_secret"),
			JWKSURL:       v.GetString("auth.jwks_url"),
			Issuer:        v.GetString("auth.issuer"),
			Audience:      v.GetString("auth.audience"),
		},
		RBAC: RBACConfig{
			ServiceName: v.GetString("rbac.service_name"),
		},
		Master: MasterConfig{
			CacheSize: v.GetInt("master.cache_size"),
		},
		Observability: ObservabilityConfig{
			OTLPEndpoint:   v.GetString("observability.otlp_endpoint"),
			OTLPProtocol:   v.GetString("observability.otlp_protocol"),
			OTLPInsecure:   v.GetBool("observability.otlp_insecure"),
			ServiceName:    v.GetString("observability.service_name"),
			ServiceVersion: v.GetString("observability.service_version"),
			Environment:    v.GetString("observability.environment"),
		},
		Peers: loadPeers(v),
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"auth.jwks_cache_ttl", &cfg.Auth.JWKSCacheTTL},
		{"auth.service_token_ttl", &cfg.Auth.ServiceTokenTTL},
		{"auth.timeout", &cfg.Auth.Timeout},
		{"rbac.timeout", &cfg.RBAC.Timeout},
		{"master.cache_ttl", &cfg.Master.CacheTTL},
	}
	for _, d := range durations {
		parsed, err := parseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, d.key, err)
		}
		*d.dst = parsed
	}

	if cfg.Auth.JWKSURL == "" && cfg.Auth.BaseURL != "" {
		cfg.Auth.JWKSURL = cfg.Auth.BaseURL + "/.well-known/jwks.json"
	}
	return cfg, nil
}

// Validate reports the first missing required setting. Secrets are never
// included in the message.
func (c *Config) Validate() error {
	switch {
	case c.DatabaseURL == "":
		return fmt.Errorf("%w: DATABASE_URL is required", ErrInvalidConfig)
	case c.Auth.BaseURL == "":
		return fmt.Errorf("%w: AUTH_BASE_URL is required", ErrInvalidConfig)
	case c.Auth.ServiceID == "":
		return fmt.Errorf("%w: SERVICE_ID is required", ErrInvalidConfig)
	case c.Auth.ServiceSecret == "":
		return fmt.Errorf("%w: SERVICE_SECRET is required", ErrInvalidConfig)
	case c.RBAC.ServiceName == "":
		return fmt.Errorf("%w: RBAC_SERVICE_NAME is required", ErrInvalidConfig)
	}

	rbac := strings.ToUpper(c.RBAC.ServiceName)
	if c.Peers[rbac] == "" {
		return fmt.Errorf("%w: %s_BASE_URL is required", ErrInvalidConfig, rbac)
	}
	return nil
}

// loadPeers collects <NAME>_BASE_URL variables plus a "peers" map from the
// config file. The environment wins.
func loadPeers(v *viper.Viper) map[string]string {
	peers := make(map[string]string)
	for name, url := range v.GetStringMapString("peers") {
		peers[strings.ToUpper(name)] = strings.TrimRight(url, "/")
	}
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" || !strings.HasSuffix(key, "_BASE_URL") {
			continue
		}
		name := strings.TrimSuffix(key, "_BASE_URL")
		name = strings.TrimPrefix(name, EnvPrefix+"_")
		if name == "" {
			continue
		}
		peers[strings.ToUpper(name)] = strings.TrimRight(value, "/")
	}
	return peers
}

// parseDuration accepts Go duration strings and bare numbers of seconds,
// which is how RBAC_TIMEOUT has historically been set.
func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(raw)
}
