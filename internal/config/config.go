package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/riskdash/riskdash/internal/simulate"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort          = 8080
	DefaultBroadcastInterval = 5 * time.Second
	DefaultTrials            = simulate.DefaultTrials
	DefaultRegistryTimeout   = 10 * time.Second
	DefaultAPIKeyHeader      = "X-API-Key"
)

// Config is the top-level configuration. Fields map 1:1 to config.example.yaml.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Registry   RegistryConfig   `yaml:"registry"`
	Simulation SimulationConfig `yaml:"simulation"`
	Alerts     AlertsConfig     `yaml:"alerts"`
}

// ServerConfig holds the HTTP service settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API, metrics and WebSocket hub listen on.
	HTTPPort int `yaml:"http_port"`

	// BroadcastInterval controls how often a fresh report is pushed to
	// WebSocket clients.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`

	// Auth configures the gate in front of the API.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig specifies an authentication mode and where its secret lives.
type AuthConfig struct {
	// Mode is one of: basic | apikey | bearer | none.
	Mode string `yaml:"mode"`

	// Basic auth fields, used when Mode == "basic".
	// Username is the literal username (safe to store in config).
	Username string `yaml:"username"`
	// PasswordEnv is the name of the environment variable holding the password.
	PasswordEnv string `yaml:"password_env"`

	// API key fields, used when Mode == "apikey".
	// Header is the HTTP header name carrying the key.
	Header string `yaml:"header"`
	// KeyEnv is the name of the environment variable holding the key value.
	KeyEnv string `yaml:"key_env"`

	// Bearer token fields, used when Mode == "bearer" (registry fetch only).
	TokenEnv string `yaml:"token_env"`
}

// Key returns the API key value resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Token returns the bearer token value resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Password returns the basic-auth password resolved from the environment.
func (a AuthConfig) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// EffectiveHeader returns Header, or DefaultAPIKeyHeader when unset.
func (a AuthConfig) EffectiveHeader() string {
	if a.Header == "" {
		return DefaultAPIKeyHeader
	}
	return a.Header
}

// TLSConfig holds TLS dial options for a remote registry.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	// Only use this for internal CAs in development environments.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// CAFile is an optional PEM bundle used instead of the system roots.
	CAFile string `yaml:"ca_file"`
}

// RegistryConfig says where component records come from. With neither Path
// nor URL set the built-in dataset is used.
type RegistryConfig struct {
	// Path is a YAML or JSON registry file.
	Path string `yaml:"path"`

	// URL is an HTTP endpoint returning a YAML or JSON registry document.
	URL string `yaml:"url"`

	// Watch reloads Path whenever the file changes.
	Watch bool `yaml:"watch"`

	// Timeout bounds a single fetch from URL.
	Timeout time.Duration `yaml:"timeout"`

	Auth AuthConfig `yaml:"auth"`
	TLS  TLSConfig  `yaml:"tls"`
}

// SimulationConfig tunes the recovery-time Monte Carlo run.
type SimulationConfig struct {
	// Trials is the number of draws per component timeline.
	Trials int `yaml:"trials"`

	// Seed fixes the random source for reproducible reports. Zero means a
	// fresh source for every report.
	Seed uint64 `yaml:"seed"`
}

// AlertsConfig holds all alerting rules and webhook targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines a threshold-based alert condition.
type AlertRule struct {
	// Name is the human-readable alert identifier.
	Name string `yaml:"name"`

	// Condition is an expression like "risk_score > 0.6" or
	// "risk_level == CRITICAL".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML config document.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Defaults returns a Config pre-populated with default values. It is also
// the configuration used when no config file is given.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:          DefaultHTTPPort,
			BroadcastInterval: DefaultBroadcastInterval,
			Auth:              AuthConfig{Mode: "none"},
		},
		Registry: RegistryConfig{
			Timeout: DefaultRegistryTimeout,
		},
		Simulation: SimulationConfig{
			Trials: DefaultTrials,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d out of range", cfg.Server.HTTPPort)
	}
	if cfg.Server.BroadcastInterval <= 0 {
		return fmt.Errorf("server.broadcast_interval must be positive")
	}
	switch cfg.Server.Auth.Mode {
	case "basic", "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth: unknown mode %q", cfg.Server.Auth.Mode)
	}
	if cfg.Server.Auth.Mode == "basic" && cfg.Server.Auth.Username == "" {
		return fmt.Errorf("server.auth: basic mode requires username")
	}

	if cfg.Registry.Path != "" && cfg.Registry.URL != "" {
		return fmt.Errorf("registry: path and url are mutually exclusive")
	}
	if cfg.Registry.Watch && cfg.Registry.Path == "" {
		return fmt.Errorf("registry: watch requires path")
	}
	if cfg.Registry.Timeout <= 0 {
		return fmt.Errorf("registry.timeout must be positive")
	}
	switch cfg.Registry.Auth.Mode {
	case "basic", "apikey", "bearer", "none", "":
	default:
		return fmt.Errorf("registry.auth: unknown mode %q", cfg.Registry.Auth.Mode)
	}

	if cfg.Simulation.Trials < simulate.MinSamples {
		return fmt.Errorf("simulation.trials must be at least %d, got %d",
			simulate.MinSamples, cfg.Simulation.Trials)
	}

	for i, r := range cfg.Alerts.Rules {
		if r.Name == "" {
			return fmt.Errorf("alerts.rules[%d]: name is required", i)
		}
		if r.Condition == "" {
			return fmt.Errorf("alerts.rules[%d] %q: condition is required", i, r.Name)
		}
		switch r.Severity {
		case "critical", "warning", "info", "":
		default:
			return fmt.Errorf("alerts.rules[%d] %q: unknown severity %q", i, r.Name, r.Severity)
		}
	}
	for i, w := range cfg.Alerts.Webhooks {
		switch w.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("alerts.webhooks[%d]: unknown type %q", i, w.Type)
		}
	}
	return nil
}
