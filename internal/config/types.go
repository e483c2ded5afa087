package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete TFM-hook configuration.
type Config struct {
	Service      ServiceConfig      `yaml:"service"`
	Webhook      WebhookConfig      `yaml:"webhook"`
	Repositories []RepositoryTarget `yaml:"repositories"`
	Services     []ServiceTarget    `yaml:"docker_services"`
}

// ServiceConfig defines core process settings.
type ServiceConfig struct {
	Name           string        `yaml:"name"`
	Listen         string        `yaml:"listen"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	LockPath       string        `yaml:"lock_path,omitempty"`
}

// WebhookConfig defines the inbound webhook surface.
type WebhookConfig struct {
	// Secret is the shared HMAC secret. Empty disables signature
	// verification for every request.
	Secret string `yaml:"secret,omitempty"`

	// SignatureHeader is the HTTP header carrying the HMAC signature.
	SignatureHeader string `yaml:"signature_header,omitempty"`

	// MaxBodySize is the maximum allowed request body size in bytes.
	MaxBodySize int64 `yaml:"max_body_size,omitempty"`
}

// RepositoryTarget is one git checkout to refresh on each webhook call.
type RepositoryTarget struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Branch string `yaml:"branch,omitempty"`
}

// ServiceTarget is one Docker service to restart after the checkouts refresh.
type ServiceTarget struct {
	Name string `yaml:"name"`
}

// UnmarshalYAML accepts either a bare service name or a {name: ...} mapping.
func (s *ServiceTarget) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&s.Name)
	}

	type plain ServiceTarget
	return value.Decode((*plain)(s))
}

// HasSecret reports whether signature verification is active.
func (c *Config) HasSecret() bool {
	return c.Webhook.Secret != ""
}

// Default values applied by the loader.
const (
	DefaultListen         = "127.0.0.1:9000"
	DefaultBranch         = "main"
	DefaultMaxBodySize    = 1048576 // 1 MB
	DefaultCommandTimeout = 60 * time.Second
	DefaultSignatureHdr   = "X-Hub-Signature-256"
)

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:           "tfm-hook",
			Listen:         DefaultListen,
			LogLevel:       "info",
			LogFormat:      "json",
			CommandTimeout: DefaultCommandTimeout,
		},
		Webhook: WebhookConfig{
			SignatureHeader: DefaultSignatureHdr,
			MaxBodySize:     DefaultMaxBodySize,
		},
	}
}
