package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a file. Values of the form
// ${VAR} are expanded from the environment before parsing, so secrets
// can stay out of the file itself.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	expanded := expandEnvVars(data)

	cfg := Defaults()
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", absPath, err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR} references with environment values.
// Unset variables expand to the empty string.
func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

func applyDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = "tfm-hook"
	}
	if cfg.Service.Listen == "" {
		cfg.Service.Listen = DefaultListen
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = "info"
	}
	if cfg.Service.LogFormat == "" {
		cfg.Service.LogFormat = "json"
	}
	if cfg.Service.CommandTimeout <= 0 {
		cfg.Service.CommandTimeout = DefaultCommandTimeout
	}
	if cfg.Webhook.SignatureHeader == "" {
		cfg.Webhook.SignatureHeader = DefaultSignatureHdr
	}
	if cfg.Webhook.MaxBodySize <= 0 {
		cfg.Webhook.MaxBodySize = DefaultMaxBodySize
	}
	for i := range cfg.Repositories {
		if cfg.Repositories[i].Branch == "" {
			cfg.Repositories[i].Branch = DefaultBranch
		}
	}
}

func validate(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Repositories))
	for i, repo := range cfg.Repositories {
		if repo.Name == "" {
			return fmt.Errorf("repositories[%d]: name is required", i)
		}
		if seen[repo.Name] {
			return fmt.Errorf("repositories[%d]: duplicate name %q", i, repo.Name)
		}
		seen[repo.Name] = true

		if repo.Path == "" {
			return fmt.Errorf("repository %q: path is required", repo.Name)
		}
		if !filepath.IsAbs(repo.Path) {
			return fmt.Errorf("repository %q: path must be absolute, got %q", repo.Name, repo.Path)
		}
	}

	for i, svc := range cfg.Services {
		if svc.Name == "" {
			return fmt.Errorf("docker_services[%d]: name is required", i)
		}
	}

	return nil
}
