package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	GitHub   GitHubConfig   `yaml:"github"`
	Scan     ScanConfig     `yaml:"scan"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Store    StoreConfig    `yaml:"store"`
}

// GitHubConfig holds GitHub access settings. The default is anonymous,
// unauthenticated access to public data; "app" raises the quota ceiling by
// authenticating as a GitHub App installation.
type GitHubConfig struct {
	Auth           string `yaml:"auth"`
	AppID          string `yaml:"app_id"`
	InstallationID string `yaml:"installation_id"`
	PrivateKeyPath string `yaml:"private_key_path"`
	PrivateKey     string `yaml:"private_key"`
}

// ScanConfig controls how knowledge bases are built.
type ScanConfig struct {
	// Mode is "full" (index every repo) or "shallow" (top 10 by stars).
	Mode string `yaml:"mode"`
}

// DefaultsConfig holds default operational parameters.
type DefaultsConfig struct {
	QuotaPollIntervalRaw string `yaml:"quota_poll_interval"`
	RequestTimeoutRaw    string `yaml:"request_timeout"`
	CacheTTLRaw          string `yaml:"cache_ttl"`
}

// StoreConfig holds storage settings.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// QuotaPollInterval returns the parsed interval for the periodic quota poll.
func (d DefaultsConfig) QuotaPollInterval() (time.Duration, error) {
	if d.QuotaPollIntervalRaw == "" {
		return time.Minute, nil
	}
	return time.ParseDuration(d.QuotaPollIntervalRaw)
}

// RequestTimeout returns the parsed per-request timeout.
func (d DefaultsConfig) RequestTimeout() (time.Duration, error) {
	if d.RequestTimeoutRaw == "" {
		return 30 * time.Second, nil
	}
	return time.ParseDuration(d.RequestTimeoutRaw)
}

// CacheTTL returns the parsed fetch-cache lifetime. Zero disables caching.
func (d DefaultsConfig) CacheTTL() (time.Duration, error) {
	if d.CacheTTLRaw == "" {
		return 15 * time.Minute, nil
	}
	return time.ParseDuration(d.CacheTTLRaw)
}

// envVarPattern matches ${VAR} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} placeholders with environment variable values.
// Returns an error if any referenced variable is not set.
func expandEnvVars(data []byte) ([]byte, error) {
	var missing []string

	result := envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		val, ok := os.LookupEnv(string(varName))
		if !ok {
			missing = append(missing, string(varName))
			return match
		}
		return []byte(val)
	})

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return result, nil
}

// Load reads and parses a config file from the given path. A missing file is
// not an error: anonymous defaults work out of the box.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses config from raw YAML bytes, expanding env vars and validating.
func Parse(data []byte) (*Config, error) {
	expanded, err := expandEnvVars(data)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.GitHub.Auth == "" {
		cfg.GitHub.Auth = "anonymous"
	}
	if cfg.Scan.Mode == "" {
		cfg.Scan.Mode = "full"
	}
	if cfg.Defaults.QuotaPollIntervalRaw == "" {
		cfg.Defaults.QuotaPollIntervalRaw = "60s"
	}
	if cfg.Defaults.RequestTimeoutRaw == "" {
		cfg.Defaults.RequestTimeoutRaw = "30s"
	}
	if cfg.Defaults.CacheTTLRaw == "" {
		cfg.Defaults.CacheTTLRaw = "15m"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "~/.gitfolio/gitfolio.db"
	}
	cfg.Store.Path = expandTilde(cfg.Store.Path)
}

// expandTilde replaces a leading "~" with the user's home directory. Paths
// without a tilde prefix are returned unchanged.
func expandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}

func validate(cfg *Config) error {
	switch cfg.GitHub.Auth {
	case "anonymous", "app":
	default:
		return fmt.Errorf("unsupported github auth mode: %s", cfg.GitHub.Auth)
	}

	if cfg.GitHub.Auth == "app" {
		if cfg.GitHub.AppID == "" || cfg.GitHub.InstallationID == "" {
			return fmt.Errorf("github auth 'app' requires app_id and installation_id")
		}
		if cfg.GitHub.PrivateKey == "" && cfg.GitHub.PrivateKeyPath == "" {
			return fmt.Errorf("github auth 'app' requires private_key or private_key_path")
		}
	}

	switch cfg.Scan.Mode {
	case "full", "shallow":
	default:
		return fmt.Errorf("scan mode must be 'full' or 'shallow', got %q", cfg.Scan.Mode)
	}

	// Validate durations parse correctly
	if _, err := time.ParseDuration(cfg.Defaults.QuotaPollIntervalRaw); err != nil {
		return fmt.Errorf("invalid quota_poll_interval %q: %w", cfg.Defaults.QuotaPollIntervalRaw, err)
	}
	if _, err := time.ParseDuration(cfg.Defaults.RequestTimeoutRaw); err != nil {
		return fmt.Errorf("invalid request_timeout %q: %w", cfg.Defaults.RequestTimeoutRaw, err)
	}
	if _, err := time.ParseDuration(cfg.Defaults.CacheTTLRaw); err != nil {
		return fmt.Errorf("invalid cache_ttl %q: %w", cfg.Defaults.CacheTTLRaw, err)
	}

	return nil
}
