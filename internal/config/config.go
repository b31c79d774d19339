package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultGitHubAPIURL is the upstream API root.
const DefaultGitHubAPIURL = "https://api.github.com"

// Config captures user settings for geman. Values from the YAML file are
// overridden by environment variables when those are set.
type Config struct {
	// SteamRootPath overrides the Steam installation root. Environment
	// variables such as $HOME are expanded.
	SteamRootPath string `yaml:"steam_root_path,omitempty" env:"GEMAN_STEAM_ROOT"`

	GitHubAPIURL string `yaml:"github_api_url" env:"GEMAN_GITHUB_API_URL" validate:"required,url"`
	GitHubToken  string `yaml:"-" json:"-" env:"GITHUB_TOKEN"`

	LogLevel string `yaml:"log_level" env:"GEMAN_LOG_LEVEL" validate:"oneof=debug info warn error"`

	// ReleaseCacheTTL bounds how long `check` trusts a cached latest tag.
	// Zero disables the cache.
	ReleaseCacheTTL time.Duration `yaml:"release_cache_ttl" env:"GEMAN_RELEASE_CACHE_TTL" validate:"min=0s"`

	SkipChecksum bool `yaml:"skip_checksum,omitempty" env:"GEMAN_SKIP_CHECKSUM"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		GitHubAPIURL:    DefaultGitHubAPIURL,
		LogLevel:        "info",
		ReleaseCacheTTL: time.Hour,
	}
}

// Load reads the YAML configuration from disk if it exists, applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	contents, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(contents, &cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyDefaults fills fields the YAML left empty.
func (c *Config) ApplyDefaults() {
	defaults := Default()
	if strings.TrimSpace(c.GitHubAPIURL) == "" {
		c.GitHubAPIURL = defaults.GitHubAPIURL
	}
	c.GitHubAPIURL = strings.TrimRight(c.GitHubAPIURL, "/")
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaults.LogLevel
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SteamRoot returns the expanded Steam root override, or "".
func (c Config) SteamRoot() string {
	root := strings.TrimSpace(c.SteamRootPath)
	if root == "" {
		return ""
	}
	return os.ExpandEnv(root)
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
