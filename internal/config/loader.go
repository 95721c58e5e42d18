package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/dagspec/internal/model"
	"github.com/mattjoyce/dagspec/internal/workflow"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Known API token scopes.
const (
	ScopeCompile = "compile"
	ScopeLint    = "lint"
	ScopeAll     = "*"
)

// Defaults returns the configuration used when no file is found.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Timeout: 30 * time.Second,
		},
		Defaults: DefaultsConfig{
			Namespace:  workflow.DefaultNamespace,
			APIVersion: model.DefaultAPIVersion,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		History: HistoryConfig{
			Path:    defaultHistoryPath(),
			Enabled: true,
		},
		API: APIConfig{
			Listen: "127.0.0.1:8480",
		},
		Watch: WatchConfig{
			Interval:    2 * time.Second,
			MaxInterval: 30 * time.Second,
		},
	}
}

func defaultHistoryPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "dagspec", "history.db")
	}
	return "dagspec-history.db"
}

// Load reads configuration from a file. Unset fields keep their defaults.
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

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	cfg.SourceFile = absPath
	return cfg, nil
}

// Parse decodes YAML configuration over the defaults, interpolating ${VAR}
// references from the environment, and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	interpolated := interpolateEnv(string(data))
	if err := yaml.Unmarshal([]byte(interpolated), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads the discovered config, or returns defaults when none
// exists. An explicit path that does not exist is an error.
func LoadOrDefault(explicit string) (*Config, error) {
	path, err := Discover(explicit)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Defaults(), nil
	}
	return Load(path)
}

// interpolateEnv replaces ${VAR} with environment values.
// Unknown variables are left in place so validation can report them.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.URL != "" {
		u, err := url.Parse(c.Server.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("server.url %q must be an http(s) URL", c.Server.URL)
		}
	}
	if envVarPattern.MatchString(c.Server.Token) {
		return fmt.Errorf("server.token references unset environment variable %s", c.Server.Token)
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout must not be negative")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q must be json or text", c.Log.Format)
	}

	switch c.Defaults.ImagePullPolicy {
	case "", "Always", "IfNotPresent", "Never":
	default:
		return fmt.Errorf("defaults.image_pull_policy %q must be Always, IfNotPresent or Never", c.Defaults.ImagePullPolicy)
	}

	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}

	for i, tok := range c.API.Tokens {
		if tok.Token == "" || envVarPattern.MatchString(tok.Token) {
			return fmt.Errorf("api.tokens[%d]: token is empty or references an unset environment variable", i)
		}
		if len(tok.Scopes) == 0 {
			return fmt.Errorf("api.tokens[%d]: at least one scope is required", i)
		}
		for _, s := range tok.Scopes {
			if s != ScopeCompile && s != ScopeLint && s != ScopeAll {
				return fmt.Errorf("api.tokens[%d]: unknown scope %q", i, s)
			}
		}
	}

	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be positive")
	}
	if c.Watch.MaxInterval < c.Watch.Interval {
		return fmt.Errorf("watch.max_interval must be at least watch.interval")
	}
	return nil
}

// WorkflowDefaults converts the defaults section for the authoring layer.
func (c *Config) WorkflowDefaults() workflow.Defaults {
	return workflow.Defaults{
		APIVersion:         c.Defaults.APIVersion,
		Namespace:          c.Defaults.Namespace,
		ServiceAccountName: c.Defaults.ServiceAccountName,
		Image:              c.Defaults.Image,
		ImagePullPolicy:    c.Defaults.ImagePullPolicy,
	}
}
