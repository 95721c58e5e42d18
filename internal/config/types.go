package config

import "time"

// Config is the dagspec CLI and server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Log      LogConfig      `yaml:"log"`
	History  HistoryConfig  `yaml:"history"`
	API      APIConfig      `yaml:"api"`
	Watch    WatchConfig    `yaml:"watch"`

	// SourceFile is the file the config was loaded from, empty for defaults.
	SourceFile string `yaml:"-"`
}

// ServerConfig locates the Argo Server.
type ServerConfig struct {
	URL                string        `yaml:"url"`
	Token              string        `yaml:"token"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	Timeout            time.Duration `yaml:"timeout"`
}

// DefaultsConfig holds settings applied to workflows that leave them unset.
type DefaultsConfig struct {
	Namespace          string `yaml:"namespace"`
	ServiceAccountName string `yaml:"service_account_name"`
	APIVersion         string `yaml:"api_version"`
	Image              string `yaml:"image"`
	ImagePullPolicy    string `yaml:"image_pull_policy"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HistoryConfig configures the local submission ledger.
type HistoryConfig struct {
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// APIConfig configures the compile server.
type APIConfig struct {
	Listen string     `yaml:"listen"`
	Tokens []APIToken `yaml:"tokens,omitempty"`
}

// APIToken is a bearer token and its scopes.
type APIToken struct {
	Token  string   `yaml:"token"`
	Scopes []string `yaml:"scopes"`
}

// WatchConfig tunes status polling.
type WatchConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MaxInterval time.Duration `yaml:"max_interval"`
}
