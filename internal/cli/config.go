package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	twitter "github.com/anatolykoptev/go-xtools"
	"github.com/anatolykoptev/go-xtools/auditlog"
)

// Config is the optional YAML file. Every field may be omitted; credentials
// left empty fall back to the X_* environment variables.
type Config struct {
	// Credentials are merged field by field over the environment.
	Credentials twitter.Credentials `yaml:"credentials"`

	// AuditLog is the JSONL file recording write actions.
	// Default: x-interactions.jsonl in the working directory.
	AuditLog string `yaml:"audit_log"`

	// API tunes the HTTP client.
	API APIConfig `yaml:"api"`

	// LogLevel is one of debug, info, warn, error. The --log-level flag wins.
	LogLevel string `yaml:"log_level"`
}

// APIConfig mirrors the tunable parts of twitter.ClientConfig.
type APIConfig struct {
	// BaseURL overrides https://api.x.com, mostly for testing against a stub.
	BaseURL string `yaml:"base_url"`

	// UploadURL overrides the media upload endpoint.
	UploadURL string `yaml:"upload_url"`

	// Proxy routes every request through this URL.
	Proxy string `yaml:"proxy"`

	// MaxRetries bounds retries of failed reads. Writes are never retried.
	MaxRetries int `yaml:"max_retries"`

	// DefaultRetryAfter is assumed when a 429 carries no reset header.
	DefaultRetryAfter time.Duration `yaml:"default_retry_after"`
}

// LoadConfig reads path. An empty path yields the zero Config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config file not found: %s", path)
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ClientConfig converts the api section for twitter.NewClients.
func (c Config) ClientConfig() twitter.ClientConfig {
	return twitter.ClientConfig{
		BaseURL:           c.API.BaseURL,
		UploadURL:         c.API.UploadURL,
		Proxy:             c.API.Proxy,
		MaxRetries:        c.API.MaxRetries,
		DefaultRetryAfter: c.API.DefaultRetryAfter,
	}
}

// AuditLogPath returns the configured audit log, or the default.
func (c Config) AuditLogPath() string {
	if c.AuditLog == "" {
		return auditlog.DefaultPath
	}
	return c.AuditLog
}
