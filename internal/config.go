package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/pastebin/internal/client"
	"github.com/starford/pastebin/internal/pasteservice"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Remote RemoteConfig      `yaml:"remote"`
	Server ServerConfig      `yaml:"server"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Remote.Validate(); err != nil {
		return fmt.Errorf("remote: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.SQLite.Validate(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
//
// LogFile receives the logs of the interactive editor, which owns the
// terminal. When empty those logs are discarded.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	LogFile  string     `yaml:"log_file"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In(slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError)),
	)
}

// RemoteConfig points the client at a paste store.
type RemoteConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Validate validates the remote configuration.
func (c *RemoteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Millisecond)),
	)
}

// ServerConfig configures the reference store run by the serve command.
type ServerConfig struct {
	HTTP      HTTPConfig `yaml:"http"`
	DataPath  string     `yaml:"data_path"`
	MaxLength int        `yaml:"max_length"`
	KeyLength int        `yaml:"key_length"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.DataPath, validation.Required),
		validation.Field(&c.MaxLength, validation.Required, validation.Min(1)),
		validation.Field(&c.KeyLength, validation.Required, validation.Min(4), validation.Max(64)),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds the recent-pastes database location.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Remote: RemoteConfig{
			BaseURL: "http://localhost:7777",
			Timeout: client.DefaultTimeout,
		},
		Server: ServerConfig{
			HTTP: HTTPConfig{
				Port: 7777,
			},
			DataPath:  "./data",
			MaxLength: pasteservice.DefaultMaxLength,
			KeyLength: pasteservice.DefaultKeyLength,
		},
		SQLite: SQLiteConfig{
			Path: "./pastebin.db",
		},
	}
}
