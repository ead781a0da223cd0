package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/vozinv/vozinv/foundation/core/error"
	"github.com/vozinv/vozinv/foundation/core/validation"
)

// EnvVar names the environment variable that points at the config file
const EnvVar = "VOZINV_CONFIG"

// Config holds the complete application configuration
type Config struct {
	General  GeneralConfig  `toml:"general" yaml:"general"`
	Listener ListenerConfig `toml:"listener" yaml:"listener"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
	GRPC     GRPCConfig     `toml:"grpc" yaml:"grpc"`
	Currency CurrencyConfig `toml:"currency" yaml:"currency"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name" yaml:"name"`
	Environment string `toml:"environment" yaml:"environment"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`
	LogFormat   string `toml:"log_format" yaml:"log_format"`
}

// ListenerConfig controls how live transcripts are debounced
type ListenerConfig struct {
	Debounce  Duration `toml:"debounce" yaml:"debounce"`
	MinLength int      `toml:"min_length" yaml:"min_length"`
}

// ServerConfig holds the WebSocket transcript server settings
type ServerConfig struct {
	Host           string   `toml:"host" yaml:"host"`
	Port           int      `toml:"port" yaml:"port"`
	ReadTimeout    Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout" yaml:"write_timeout"`
	PingInterval   Duration `toml:"ping_interval" yaml:"ping_interval"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`
}

// GRPCConfig holds the gRPC health server settings
type GRPCConfig struct {
	Enabled          bool     `toml:"enabled" yaml:"enabled"`
	Host             string   `toml:"host" yaml:"host"`
	Port             int      `toml:"port" yaml:"port"`
	EnableReflection bool     `toml:"enable_reflection" yaml:"enable_reflection"`
	KeepaliveTime    Duration `toml:"keepalive_time" yaml:"keepalive_time"`
}

// CurrencyConfig controls how amounts are rendered
type CurrencyConfig struct {
	Locale string `toml:"locale" yaml:"locale"`
	Symbol string `toml:"symbol" yaml:"symbol"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// MarshalYAML formats the duration as a string
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, mdwerror.New(fmt.Sprintf("config file not found: %s", path)).
			WithCode(mdwerror.CodeMissingConfig).
			WithOperation("config.Load")
	}
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to read config").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	cfg, err := Parse(content, filepath.Ext(path))
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse config").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.Load").
			WithDetail("path", path)
	}
	return cfg, nil
}

// Parse decodes content in the format named by ext (".toml", ".yaml",
// ".yml"), applies defaults and validates the result
func Parse(content []byte, ext string) (*Config, error) {
	var cfg Config

	switch strings.ToLower(ext) {
	case ".toml", "":
		if _, err := toml.Decode(string(content), &cfg); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from VOZINV_CONFIG or a default
// location and returns the path it used. It fails with
// CodeMissingConfig when neither exists.
func LoadFromEnv() (*Config, string, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		path = FindDefault()
	}

	if path == "" {
		return nil, "", mdwerror.New("no config file found, set " + EnvVar + " or create configs/vozinv.toml").
			WithCode(mdwerror.CodeMissingConfig).
			WithOperation("config.LoadFromEnv")
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// FindDefault returns the first existing default config path, or ""
func FindDefault() string {
	candidates := []string{
		"./configs/vozinv.toml",
		"./configs/vozinv.yaml",
		"./vozinv.toml",
		"./vozinv.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "vozinv", "config.toml"))
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.General.Name == "" {
		c.General.Name = "vozinv"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	if c.Listener.Debounce.Duration == 0 {
		c.Listener.Debounce.Duration = 500 * time.Millisecond
	}

	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8090
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 120 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 10 * time.Second
	}
	if c.Server.PingInterval.Duration == 0 {
		c.Server.PingInterval.Duration = 30 * time.Second
	}

	if c.GRPC.Host == "" {
		c.GRPC.Host = "localhost"
	}
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 9390
	}
	if c.GRPC.KeepaliveTime.Duration == 0 {
		c.GRPC.KeepaliveTime.Duration = 2 * time.Hour
	}

	if c.Currency.Locale == "" {
		c.Currency.Locale = "es-CO"
	}
	if c.Currency.Symbol == "" {
		c.Currency.Symbol = "$"
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.Server.Host = os.ExpandEnv(c.Server.Host)
	c.GRPC.Host = os.ExpandEnv(c.GRPC.Host)
}

// Validate checks every range-limited setting. The returned error has
// CodeInvalidConfig and wraps the first failing field.
func (c *Config) Validate() error {
	result := validation.Combine(
		validation.Range("server.port", 1, 65535).Validate(c.Server.Port),
		validation.Range("grpc.port", 1, 65535).Validate(c.GRPC.Port),
		validation.Min("listener.debounce", 0).Validate(c.Listener.Debounce.Duration),
		validation.Min("listener.min_length", 0).Validate(c.Listener.MinLength),
	)
	if err := result.ToError("config.Validate"); err != nil {
		return mdwerror.Wrap(err, "invalid configuration").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.Validate")
	}
	return nil
}

// ServerAddress returns host:port of the WebSocket server
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GRPCAddress returns host:port of the gRPC server
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.GRPC.Host, c.GRPC.Port)
}
