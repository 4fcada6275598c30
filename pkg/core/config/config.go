package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/joeshaw/envdecode"

	"github.com/msto63/nic/pkg/core/logging"
	"github.com/msto63/nic/pkg/nic/scanner"
)

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general"`
	Parsing ParsingConfig `toml:"parsing"`
	Catalog CatalogConfig `toml:"catalog"`
	Gateway GatewayConfig `toml:"gateway"`
	Audit   AuditConfig   `toml:"audit"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name"`
	Environment string `toml:"environment"`
	DataDir     string `toml:"data_dir"`
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
}

// ParsingConfig holds scanner and dispatcher settings
type ParsingConfig struct {
	Prefixes            []string `toml:"prefixes"`
	ChainLexeme         string   `toml:"chain_lexeme"`
	DelimitWordsOnChain bool     `toml:"delimit_words_on_chain"`
	MaxMessageLength    int      `toml:"max_message_length"`
	MaxChainLength      int      `toml:"max_chain_length"`
	CaseSensitive       bool     `toml:"case_sensitive"`
	DisableHelp         bool     `toml:"disable_help"`
	Cooldown            Duration `toml:"cooldown"` // Per author and command, zero disables
}

// CatalogConfig holds command catalog settings
type CatalogConfig struct {
	Path     string   `toml:"path"`
	Watch    bool     `toml:"watch"`
	Debounce Duration `toml:"debounce"`
}

// GatewayConfig holds WebSocket gateway settings
type GatewayConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	ReadTimeout    Duration `toml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout"`
	IdleTimeout    Duration `toml:"idle_timeout"`
	PingInterval   Duration `toml:"ping_interval"`
	MaxFrameSize   int64    `toml:"max_frame_size"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// AuditConfig holds invocation audit settings
type AuditConfig struct {
	Enabled       bool   `toml:"enabled"`
	Path          string `toml:"path"`
	RetentionDays int    `toml:"retention_days"`
}

// Duration wraps time.Duration for TOML parsing
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

// envOverrides lists the environment variables that take precedence over
// the configuration file.
type envOverrides struct {
	Prefixes    string `env:"NIC_PREFIXES"` // comma separated
	ChainLexeme string `env:"NIC_CHAIN_LEXEME"`
	LogLevel    string `env:"NIC_LOG_LEVEL"`
	LogFormat   string `env:"NIC_LOG_FORMAT"`
	CatalogPath string `env:"NIC_CATALOG_PATH"`
	GatewayHost string `env:"NIC_GATEWAY_HOST"`
	GatewayPort int    `env:"NIC_GATEWAY_PORT"`
	AuditPath   string `env:"NIC_AUDIT_PATH"`
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file. Environment overrides are
// applied on top of the file.
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return finish(&cfg)
}

// LoadFromEnv loads configuration from the NIC_CONFIG environment variable
// or one of the default locations. Without a config file the defaults are
// used.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("NIC_CONFIG")
	if path == "" {
		defaultPaths := []string{
			"./configs/nic.toml",
			"./nic.toml",
			filepath.Join(os.Getenv("HOME"), ".config/nic/nic.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return finish(&Config{})
	}

	return Load(path)
}

func finish(cfg *Config) (*Config, error) {
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "nic"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "json"
	}

	// Parsing
	if len(c.Parsing.Prefixes) == 0 {
		c.Parsing.Prefixes = []string{"!"}
	}
	if c.Parsing.ChainLexeme == "" {
		c.Parsing.ChainLexeme = ">"
	}
	if c.Parsing.MaxMessageLength == 0 {
		c.Parsing.MaxMessageLength = 2000
	}
	if c.Parsing.MaxChainLength == 0 {
		c.Parsing.MaxChainLength = 10
	}

	// Catalog
	if c.Catalog.Path == "" {
		c.Catalog.Path = "./configs/commands.yaml"
	}
	if c.Catalog.Debounce.Duration == 0 {
		c.Catalog.Debounce.Duration = 250 * time.Millisecond
	}

	// Gateway
	if c.Gateway.Host == "" {
		c.Gateway.Host = "0.0.0.0"
	}
	if c.Gateway.Port == 0 {
		c.Gateway.Port = 8420
	}
	if c.Gateway.ReadTimeout.Duration == 0 {
		c.Gateway.ReadTimeout.Duration = 60 * time.Second
	}
	if c.Gateway.WriteTimeout.Duration == 0 {
		c.Gateway.WriteTimeout.Duration = 10 * time.Second
	}
	if c.Gateway.IdleTimeout.Duration == 0 {
		c.Gateway.IdleTimeout.Duration = 120 * time.Second
	}
	if c.Gateway.PingInterval.Duration == 0 {
		c.Gateway.PingInterval.Duration = 30 * time.Second
	}
	if c.Gateway.MaxFrameSize == 0 {
		c.Gateway.MaxFrameSize = 64 * 1024
	}

	// Audit
	if c.Audit.Path == "" {
		c.Audit.Path = filepath.Join(c.General.DataDir, "audit.db")
	}
	if c.Audit.RetentionDays == 0 {
		c.Audit.RetentionDays = 30
	}
}

// applyEnv copies set NIC_* variables over the file values
func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envdecode.Decode(&env); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if env.Prefixes != "" {
		var prefixes []string
		for _, p := range strings.Split(env.Prefixes, ",") {
			if p = strings.TrimSpace(p); p != "" {
				prefixes = append(prefixes, p)
			}
		}
		c.Parsing.Prefixes = prefixes
	}
	if env.ChainLexeme != "" {
		c.Parsing.ChainLexeme = env.ChainLexeme
	}
	if env.LogLevel != "" {
		c.General.LogLevel = env.LogLevel
	}
	if env.LogFormat != "" {
		c.General.LogFormat = env.LogFormat
	}
	if env.CatalogPath != "" {
		c.Catalog.Path = env.CatalogPath
	}
	if env.GatewayHost != "" {
		c.Gateway.Host = env.GatewayHost
	}
	if env.GatewayPort != 0 {
		c.Gateway.Port = env.GatewayPort
	}
	if env.AuditPath != "" {
		c.Audit.Path = env.AuditPath
	}
	return nil
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.Catalog.Path = os.ExpandEnv(c.Catalog.Path)
	c.Audit.Path = os.ExpandEnv(c.Audit.Path)
}

// Validate checks the configuration for values the services cannot run with
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.General.LogLevel); err != nil {
		return fmt.Errorf("general.log_level: %w", err)
	}
	switch c.General.LogFormat {
	case "json", "text", "console":
	default:
		return fmt.Errorf("general.log_format: unknown format %q", c.General.LogFormat)
	}

	if utf8.RuneCountInString(c.Parsing.ChainLexeme) != 1 {
		return fmt.Errorf("parsing.chain_lexeme: must be a single character, got %q", c.Parsing.ChainLexeme)
	}
	if err := c.ParsingOptions().Validate(); err != nil {
		return fmt.Errorf("parsing: %w", err)
	}
	if c.Parsing.Cooldown.Duration < 0 {
		return errors.New("parsing.cooldown: must not be negative")
	}

	if c.Gateway.Port < 1 || c.Gateway.Port > 65535 {
		return fmt.Errorf("gateway.port: %d out of range", c.Gateway.Port)
	}
	if c.Audit.RetentionDays < 0 {
		return errors.New("audit.retention_days: must not be negative")
	}
	return nil
}

// ParsingOptions converts the parsing section into scanner options
func (c *Config) ParsingOptions() scanner.Options {
	lexeme, _ := utf8.DecodeRuneInString(c.Parsing.ChainLexeme)
	if lexeme == utf8.RuneError {
		lexeme = 0
	}

	prefixes := make([]string, len(c.Parsing.Prefixes))
	copy(prefixes, c.Parsing.Prefixes)

	return scanner.Options{
		Prefixes:            prefixes,
		ChainLexeme:         lexeme,
		DelimitWordsOnChain: c.Parsing.DelimitWordsOnChain,
	}
}

// GatewayAddress returns the listen address of the gateway
func (c *Config) GatewayAddress() string {
	return fmt.Sprintf("%s:%d", c.Gateway.Host, c.Gateway.Port)
}

// LoggerConfig returns the logger configuration for a service
func (c *Config) LoggerConfig(service string) logging.LoggerConfig {
	cfg := logging.DefaultLoggerConfig(service)
	cfg.Level = c.General.LogLevel
	cfg.Format = c.General.LogFormat
	return cfg
}
