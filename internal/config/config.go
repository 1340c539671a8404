// Package config loads the contact form server settings with Viper from a
// YAML file (.contactform.yml), CONTACTFORM_ environment variables and bound
// command-line flags, then applies defaults and validates the result.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment override, e.g. CONTACTFORM_SERVER_PORT.
const EnvPrefix = "CONTACTFORM"

// Sink names accepted by form.sink.
const (
	SinkLog  = "log"
	SinkEcho = "echo"
	SinkNone = "none"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Form   FormConfig   `mapstructure:"form"`
	Theme  ThemeConfig  `mapstructure:"theme"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	// AllowedOrigins are host patterns accepted for cross-origin websocket
	// connections. Same-origin connections are always accepted.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	LiveValidation bool     `mapstructure:"live_validation"`
	CSRFCookie     string   `mapstructure:"csrf_cookie"`
	SecureCookies  bool     `mapstructure:"secure_cookies"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type FormConfig struct {
	// Definition is a YAML or JSON form definition. Empty uses the bundled
	// contact form.
	Definition string `mapstructure:"definition"`

	// Preset is a YAML copy override (labels, placeholders, messages).
	Preset string `mapstructure:"preset"`

	TemplatesDir   string `mapstructure:"templates_dir"`
	WatchTemplates bool   `mapstructure:"watch_templates"`
	Sink           string `mapstructure:"sink"`
}

type ThemeConfig struct {
	Manifest string `mapstructure:"manifest"`
	Variant  string `mapstructure:"variant"`
}

// Addr is the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_header_timeout", 5*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.live_validation", true)
	v.SetDefault("server.csrf_cookie", "contactform_csrf")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("form.sink", SinkLog)
	v.SetDefault("form.watch_templates", false)
}

// Default returns the configuration produced by SetDefaults alone.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		panic(fmt.Sprintf("config: defaults do not validate: %v", err))
	}
	return *cfg
}

// New returns a Viper instance with defaults and environment binding in
// place. configFile, when set, is read; otherwise .contactform.yml is looked
// up in the working directory and its absence is not an error.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".contactform")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	return v, nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, errors.New("config: viper instance is nil")
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	cfg.Form.Sink = strings.ToLower(strings.TrimSpace(cfg.Form.Sink))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Log.validate(); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	if err := c.Form.validate(); err != nil {
		return fmt.Errorf("form config: %w", err)
	}
	if c.Theme.Variant != "" && c.Theme.Manifest == "" {
		return errors.New("theme config: variant set without a manifest")
	}
	return nil
}

func (s ServerConfig) validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port %d out of range", s.Port)
	}
	if strings.ContainsAny(s.Host, " /") {
		return fmt.Errorf("invalid host %q", s.Host)
	}
	if s.ReadHeaderTimeout <= 0 {
		return errors.New("read_header_timeout must be positive")
	}
	if s.ShutdownTimeout <= 0 {
		return errors.New("shutdown_timeout must be positive")
	}
	if strings.TrimSpace(s.CSRFCookie) == "" {
		return errors.New("csrf_cookie is required")
	}
	return nil
}

func (l LogConfig) validate() error {
	if _, err := zapcore.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("level: %w", err)
	}
	switch l.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("unknown format %q", l.Format)
	}
}

func (f FormConfig) validate() error {
	switch f.Sink {
	case SinkLog, SinkEcho, SinkNone:
	default:
		return fmt.Errorf("unknown sink %q", f.Sink)
	}
	if f.WatchTemplates && f.TemplatesDir == "" {
		return errors.New("watch_templates requires templates_dir")
	}
	return nil
}
