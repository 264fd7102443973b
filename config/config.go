package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Debug    DebugConfig    `mapstructure:"debug"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	SecureCookies   bool          `mapstructure:"secure_cookies"`
	SessionLifetime time.Duration `mapstructure:"session_lifetime"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// DebugConfig controls the debug bar and its query log.
type DebugConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Editor  string `mapstructure:"editor"`
	// Frames whose function or file starts with one of these prefixes are
	// never reported as the source of a query, unless allowed below.
	SkipPrefixes  []string `mapstructure:"skip_prefixes"`
	AllowPrefixes []string `mapstructure:"allow_prefixes"`
}

// AuthConfig holds OpenID Connect settings. When disabled every request
// runs as DevUser with DevRoles.
type AuthConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Issuer       string   `mapstructure:"issuer"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	CallbackURL  string   `mapstructure:"callback_url"`
	RolesClaim   string   `mapstructure:"roles_claim"`
	DevUser      string   `mapstructure:"dev_user"`
	DevRoles     []string `mapstructure:"dev_roles"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads configuration from .env files, an optional config file and the
// environment. Env var overrides use prefix INKWELL_ (INKWELL_SERVER_ADDR).
// configFile falls back to INKWELL_CONFIG; without either, ./inkwell.yaml is
// read when present.
func Load(configFile string, envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	v := viper.New()

	// default values
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("server.session_lifetime", time.Hour)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.path", "inkwell.db")
	v.SetDefault("debug.enabled", false)
	v.SetDefault("debug.editor", "editor://open/?file=%file&line=%line")
	v.SetDefault("debug.skip_prefixes", []string{})
	v.SetDefault("debug.allow_prefixes", []string{})
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.client_id", "")
	v.SetDefault("auth.client_secret", "")
	v.SetDefault("auth.callback_url", "http://localhost:8080/callback")
	v.SetDefault("auth.roles_claim", "roles")
	v.SetDefault("auth.dev_user", "dev@localhost")
	v.SetDefault("auth.dev_roles", []string{"editor"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	if configFile == "" {
		configFile = os.Getenv("INKWELL_CONFIG")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("inkwell")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("INKWELL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks settings that have no usable zero value.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Auth.Enabled {
		if c.Auth.Issuer == "" {
			errs = append(errs, errors.New("auth.issuer is required when auth is enabled"))
		}
		if c.Auth.ClientID == "" {
			errs = append(errs, errors.New("auth.client_id is required when auth is enabled"))
		}
	} else if c.Auth.DevUser == "" {
		errs = append(errs, errors.New("auth.dev_user is required when auth is disabled"))
	}
	return errors.Join(errs...)
}
