package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server ServerConfig
	Log    LogConfig
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	// Addr is the TCP address to listen on.
	Addr string

	// Base is the path prefix the application is served under.
	Base string

	// PublicURL is the absolute URL of Base. The sitemap is served only when it is set.
	PublicURL string `mapstructure:"public_url"`

	// AssetsDir serves static files from disk instead of the embedded ones.
	AssetsDir string `mapstructure:"assets_dir"`

	// Debug shows error details on error pages.
	Debug bool
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string

	// Format is one of text, json or auto (text on a terminal, json otherwise).
	Format string
}

// Load reads configuration from the TOML file at path (optional) and the environment.
// Env var overrides use prefix GANGGAMES_, e.g. GANGGAMES_SERVER_ADDR.
func Load(path string) (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base", "")
	v.SetDefault("server.public_url", "")
	v.SetDefault("server.assets_dir", "")
	v.SetDefault("server.debug", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")

	v.SetConfigType("toml")

	v.SetEnvPrefix("GANGGAMES")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
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

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q: must be debug, info, warn or error", c.Log.Level)
	}
	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: must be auto, text or json", c.Log.Format)
	}
	if c.Server.Base != "" && !strings.HasPrefix(c.Server.Base, "/") {
		return fmt.Errorf("invalid server.base %q: must start with a slash", c.Server.Base)
	}
	if c.Server.PublicURL != "" {
		if u, err := url.Parse(c.Server.PublicURL); err != nil || !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("invalid server.public_url %q: must be an absolute URL", c.Server.PublicURL)
		}
	}
	return nil
}
