package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"hostspin/pkg/hosts"
	"hostspin/pkg/probe"
)

// Config holds the application configuration.
type Config struct {
	HostsPath         string `toml:"hosts_path"`         // Path to the hosts file
	ServerAddr        string `toml:"server_addr"`        // Address for the HTTP server
	HistoryPath       string `toml:"history_path"`       // BadgerDB directory for the update journal; empty disables it
	CacheSize         int    `toml:"cache_size"`         // Entries in the resolver cache
	PreserveAliases   bool   `toml:"preserve_aliases"`   // Keep trailing aliases when rewriting a record
	StructuredRewrite bool   `toml:"structured_rewrite"` // Replace only the URL host when resolving URLs
	ProbeAddr         string `toml:"probe_addr"`         // Listen address checked by the socket probe
	LogLevel          string `toml:"log_level"`          // debug, info, warn or error
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		HostsPath:  hosts.DefaultPath(),
		ServerAddr: "127.0.0.1:8080",
		CacheSize:  4096,
		ProbeAddr:  probe.DefaultAddr,
		LogLevel:   "info",
	}
}

// Load builds the configuration from defaults, then the TOML file at path
// (or $HOSTSPIN_CONFIG), then the environment.
func Load(path string, log *slog.Logger) (Config, error) {
	if log == nil {
		log = slog.Default()
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("HOSTSPIN_CONFIG")
	}

	if path != "" {
		log.Debug("loading config file", "path", path)
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "configuration validation failed")
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.HostsPath, validation.Required),
		validation.Field(&c.ServerAddr, validation.Required),
		validation.Field(&c.CacheSize, validation.Required, validation.Min(1)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
}

// Level maps LogLevel to a slog level.
func (c Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}

	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setBool := func(key string, dst *bool) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s=%q", key, v)
		}
		*dst = b
		return nil
	}

	setString("HOSTS_PATH", &cfg.HostsPath)
	setString("SERVER_ADDR", &cfg.ServerAddr)
	setString("HISTORY_PATH", &cfg.HistoryPath)
	setString("PROBE_ADDR", &cfg.ProbeAddr)

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if v := os.Getenv("CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid CACHE_SIZE=%q", v)
		}
		cfg.CacheSize = n
	}

	if err := setBool("PRESERVE_ALIASES", &cfg.PreserveAliases); err != nil {
		return err
	}

	return setBool("STRUCTURED_REWRITE", &cfg.StructuredRewrite)
}
