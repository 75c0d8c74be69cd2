package config

import (
	"os"
	"path/filepath"
	"time"

	"codeberg.org/mutker/gamectl/internal/errors"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	defaultAdapterTimeoutMS = 2000
	configFileName          = "gamectl"
	configFileType          = "toml"
	envConfigPath           = "GAMECTL_CONFIG"
)

type Config struct {
	ProfileDir       string `mapstructure:"profile_dir"`
	HistoryDB        string `mapstructure:"history_db"`
	History          bool   `mapstructure:"history"`
	AdapterTimeoutMS int    `mapstructure:"adapter_timeout_ms"`
	LogLevel         string `mapstructure:"log_level"`
	Debug            bool   `mapstructure:"debug"`
	Verbose          bool   `mapstructure:"verbose"`
}

// AdapterTimeout bounds every call into the compositor adapter and the
// GPU power profile switch. A timeout is non-fatal for the session.
func (c *Config) AdapterTimeout() time.Duration {
	if c.AdapterTimeoutMS <= 0 {
		return defaultAdapterTimeoutMS * time.Millisecond
	}

	return time.Duration(c.AdapterTimeoutMS) * time.Millisecond
}

// Option overrides a config value after file loading, typically from flags
type Option func(*viper.Viper)

// WithSet forces a single key to a value, taking precedence over the file
func WithSet(key string, value any) Option {
	return func(v *viper.Viper) {
		v.Set(key, value)
	}
}

func Load(opts ...Option) (*Config, error) {
	errFactory := errors.New()
	v := viper.New()

	setDefaults(v)

	if path := os.Getenv(envConfigPath); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "gamectl"))
		}
		v.AddConfigPath("/etc/gamectl")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	for _, opt := range opts {
		opt(v)
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	if !isValidLogLevel(config.LogLevel) {
		return nil, errFactory.WithData(errors.ErrInvalidLogLevel, config.LogLevel)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(os.Getenv("HOME"), ".local", "share")
	}

	v.SetDefault("profile_dir", filepath.Join(configDir, "gamectl", "profiles"))
	v.SetDefault("history_db", filepath.Join(dataDir, "gamectl", "history.db"))
	v.SetDefault("history", false)
	v.SetDefault("adapter_timeout_ms", defaultAdapterTimeoutMS)
	v.SetDefault("log_level", DefaultLogLevel)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warning", "error":
		return true
	default:
		return false
	}
}
