package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// FileName is the base name of the configuration file, without extension.
const FileName = "vbxproj"

// Config represents the vbxproj configuration
type Config struct {
	// Project is the path of the .vproj manifest.
	Project string      `mapstructure:"project"`
	Catalog string      `mapstructure:"catalog"`
	Schema  string      `mapstructure:"schema"`
	Log     LogConfig   `mapstructure:"log"`
	Load    LoadConfig  `mapstructure:"load"`
	Watch   WatchConfig `mapstructure:"watch"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	// Development switches to the human readable console encoder.
	Development bool `mapstructure:"development"`
}

// LoadConfig holds the policies applied when a project is read into the
// catalog.
type LoadConfig struct {
	Overwrite    bool `mapstructure:"overwrite"`
	AdoptMissing bool `mapstructure:"adopt_missing"`
}

// WatchConfig represents watch command configuration
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Load reads vbxproj.yml (or .yaml) from dir. Missing files fall back to the
// defaults and every key can be overridden with a VBXPROJ_ variable, e.g.
// VBXPROJ_LOAD_OVERWRITE=true.
func Load(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("project", "project.vproj")
	v.SetDefault("catalog", "vbxproj.db")
	v.SetDefault("schema", "schema.yml")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", true)
	v.SetDefault("load.overwrite", false)
	v.SetDefault("load.adopt_missing", false)
	v.SetDefault("watch.debounce", "100ms")

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("VBXPROJ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	cfg.resolve(dir)
	return &cfg, nil
}

// resolve makes relative paths relative to the config directory.
func (c *Config) resolve(dir string) {
	for _, p := range []*string{&c.Project, &c.Catalog, &c.Schema} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Level returns the configured log level.
func (c *Config) Level() zapcore.Level {
	var lvl zapcore.Level
	// validated by Load
	_ = lvl.UnmarshalText([]byte(c.Log.Level))
	return lvl
}

// FindRoot walks up from dir to the first directory containing a
// vbxproj.yml or vbxproj.yaml file.
func FindRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		for _, ext := range []string{".yml", ".yaml"} {
			if _, err := os.Stat(filepath.Join(dir, FileName+ext)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a vbxproj workspace (no %s.yml found)", FileName)
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if cfg.Project != "" && filepath.Ext(cfg.Project) != ".vproj" {
		return fmt.Errorf("project must name a .vproj file, got: %s", cfg.Project)
	}
	if cfg.Catalog == "" {
		return fmt.Errorf("catalog must not be empty")
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got: %s", cfg.Watch.Debounce)
	}
	return nil
}
