// Package config loads easybook settings from an optional YAML file and
// EASYBOOK_* environment variables through koanf.
package config

import (
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	// EnvPrefix marks the environment variables read as overrides.
	EnvPrefix = "EASYBOOK_"

	// DefaultFile is read when no config path is given and it exists.
	DefaultFile = "easybook.yaml"

	defaultDatabasePath = "easybook.db"
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
)

type Config struct {
	Database Database `json:"database" yaml:"database" koanf:"database"`
	Log      Log      `json:"log" yaml:"log" koanf:"log"`
}

type Database struct {
	Path string `json:"path" yaml:"path" koanf:"path" validate:"required"`
}

type Log struct {
	Level  string `json:"level" yaml:"level" koanf:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" koanf:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Database: Database{Path: defaultDatabasePath},
		Log:      Log{Level: defaultLogLevel, Format: defaultLogFormat},
	}
}

// Load reads path (or DefaultFile when path is empty and the file exists),
// applies EASYBOOK_* overrides and fills defaults.
func Load(path string) (*Config, error) {
	return load(path, os.Environ)
}

func load(path string, environ func() []string) (*Config, error) {
	k := koanf.New(".")

	configFile, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config %s failed", configFile)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
		EnvironFunc:   environ,
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config failed")
	}

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// resolvePath returns the file to load, or "" when there is none.
// An explicit path must exist; the default file is optional.
func resolvePath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", errors.Wrapf(err, "config file %s", path)
		}
		return path, nil
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile, nil
	}
	return "", nil
}

// envKey maps EASYBOOK_DATABASE_PATH to database.path.
func envKey(k, v string) (string, any) {
	key := strings.TrimPrefix(k, EnvPrefix)
	if key == "" {
		return "", nil
	}
	return strings.ReplaceAll(strings.ToLower(key), "_", "."), v
}
