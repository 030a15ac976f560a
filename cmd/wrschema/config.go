package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reoring/wrschema"
	"github.com/reoring/wrschema/decl"
)

// Config is read from wrschema.yaml, WRSCHEMA_* variables and flags.
type Config struct {
	Schema   string `mapstructure:"schema"`
	LogLevel string `mapstructure:"log_level"`
	Language string `mapstructure:"language"`
	Indent   bool   `mapstructure:"indent"`
}

func loadConfig(v *viper.Viper, file string) (*Config, error) {
	v.SetDefault("log_level", "warn")
	v.SetDefault("language", "en")
	v.SetDefault("indent", true)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("wrschema")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("WRSCHEMA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
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
	return &cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}

// readSchema builds a schema from a declaration file; .json files are read as
// JSON and anything else as YAML.
func readSchema(path string) (*wrschema.Schema, error) {
	if path == "" {
		return nil, errors.New("no schema given (use --schema or set schema in wrschema.yaml)")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return decl.FromJSON(b)
	}
	return decl.FromYAML(b)
}
