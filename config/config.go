package config

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type LogFormat string

const (
	TextFormat LogFormat = "text"
	JSONFormat LogFormat = "json"
)

type (
	Config struct {
		Pool    Pool    `yaml:"pool"`
		Log     Log     `yaml:"log"`
		Metrics Metrics `yaml:"metrics"`
	}

	Pool struct {
		Name                string `yaml:"name"`
		Workers             int    `yaml:"workers"`
		WaitForPendingTasks bool   `yaml:"wait_for_pending_tasks"`
	}

	Log struct {
		Level  string    `yaml:"level"`
		Format LogFormat `yaml:"format"`
	}

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	}
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Pool: Pool{
			Name:                "threadpool",
			Workers:             runtime.NumCPU(),
			WaitForPendingTasks: true,
		},
		Log: Log{
			Level:  "info",
			Format: TextFormat,
		},
		Metrics: Metrics{
			Enabled: true,
			Addr:    ":2112",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Pool.Workers <= 0 {
		return errors.Errorf("pool.workers must be positive, got %d", c.Pool.Workers)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	switch c.Log.Format {
	case TextFormat, JSONFormat:
	default:
		return errors.Errorf("log.format must be %q or %q, got %q", TextFormat, JSONFormat, c.Log.Format)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.New("metrics.addr is required when metrics are enabled")
	}
	return nil
}

// NewLogger builds a logger from the log section. Validate first.
func (l Log) NewLogger() *logrus.Logger {
	logger := logrus.New()
	l.Apply(logger)
	return logger
}

// Apply sets level and formatter on an existing logger.
func (l Log) Apply(logger *logrus.Logger) {
	if level, err := logrus.ParseLevel(l.Level); err == nil {
		logger.SetLevel(level)
	}
	if l.Format == JSONFormat {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
