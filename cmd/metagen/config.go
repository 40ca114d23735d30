package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the project file read when no other is named.
const DefaultConfigFile = "metagen.yaml"

// Config is the project configuration. Values come from the project file,
// then from METAGEN_* environment variables, then from flags.
type Config struct {
	// Schema is the directory holding the declaration files.
	Schema string `yaml:"schema"`
	// Target is the output directory of generated code.
	Target string `yaml:"target"`
	// Package is the package name of generated code.
	Package string `yaml:"package,omitempty"`
	// Header overrides the generated file header.
	Header string `yaml:"header,omitempty"`
	// Workers bounds loader and generator concurrency; 0 means GOMAXPROCS.
	Workers int `yaml:"workers,omitempty"`
	// LogLevel is one of debug, info, warn and error.
	LogLevel string `yaml:"log_level,omitempty"`
	// Collect reports every violation instead of stopping at the first.
	Collect bool `yaml:"collect,omitempty"`
}

func defaultConfig() *Config {
	return &Config{
		Schema:   "schema",
		Target:   "gen",
		LogLevel: "info",
	}
}

// loadConfig reads the project file path. A missing file is only an error
// when it was named explicitly.
func loadConfig(path string, explicit bool) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.env(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// env applies METAGEN_* overrides.
func (c *Config) env() error {
	c.Schema = getEnvStr("METAGEN_SCHEMA", c.Schema)
	c.Target = getEnvStr("METAGEN_TARGET", c.Target)
	c.Package = getEnvStr("METAGEN_PACKAGE", c.Package)
	c.LogLevel = getEnvStr("METAGEN_LOG_LEVEL", c.LogLevel)
	if v := os.Getenv("METAGEN_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("METAGEN_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("METAGEN_COLLECT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("METAGEN_COLLECT: %w", err)
		}
		c.Collect = b
	}
	return nil
}

// getEnvStr returns environment variable or default
func getEnvStr(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// newLogger returns a text logger writing to w at the named level.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
