// Package config holds the configuration of the gqlengine server, read from
// a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string `yaml:"addr"`

	// Schema is the path of the SDL file to serve. An empty path serves the
	// built-in example schema.
	Schema string `yaml:"schema"`

	Limits    Limits    `yaml:"limits"`
	HTTP      HTTP      `yaml:"http"`
	Tracing   Tracing   `yaml:"tracing"`
	Log       Log       `yaml:"log"`
	Execution Execution `yaml:"execution"`
}

type Limits struct {
	MaxDepth       int `yaml:"max_depth"`
	MaxComplexity  int `yaml:"max_complexity"`
	MaxRecursion   int `yaml:"max_recursion"`
	MaxParallelism int `yaml:"max_parallelism"`
}

type HTTP struct {
	Pretty          bool          `yaml:"pretty"`
	Playground      bool          `yaml:"playground"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Tracing selects the tracer backend: "none", "opentracing", "jaeger" or
// "otel".
type Tracing struct {
	Backend     string `yaml:"backend"`
	ServiceName string `yaml:"service_name"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Execution struct {
	DisableIntrospection     bool          `yaml:"disable_introspection"`
	DocumentCacheSize        int           `yaml:"document_cache_size"`
	PersistedQueryCacheSize  int           `yaml:"persisted_query_cache_size"`
	SubscribeResolverTimeout time.Duration `yaml:"subscribe_resolver_timeout"`

	// Extensions lists the enabled request extensions: "analyzer",
	// "tracing" and "logger".
	Extensions []string `yaml:"extensions"`
}

// Default returns the configuration used for omitted settings.
func Default() *Config {
	return &Config{
		Addr: ":8080",
		Limits: Limits{
			MaxDepth:       50,
			MaxParallelism: 10,
		},
		HTTP: HTTP{
			Playground:      true,
			ShutdownTimeout: 10 * time.Second,
		},
		Tracing: Tracing{
			Backend:     "none",
			ServiceName: "gqlengine",
		},
		Log: Log{
			Level: "info",
		},
		Execution: Execution{
			DocumentCacheSize: 1000,
		},
	}
}

// Load reads the file at path over the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a YAML document over the defaults and validates the result.
// Unknown keys are errors.
func Parse(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

var (
	backends   = []string{"none", "opentracing", "jaeger", "otel"}
	levels     = []string{"debug", "info", "warn", "error"}
	extensions = []string{"analyzer", "tracing", "logger"}
)

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.Limits.MaxDepth < 0 || c.Limits.MaxComplexity < 0 || c.Limits.MaxRecursion < 0 {
		errs = append(errs, errors.New("limits must not be negative"))
	}
	if c.Limits.MaxParallelism < 1 {
		errs = append(errs, errors.New("limits.max_parallelism must be at least 1"))
	}
	if !oneOf(c.Tracing.Backend, backends) {
		errs = append(errs, fmt.Errorf("tracing.backend: unknown backend %q", c.Tracing.Backend))
	}
	if !oneOf(c.Log.Level, levels) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	for _, ext := range c.Execution.Extensions {
		if !oneOf(ext, extensions) {
			errs = append(errs, fmt.Errorf("execution.extensions: unknown extension %q", ext))
		}
	}
	if c.Execution.DocumentCacheSize < 0 || c.Execution.PersistedQueryCacheSize < 0 {
		errs = append(errs, errors.New("cache sizes must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func oneOf(s string, list []string) bool {
	for _, v := range list {
		if s == v {
			return true
		}
	}
	return false
}
