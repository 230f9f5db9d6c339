package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactor/internal/errors"
)

const (
	// JSONFileName is the JSON configuration file name.
	JSONFileName = "reactor.json"

	// YAMLFileName is the YAML configuration file name.
	YAMLFileName = "reactor.yaml"

	// DefaultMaxUpdateCount bounds how often one watcher may run per flush.
	DefaultMaxUpdateCount = 100

	// DefaultMetricsAddr is where `reactor demo --serve` listens.
	DefaultMetricsAddr = "localhost:9090"

	// DefaultNamespace is the Prometheus namespace.
	DefaultNamespace = "reactor"

	// DefaultDemoItems is the size of the demo todo list.
	DefaultDemoItems = 5
)

// FileNames lists the configuration files LoadFromDir looks for, in
// order.
var FileNames = []string{JSONFileName, YAMLFileName, "reactor.yml"}

// Config is the reactor configuration file.
type Config struct {
	// MaxUpdateCount bounds re-runs of one watcher within a flush.
	MaxUpdateCount int `json:"maxUpdateCount,omitempty" yaml:"maxUpdateCount,omitempty"`

	// Log configures logging.
	Log LogConfig `json:"log" yaml:"log"`

	// Metrics configures Prometheus collection.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Tracing configures OpenTelemetry flush spans.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// Demo configures `reactor demo`.
	Demo DemoConfig `json:"demo" yaml:"demo"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is "console" or "json".
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig configures Prometheus collection.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	// Addr is the listen address for the metrics endpoint.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// TracingConfig configures OpenTelemetry flush spans.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// DemoConfig configures `reactor demo`.
type DemoConfig struct {
	// Items is the number of todos the demo starts with.
	Items int `json:"items,omitempty" yaml:"items,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadFromDir loads the first configuration file from FileNames found
// in dir.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return Load(path)
		}
	}
	return nil, errors.New(errors.CodeConfigMissing).
		WithDetail("No " + strings.Join(FileNames, ", ") + " found in " + dir).
		WithSuggestion("Run 'reactor config init' to write the defaults")
}

// Load reads configuration from path. Files ending in .yaml or .yml
// are parsed as YAML, everything else as JSON.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigMissing).
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New(errors.CodeConfigRead).Wrap(err)
	}

	cfg := &Config{}
	if isYAML(path) {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return nil, errors.New(errors.CodeConfigParse).
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid YAML")
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, errors.New(errors.CodeConfigParse).
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path in the format its extension
// selects.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.CodeConfigWrite).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigWrite).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.MaxUpdateCount == 0 {
		c.MaxUpdateCount = DefaultMaxUpdateCount
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = DefaultMetricsAddr
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "reactor"
	}
	if c.Demo.Items == 0 {
		c.Demo.Items = DefaultDemoItems
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxUpdateCount < 1 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("maxUpdateCount must be at least 1, got " + strconv.Itoa(c.MaxUpdateCount))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("log.level must be one of debug, info, warn, error, got " + strconv.Quote(c.Log.Level))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("log.format must be console or json, got " + strconv.Quote(c.Log.Format))
	}
	if c.Demo.Items < 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("demo.items cannot be negative")
	}
	return nil
}

// FindConfig walks up from startDir to the first directory holding a
// configuration file and returns that file's path.
func FindConfig(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range FileNames {
			if path := filepath.Join(dir, name); fileExists(path) {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeConfigMissing).
				WithDetail("No configuration file found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
