package config

import (
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vango-dev/vrt/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vrt.json"

	// DefaultPort is the default preview server port.
	DefaultPort = 3000

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultRecursionLimit is the default number of times one job may run
	// within a single scheduler flush.
	DefaultRecursionLimit = 100

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "vrt"

	// DefaultMetricsPath is the default metrics endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultSnapshotDir is the default snapshot output directory.
	DefaultSnapshotDir = "snapshots"
)

// Config represents the complete vrt.json configuration.
type Config struct {
	// Debug enables debug logging and development warnings.
	Debug bool `json:"debug,omitempty"`

	// Log contains logger configuration.
	Log LogConfig `json:"log,omitempty"`

	// Scheduler contains job queue configuration.
	Scheduler SchedulerConfig `json:"scheduler,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Preview contains live preview server configuration.
	Preview PreviewConfig `json:"preview,omitempty"`

	// Snapshot contains HTML snapshot export configuration.
	Snapshot SnapshotConfig `json:"snapshot,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default: info).
	Level string `json:"level,omitempty"`

	// Format is text or json (default: text).
	Format string `json:"format,omitempty"`
}

// SchedulerConfig contains job queue settings.
type SchedulerConfig struct {
	// RecursionLimit bounds how often one job may run in a single flush.
	RecursionLimit int `json:"recursion_limit,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes metrics on the preview server.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty"`

	// Path is the HTTP path of the metrics endpoint.
	Path string `json:"path,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled installs an SDK tracer provider that logs spans.
	Enabled bool `json:"enabled,omitempty"`

	// TracerName names the tracer (default: "vrt").
	TracerName string `json:"tracer_name,omitempty"`
}

// PreviewConfig contains live preview server settings.
type PreviewConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`
}

// SnapshotConfig contains snapshot export settings. When Bucket is set
// snapshots go to S3, otherwise to Dir.
type SnapshotConfig struct {
	Dir    string `json:"dir,omitempty"`
	Bucket string `json:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty"`
	Region string `json:"region,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Scheduler: SchedulerConfig{
			RecursionLimit: DefaultRecursionLimit,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
			Path:      DefaultMetricsPath,
		},
		Tracing: TracingConfig{
			TracerName: "vrt",
		},
		Preview: PreviewConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Snapshot: SnapshotConfig{
			Dir: DefaultSnapshotDir,
		},
	}
}

// Load looks for vrt.json in dir and its parents. Without a file it
// returns the defaults.
func Load(dir string) (*Config, error) {
	root, err := FindProjectRoot(dir)
	if err != nil {
		return New(), nil
	}
	return LoadFile(filepath.Join(root, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E121").
				WithDetail("No vrt.json found in " + filepath.Dir(path)).
				WithSuggestion("Create vrt.json or run without a config file to use defaults")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse vrt.json: " + err.Error()).
			WithSuggestion("Check that vrt.json is valid JSON")
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

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Scheduler.RecursionLimit == 0 {
		c.Scheduler.RecursionLimit = DefaultRecursionLimit
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "vrt"
	}
	if c.Preview.Host == "" {
		c.Preview.Host = DefaultHost
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = DefaultPort
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = DefaultSnapshotDir
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return errors.New("E122").
			WithDetailf("Port must be between 0 and 65535, got %d", c.Preview.Port)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return errors.New("E120").
			WithDetailf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Scheduler.RecursionLimit < 0 {
		return errors.New("E120").
			WithDetail("scheduler.recursion_limit must not be negative")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("E120").
			WithDetailf("metrics.path must start with /, got %q", c.Metrics.Path)
	}
	if c.Snapshot.Bucket != "" && c.Snapshot.Region == "" {
		return errors.New("E121").
			WithDetail("snapshot.region is required when snapshot.bucket is set")
	}
	return nil
}

// SlogLevel parses Log.Level. Debug forces the debug level.
func (c *Config) SlogLevel() (slog.Level, error) {
	if c.Debug {
		return slog.LevelDebug, nil
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, errors.New("E123").
		WithDetailf("Unknown log level %q", c.Log.Level).
		WithSuggestion("Use one of debug, info, warn, error")
}

// PreviewAddress returns the listen address of the preview server.
func (c *Config) PreviewAddress() string {
	return net.JoinHostPort(c.Preview.Host, strconv.Itoa(c.Preview.Port))
}

// PreviewURL returns the full URL of the preview server.
func (c *Config) PreviewURL() string {
	return "http://" + c.PreviewAddress()
}

// SnapshotPath returns the absolute path to the snapshot directory.
func (c *Config) SnapshotPath() string {
	if filepath.IsAbs(c.Snapshot.Dir) {
		return c.Snapshot.Dir
	}
	return filepath.Join(c.Dir(), c.Snapshot.Dir)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing vrt.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E121").
				WithDetail("No vrt.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
