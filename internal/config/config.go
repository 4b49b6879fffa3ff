package config

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/vango-dev/statetrack/internal/errors"
	"github.com/vango-dev/statetrack/pkg/reactive"
)

const (
	// ConfigName is the base name of the configuration file.
	ConfigName = "statetrack"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = ConfigName + ".json"

	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "STATETRACK"

	// DefaultInspectAddr is the default inspector listen address.
	DefaultInspectAddr = "localhost:7070"

	// DefaultNamespace is the default metrics namespace and tracer name.
	DefaultNamespace = "statetrack"
)

// Config is the complete statetrack configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log" json:"log"`
	Tracker TrackerConfig `mapstructure:"tracker" json:"tracker"`
	Metrics MetricsConfig `mapstructure:"metrics" json:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing" json:"tracing"`
	Inspect InspectConfig `mapstructure:"inspect" json:"inspect"`

	// configPath is the file the config was read from, if any.
	configPath string
}

// LogConfig controls the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `mapstructure:"level" json:"level"`

	// Format is text or json.
	Format string `mapstructure:"format" json:"format"`
}

// TrackerConfig maps to reactive.Option values.
type TrackerConfig struct {
	// MaxCascade bounds recomputations of one selector per flush.
	MaxCascade int `mapstructure:"max_cascade" json:"max_cascade"`

	// CascadeMode is throttle or panic.
	CascadeMode string `mapstructure:"cascade_mode" json:"cascade_mode"`
}

// MetricsConfig controls the Prometheus hooks.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled" json:"enabled"`
	Namespace string `mapstructure:"namespace" json:"namespace"`
}

// TracingConfig controls the OpenTelemetry hooks.
type TracingConfig struct {
	Enabled    bool   `mapstructure:"enabled" json:"enabled"`
	TracerName string `mapstructure:"tracer_name" json:"tracer_name"`
}

// InspectConfig controls the inspector HTTP server.
type InspectConfig struct {
	Addr string `mapstructure:"addr" json:"addr"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Tracker: TrackerConfig{
			MaxCascade:  reactive.DefaultMaxCascade,
			CascadeMode: reactive.CascadeThrottle.String(),
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultNamespace,
		},
		Inspect: InspectConfig{
			Addr: DefaultInspectAddr,
		},
	}
}

// newViper returns a viper instance with defaults and environment
// overrides wired.
func newViper() *viper.Viper {
	v := viper.New()

	d := New()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("tracker.max_cascade", d.Tracker.MaxCascade)
	v.SetDefault("tracker.cascade_mode", d.Tracker.CascadeMode)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.tracer_name", d.Tracing.TracerName)
	v.SetDefault("inspect.addr", d.Inspect.Addr)

	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads configuration. With an empty path it looks for statetrack.json
// in the working directory and falls back to defaults when there is none;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(ConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, errors.New("ST011").
				Wrap(err).
				WithDetail(err.Error()).
				WithSuggestion("Check that " + ConfigFileName + " exists and is valid JSON")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("ST010").Wrap(err).WithDetail(err.Error())
	}
	cfg.configPath = v.ConfigFileUsed()
	return cfg, nil
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.configPath
}

// SaveTo writes the configuration as JSON to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New("ST011").Wrap(err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.Set("log.level", c.Log.Level)
	v.Set("log.format", c.Log.Format)
	v.Set("tracker.max_cascade", c.Tracker.MaxCascade)
	v.Set("tracker.cascade_mode", c.Tracker.CascadeMode)
	v.Set("metrics.enabled", c.Metrics.Enabled)
	v.Set("metrics.namespace", c.Metrics.Namespace)
	v.Set("tracing.enabled", c.Tracing.Enabled)
	v.Set("tracing.tracer_name", c.Tracing.TracerName)
	v.Set("inspect.addr", c.Inspect.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return errors.New("ST011").Wrap(err).WithDetail("write " + path)
	}
	c.configPath = path
	return nil
}

// Validate checks every value and returns the first problem as an ST010
// error.
func (c *Config) Validate() error {
	if _, err := c.level(); err != nil {
		return invalid("log.level", c.Log.Level, "Use debug, info, warn or error")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return invalid("log.format", c.Log.Format, "Use text or json")
	}
	if c.Tracker.MaxCascade < 1 {
		return invalid("tracker.max_cascade", c.Tracker.MaxCascade, "Must be at least 1")
	}
	if _, err := reactive.ParseCascadeMode(c.Tracker.CascadeMode); err != nil {
		return invalid("tracker.cascade_mode", c.Tracker.CascadeMode, "Use throttle or panic")
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return invalid("metrics.namespace", c.Metrics.Namespace, "Set a namespace or disable metrics")
	}
	if c.Tracing.Enabled && c.Tracing.TracerName == "" {
		return invalid("tracing.tracer_name", c.Tracing.TracerName, "Set a tracer name or disable tracing")
	}
	if c.Inspect.Addr == "" {
		return invalid("inspect.addr", c.Inspect.Addr, "Use host:port, e.g. "+DefaultInspectAddr)
	}
	return nil
}

func invalid(key string, value any, suggestion string) error {
	return errors.New("ST010").
		WithDetail(fmt.Sprintf("%s = %v", key, value)).
		WithSuggestion(suggestion)
}

func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.Log.Level))
	return l, err
}

// Logger builds the slog logger described by the log section. Invalid
// values fall back to info level and the text format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// TrackerOptions maps the tracker section to reactive options. logger may
// be nil.
func (c *Config) TrackerOptions(logger *slog.Logger) []reactive.Option {
	mode, _ := reactive.ParseCascadeMode(c.Tracker.CascadeMode)
	opts := []reactive.Option{
		reactive.WithMaxCascade(c.Tracker.MaxCascade),
		reactive.WithCascadeMode(mode),
	}
	if logger != nil {
		opts = append(opts, reactive.WithLogger(logger))
	}
	return opts
}
