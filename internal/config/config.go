package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override, e.g.
// TABLEGRID_ANALYSIS_SPLIT_THRESHOLD.
const EnvPrefix = "TABLEGRID"

// Config holds the whole tablegrid configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Retry    RetryConfig    `mapstructure:"retry" yaml:"retry"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
}

// LoggerConfig configures the process logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the console color of each level.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// AnalysisConfig holds the grid analyzer tunables.
type AnalysisConfig struct {
	SplitThreshold       int     `mapstructure:"split_threshold" yaml:"split_threshold"`
	MaxDepth             int     `mapstructure:"max_depth" yaml:"max_depth"`
	SpanTolerance        float64 `mapstructure:"span_tolerance" yaml:"span_tolerance"`
	FallbackReferenceRow int     `mapstructure:"fallback_reference_row" yaml:"fallback_reference_row"`
	CellDelimiter        string  `mapstructure:"cell_delimiter" yaml:"cell_delimiter"`
	Prepare              bool    `mapstructure:"prepare" yaml:"prepare"`
}

// CacheConfig sizes the shared grid cache. Size 0 disables caching.
type CacheConfig struct {
	Size int `mapstructure:"size" yaml:"size"`
}

// RetryConfig drives the synchronous retry of host calls.
type RetryConfig struct {
	Attempts int           `mapstructure:"attempts" yaml:"attempts"`
	Delay    time.Duration `mapstructure:"delay" yaml:"delay"`
}

// OutputConfig controls rendering and where diagnostics reports go.
type OutputConfig struct {
	Format         string `mapstructure:"format" yaml:"format"`
	Pretty         bool   `mapstructure:"pretty" yaml:"pretty"`
	DiagnosticsDir string `mapstructure:"diagnostics_dir" yaml:"diagnostics_dir"`
}

// NewDefaultConfig returns the configuration built from defaults alone.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "tablegrid")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Analysis --
	v.SetDefault("analysis.split_threshold", 400)
	v.SetDefault("analysis.max_depth", 3)
	v.SetDefault("analysis.span_tolerance", 0.05)
	v.SetDefault("analysis.fallback_reference_row", 1)
	v.SetDefault("analysis.cell_delimiter", "\r\a")
	v.SetDefault("analysis.prepare", true)

	// -- Cache --
	v.SetDefault("cache.size", 128)

	// -- Retry --
	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.delay", "100ms")

	// -- Output --
	v.SetDefault("output.format", "dump")
	v.SetDefault("output.pretty", false)
	v.SetDefault("output.diagnostics_dir", "~/.tablegrid/diagnostics")
}

// NewConfigFromViper unmarshals, expands and validates the configuration
// held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	dir, err := homedir.Expand(cfg.Output.DiagnosticsDir)
	if err != nil {
		return nil, fmt.Errorf("expand output.diagnostics_dir: %w", err)
	}
	cfg.Output.DiagnosticsDir = dir

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Load reads an optional config file plus TABLEGRID_* environment
// overrides. An empty path searches tablegrid.yaml in the working
// directory and in ~/.tablegrid.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tablegrid")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home + "/.tablegrid")
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return NewConfigFromViper(v)
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Analysis.SplitThreshold <= 0 {
		return fmt.Errorf("analysis.split_threshold must be a positive integer")
	}
	if c.Analysis.MaxDepth < 0 {
		return fmt.Errorf("analysis.max_depth must not be negative")
	}
	if c.Analysis.SpanTolerance < 0 || c.Analysis.SpanTolerance >= 0.5 {
		return fmt.Errorf("analysis.span_tolerance must be in [0, 0.5)")
	}
	if c.Analysis.FallbackReferenceRow < 1 {
		return fmt.Errorf("analysis.fallback_reference_row must be at least 1")
	}
	if c.Analysis.CellDelimiter == "" {
		return fmt.Errorf("analysis.cell_delimiter must not be empty")
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative")
	}
	if c.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be at least 1")
	}
	if c.Retry.Delay < 0 {
		return fmt.Errorf("retry.delay must not be negative")
	}
	switch c.Output.Format {
	case "dump", "json":
	default:
		return fmt.Errorf("output.format must be dump or json, got %q", c.Output.Format)
	}
	return nil
}
