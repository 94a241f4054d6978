// Package config handles gridcalc configuration via YAML files and environment variables.
//
// Configuration Precedence (highest to lowest):
//  1. Command-line flags (--lanes, --verbose, etc.)
//  2. Environment variables (GRIDCALC_*)
//  3. Config file (gridcalc.yaml)
//  4. Built-in defaults
//
// Example Usage:
//
//	cfg, err := config.LoadFromFile(config.FindConfigFile())
//	if err != nil {
//		log.Fatalf("Invalid config: %v", err)
//	}
//	k := kernel.New(cfg.KernelConfig())
//	defer k.Close()
//
// Environment Variables (all use GRIDCALC_ prefix):
//
// Kernel:
//   - GRIDCALC_LANES=8
//   - GRIDCALC_SUM_PARALLEL_THRESHOLD=500000
//   - GRIDCALC_SCALE_PARALLEL_ROWS=50
//   - GRIDCALC_FORECAST_PARALLEL_COLS=8
//   - GRIDCALC_FORECAST_WINDOW=30
//   - GRIDCALC_REPRODUCIBLE_SUM=true
//
// Memory:
//   - GRIDCALC_MAX_ALLOC="512MB" or "unlimited"
//   - GRIDCALC_MEMORY_LIMIT="2GB"
//   - GRIDCALC_GC_PERCENT=100
//
// Logging:
//   - GRIDCALC_LOG_VERBOSE=true
//   - GRIDCALC_LOG_OUTPUT="stderr"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/orneryd/gridcalc/pkg/aligned"
	"github.com/orneryd/gridcalc/pkg/kernel"
)

// Config holds all gridcalc configuration.
//
// Use LoadFromFile() for defaults -> file -> env precedence, or
// LoadFromEnv() to skip the file.
type Config struct {
	Kernel  KernelConfig
	Memory  MemoryConfig
	Logging LoggingConfig
}

// KernelConfig holds lane count and parallel dispatch thresholds.
// Zero values mean "use the kernel default".
type KernelConfig struct {
	// Lanes is the worker lane count (0 = GOMAXPROCS)
	// Env: GRIDCALC_LANES
	Lanes int
	// SumParallelThreshold is the element count above which Sum forks
	// Env: GRIDCALC_SUM_PARALLEL_THRESHOLD
	SumParallelThreshold int
	// ScaleParallelRows is the row count above which Scale forks
	// Env: GRIDCALC_SCALE_PARALLEL_ROWS
	ScaleParallelRows int
	// ForecastParallelCols is the column count above which Forecast forks
	// Env: GRIDCALC_FORECAST_PARALLEL_COLS
	ForecastParallelCols int
	// ForecastWindow is the trailing row count per regression
	// Env: GRIDCALC_FORECAST_WINDOW
	ForecastWindow int
	// ReproducibleSum runs Sum on a single lane
	// Env: GRIDCALC_REPRODUCIBLE_SUM
	ReproducibleSum bool
}

// MemoryConfig holds allocation limits.
type MemoryConfig struct {
	// MaxAlloc caps a single aligned buffer in bytes (0 = unlimited)
	// Env: GRIDCALC_MAX_ALLOC (supports "512MB", "2GB", "unlimited")
	MaxAlloc int64
	// RuntimeLimit is the Go runtime soft memory limit (0 = unlimited)
	// Env: GRIDCALC_MEMORY_LIMIT
	RuntimeLimit int64
	// GCPercent is the GC target percentage (100 = Go default)
	// Env: GRIDCALC_GC_PERCENT
	GCPercent int
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Verbose logs every operation, not only failures
	Verbose bool
	// Output path (stdout, stderr, or file path)
	Output string
}

// YAMLConfig represents the YAML configuration file structure.
//
// Example:
//
//	kernel:
//	  lanes: 8
//	  forecast_window: 30
//	memory:
//	  max_alloc: "512MB"
//	logging:
//	  verbose: true
//	  output: stderr
type YAMLConfig struct {
	Kernel struct {
		Lanes                int   `yaml:"lanes"`
		SumParallelThreshold int   `yaml:"sum_parallel_threshold"`
		ScaleParallelRows    int   `yaml:"scale_parallel_rows"`
		ForecastParallelCols int   `yaml:"forecast_parallel_cols"`
		ForecastWindow       int   `yaml:"forecast_window"`
		ReproducibleSum      *bool `yaml:"reproducible_sum"`
	} `yaml:"kernel"`
	Memory struct {
		MaxAlloc     string `yaml:"max_alloc"`
		RuntimeLimit string `yaml:"runtime_limit"`
		GCPercent    int    `yaml:"gc_percent"`
	} `yaml:"memory"`
	Logging struct {
		Verbose *bool  `yaml:"verbose"`
		Output  string `yaml:"output"`
	} `yaml:"logging"`
}

// LoadDefaults returns a Config holding the built-in defaults.
func LoadDefaults() *Config {
	config := &Config{}

	// Kernel defaults
	config.Kernel.Lanes = 0 // GOMAXPROCS at kernel construction
	config.Kernel.SumParallelThreshold = kernel.DefaultSumParallelThreshold
	config.Kernel.ScaleParallelRows = kernel.DefaultScaleParallelRows
	config.Kernel.ForecastParallelCols = kernel.DefaultForecastParallelCols
	config.Kernel.ForecastWindow = kernel.DefaultForecastWindow
	config.Kernel.ReproducibleSum = false

	// Memory defaults
	config.Memory.MaxAlloc = 0
	config.Memory.RuntimeLimit = 0
	config.Memory.GCPercent = 100

	// Logging defaults
	config.Logging.Verbose = false
	config.Logging.Output = "stderr"

	return config
}

// LoadFromEnv returns defaults overridden by GRIDCALC_* environment variables.
func LoadFromEnv() *Config {
	config := LoadDefaults()
	applyEnvVars(config)
	return config
}

// ApplyEnvVars overrides config fields from GRIDCALC_* environment variables.
// Unset or unparsable variables leave the field unchanged.
func ApplyEnvVars(config *Config) {
	applyEnvVars(config)
}

func applyEnvVars(config *Config) {
	// Kernel
	config.Kernel.Lanes = getEnvInt("GRIDCALC_LANES", config.Kernel.Lanes)
	config.Kernel.SumParallelThreshold = getEnvInt("GRIDCALC_SUM_PARALLEL_THRESHOLD", config.Kernel.SumParallelThreshold)
	config.Kernel.ScaleParallelRows = getEnvInt("GRIDCALC_SCALE_PARALLEL_ROWS", config.Kernel.ScaleParallelRows)
	config.Kernel.ForecastParallelCols = getEnvInt("GRIDCALC_FORECAST_PARALLEL_COLS", config.Kernel.ForecastParallelCols)
	config.Kernel.ForecastWindow = getEnvInt("GRIDCALC_FORECAST_WINDOW", config.Kernel.ForecastWindow)
	config.Kernel.ReproducibleSum = getEnvBool("GRIDCALC_REPRODUCIBLE_SUM", config.Kernel.ReproducibleSum)

	// Memory
	if v := os.Getenv("GRIDCALC_MAX_ALLOC"); v != "" {
		config.Memory.MaxAlloc = parseMemorySize(v)
	}
	if v := os.Getenv("GRIDCALC_MEMORY_LIMIT"); v != "" {
		config.Memory.RuntimeLimit = parseMemorySize(v)
	}
	config.Memory.GCPercent = getEnvInt("GRIDCALC_GC_PERCENT", config.Memory.GCPercent)

	// Logging
	config.Logging.Verbose = getEnvBool("GRIDCALC_LOG_VERBOSE", config.Logging.Verbose)
	config.Logging.Output = getEnv("GRIDCALC_LOG_OUTPUT", config.Logging.Output)
}

// LoadFromFile loads configuration with proper precedence:
//  1. Built-in defaults (lowest priority)
//  2. YAML config file
//  3. Environment variables (highest priority before CLI args)
//
// Command-line arguments are applied by the caller after this.
// An empty or missing path yields defaults plus env.
func LoadFromFile(configPath string) (*Config, error) {
	config := LoadDefaults()

	if configPath == "" {
		applyEnvVars(config)
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvVars(config)
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlCfg YAMLConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// === Kernel ===
	if yamlCfg.Kernel.Lanes > 0 {
		config.Kernel.Lanes = yamlCfg.Kernel.Lanes
	}
	if yamlCfg.Kernel.SumParallelThreshold > 0 {
		config.Kernel.SumParallelThreshold = yamlCfg.Kernel.SumParallelThreshold
	}
	if yamlCfg.Kernel.ScaleParallelRows > 0 {
		config.Kernel.ScaleParallelRows = yamlCfg.Kernel.ScaleParallelRows
	}
	if yamlCfg.Kernel.ForecastParallelCols > 0 {
		config.Kernel.ForecastParallelCols = yamlCfg.Kernel.ForecastParallelCols
	}
	if yamlCfg.Kernel.ForecastWindow > 0 {
		config.Kernel.ForecastWindow = yamlCfg.Kernel.ForecastWindow
	}
	if yamlCfg.Kernel.ReproducibleSum != nil {
		config.Kernel.ReproducibleSum = *yamlCfg.Kernel.ReproducibleSum
	}

	// === Memory ===
	if yamlCfg.Memory.MaxAlloc != "" {
		config.Memory.MaxAlloc = parseMemorySize(yamlCfg.Memory.MaxAlloc)
	}
	if yamlCfg.Memory.RuntimeLimit != "" {
		config.Memory.RuntimeLimit = parseMemorySize(yamlCfg.Memory.RuntimeLimit)
	}
	if yamlCfg.Memory.GCPercent != 0 {
		config.Memory.GCPercent = yamlCfg.Memory.GCPercent
	}

	// === Logging ===
	if yamlCfg.Logging.Verbose != nil {
		config.Logging.Verbose = *yamlCfg.Logging.Verbose
	}
	if yamlCfg.Logging.Output != "" {
		config.Logging.Output = yamlCfg.Logging.Output
	}

	applyEnvVars(config)
	return config, nil
}

// Validate checks the configuration for invalid settings.
//
// Zero kernel values are valid and select kernel defaults; negative values
// are rejected.
func (c *Config) Validate() error {
	if c.Kernel.Lanes < 0 {
		return fmt.Errorf("invalid lane count: %d", c.Kernel.Lanes)
	}
	if c.Kernel.SumParallelThreshold < 0 {
		return fmt.Errorf("invalid sum parallel threshold: %d", c.Kernel.SumParallelThreshold)
	}
	if c.Kernel.ScaleParallelRows < 0 {
		return fmt.Errorf("invalid scale parallel rows: %d", c.Kernel.ScaleParallelRows)
	}
	if c.Kernel.ForecastParallelCols < 0 {
		return fmt.Errorf("invalid forecast parallel cols: %d", c.Kernel.ForecastParallelCols)
	}
	if c.Kernel.ForecastWindow < 0 {
		return fmt.Errorf("invalid forecast window: %d", c.Kernel.ForecastWindow)
	}
	if c.Memory.MaxAlloc < 0 {
		return fmt.Errorf("invalid max alloc: %d", c.Memory.MaxAlloc)
	}
	if c.Logging.Output == "" {
		return fmt.Errorf("logging output must not be empty")
	}
	return nil
}

// String returns a string representation of the Config suitable for logging.
func (c *Config) String() string {
	maxAlloc := "unlimited"
	if c.Memory.MaxAlloc > 0 {
		maxAlloc = FormatMemorySize(c.Memory.MaxAlloc)
	}
	return fmt.Sprintf(
		"Config{Lanes: %d, Thresholds: sum>%d scale>%d forecast>%d, Window: %d, MaxAlloc: %s, Verbose: %v}",
		c.Kernel.Lanes,
		c.Kernel.SumParallelThreshold, c.Kernel.ScaleParallelRows, c.Kernel.ForecastParallelCols,
		c.Kernel.ForecastWindow,
		maxAlloc,
		c.Logging.Verbose,
	)
}

// KernelConfig converts the kernel section into a kernel.Config.
func (c *Config) KernelConfig() kernel.Config {
	return kernel.Config{
		Lanes:                c.Kernel.Lanes,
		SumParallelThreshold: c.Kernel.SumParallelThreshold,
		ScaleParallelRows:    c.Kernel.ScaleParallelRows,
		ForecastParallelCols: c.Kernel.ForecastParallelCols,
		ForecastWindow:       c.Kernel.ForecastWindow,
		ReproducibleSum:      c.Kernel.ReproducibleSum,
	}
}

// Apply pushes the memory settings into the aligned allocator and the Go
// runtime. Should be called early in main() before heavy allocations.
func (c *MemoryConfig) Apply() {
	aligned.SetMaxBytes(c.MaxAlloc)
	if c.RuntimeLimit > 0 {
		debug.SetMemoryLimit(c.RuntimeLimit)
	}
	if c.GCPercent != 100 {
		debug.SetGCPercent(c.GCPercent)
	}
}

// FindConfigFile searches for a config file in standard locations.
// Returns the path to the first config file found, or empty string if none found.
// Search order:
//  1. ~/.gridcalc/config.yaml
//  2. Same directory as the binary (config.yaml, gridcalc.yaml)
//  3. Current working directory (config.yaml, gridcalc.yaml)
//  4. ~/.config/gridcalc/config.yaml (XDG)
func FindConfigFile() string {
	var candidates []string

	home, homeErr := os.UserHomeDir()
	if homeErr == nil {
		candidates = append(candidates, filepath.Join(home, ".gridcalc", "config.yaml"))
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(exeDir, "config.yaml"),
			filepath.Join(exeDir, "gridcalc.yaml"),
		)
	}

	candidates = append(candidates,
		"config.yaml",
		"gridcalc.yaml",
	)

	if homeErr == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "gridcalc", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// Helper functions for environment variable parsing

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		return val == "true" || val == "1" || val == "yes" || val == "on"
	}
	return defaultVal
}

// parseMemorySize is ParseMemorySize with malformed input treated as unlimited.
func parseMemorySize(s string) int64 {
	n, err := ParseMemorySize(s)
	if err != nil {
		return 0
	}
	return n
}

// ParseMemorySize parses a human-readable memory size string.
// Supports: "1024", "1KB", "1MB", "1GB", "1TB", "0", "unlimited"
func ParseMemorySize(s string) (int64, error) {
	orig := s
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" || s == "0" || s == "UNLIMITED" {
		return 0, nil
	}

	s = strings.TrimSuffix(s, "B")

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "G"):
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "G")
	case strings.HasSuffix(s, "T"):
		multiplier = 1024 * 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "T")
	}

	val, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || val < 0 {
		return 0, fmt.Errorf("invalid memory size %q", orig)
	}
	return val * multiplier, nil
}

// FormatMemorySize formats bytes as human-readable string.
func FormatMemorySize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.2f TB", float64(bytes)/float64(TB))
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
