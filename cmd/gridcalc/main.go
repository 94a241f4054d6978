// Package main provides the gridcalc CLI entry point.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orneryd/gridcalc/pkg/adapter"
	"github.com/orneryd/gridcalc/pkg/config"
	"github.com/orneryd/gridcalc/pkg/kernel"
	"github.com/orneryd/gridcalc/pkg/simd"
)

var (
	version   = "0.1.0"
	commit    = "dev"
	buildTime = "unknown" // Set via ldflags: -X main.buildTime=$(date +%Y%m%d-%H%M%S)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gridcalc",
		Short: "gridcalc - parallel numeric kernel for dense float64 matrices",
		Long: `gridcalc runs compensated reductions, vector scaling, rolling
linear-regression forecasts and integrity checksums over dense
row-major float64 matrices.

Input is a CSV file or a JSON array of rows ([[1,2],[3,4]]).
Pass "-" or omit the file to read standard input.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", getEnvStr("GRIDCALC_CONFIG", ""), "Config file (default: search standard locations)")
	rootCmd.PersistentFlags().Int("lanes", getEnvInt("GRIDCALC_LANES", 0), "Worker lanes (0 = all CPUs)")
	rootCmd.PersistentFlags().Bool("verbose", getEnvBool("GRIDCALC_LOG_VERBOSE", false), "Log every operation")
	rootCmd.PersistentFlags().String("format", getEnvStr("GRIDCALC_FORMAT", "csv"), "Output format for matrices: csv, json")
	rootCmd.PersistentFlags().String("max-alloc", getEnvStr("GRIDCALC_MAX_ALLOC", ""), "Per-buffer allocation limit (e.g., 512MB, 0 for unlimited)")
	rootCmd.PersistentFlags().Bool("reproducible", getEnvBool("GRIDCALC_REPRODUCIBLE_SUM", false), "Sum on a single lane for lane-independent results")

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gridcalc v%s (%s) built %s\n", version, commit, buildTime)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show SIMD backend and effective configuration",
		RunE:  runInfo,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "sum [file]",
		Short: "Print the compensated sum of all elements",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSum,
	})

	scaleCmd := &cobra.Command{
		Use:   "scale [file]",
		Short: "Multiply every element by a factor",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScale,
	}
	scaleCmd.Flags().Float64("factor", 1, "Scale factor")
	rootCmd.AddCommand(scaleCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "forecast [file]",
		Short: "Predict the next row from a rolling linear fit per column",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runForecast,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "checksum [file]",
		Short: "Print the 64-bit FNV-1a digest of the element bit patterns",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runChecksum,
	})

	return rootCmd
}

// session bundles what every compute command needs.
type session struct {
	cfg     *config.Config
	kernel  *kernel.Kernel
	adapter *adapter.Adapter
	logger  *log.Logger
	closers []io.Closer
}

func (s *session) Close() {
	s.kernel.Close()
	for _, c := range s.closers {
		c.Close()
	}
}

// loadConfig applies defaults -> file -> env, then flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("lanes") {
		cfg.Kernel.Lanes, _ = flags.GetInt("lanes")
	}
	if flags.Changed("verbose") {
		cfg.Logging.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("reproducible") {
		cfg.Kernel.ReproducibleSum, _ = flags.GetBool("reproducible")
	}
	if flags.Changed("max-alloc") {
		v, _ := flags.GetString("max-alloc")
		maxAlloc, err := config.ParseMemorySize(v)
		if err != nil {
			return nil, err
		}
		cfg.Memory.MaxAlloc = maxAlloc
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}
	out, closer, err := openLogOutput(cfg.Logging.Output, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	if closer != nil {
		s.closers = append(s.closers, closer)
	}
	s.logger = log.New(out, "", log.LstdFlags)

	// Apply memory configuration FIRST (before heavy allocations)
	cfg.Memory.Apply()

	s.kernel = kernel.New(cfg.KernelConfig())
	s.adapter = adapter.New(s.kernel,
		adapter.WithLogger(s.logger),
		adapter.WithVerbose(cfg.Logging.Verbose),
	)
	if cfg.Logging.Verbose {
		s.logger.Printf("⚙️  %s", cfg)
	}
	return s, nil
}

func runSum(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	arr, err := loadInput(cmd, args)
	if err != nil {
		return err
	}
	defer arr.Release()

	total, err := s.adapter.Sum(arr)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(total, 'g', -1, 64))
	return nil
}

func runScale(cmd *cobra.Command, args []string) error {
	factor, _ := cmd.Flags().GetFloat64("factor")

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	arr, err := loadInput(cmd, args)
	if err != nil {
		return err
	}
	defer arr.Release()

	out, err := s.adapter.Scale(arr, factor)
	if err != nil {
		return err
	}
	defer out.Release()

	return writeOutput(cmd, out)
}

func runForecast(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	arr, err := loadInput(cmd, args)
	if err != nil {
		return err
	}
	defer arr.Release()

	out, err := s.adapter.Forecast(arr)
	if err != nil {
		return err
	}
	defer out.Release()

	return writeOutput(cmd, out)
}

func runChecksum(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	arr, err := loadInput(cmd, args)
	if err != nil {
		return err
	}
	defer arr.Release()

	sum, err := s.adapter.Checksum(arr)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%016x\n", sum)
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	k := kernel.New(cfg.KernelConfig())
	defer k.Close()
	kc := k.Config()
	info := simd.Info()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "gridcalc v%s\n", version)
	fmt.Fprintf(w, "  SIMD backend: %s (accelerated: %v)\n", info.Implementation, info.Accelerated)
	if len(info.Features) > 0 {
		fmt.Fprintf(w, "  CPU features: %s\n", strings.Join(info.Features, ", "))
	}
	fmt.Fprintf(w, "  Lanes: %d\n", k.Lanes())
	fmt.Fprintf(w, "  Sum forks above: %d elements\n", kc.SumParallelThreshold)
	fmt.Fprintf(w, "  Scale forks above: %d rows\n", kc.ScaleParallelRows)
	fmt.Fprintf(w, "  Forecast forks above: %d columns\n", kc.ForecastParallelCols)
	fmt.Fprintf(w, "  Forecast window: %d rows\n", kc.ForecastWindow)
	fmt.Fprintf(w, "  Reproducible sum: %v\n", kc.ReproducibleSum)
	if cfg.Memory.MaxAlloc > 0 {
		fmt.Fprintf(w, "  Max allocation: %s\n", config.FormatMemorySize(cfg.Memory.MaxAlloc))
	} else {
		fmt.Fprintln(w, "  Max allocation: unlimited")
	}
	return nil
}

func loadInput(cmd *cobra.Command, args []string) (*adapter.Array, error) {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	rows, err := adapter.ReadRows(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", displayName(path), err)
	}
	return adapter.FromRows(rows)
}

func writeOutput(cmd *cobra.Command, arr *adapter.Array) error {
	format, _ := cmd.Flags().GetString("format")
	return adapter.WriteRows(cmd.OutOrStdout(), arr.ToRows(), format)
}

func displayName(path string) string {
	if path == "-" {
		return "stdin"
	}
	return path
}

// openLogOutput resolves "stdout", "stderr" or a file path to a writer.
// The closer is nil unless a file was opened.
func openLogOutput(output string, stderr io.Writer) (io.Writer, io.Closer, error) {
	switch strings.ToLower(output) {
	case "", "stderr":
		return stderr, nil, nil
	case "stdout":
		return os.Stdout, nil, nil
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log output: %w", err)
	}
	return f, f, nil
}

// getEnvStr returns environment variable value or default
func getEnvStr(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns environment variable as int or default
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvBool returns environment variable as bool or default
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultVal
}
