// Matrix Generator for gridcalc
//
// This tool generates dense float64 matrices for exercising and benchmarking
// the gridcalc kernel: uniform noise, per-column linear trends for forecast
// checks, constants and row-major ramps with known sums.
//
// Usage:
//
//	go run ./cmd/matrix-gen [options]
//
// Options:
//
//	-mode     Generation mode: random, linear, constant, step (default: linear)
//	-rows     Number of rows (default: 1000)
//	-cols     Number of columns (default: 8)
//	-seed     Random seed for reproducibility (default: 42)
//	-noise    Standard deviation of Gaussian noise for 'linear' (default: 0.1)
//	-value    Fill value for 'constant' (default: 1)
//	-format   Output format: csv, json (default: csv)
//	-output   Output file, "-" for stdout (default: -)
//
// Examples:
//
//	# 2000x500 uniform matrix, large enough for a parallel Sum
//	go run ./cmd/matrix-gen -mode random -rows 2000 -cols 500 -output big.csv
//
//	# Trending columns, then forecast the next row
//	go run ./cmd/matrix-gen -mode linear -rows 60 -cols 4 | go run ./cmd/gridcalc forecast
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/orneryd/gridcalc/pkg/adapter"
	"github.com/orneryd/gridcalc/pkg/kernel"
)

func main() {
	mode := flag.String("mode", "linear", "Generation mode: random, linear, constant, step")
	rows := flag.Int("rows", 1000, "Number of rows")
	cols := flag.Int("cols", 8, "Number of columns")
	seed := flag.Uint64("seed", 42, "Random seed for reproducibility")
	noise := flag.Float64("noise", 0.1, "Gaussian noise std dev (linear mode)")
	value := flag.Float64("value", 1, "Fill value (constant mode)")
	format := flag.String("format", "csv", "Output format: csv, json")
	output := flag.String("output", "-", "Output file (- for stdout)")
	flag.Parse()

	log.Printf("🧪 Matrix Generator")
	log.Printf("   Mode: %s", *mode)
	log.Printf("   Shape: %d×%d", *rows, *cols)
	log.Printf("   Seed: %d", *seed)

	opts := genOptions{rows: *rows, cols: *cols, seed: *seed, noise: *noise, value: *value}
	m, err := generate(*mode, opts)
	if err != nil {
		log.Fatalf("Generation failed: %v", err)
	}
	log.Printf("✅ Generated %d values", m.Len())

	var w io.Writer = os.Stdout
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Failed to create output: %v", err)
		}
		defer f.Close()
		w = f
	}

	if err := adapter.WriteRows(w, toRows(m), *format); err != nil {
		log.Fatalf("Failed to write matrix: %v", err)
	}
	if *output != "-" {
		log.Printf("✅ Saved to %s", *output)
	}

	printStats(m)
}

type genOptions struct {
	rows, cols int
	seed       uint64
	noise      float64
	value      float64
}

// generate builds a rows×cols matrix for the given mode.
func generate(mode string, opts genOptions) (kernel.Matrix, error) {
	if opts.rows < 0 || opts.cols < 0 {
		return kernel.Matrix{}, fmt.Errorf("invalid shape %d×%d", opts.rows, opts.cols)
	}
	data := make([]float64, opts.rows*opts.cols)
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))

	switch mode {
	case "random":
		// uniform in [-1, 1)
		for i := range data {
			data[i] = rng.Float64()*2 - 1
		}

	case "linear":
		// column c follows slope_c*r + intercept_c plus Gaussian noise
		if opts.noise < 0 {
			return kernel.Matrix{}, fmt.Errorf("invalid noise %g", opts.noise)
		}
		slopes := make([]float64, opts.cols)
		intercepts := make([]float64, opts.cols)
		for c := range slopes {
			slopes[c] = rng.Float64()*4 - 2
			intercepts[c] = rng.Float64()*100 - 50
		}
		for r := 0; r < opts.rows; r++ {
			for c := 0; c < opts.cols; c++ {
				v := slopes[c]*float64(r) + intercepts[c]
				if opts.noise > 0 {
					v += rng.NormFloat64() * opts.noise
				}
				data[r*opts.cols+c] = v
			}
		}

	case "constant":
		for i := range data {
			data[i] = opts.value
		}

	case "step":
		// row-major ramp 0, 1, 2, ... so the sum is n(n-1)/2
		for i := range data {
			data[i] = float64(i)
		}

	default:
		return kernel.Matrix{}, fmt.Errorf("unknown mode: %s", mode)
	}

	return kernel.NewMatrix(data, opts.rows, opts.cols), nil
}

func toRows(m kernel.Matrix) [][]float64 {
	rows := make([][]float64, m.Rows)
	for r := range rows {
		rows[r] = m.Row(r)
	}
	return rows
}

// printStats prints statistics about the generated matrix
func printStats(m kernel.Matrix) {
	if m.Empty() {
		return
	}
	values := m.Data[:m.Len()]
	mean, std := stat.MeanStdDev(values, nil)

	log.Printf("")
	log.Printf("📈 Statistics:")
	log.Printf("   Values: %d", len(values))
	log.Printf("   Min/Max: %.6g / %.6g", floats.Min(values), floats.Max(values))
	log.Printf("   Mean: %.6g (std dev %.6g)", mean, std)
	log.Printf("   Sum: %.17g", kernel.Sum(m))
	log.Printf("   Checksum: %016x", kernel.Checksum(m))
}
