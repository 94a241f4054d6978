package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/orneryd/gridcalc/pkg/kernel"
)

func TestGenerate_Step(t *testing.T) {
	m, err := generate("step", genOptions{rows: 10, cols: 10})
	require.NoError(t, err)

	assert.Equal(t, 100, m.Len())
	assert.Equal(t, 4950.0, kernel.Sum(m))
	assert.Equal(t, 37.0, m.At(3, 7))
}

func TestGenerate_Constant(t *testing.T) {
	m, err := generate("constant", genOptions{rows: 4, cols: 3, value: 2.5})
	require.NoError(t, err)

	assert.Equal(t, 30.0, kernel.Sum(m))
}

func TestGenerate_RandomIsSeeded(t *testing.T) {
	a, err := generate("random", genOptions{rows: 20, cols: 5, seed: 7})
	require.NoError(t, err)
	b, err := generate("random", genOptions{rows: 20, cols: 5, seed: 7})
	require.NoError(t, err)
	c, err := generate("random", genOptions{rows: 20, cols: 5, seed: 8})
	require.NoError(t, err)

	assert.Equal(t, kernel.Checksum(a), kernel.Checksum(b))
	assert.NotEqual(t, kernel.Checksum(a), kernel.Checksum(c))
	for _, v := range a.Data {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.Less(t, v, 1.0)
	}
}

func TestGenerate_LinearForecasts(t *testing.T) {
	m, err := generate("linear", genOptions{rows: 40, cols: 3, seed: 1})
	require.NoError(t, err)

	out := kernel.NewMatrix(make([]float64, 3), 1, 3)
	kernel.Forecast(m, out)

	// noiseless columns are exact lines, so the forecast continues the trend
	for c := 0; c < 3; c++ {
		step := m.At(39, c) - m.At(38, c)
		assert.InDelta(t, m.At(39, c)+step, out.Data[c], 1e-9, "column %d", c)
	}
}

func TestGenerate_LinearNoise(t *testing.T) {
	m, err := generate("linear", genOptions{rows: 500, cols: 1, seed: 3, noise: 0.5})
	require.NoError(t, err)

	residuals := make([]float64, 0, m.Rows-1)
	for r := 1; r < m.Rows; r++ {
		residuals = append(residuals, m.At(r, 0)-m.At(r-1, 0))
	}
	// first differences of slope*r + N(0, σ²) have variance 2σ²
	_, std := stat.MeanStdDev(residuals, nil)
	assert.InDelta(t, 0.5*1.4142, std, 0.1)
}

func TestGenerate_Errors(t *testing.T) {
	_, err := generate("fractal", genOptions{rows: 1, cols: 1})
	require.Error(t, err)

	_, err = generate("random", genOptions{rows: -1, cols: 1})
	require.Error(t, err)

	_, err = generate("linear", genOptions{rows: 1, cols: 1, noise: -1})
	require.Error(t, err)
}

func TestToRows(t *testing.T) {
	m, err := generate("step", genOptions{rows: 2, cols: 3})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 1, 2}, {3, 4, 5}}, toRows(m))
}
