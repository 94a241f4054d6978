package adapter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]float64
	}{
		{name: "csv", input: "1,2,3\n4,5,6\n", want: [][]float64{{1, 2, 3}, {4, 5, 6}}},
		{name: "csv with spaces and comments", input: "# header\n 1, 2\n\n3 ,4\n", want: [][]float64{{1, 2}, {3, 4}}},
		{name: "csv scientific", input: "1e3,-2.5E-1\n", want: [][]float64{{1000, -0.25}}},
		{name: "json", input: "  [[1.5],[2.5]]", want: [][]float64{{1.5}, {2.5}}},
		{name: "json trailing whitespace", input: "[[1,2]]\n\n", want: [][]float64{{1, 2}}},
		{name: "json empty", input: "[]", want: [][]float64{}},
		{name: "empty", input: "", want: nil},
		{name: "whitespace", input: " \n\t", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadRows(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadRows_Errors(t *testing.T) {
	_, err := ReadRows(strings.NewReader("1,x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1 field 2")

	_, err = ReadRows(strings.NewReader("[[1,2]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON matrix")

	_, err = ReadRows(strings.NewReader("[[1,null]]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1 value 2 is null")

	_, err = ReadRows(strings.NewReader("[[1],null]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2 is null")

	_, err = ReadRows(strings.NewReader("[[1,2]] [[3,4]]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected content after matrix")

	_, err = ReadRows(strings.NewReader("[[1,2]] trailing"))
	require.Error(t, err)
}

func TestWriteRows(t *testing.T) {
	rows := [][]float64{{0.1, 2}, {-3, 1e21}}

	var csvOut bytes.Buffer
	require.NoError(t, WriteRows(&csvOut, rows, "csv"))
	assert.Equal(t, "0.1,2\n-3,1e+21\n", csvOut.String())

	var jsonOut bytes.Buffer
	require.NoError(t, WriteRows(&jsonOut, nil, "JSON"))
	assert.Equal(t, "[]\n", jsonOut.String())

	require.Error(t, WriteRows(&bytes.Buffer{}, rows, "xml"))
}
