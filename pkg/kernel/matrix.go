package kernel

// Matrix is a borrowed view of rows×cols float64 values stored row-major and
// contiguously in Data. It never owns its memory.
type Matrix struct {
	Data []float64
	Rows int
	Cols int
}

// NewMatrix wraps data as a rows×cols view. It does not copy or validate.
func NewMatrix(data []float64, rows, cols int) Matrix {
	return Matrix{Data: data, Rows: rows, Cols: cols}
}

// Len returns Rows*Cols.
func (m Matrix) Len() int {
	return m.Rows * m.Cols
}

// Empty reports whether the matrix has no elements.
func (m Matrix) Empty() bool {
	return m.Rows <= 0 || m.Cols <= 0
}

// Row returns row r as a sub-slice of Data.
func (m Matrix) Row(r int) []float64 {
	start := r * m.Cols
	return m.Data[start : start+m.Cols : start+m.Cols]
}

// At returns the element at row r, column c.
func (m Matrix) At(r, c int) float64 {
	return m.Data[r*m.Cols+c]
}

// elements returns the Rows*Cols prefix of Data.
func (m Matrix) elements() []float64 {
	if m.Empty() {
		return nil
	}
	return m.Data[:m.Len()]
}
