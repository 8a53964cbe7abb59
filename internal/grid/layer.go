package grid

// Layer is a dense rows×cols grid of T. Out-of-bounds reads return the zero
// value and out-of-bounds writes are dropped.
type Layer[T any] struct {
	cells []T
	rows  int
	cols  int
}

// NewLayer allocates a zeroed layer.
func NewLayer[T any](rows, cols int) *Layer[T] {
	return &Layer[T]{
		cells: make([]T, rows*cols),
		rows:  rows,
		cols:  cols,
	}
}

// Rows returns the row count.
func (l *Layer[T]) Rows() int { return l.rows }

// Cols returns the column count.
func (l *Layer[T]) Cols() int { return l.cols }

// In reports whether c lies inside the layer.
func (l *Layer[T]) In(c Cell) bool {
	return c.Row >= 0 && c.Row < l.rows && c.Col >= 0 && c.Col < l.cols
}

// At returns the value at c.
func (l *Layer[T]) At(c Cell) T {
	if !l.In(c) {
		var zero T
		return zero
	}
	return l.cells[c.Row*l.cols+c.Col]
}

// Set writes v at c and reports whether c was in bounds.
func (l *Layer[T]) Set(c Cell, v T) bool {
	if !l.In(c) {
		return false
	}
	l.cells[c.Row*l.cols+c.Col] = v
	return true
}

// Fill sets every cell to v.
func (l *Layer[T]) Fill(v T) {
	for i := range l.cells {
		l.cells[i] = v
	}
}
