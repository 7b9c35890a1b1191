package pipeline

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Project3D reduces high-dimensional embedding vectors to three dimensions
// with principal component analysis, for visualization alongside the stored
// chunks. Input order is preserved. When PCA cannot run (fewer than three
// vectors, fewer than three dimensions, or a degenerate input), each vector
// falls back to its first three coordinates.
func Project3D(vectors [][]float32) [][]float32 {
	n := len(vectors)
	if n == 0 {
		return nil
	}
	dim := len(vectors[0])
	if n < 3 || dim < 3 {
		return firstCoordinates(vectors)
	}

	data := mat.NewDense(n, dim, nil)
	for i, v := range vectors {
		for j, x := range v {
			data.Set(i, j, float64(x))
		}
	}
	center(data)

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return firstCoordinates(vectors)
	}

	var components mat.Dense
	pc.VectorsTo(&components)

	var projected mat.Dense
	projected.Mul(data, components.Slice(0, dim, 0, 3))

	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{
			float32(projected.At(i, 0)),
			float32(projected.At(i, 1)),
			float32(projected.At(i, 2)),
		}
	}
	return out
}

// center subtracts the column mean from every entry in place.
func center(m *mat.Dense) {
	rows, cols := m.Dims()
	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := 0; i < rows; i++ {
			sum += m.At(i, j)
		}
		mean := sum / float64(rows)
		for i := 0; i < rows; i++ {
			m.Set(i, j, m.At(i, j)-mean)
		}
	}
}

// firstCoordinates truncates each vector to its first three coordinates,
// zero-padding vectors that are shorter.
func firstCoordinates(vectors [][]float32) [][]float32 {
	out := make([][]float32, len(vectors))
	for i, v := range vectors {
		p := make([]float32, 3)
		copy(p, v)
		out[i] = p
	}
	return out
}
