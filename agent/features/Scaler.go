package features

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StandardScaler standardizes vectors to zero mean and unit variance
// per component. Components with zero variance are only centred.
type StandardScaler struct {
	mean *mat.VecDense
	std  *mat.VecDense
}

// FitStandardScaler fits a StandardScaler to samples, which holds one
// sample per row
func FitStandardScaler(samples mat.Matrix) *StandardScaler {
	rows, cols := samples.Dims()
	if rows == 0 {
		panic("fitStandardScaler: no samples")
	}

	mean := mat.NewVecDense(cols, nil)
	std := mat.NewVecDense(cols, nil)
	column := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(column, j, samples)
		m, s := stat.PopMeanStdDev(column, nil)
		if s == 0 {
			s = 1.0
		}
		mean.SetVec(j, m)
		std.SetVec(j, s)
	}

	return &StandardScaler{mean, std}
}

// Transform returns the standardized copy of v
func (s *StandardScaler) Transform(v mat.Vector) *mat.VecDense {
	if v.Len() != s.Dims() {
		panic(fmt.Sprintf("transform: vector length %v != scaler length %v",
			v.Len(), s.Dims()))
	}

	out := mat.NewVecDense(v.Len(), nil)
	out.SubVec(v, s.mean)
	out.DivElemVec(out, s.std)
	return out
}

// Dims returns the length of transformed vectors
func (s *StandardScaler) Dims() int {
	return s.mean.Len()
}

// Mean returns the fitted mean
func (s *StandardScaler) Mean() *mat.VecDense {
	return mat.VecDenseCopyOf(s.mean)
}

// StdDev returns the fitted standard deviation
func (s *StandardScaler) StdDev() *mat.VecDense {
	return mat.VecDenseCopyOf(s.std)
}
