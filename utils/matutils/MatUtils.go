// Package matutils implements utility function for working with mat.Matrix
// structs
package matutils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Format formats a matrix for printing
func Format(X mat.Matrix) string {
	fa := mat.Formatted(X, mat.Prefix(""), mat.Squeeze())
	return fmt.Sprintf("%v", fa)
}

// IsEmpty returns whether a vector holds no data. A nil interface, a
// nil *mat.VecDense, and a vector of length 0 are all empty.
func IsEmpty(v mat.Vector) bool {
	if v == nil {
		return true
	}
	if vec, ok := v.(*mat.VecDense); ok && (vec == nil || vec.IsEmpty()) {
		return true
	}
	return v.Len() == 0
}

// CloneVec returns a *mat.VecDense holding a copy of v
func CloneVec(v mat.Vector) *mat.VecDense {
	clone := mat.NewVecDense(v.Len(), nil)
	clone.CopyVec(v)
	return clone
}
