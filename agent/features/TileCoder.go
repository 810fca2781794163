package features

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/samuelfneumann/quadrl/utils/floatutils"
)

// Tile coding settings used by New
const (
	TileTilings int = 4
	TileBins    int = 3
)

// Controls tiling offsets. For each dimension, tilings are offset by
// randomly sampling from a uniform distribution with support
// [- tile width/OffsetDiv, tile width/OffsetDiv]
const OffsetDiv float64 = 1.5

// TileCoder tile codes vectors. Tile coding changes a low-dimensional
// vector into a large, sparse vector of 0's and 1's. Each 1 marks the
// tile of some tiling that the original vector falls in. For example:
//
//	[0.5, 0.1] -> [0, 0, 0, 1, 0, 0, 1, 0]
//
// Tilings cover the entire bounded space densely and each is offset
// from the others by a random fraction of a tile. Vectors outside the
// bounds are coded by the nearest tile.
type TileCoder struct {
	minDims     mat.Vector
	offsets     [][]float64
	bins        [][]int
	tileWidths  [][]float64
	includeBias bool
}

// NewTileCoder creates and returns a new TileCoder. The minDims and
// maxDims arguments bound each dimension of the space to tile.
//
// The number of elements of bins determines the number of tilings and
// bins[i][j] the number of tiles along dimension j of tiling i. If
// includeBias is true, the first feature of coded vectors is a bias
// unit of constant 1.0.
func NewTileCoder(minDims, maxDims mat.Vector, bins [][]int, seed uint64,
	includeBias bool) *TileCoder {
	if minDims.Len() != maxDims.Len() {
		panic(fmt.Sprintf("newTileCoder: minimum with %d dimensions != "+
			"maximum with %d dimensions", minDims.Len(), maxDims.Len()))
	}
	if len(bins) == 0 {
		panic("newTileCoder: cannot have less than 1 tiling")
	}

	tileWidths := make([][]float64, len(bins))
	var bounds []r1.Interval
	for i := range bins {
		if len(bins[i]) != minDims.Len() {
			panic(fmt.Sprintf("newTileCoder: tiling %d has %d dimensions, "+
				"want %d", i, len(bins[i]), minDims.Len()))
		}

		tileWidths[i] = make([]float64, minDims.Len())
		for j, n := range bins[i] {
			if n < 1 {
				panic(fmt.Sprintf("newTileCoder: illegal tiles %d ∉ [1, ∞)",
					n))
			}
			width := (maxDims.AtVec(j) - minDims.AtVec(j)) / float64(n)
			tileWidths[i][j] = width

			bound := width / OffsetDiv
			bounds = append(bounds, r1.Interval{Min: -bound, Max: bound})
		}
	}

	// Offset each tiling, degenerate dimensions are not offset
	for i := range bounds {
		if bounds[i].Min == bounds[i].Max {
			bounds[i] = r1.Interval{Min: 0, Max: 0}
		}
	}
	sample := distmv.NewUniform(bounds, rand.NewSource(seed)).Rand(nil)

	offsets := make([][]float64, len(bins))
	for i := range bins {
		offsets[i], sample = sample[:minDims.Len()], sample[minDims.Len():]
	}

	return &TileCoder{mat.VecDenseCopyOf(minDims), offsets, bins, tileWidths,
		includeBias}
}

// featuresBeforeTiling calculates how many features exist in the
// tile-coded representation before tiling number i
func (t *TileCoder) featuresBeforeTiling(i int) int {
	features := 0
	for j := 0; j < i; j++ {
		features += prod(t.bins[j])
	}
	return features
}

// encodeWithTiling returns the index of the feature which is 1.0
// when v is tile coded with tiling number tiling
func (t *TileCoder) encodeWithTiling(v mat.Vector, tiling int) int {
	index := 0
	for i, n := range t.bins[tiling] {
		tile := 0.0
		if width := t.tileWidths[tiling][i]; width > 0 {
			data := v.AtVec(i) + t.offsets[tiling][i]
			tile = math.Floor((data - t.minDims.AtVec(i)) / width)
		}
		tile = floatutils.Clip(tile, 0.0, float64(n-1))

		index = index*n + int(tile)
	}

	bias := 0
	if t.includeBias {
		bias = 1
	}
	return t.featuresBeforeTiling(tiling) + index + bias
}

// EncodeIndices returns the indices of the non-zero features of the
// tile coded vector v
func (t *TileCoder) EncodeIndices(v mat.Vector) []int {
	indices := make([]int, 0, len(t.bins)+1)
	if t.includeBias {
		indices = append(indices, 0)
	}
	for i := range t.bins {
		indices = append(indices, t.encodeWithTiling(v, i))
	}
	return indices
}

// Transform tile codes v
func (t *TileCoder) Transform(v mat.Vector) *mat.VecDense {
	if v.Len() != t.minDims.Len() {
		panic(fmt.Sprintf("transform: vector length %v != tile coder "+
			"dimensions %v", v.Len(), t.minDims.Len()))
	}

	tileCoded := mat.NewVecDense(t.Dims(), nil)
	for _, index := range t.EncodeIndices(v) {
		tileCoded.SetVec(index, 1.0)
	}
	return tileCoded
}

// Dims returns the number of features in a tile-coded vector
func (t *TileCoder) Dims() int {
	features := t.featuresBeforeTiling(len(t.bins))
	if t.includeBias {
		return features + 1
	}
	return features
}

// NumTilings returns the number of tilings the tile coder uses for
// encoding vectors
func (t *TileCoder) NumTilings() int {
	return len(t.bins)
}

func (t *TileCoder) String() string {
	return fmt.Sprintf("Tilings %d  |  Tiles: %v", len(t.bins), t.bins)
}

// prod calculates the product of all integers in a []int
func prod(i []int) int {
	prod := 1
	for _, v := range i {
		prod *= v
	}
	return prod
}
