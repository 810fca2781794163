package floatutils

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r1"
)

func TestClip(t *testing.T) {
	tests := []struct {
		value, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-3, -2, 2, -2},
		{7, -2, 2, 2},
		{math.Inf(1), -25, 25, 25},
		{math.Inf(-1), -25, 25, -25},
		{math.NaN(), -25, 25, 0},
		{math.NaN(), 1, 2, 1},
		{math.NaN(), -2, -1, -1},
	}

	for _, test := range tests {
		if have := Clip(test.value, test.min, test.max); have != test.want {
			t.Errorf("clip(%v, %v, %v): want %v, have %v", test.value,
				test.min, test.max, test.want, have)
		}
	}
}

func TestContains(t *testing.T) {
	interval := r1.Interval{Min: -1, Max: 1}
	for _, v := range []float64{-1, 0, 1} {
		if !Contains(v, interval) {
			t.Errorf("%v should be in [%v, %v]", v, interval.Min, interval.Max)
		}
	}
	for _, v := range []float64{-1.0001, 1.0001, math.NaN()} {
		if Contains(v, interval) {
			t.Errorf("%v should not be in [%v, %v]", v, interval.Min,
				interval.Max)
		}
	}
}
