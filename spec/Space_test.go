package spec

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestNewSpacePanics(t *testing.T) {
	tests := []struct {
		name  string
		lower []float64
		upper []float64
	}{
		{"LengthMismatch", []float64{0, 0}, []float64{1}},
		{"Inverted", []float64{0, 2}, []float64{1, 1}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("NewSpace should panic")
				}
			}()
			NewSpace(Observation,
				mat.NewVecDense(len(test.lower), test.lower),
				mat.NewVecDense(len(test.upper), test.upper), Continuous)
		})
	}
}

func TestClip(t *testing.T) {
	s := NewBox(Action, []r1.Interval{{Min: -25, Max: 25}, {Min: 0, Max: 1}})

	v := mat.NewVecDense(2, []float64{100, -3})
	clipped, err := s.Clip(v)
	if err != nil {
		t.Fatal(err)
	}

	want := mat.NewVecDense(2, []float64{25, 0})
	if !mat.Equal(clipped, want) {
		t.Errorf("want %v, have %v", want.RawVector().Data,
			clipped.RawVector().Data)
	}
	if v.AtVec(0) != 100 {
		t.Error("Clip should not modify its argument")
	}
	if !s.Contains(clipped) {
		t.Error("clipped vector should be contained in the space")
	}

	if _, err := s.Clip(mat.NewVecDense(3, nil)); err == nil {
		t.Error("clipping a vector of the wrong length should fail")
	}
}

func TestClipNonFinite(t *testing.T) {
	s := NewBox(Action, []r1.Interval{
		{Min: -25, Max: 25},
		{Min: 1, Max: 2},
		{Min: -25, Max: 25},
	})

	v := mat.NewVecDense(3, []float64{math.NaN(), math.NaN(), math.Inf(-1)})
	clipped, err := s.Clip(v)
	if err != nil {
		t.Fatal(err)
	}

	want := mat.NewVecDense(3, []float64{0, 1, -25})
	if !mat.Equal(clipped, want) {
		t.Errorf("want %v, have %v", want.RawVector().Data,
			clipped.RawVector().Data)
	}
	if !s.Contains(clipped) {
		t.Error("clipped vector should be contained in the space")
	}
}

func TestContains(t *testing.T) {
	s := NewBox(Observation, []r1.Interval{{Min: 0, Max: 300}})

	tests := []struct {
		value float64
		want  bool
	}{
		{0, true},
		{300, true},
		{150.5, true},
		{-0.01, false},
		{300.01, false},
		{math.NaN(), false},
	}

	for _, test := range tests {
		v := mat.NewVecDense(1, []float64{test.value})
		if have := s.Contains(v); have != test.want {
			t.Errorf("Contains(%v): want %v, have %v", test.value,
				test.want, have)
		}
	}

	if s.Contains(nil) {
		t.Error("space should not contain nil")
	}
}

func TestSample(t *testing.T) {
	s := NewBox(Observation, []r1.Interval{
		{Min: -150, Max: 150},
		{Min: 0, Max: 1},
		{Min: 5, Max: 5},
	})
	src := rand.NewSource(42)

	for i := 0; i < 200; i++ {
		if v := s.Sample(src); !s.Contains(v) {
			t.Fatalf("sample %v outside of space", v.RawVector().Data)
		}
	}
}
