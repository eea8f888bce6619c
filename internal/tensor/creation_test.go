package tensor

import (
	"errors"
	"math/rand"
	"testing"
)

func TestZeros(t *testing.T) {
	z := Zeros(Shape{2, 3}, Float64)
	for i, v := range z.AsFloat64() {
		if v != 0 {
			t.Fatalf("Zeros[%d] = %v", i, v)
		}
	}
}

func TestFull(t *testing.T) {
	f, err := Full(Shape{1}, 0.5, Float32)
	if err != nil {
		t.Fatal(err)
	}
	if f.AsFloat32()[0] != 0.5 {
		t.Errorf("Full = %v, want 0.5", f.AsFloat32()[0])
	}

	if _, err := Full(Shape{1}, 1, Bool); !errors.Is(err, ErrDType) {
		t.Errorf("Full bool: expected ErrDType, got %v", err)
	}
}

func TestUniformRange(t *testing.T) {
	rng := rand.New(rand.NewSource(2021))
	u, err := Uniform(Shape{105, 102}, -1, 1, Float32, rng)
	if err != nil {
		t.Fatal(err)
	}

	for i, v := range u.AsFloat32() {
		if v < -1 || v >= 1 {
			t.Fatalf("Uniform[%d] = %v outside [-1, 1)", i, v)
		}
	}
}

func TestUniformDeterministic(t *testing.T) {
	a, _ := Uniform(Shape{16}, 0, 1, Float64, rand.New(rand.NewSource(7)))
	b, _ := Uniform(Shape{16}, 0, 1, Float64, rand.New(rand.NewSource(7)))

	for i := range a.AsFloat64() {
		if a.AsFloat64()[i] != b.AsFloat64()[i] {
			t.Fatalf("same seed produced different values at %d", i)
		}
	}
}

func TestRandBool(t *testing.T) {
	rng := rand.New(rand.NewSource(2021))
	b, err := RandBool(Shape{5, 6, 10}, rng)
	if err != nil {
		t.Fatal(err)
	}

	trues := 0
	for _, v := range b.AsBool() {
		if v {
			trues++
		}
	}
	// 300 fair coin flips: both outcomes must show up.
	if trues == 0 || trues == b.NumElements() {
		t.Errorf("RandBool produced %d trues out of %d", trues, b.NumElements())
	}
}
