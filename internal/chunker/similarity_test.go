package chunker

import (
	"math"
	"testing"
)

func TestCosineSimilarity_Identity(t *testing.T) {
	v := []float32{0.3, -0.5, 0.8, 0.1}

	if sim := CosineSimilarity(v, v); math.Abs(sim-1.0) > 1e-9 {
		t.Errorf("expected similarity 1.0 with itself, got %f", sim)
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float32{0.1, 0.9, -0.4}
	b := []float32{0.7, -0.2, 0.5}

	if CosineSimilarity(a, b) != CosineSimilarity(b, a) {
		t.Error("expected symmetric similarity")
	}
}

func TestCosineSimilarity_ZeroMagnitude(t *testing.T) {
	zero := []float32{0, 0, 0}
	v := []float32{1, 2, 3}

	if sim := CosineSimilarity(zero, v); sim != 0 {
		t.Errorf("expected 0 for zero magnitude, got %f", sim)
	}
	if sim := CosineSimilarity(v, zero); sim != 0 {
		t.Errorf("expected 0 for zero magnitude, got %f", sim)
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}

	if sim := CosineSimilarity(a, b); math.Abs(sim) > 1e-9 {
		t.Errorf("expected 0 for orthogonal vectors, got %f", sim)
	}
}

func TestCosineSimilarity_LengthMismatch(t *testing.T) {
	if sim := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}); sim != 0 {
		t.Errorf("expected 0 for mismatched lengths, got %f", sim)
	}
}
