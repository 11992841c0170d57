package service

import (
	"math"
	"testing"
)

func TestHaversineKmZeroDistance(t *testing.T) {
	if d := HaversineKm(6.9271, 79.8612, 6.9271, 79.8612); d != 0 {
		t.Fatalf("distance to self = %f, want 0", d)
	}
}

func TestHaversineKmKnownDistance(t *testing.T) {
	// Colombo to Kandy, roughly 94 km great-circle.
	d := HaversineKm(6.9271, 79.8612, 7.2906, 80.6337)
	if math.Abs(d-94) > 3 {
		t.Fatalf("Colombo-Kandy distance = %f km, want ~94", d)
	}
}

func TestHaversineKmSymmetry(t *testing.T) {
	a := HaversineKm(6.9271, 79.8612, 7.2906, 80.6337)
	b := HaversineKm(7.2906, 80.6337, 6.9271, 79.8612)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", a, b)
	}
}

func TestHaversineKmShortDistance(t *testing.T) {
	// Points ~350m apart in central Colombo.
	d := HaversineKm(6.9271, 79.8612, 6.9300, 79.8600)
	if d <= 0 || d > 1 {
		t.Fatalf("short distance = %f km, want under 1", d)
	}
}
