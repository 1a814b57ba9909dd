package correct

import (
	"errors"
	"math"
	"testing"
)

type fakeRanges map[int]float64

func (f fakeRanges) Range(id int) (float64, bool) {
	r, ok := f[id]
	return r, ok
}

func TestBaseline_Antisymmetry(t *testing.T) {
	ants := [][3]float64{
		{-2559454, 5095372, -2849057},
		{-2559254, 5095372, -2849057},
	}
	cor := NewCorrector(ants, fakeRanges{0: 512345.5, 1: 512401.25})

	fwd, err := cor.Baseline(0, 1, 0)
	if err != nil {
		t.Fatalf("Baseline(0,1): %v", err)
	}
	rev, err := cor.Baseline(1, 0, 0)
	if err != nil {
		t.Fatalf("Baseline(1,0): %v", err)
	}

	if fwd.WNew != -rev.WNew {
		t.Errorf("WNew(0,1) = %v, WNew(1,0) = %v, want exact negation", fwd.WNew, rev.WNew)
	}
	if fwd.Dist != rev.Dist {
		t.Errorf("Dist differs by direction: %v vs %v", fwd.Dist, rev.Dist)
	}
}

func TestBaseline_EquidistantSatellite(t *testing.T) {
	// Two antennas 100 m apart along one axis with the satellite equidistant
	// from both: zero near-field w, physical baseline 100 m.
	ants := [][3]float64{
		{-2559454, 5095372, -2849057},
		{-2559354, 5095372, -2849057},
	}
	cor := NewCorrector(ants, fakeRanges{0: 612000, 1: 612000})

	c, err := cor.Baseline(0, 1, 0)
	if err != nil {
		t.Fatalf("Baseline: %v", err)
	}
	if c.WNew != 0 {
		t.Errorf("WNew = %v, want 0 for equidistant satellite", c.WNew)
	}
	if math.Abs(c.Dist-100) > 1e-9 {
		t.Errorf("Dist = %v, want 100", c.Dist)
	}
}

func TestBaseline_PhiIsDeltaW(t *testing.T) {
	ants := [][3]float64{{0, 0, 0}, {100, 0, 0}}
	cor := NewCorrector(ants, fakeRanges{0: 500000, 1: 500030})

	c, err := cor.Baseline(0, 1, 12.5)
	if err != nil {
		t.Fatalf("Baseline: %v", err)
	}
	if c.WNew != 30 {
		t.Errorf("WNew = %v, want 30", c.WNew)
	}
	if c.Phi != 30-12.5 {
		t.Errorf("Phi = %v, want 17.5", c.Phi)
	}
	if c.WOld != 12.5 {
		t.Errorf("WOld = %v, want 12.5", c.WOld)
	}
}

func TestBaseline_MissingAntenna(t *testing.T) {
	ants := [][3]float64{{0, 0, 0}, {100, 0, 0}}
	cor := NewCorrector(ants, fakeRanges{0: 500000})

	_, err := cor.Baseline(0, 1, 0)
	if !errors.Is(err, ErrAntennaLookup) {
		t.Errorf("expected ErrAntennaLookup, got %v", err)
	}
}

func TestWavelengths(t *testing.T) {
	lambda := Wavelengths([]float64{speedOfLight, speedOfLight / 2})
	if lambda[0] != 1.0 {
		t.Errorf("lambda[0] = %v, want 1", lambda[0])
	}
	if lambda[1] != 2.0 {
		t.Errorf("lambda[1] = %v, want 2", lambda[1])
	}
}
