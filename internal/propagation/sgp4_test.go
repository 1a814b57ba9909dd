package propagation

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"testing"
	"time"

	"github.com/StevePrabu/LEOVision/internal/ephem"
	"github.com/StevePrabu/LEOVision/internal/frame"
)

// ISS orbital elements, epoch day 100.5 of 2024.
const (
	issLine1 = "1 25544U 98067A   24100.50000000  .00016717  00000-0  10270-3 0  9005"
	issLine2 = "2 25544  51.6400 100.0000 0001000   0.0000   0.0000 15.50000000    09"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func issProp(t *testing.T) *SGP4 {
	t.Helper()
	tle, err := ephem.NewTLE("ISS (ZARYA)", issLine1, issLine2)
	if err != nil {
		t.Fatalf("NewTLE: %v", err)
	}
	prop, err := NewSGP4(tle)
	if err != nil {
		t.Fatalf("NewSGP4: %v", err)
	}
	return prop
}

func TestPositionECEF_Reasonable(t *testing.T) {
	prop := issProp(t)
	pos, err := prop.PositionECEF(time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("PositionECEF: %v", err)
	}

	// ISS altitude is ~420 km: geocentric magnitude ~6791 km.
	mag := pos.Norm() / 1000.0
	if mag < 6500 || mag > 7000 {
		t.Errorf("ECEF magnitude = %.1f km, want ~6791 km", mag)
	}
}

func TestPositionECEF_SubSecondContinuity(t *testing.T) {
	prop := issProp(t)
	t0 := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	p0, err := prop.PositionECEF(t0)
	if err != nil {
		t.Fatalf("PositionECEF: %v", err)
	}
	p1, err := prop.PositionECEF(t0.Add(500 * time.Millisecond))
	if err != nil {
		t.Fatalf("PositionECEF +0.5s: %v", err)
	}

	dx := p1.X - p0.X
	dy := p1.Y - p0.Y
	dz := p1.Z - p0.Z
	moved := math.Sqrt(dx*dx + dy*dy + dz*dz)
	// Orbital speed ~7.7 km/s plus Earth rotation: half a second moves the
	// satellite a few kilometers, never zero and never tens of kilometers.
	if moved < 1000 || moved > 10000 {
		t.Errorf("satellite moved %.1f m in 0.5 s", moved)
	}
}

func TestPositionECEF_OutOfWindow(t *testing.T) {
	prop := issProp(t)
	_, err := prop.PositionECEF(time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrOutOfWindow) {
		t.Errorf("expected ErrOutOfWindow, got %v", err)
	}
	_, err = prop.PositionECEF(time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrOutOfWindow) {
		t.Errorf("expected ErrOutOfWindow for pre-epoch time, got %v", err)
	}
}

func TestRangeTo_Bounds(t *testing.T) {
	prop := issProp(t)
	obs := frame.NewObserver(frame.Geodetic{LatDeg: -26.7033, LonDeg: 116.6708, AltM: 377.8})
	rng, err := prop.RangeTo(obs, time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("RangeTo: %v", err)
	}
	// From a ground station the straight-line distance to a LEO satellite is
	// bounded by its altitude (zenith) and by roughly the Earth diameter plus
	// the orbit (antipodal); the assertion is deliberately loose since the
	// pass geometry at this instant is arbitrary.
	if rng < 300e3 || rng > 14000e3 {
		t.Errorf("range = %.1f km, outside plausible LEO bounds", rng/1000)
	}
}

func TestBuildRangeCache_OneEntryPerAntenna(t *testing.T) {
	prop := issProp(t)

	// Three antennas a few hundred meters apart at the MWA site.
	base := frame.NewObserver(frame.Geodetic{LatDeg: -26.7033, LonDeg: 116.6708, AltM: 377.8}).Pos
	antennas := [][3]float64{
		{base.X, base.Y, base.Z},
		{base.X + 120, base.Y - 80, base.Z + 40},
		{base.X - 300, base.Y + 150, base.Z - 90},
	}

	cache, err := BuildRangeCache(context.Background(), prop, antennas,
		time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC), 4, testLogger())
	if err != nil {
		t.Fatalf("BuildRangeCache: %v", err)
	}

	if cache.Len() != len(antennas) {
		t.Fatalf("cache has %d entries, want %d", cache.Len(), len(antennas))
	}
	for id := range antennas {
		rng, ok := cache.Range(id)
		if !ok {
			t.Fatalf("antenna %d missing from cache", id)
		}
		if rng <= 0 {
			t.Errorf("antenna %d range = %v, want positive", id, rng)
		}
	}
	if _, ok := cache.Range(len(antennas)); ok {
		t.Error("lookup past the antenna table should fail")
	}

	// Nearby antennas see nearly the same range; the spread across a 300 m
	// array is bounded by the array extent itself.
	r0, _ := cache.Range(0)
	r2, _ := cache.Range(2)
	if math.Abs(r0-r2) > 500 {
		t.Errorf("range spread %.1f m across a <500 m array", math.Abs(r0-r2))
	}
}

func TestBuildRangeCache_PropagatesWindowError(t *testing.T) {
	prop := issProp(t)
	antennas := [][3]float64{{-2559454, 5095372, -2849057}}
	_, err := BuildRangeCache(context.Background(), prop, antennas,
		time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC), 2, testLogger())
	if !errors.Is(err, ErrOutOfWindow) {
		t.Errorf("expected ErrOutOfWindow, got %v", err)
	}
}
