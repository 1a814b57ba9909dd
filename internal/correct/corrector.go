// Package correct implements the near-field w-term and phase correction:
// per-baseline delay recomputation against the cached satellite ranges, and
// the parallel row loop that applies the resulting rotation to the
// visibility samples.
package correct

import (
	"errors"
	"fmt"
	"math"
)

// speedOfLight in m/s, for channel wavelengths.
const speedOfLight = 299792458.0

// ErrAntennaLookup is returned when a baseline references an antenna absent
// from the range table. It is fatal for the run: correcting a partial
// baseline set is scientifically invalid.
var ErrAntennaLookup = errors.New("correct: antenna missing from range table")

// RangeTable provides the line-of-sight range in meters for an antenna ID.
// propagation.RangeCache satisfies it.
type RangeTable interface {
	Range(id int) (float64, bool)
}

// Correction is the outcome of one baseline correction.
type Correction struct {
	Dist float64 // physical baseline length, meters (diagnostic only)
	WNew float64 // near-field w-term: range(ant2) - range(ant1), meters
	WOld float64 // w-term the row carried before correction, meters
	Phi  float64 // delay correction WNew - WOld, meters
}

// Corrector computes per-baseline near-field corrections from the antenna
// table and a range table evaluated at the head time. Read-only after
// construction; safe for concurrent use.
type Corrector struct {
	antennas [][3]float64
	ranges   RangeTable
}

// NewCorrector builds a Corrector over the given antenna positions
// (geocentric meters, indexed by antenna ID) and range table.
func NewCorrector(antennas [][3]float64, ranges RangeTable) *Corrector {
	return &Corrector{antennas: antennas, ranges: ranges}
}

// Baseline computes the correction for the (a1, a2) baseline given the
// row's current w-term.
//
// The baseline length is the full Euclidean distance between the antennas,
// not a line-of-sight projection: it only feeds the diagnostic plot. The new
// w-term is the signed range difference, so WNew(a, b) == -WNew(b, a).
func (c *Corrector) Baseline(a1, a2 int, oldW float64) (Correction, error) {
	r1, ok := c.ranges.Range(a1)
	if !ok {
		return Correction{}, fmt.Errorf("%w: antenna1 %d", ErrAntennaLookup, a1)
	}
	r2, ok := c.ranges.Range(a2)
	if !ok {
		return Correction{}, fmt.Errorf("%w: antenna2 %d", ErrAntennaLookup, a2)
	}
	if a1 < 0 || a1 >= len(c.antennas) || a2 < 0 || a2 >= len(c.antennas) {
		return Correction{}, fmt.Errorf("%w: baseline %d-%d outside antenna table", ErrAntennaLookup, a1, a2)
	}

	p1 := c.antennas[a1]
	p2 := c.antennas[a2]
	dx := p1[0] - p2[0]
	dy := p1[1] - p2[1]
	dz := p1[2] - p2[2]

	wNew := r2 - r1
	return Correction{
		Dist: math.Sqrt(dx*dx + dy*dy + dz*dz),
		WNew: wNew,
		WOld: oldW,
		Phi:  wNew - oldW,
	}, nil
}

// Wavelengths derives per-channel wavelengths (meters) from channel
// frequencies (Hz).
func Wavelengths(freqs []float64) []float64 {
	lambda := make([]float64, len(freqs))
	for i, f := range freqs {
		lambda[i] = speedOfLight / f
	}
	return lambda
}
