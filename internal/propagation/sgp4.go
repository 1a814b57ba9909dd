// Package propagation wraps SGP4 orbit propagation and precomputes the
// per-antenna slant ranges the near-field correction consumes.
package propagation

import (
	"errors"
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/StevePrabu/LEOVision/internal/ephem"
	"github.com/StevePrabu/LEOVision/internal/frame"
)

// SGP4 library choice: github.com/joshuaferrara/go-satellite — pure Go,
// widely used, explicit TEME output.
//
// Propagate() takes Satellite by value, so SGP4 error codes are not visible
// after init; failures are detected by checking the output for NaN/Inf and
// unreasonable position magnitudes.

// propagationWindow bounds how far from the TLE epoch a target instant may
// lie. SGP4 element sets decay on the scale of weeks; three years is already
// generous and anything beyond it is a caller error, not a prediction.
const propagationWindow = 3 * 365 * 24 * time.Hour

// ErrOutOfWindow is returned when the target instant is too far from the
// TLE epoch for the propagation to mean anything.
var ErrOutOfWindow = errors.New("propagation: target time outside TLE validity window")

// SGP4 is an initialized propagator for a single satellite.
type SGP4 struct {
	sat   satellite.Satellite
	name  string
	epoch time.Time
}

// NewSGP4 initializes the SGP4 model from a validated element set.
func NewSGP4(t ephem.TLE) (*SGP4, error) {
	sat := satellite.TLEToSat(t.Line1, t.Line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("propagation: sgp4 init for %s failed: code=%d %s", t.Name, sat.Error, sat.ErrorStr)
	}
	return &SGP4{sat: sat, name: t.Name, epoch: t.Epoch}, nil
}

// Name returns the satellite's catalog name.
func (p *SGP4) Name() string { return p.name }

// Epoch returns the element set epoch.
func (p *SGP4) Epoch() time.Time { return p.epoch }

// PositionECEF computes the satellite's ECEF position (meters) at an exact
// UTC instant.
//
// go-satellite propagates at whole-second resolution, so sub-second instants
// are handled by propagating at the bracketing whole seconds and
// interpolating the TEME position linearly. LEO radial acceleration is under
// 9 m/s², bounding the interpolation error at a·t²/8 ≲ 1.2 m in absolute
// position; the range differences the w-term uses see far less. The frame
// rotation uses the exact instant, so Earth rotation is not interpolated.
func (p *SGP4) PositionECEF(at time.Time) (frame.ECEF, error) {
	at = at.UTC()
	if d := at.Sub(p.epoch); d > propagationWindow || d < -propagationWindow {
		return frame.ECEF{}, fmt.Errorf("%w: %s is %.1f days from epoch %s",
			ErrOutOfWindow, at.Format(time.RFC3339), d.Hours()/24, p.epoch.Format(time.RFC3339))
	}

	whole := at.Truncate(time.Second)
	fracSec := at.Sub(whole).Seconds()

	teme, err := p.temeAt(whole)
	if err != nil {
		return frame.ECEF{}, err
	}
	if fracSec > 1e-9 {
		next, err := p.temeAt(whole.Add(time.Second))
		if err != nil {
			return frame.ECEF{}, err
		}
		teme = frame.TEME{
			X: teme.X + (next.X-teme.X)*fracSec,
			Y: teme.Y + (next.Y-teme.Y)*fracSec,
			Z: teme.Z + (next.Z-teme.Z)*fracSec,
		}
	}

	return frame.TEMEToECEFWithGMST(teme, frame.GMST(at)), nil
}

// RangeTo computes the line-of-sight range in meters from a ground observer
// to the satellite at the given instant.
func (p *SGP4) RangeTo(obs frame.Observer, at time.Time) (float64, error) {
	sat, err := p.PositionECEF(at)
	if err != nil {
		return 0, err
	}
	return obs.SlantRange(sat), nil
}

// temeAt runs SGP4 for a whole-second instant and sanity-checks the output.
func (p *SGP4) temeAt(t time.Time) (frame.TEME, error) {
	pos, _ := satellite.Propagate(p.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) ||
		math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) || math.IsInf(pos.Z, 0) {
		return frame.TEME{}, fmt.Errorf("propagation: sgp4 output for %s is NaN/Inf at %s", p.name, t.Format(time.RFC3339))
	}

	teme := frame.TEME{X: pos.X, Y: pos.Y, Z: pos.Z}
	// Position magnitude must sit between LEO perigee and well past GEO.
	if mag := teme.NormKm(); mag < 6200.0 || mag > 50000.0 {
		return frame.TEME{}, fmt.Errorf("propagation: unreasonable position magnitude %.1f km for %s at %s",
			mag, p.name, t.Format(time.RFC3339))
	}
	return teme, nil
}
