package frame

import (
	"math"
	"time"
)

// TEME is a satellite position in the True Equator Mean Equinox frame that
// SGP4 propagators emit, in kilometers.
type TEME struct {
	X, Y, Z float64
}

// NormKm returns the position magnitude in kilometers.
func (p TEME) NormKm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// TEMEToECEF rotates a TEME position into ECEF at the given UTC instant and
// converts to meters.
//
// The rotation is the GMST-only simplification (TEME -> PEF, taken as ECEF):
// polar motion and the equation of the equinoxes are neglected, costing tens
// of meters in absolute satellite position. The correction consumes range
// differences across antennas, where that common-mode error cancels.
func TEMEToECEF(p TEME, t time.Time) ECEF {
	return TEMEToECEFWithGMST(p, GMST(t))
}

// TEMEToECEFWithGMST rotates TEME to ECEF using a precomputed GMST angle
// (radians), for callers that evaluate several positions at one instant.
// r_ECEF = R3(gmst) * r_TEME.
func TEMEToECEFWithGMST(p TEME, gmst float64) ECEF {
	cosG := math.Cos(gmst)
	sinG := math.Sin(gmst)
	return ECEF{
		X: (p.X*cosG + p.Y*sinG) * 1000.0,
		Y: (-p.X*sinG + p.Y*cosG) * 1000.0,
		Z: p.Z * 1000.0,
	}
}
