// Package frame provides the coordinate transformations the near-field
// correction needs: WGS-84 geodetic <-> ECEF, Julian date / GMST, the
// TEME -> ECEF rotation for SGP4 output, and topocentric slant range.
//
// Hemisphere handling is signed throughout: latitude positive north,
// longitude positive east. Formulas follow Vallado, "Fundamentals of
// Astrodynamics and Applications", Ch. 3-4.
package frame

import "math"

// WGS-84 ellipsoid parameters.
const (
	wgs84A  = 6378137.0             // semi-major axis (meters)
	wgs84F  = 1.0 / 298.257223563   // flattening
	wgs84E2 = wgs84F * (2 - wgs84F) // first eccentricity squared
)

// Geodetic is a position on the WGS-84 ellipsoid in signed degrees and meters.
type Geodetic struct {
	LatDeg float64 // positive north
	LonDeg float64 // positive east
	AltM   float64 // above ellipsoid
}

// ECEF is an Earth-centered Earth-fixed position in meters.
type ECEF struct {
	X, Y, Z float64
}

// Norm returns the vector magnitude in meters.
func (p ECEF) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// FromECEF converts an ECEF position (meters) to geodetic coordinates using
// the iterative Bowring method. Converges to sub-millimeter in a handful of
// iterations for positions near the Earth's surface.
func FromECEF(p ECEF) Geodetic {
	lon := math.Atan2(p.Y, p.X)
	rho := math.Sqrt(p.X*p.X + p.Y*p.Y)

	lat := math.Atan2(p.Z, rho*(1-wgs84E2))
	for i := 0; i < 5; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		lat = math.Atan2(p.Z+wgs84E2*n*sinLat, rho)
	}

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	var alt float64
	if math.Abs(cosLat) > 1e-10 {
		alt = rho/cosLat - n
	} else {
		alt = math.Abs(p.Z)/math.Abs(sinLat) - n*(1-wgs84E2)
	}

	return Geodetic{
		LatDeg: lat * 180.0 / math.Pi,
		LonDeg: lon * 180.0 / math.Pi,
		AltM:   alt,
	}
}

// Observer is a ground station with its ECEF position precomputed, so one
// geodetic conversion serves many range lookups.
type Observer struct {
	LatRad, LonRad, AltM float64
	Pos                  ECEF
}

// NewObserver builds an Observer from signed geodetic coordinates
// (degrees, meters above the ellipsoid).
func NewObserver(g Geodetic) Observer {
	lat := g.LatDeg * math.Pi / 180.0
	lon := g.LonDeg * math.Pi / 180.0

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)

	// Radius of curvature in the prime vertical.
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	return Observer{
		LatRad: lat,
		LonRad: lon,
		AltM:   g.AltM,
		Pos: ECEF{
			X: (n + g.AltM) * cosLat * math.Cos(lon),
			Y: (n + g.AltM) * cosLat * math.Sin(lon),
			Z: (n*(1-wgs84E2) + g.AltM) * sinLat,
		},
	}
}

// SlantRange returns the line-of-sight distance in meters from the observer
// to a satellite at the given ECEF position. This is the full Euclidean
// norm of the topocentric vector, not an elevation-projected range.
func (o Observer) SlantRange(sat ECEF) float64 {
	dx := sat.X - o.Pos.X
	dy := sat.Y - o.Pos.Y
	dz := sat.Z - o.Pos.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
