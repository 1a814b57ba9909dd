// Package mstime converts measurement-set TIME values to UTC instants.
//
// Casacore-style tables store row times as a Modified Julian Date scaled to
// seconds (MJD * 86400). The MJD day-number epoch is 1858-11-17T00:00:00 UTC,
// so the conversion is a pure epoch offset.
package mstime

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// SecondsPerDay scales between MJD days and the TIME column's seconds.
const SecondsPerDay = 86400.0

// DefaultEpsilon bounds the numeric match between a row time and a reference
// time. The TIME column is float64 MJD-seconds, which at current epochs
// (~5e9 s) still represents sub-microsecond steps; 500 µs sits far above
// representation noise and far below the 2 s head/tail separation.
const DefaultEpsilon = 500 * time.Microsecond

var mjdEpoch = time.Date(1858, time.November, 17, 0, 0, 0, 0, time.UTC)

// ErrTimestampFormat is returned when a reference time string matches none of
// the accepted layouts.
var ErrTimestampFormat = errors.New("mstime: unrecognized timestamp format")

// FromMJDSeconds converts a TIME column value (MJD * 86400, seconds) to a UTC
// instant with sub-second precision.
func FromMJDSeconds(s float64) time.Time {
	// Split whole and fractional seconds so the fractional part keeps full
	// float64 resolution instead of being swamped by the ~5e9 s magnitude.
	whole := math.Floor(s)
	frac := s - whole
	return mjdEpoch.Add(time.Duration(whole)*time.Second + time.Duration(frac*float64(time.Second)))
}

// ToMJDSeconds converts a UTC instant back to a TIME column value.
func ToMJDSeconds(t time.Time) float64 {
	d := t.Sub(mjdEpoch)
	return d.Seconds()
}

// Matches reports whether t lies within eps of ref.
func Matches(t, ref time.Time, eps time.Duration) bool {
	d := t.Sub(ref)
	if d < 0 {
		d = -d
	}
	return d <= eps
}

// ParseRefTime parses a reference time in "2006-01-02T15:04:05" form.
// A fractional-second suffix is accepted (time.Parse allows one after the
// seconds field whether or not the layout names it). The instant is UTC.
func ParseRefTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrTimestampFormat, s)
	}
	return t, nil
}
