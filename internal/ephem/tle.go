package ephem

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TLE is a validated two-line element set with its epoch extracted.
type TLE struct {
	Name  string
	Line1 string
	Line2 string
	Epoch time.Time
}

// NewTLE validates the element lines and extracts the epoch.
//
// Validation happens here rather than at propagation time because the SGP4
// library log.Fatals on garbage input, and because a malformed ephemeris must
// abort the run before the dataset is touched.
func NewTLE(name, line1, line2 string) (TLE, error) {
	line1 = strings.TrimRight(line1, "\r\n ")
	line2 = strings.TrimRight(line2, "\r\n ")

	if err := validateLines(line1, line2); err != nil {
		return TLE{}, fmt.Errorf("%w: %v", ErrMalformedEphemeris, err)
	}

	epoch, err := parseEpoch(strings.TrimSpace(line1[18:32]))
	if err != nil {
		return TLE{}, fmt.Errorf("%w: %v", ErrMalformedEphemeris, err)
	}

	return TLE{
		Name:  strings.TrimSpace(name),
		Line1: line1,
		Line2: line2,
		Epoch: epoch,
	}, nil
}

func validateLines(line1, line2 string) error {
	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got %q", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got %q", line2[0])
	}
	return nil
}

// parseEpoch converts the YYDDD.DDDDDDDD epoch field of line 1 to time.Time.
// Year 00-56 maps to the 2000s, 57-99 to the 1900s.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch field too short: %q", s)
	}

	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %v", s[:2], err)
	}
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %v", s[2:], err)
	}

	// Day 1 is Jan 1, so offset the fractional day count by one.
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return t.Add(time.Duration((dayOfYear - 1) * float64(24*time.Hour))), nil
}
