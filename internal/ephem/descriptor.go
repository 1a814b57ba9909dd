// Package ephem loads the satellite ephemeris descriptor: a JSON array whose
// entries carry OBJECT_NAME, TLE_LINE1 and TLE_LINE2 — the shape celestrak
// emits for FORMAT=json queries. Only the first entry is used; the tool
// corrects for a single satellite pass.
package ephem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMalformedEphemeris covers a descriptor that is unreadable, empty, or
// missing a required TLE field. It is fatal before any dataset access.
var ErrMalformedEphemeris = errors.New("ephem: malformed descriptor")

// descriptorEntry mirrors one element of the JSON array.
type descriptorEntry struct {
	ObjectName string `json:"OBJECT_NAME"`
	Line1      string `json:"TLE_LINE1"`
	Line2      string `json:"TLE_LINE2"`
}

// Load reads the first entry of a descriptor from a local file or, when the
// source starts with http:// or https://, from a remote endpoint.
func Load(ctx context.Context, source string) (TLE, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return TLE{}, fmt.Errorf("%w: reading %s: %v", ErrMalformedEphemeris, source, err)
	}
	return Parse(data)
}

// Parse decodes a descriptor and validates its first entry into a TLE.
func Parse(data []byte) (TLE, error) {
	var entries []descriptorEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return TLE{}, fmt.Errorf("%w: %v", ErrMalformedEphemeris, err)
	}
	if len(entries) == 0 {
		return TLE{}, fmt.Errorf("%w: descriptor holds no entries", ErrMalformedEphemeris)
	}

	first := entries[0]
	if first.Line1 == "" {
		return TLE{}, fmt.Errorf("%w: first entry missing TLE_LINE1", ErrMalformedEphemeris)
	}
	if first.Line2 == "" {
		return TLE{}, fmt.Errorf("%w: first entry missing TLE_LINE2", ErrMalformedEphemeris)
	}

	return NewTLE(first.ObjectName, first.Line1, first.Line2)
}
