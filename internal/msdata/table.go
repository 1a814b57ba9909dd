// Package msdata reads and writes the visibility table container: the
// columns of a correlated measurement set that the near-field correction
// needs (TIME, ANTENNA1/2, UVW, CORRECTED_DATA, channel frequencies and the
// antenna position table), packed into a single little-endian binary file.
//
// The table is read monolithically into memory, mutated in place, and
// written back whole. Each row owns its own slices, so concurrent workers
// may mutate disjoint rows without locking.
package msdata

import "fmt"

// Row is one correlation record.
type Row struct {
	Time     float64 // MJD seconds (MJD * 86400)
	Antenna1 int32
	Antenna2 int32
	UVW      [3]float64  // meters; UVW[2] is the w-term
	Data     []complex64 // nchan * npol, channel-major
}

// At returns the visibility sample for a channel/polarization pair.
func (r *Row) At(npol, ch, pol int) complex64 {
	return r.Data[ch*npol+pol]
}

// Table is the in-memory visibility table.
type Table struct {
	Antennas [][3]float64 // geocentric meters, indexed by antenna ID
	ChanFreq []float64    // Hz, one per channel
	NPol     int
	Rows     []Row
}

// NChan returns the number of frequency channels.
func (t *Table) NChan() int { return len(t.ChanFreq) }

// Validate checks internal consistency after a read or before a write.
func (t *Table) Validate() error {
	if len(t.Antennas) == 0 {
		return fmt.Errorf("msdata: empty antenna table")
	}
	if len(t.ChanFreq) == 0 {
		return fmt.Errorf("msdata: empty channel frequency table")
	}
	if t.NPol < 1 {
		return fmt.Errorf("msdata: npol = %d", t.NPol)
	}
	want := len(t.ChanFreq) * t.NPol
	for i := range t.Rows {
		if len(t.Rows[i].Data) != want {
			return fmt.Errorf("msdata: row %d has %d samples, want %d", i, len(t.Rows[i].Data), want)
		}
	}
	return nil
}
