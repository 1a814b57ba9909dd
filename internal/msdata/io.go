package msdata

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var magic = [4]byte{'V', 'T', 'B', 'L'}

const formatVersion = 1

// header is the fixed-size file preamble.
type header struct {
	Magic   [4]byte
	Version uint32
	NRows   uint32
	NChan   uint32
	NPol    uint32
	NAnt    uint32
}

// rowFixed is the fixed-size part of one row record; the sample block
// follows it.
type rowFixed struct {
	Time     float64
	Antenna1 int32
	Antenna2 int32
	UVW      [3]float64
}

// Read loads a visibility table from disk in one pass.
func Read(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("msdata: open: %w", err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 1<<20)

	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("msdata: reading header: %w", err)
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("msdata: %s is not a visibility table (bad magic %q)", path, h.Magic)
	}
	if h.Version != formatVersion {
		return nil, fmt.Errorf("msdata: unsupported format version %d", h.Version)
	}

	tab := &Table{
		Antennas: make([][3]float64, h.NAnt),
		ChanFreq: make([]float64, h.NChan),
		NPol:     int(h.NPol),
		Rows:     make([]Row, h.NRows),
	}

	for i := range tab.Antennas {
		if err := binary.Read(r, binary.LittleEndian, &tab.Antennas[i]); err != nil {
			return nil, fmt.Errorf("msdata: reading antenna %d: %w", i, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, tab.ChanFreq); err != nil {
		return nil, fmt.Errorf("msdata: reading channel frequencies: %w", err)
	}

	samples := int(h.NChan) * int(h.NPol)
	for i := range tab.Rows {
		var fx rowFixed
		if err := binary.Read(r, binary.LittleEndian, &fx); err != nil {
			return nil, fmt.Errorf("msdata: reading row %d: %w", i, err)
		}
		data := make([]complex64, samples)
		if err := binary.Read(r, binary.LittleEndian, data); err != nil {
			return nil, fmt.Errorf("msdata: reading row %d samples: %w", i, err)
		}
		tab.Rows[i] = Row{
			Time:     fx.Time,
			Antenna1: fx.Antenna1,
			Antenna2: fx.Antenna2,
			UVW:      fx.UVW,
			Data:     data,
		}
	}

	if err := tab.Validate(); err != nil {
		return nil, err
	}
	return tab, nil
}

// Write persists the table atomically: the content goes to a temporary file
// in the same directory, synced, then renamed over the target. A failure at
// any point leaves the original file untouched.
func Write(path string, tab *Table) error {
	if err := tab.Validate(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := encode(&buf, tab); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".vtbl-*")
	if err != nil {
		return fmt.Errorf("msdata: creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("msdata: writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("msdata: syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("msdata: closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("msdata: replacing %s: %w", path, err)
	}
	return nil
}

func encode(w io.Writer, tab *Table) error {
	h := header{
		Magic:   magic,
		Version: formatVersion,
		NRows:   uint32(len(tab.Rows)),
		NChan:   uint32(len(tab.ChanFreq)),
		NPol:    uint32(tab.NPol),
		NAnt:    uint32(len(tab.Antennas)),
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("msdata: writing header: %w", err)
	}
	for i := range tab.Antennas {
		if err := binary.Write(w, binary.LittleEndian, &tab.Antennas[i]); err != nil {
			return fmt.Errorf("msdata: writing antenna %d: %w", i, err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, tab.ChanFreq); err != nil {
		return fmt.Errorf("msdata: writing channel frequencies: %w", err)
	}
	for i := range tab.Rows {
		row := &tab.Rows[i]
		fx := rowFixed{
			Time:     row.Time,
			Antenna1: row.Antenna1,
			Antenna2: row.Antenna2,
			UVW:      row.UVW,
		}
		if err := binary.Write(w, binary.LittleEndian, &fx); err != nil {
			return fmt.Errorf("msdata: writing row %d: %w", i, err)
		}
		if err := binary.Write(w, binary.LittleEndian, row.Data); err != nil {
			return fmt.Errorf("msdata: writing row %d samples: %w", i, err)
		}
	}
	return nil
}
