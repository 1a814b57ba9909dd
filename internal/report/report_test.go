package report

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/StevePrabu/LEOVision/internal/correct"
)

func sampleEntries() []correct.Correction {
	return []correct.Correction{
		{Dist: 100, WNew: 42.5, WOld: 40.0, Phi: 2.5},
		{Dist: 250.25, WNew: -13.125, WOld: -10.0, Phi: -3.125},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return recs
}

func TestWriteCorrections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrections.csv")
	head := time.Date(2021, 6, 1, 12, 0, 0, 500000000, time.UTC)

	if err := WriteCorrections(path, sampleEntries(), head); err != nil {
		t.Fatalf("WriteCorrections: %v", err)
	}

	recs := readCSV(t, path)
	if len(recs) != 3 {
		t.Fatalf("%d CSV records, want header + 2", len(recs))
	}
	if recs[0][0] != "dist" || recs[0][4] != "head_time" {
		t.Errorf("unexpected header %v", recs[0])
	}
	if recs[1][1] != "42.500000" {
		t.Errorf("w_new column = %q", recs[1][1])
	}
	if recs[1][4] != "2021-06-01T12:00:00.500000" {
		t.Errorf("head_time column = %q", recs[1][4])
	}
}

func TestWriteTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timestamps.csv")
	stamps := []time.Time{
		time.Date(2021, 6, 1, 11, 59, 58, 0, time.UTC),
		time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	if err := WriteTimestamps(path, stamps); err != nil {
		t.Fatalf("WriteTimestamps: %v", err)
	}

	recs := readCSV(t, path)
	if len(recs) != 3 {
		t.Fatalf("%d CSV records, want header + 2", len(recs))
	}
	if recs[2][0] != "2021-06-01T12:00:00.000000" {
		t.Errorf("timestamp column = %q", recs[2][0])
	}
}

func TestPlotWTerms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wterm.png")
	if err := PlotWTerms(path, sampleEntries()); err != nil {
		t.Fatalf("PlotWTerms: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat plot: %v", err)
	}
	if info.Size() == 0 {
		t.Error("plot file is empty")
	}
}

func TestSummary_Empty(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	// Must not panic on an empty run.
	Summary(logger, nil)
}
