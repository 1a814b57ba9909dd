package correct

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/cmplx"
	"sort"
	"sync"
	"time"

	"github.com/StevePrabu/LEOVision/internal/msdata"
	"github.com/StevePrabu/LEOVision/internal/mstime"
)

// Options configures the row loop.
type Options struct {
	// RefTimes are the instants whose rows get corrected; RefTimes[0] is the
	// head time the geometry was evaluated at. Tail rows are deliberately
	// corrected against the same head-time geometry.
	RefTimes []time.Time
	// Epsilon bounds the numeric timestamp match; zero means
	// mstime.DefaultEpsilon.
	Epsilon time.Duration
	// Workers sizes the row worker pool; values below 1 mean single-threaded.
	Workers int
}

// Result carries the run's accumulators.
type Result struct {
	// Corrections in worker-chunk order: ordered within each contiguous row
	// chunk, chunks concatenated in row order, so the log is deterministic
	// for a fixed worker count.
	Corrections []Correction
	// Timestamps are the distinct row timestamps that matched a reference
	// time (self-correlations included), ascending.
	Timestamps    []time.Time
	RowsCorrected int
}

// Process runs the correction over every row of the table.
//
// Rows whose timestamp matches a reference time and that are not
// self-correlations get their w-term replaced and their samples rotated by
// exp(-2πi·phi/λ[ch]) per channel; all other rows are untouched. Rows are
// independent, so the loop fans out over contiguous chunks with
// worker-local accumulators merged at the end. Any row failure aborts the
// whole run before anything is persisted.
func Process(ctx context.Context, tab *msdata.Table, cor *Corrector, opts Options, logger *slog.Logger) (*Result, error) {
	if len(opts.RefTimes) == 0 {
		return nil, fmt.Errorf("correct: no reference times")
	}
	eps := opts.Epsilon
	if eps == 0 {
		eps = mstime.DefaultEpsilon
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(tab.Rows) {
		workers = len(tab.Rows)
	}
	if len(tab.Rows) == 0 {
		return &Result{}, nil
	}

	lambda := Wavelengths(tab.ChanFreq)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()

	chunks := splitRows(len(tab.Rows), workers)
	results := make([]chunkResult, len(chunks))

	var wg sync.WaitGroup
	for ci, ch := range chunks {
		wg.Add(1)
		go func(ci, lo, hi int) {
			defer wg.Done()
			results[ci] = processChunk(ctx, cancel, tab, cor, opts.RefTimes, eps, lambda, lo, hi)
		}(ci, ch[0], ch[1])
	}
	wg.Wait()

	res := &Result{}
	stamps := make(map[float64]time.Time)
	for _, cr := range results {
		if cr.err != nil {
			return nil, cr.err
		}
		res.Corrections = append(res.Corrections, cr.entries...)
		res.RowsCorrected += cr.corrected
		for k, v := range cr.stamps {
			stamps[k] = v
		}
	}

	res.Timestamps = make([]time.Time, 0, len(stamps))
	for _, v := range stamps {
		res.Timestamps = append(res.Timestamps, v)
	}
	sort.Slice(res.Timestamps, func(i, j int) bool { return res.Timestamps[i].Before(res.Timestamps[j]) })

	logger.Debug("row loop complete",
		"rows", len(tab.Rows),
		"corrected", res.RowsCorrected,
		"matched_timestamps", len(res.Timestamps),
		"workers", workers,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return res, nil
}

type chunkResult struct {
	entries   []Correction
	stamps    map[float64]time.Time
	corrected int
	err       error
}

func processChunk(ctx context.Context, cancel context.CancelFunc, tab *msdata.Table, cor *Corrector, refTimes []time.Time, eps time.Duration, lambda []float64, lo, hi int) chunkResult {
	res := chunkResult{stamps: make(map[float64]time.Time)}

	for i := lo; i < hi; i++ {
		if i%1024 == 0 {
			select {
			case <-ctx.Done():
				res.err = ctx.Err()
				return res
			default:
			}
		}

		row := &tab.Rows[i]
		ts := mstime.FromMJDSeconds(row.Time)

		matched := false
		for _, ref := range refTimes {
			if mstime.Matches(ts, ref, eps) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		// Keyed on the raw column value, so float-identical rows dedupe
		// exactly.
		res.stamps[row.Time] = ts

		if row.Antenna1 == row.Antenna2 {
			continue
		}

		corr, err := cor.Baseline(int(row.Antenna1), int(row.Antenna2), row.UVW[2])
		if err != nil {
			res.err = fmt.Errorf("row %d: %w", i, err)
			cancel()
			return res
		}

		row.UVW[2] = corr.WNew
		Rotate(row.Data, tab.NPol, corr.Phi, lambda)

		res.entries = append(res.entries, corr)
		res.corrected++
	}
	return res
}

// Rotate applies the phase correction to one row's samples: every
// polarization of channel ch is multiplied by exp(-2πi·phi/λ[ch]). The
// rotation is per channel because λ varies across the band; it preserves
// sample magnitudes.
func Rotate(data []complex64, npol int, phi float64, lambda []float64) {
	for ch, l := range lambda {
		f := cmplx.Exp(complex(0, -2*math.Pi*phi/l))
		base := ch * npol
		for p := 0; p < npol; p++ {
			data[base+p] = complex64(complex128(data[base+p]) * f)
		}
	}
}

// splitRows partitions [0, n) into at most k contiguous [lo, hi) chunks.
func splitRows(n, k int) [][2]int {
	chunks := make([][2]int, 0, k)
	size := (n + k - 1) / k
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		chunks = append(chunks, [2]int{lo, hi})
	}
	return chunks
}
