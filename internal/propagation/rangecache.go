package propagation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/StevePrabu/LEOVision/internal/frame"
)

// RangeCache holds the line-of-sight range from every antenna to the
// satellite at the reference instant. Propagation is the expensive step, so
// it runs once per antenna here instead of once per baseline row; the cache
// is read-only afterwards and safe for concurrent lookups.
type RangeCache struct {
	at     time.Time
	ranges []float64 // indexed by antenna ID
}

// Range returns the cached range in meters for an antenna ID.
func (c *RangeCache) Range(id int) (float64, bool) {
	if id < 0 || id >= len(c.ranges) {
		return 0, false
	}
	return c.ranges[id], true
}

// Len returns the number of antennas in the cache.
func (c *RangeCache) Len() int { return len(c.ranges) }

// At returns the instant the ranges were evaluated at.
func (c *RangeCache) At() time.Time { return c.at }

type rangeJob struct {
	id  int
	pos frame.ECEF
}

type rangeResult struct {
	id  int
	rng float64
	err error
}

// BuildRangeCache computes the range from each antenna (geocentric meters)
// to the satellite at the given instant, one entry per antenna, fanned out
// across a worker pool. Any per-antenna failure fails the build: a partial
// range table would make the correction scientifically invalid.
func BuildRangeCache(ctx context.Context, prop *SGP4, antennas [][3]float64, at time.Time, workers int, logger *slog.Logger) (*RangeCache, error) {
	if len(antennas) == 0 {
		return nil, fmt.Errorf("propagation: empty antenna table")
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(antennas) {
		workers = len(antennas)
	}

	jobs := make(chan rangeJob, workers*2)
	results := make(chan rangeResult, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				result := rangeSingle(prop, job, at)
				select {
				case results <- result:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for id, pos := range antennas {
			job := rangeJob{id: id, pos: frame.ECEF{X: pos[0], Y: pos[1], Z: pos[2]}}
			select {
			case jobs <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ranges := make([]float64, len(antennas))
	var firstErr error
	var done int
	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("antenna %d: %w", result.id, result.err)
			}
			continue
		}
		ranges[result.id] = result.rng
		done++
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if done != len(antennas) {
		return nil, fmt.Errorf("propagation: ranged %d of %d antennas", done, len(antennas))
	}

	logger.Debug("range cache built",
		"antennas", len(antennas),
		"at", at.UTC().Format(time.RFC3339Nano),
		"workers", workers,
	)

	return &RangeCache{at: at, ranges: ranges}, nil
}

// rangeSingle converts one antenna's geocentric position to a geodetic
// observer and evaluates its slant range to the satellite.
func rangeSingle(prop *SGP4, job rangeJob, at time.Time) rangeResult {
	obs := frame.NewObserver(frame.FromECEF(job.pos))
	rng, err := prop.RangeTo(obs, at)
	if err != nil {
		return rangeResult{id: job.id, err: err}
	}
	return rangeResult{id: job.id, rng: rng}
}
