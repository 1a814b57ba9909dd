// Package report writes the run's diagnostic outputs: the per-baseline
// correction CSV, the distinct-timestamp CSV, a scatter plot of baseline
// length against the old/new/delta w-terms, and summary statistics.
package report

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/StevePrabu/LEOVision/internal/correct"
)

// timeLayout matches the precision the head time is specified with.
const timeLayout = "2006-01-02T15:04:05.000000"

// WriteCorrections writes one CSV line per corrected baseline-row, in the
// accumulator's order.
func WriteCorrections(path string, entries []correct.Correction, headTime time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"dist", "w_new", "w_old", "phi", "head_time"}); err != nil {
		return fmt.Errorf("report: writing header: %w", err)
	}
	head := headTime.UTC().Format(timeLayout)
	for _, e := range entries {
		rec := []string{
			formatFloat(e.Dist),
			formatFloat(e.WNew),
			formatFloat(e.WOld),
			formatFloat(e.Phi),
			head,
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("report: writing record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("report: flushing %s: %w", path, err)
	}
	return nil
}

// WriteTimestamps writes the distinct matched row timestamps, one per line.
func WriteTimestamps(path string, stamps []time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp"}); err != nil {
		return fmt.Errorf("report: writing header: %w", err)
	}
	for _, s := range stamps {
		if err := w.Write([]string{s.UTC().Format(timeLayout)}); err != nil {
			return fmt.Errorf("report: writing record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("report: flushing %s: %w", path, err)
	}
	return nil
}

// Summary logs mean and standard deviation of the applied corrections.
func Summary(logger *slog.Logger, entries []correct.Correction) {
	if len(entries) == 0 {
		logger.Info("no corrections applied")
		return
	}
	phi := make([]float64, len(entries))
	dw := make([]float64, len(entries))
	for i, e := range entries {
		phi[i] = e.Phi
		dw[i] = e.WNew - e.WOld
	}
	phiMean, phiStd := stat.MeanStdDev(phi, nil)
	dwMean, dwStd := stat.MeanStdDev(dw, nil)

	logger.Info("correction summary",
		"baselines", len(entries),
		"phi_mean_m", phiMean,
		"phi_stddev_m", phiStd,
		"delta_w_mean_m", dwMean,
		"delta_w_stddev_m", dwStd,
	)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
