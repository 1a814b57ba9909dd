// Command leovision corrects radio-interferometer visibility data for the
// near-field geometry of a LEO satellite pass: the far-field w-terms of the
// head and tail reference times are replaced with ranges computed against an
// SGP4-propagated satellite position, and the visibility samples are rotated
// by the implied per-channel phase.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/StevePrabu/LEOVision/internal/correct"
	"github.com/StevePrabu/LEOVision/internal/ephem"
	"github.com/StevePrabu/LEOVision/internal/metrics"
	"github.com/StevePrabu/LEOVision/internal/msdata"
	"github.com/StevePrabu/LEOVision/internal/mstime"
	"github.com/StevePrabu/LEOVision/internal/propagation"
	"github.com/StevePrabu/LEOVision/internal/report"
)

var (
	msPath      string
	tleSource   string
	headTimeStr string
	workers     int
	outPrefix   string
	tailOffset  float64
	debug       bool
	pushURL     string
)

var rootCmd = &cobra.Command{
	Use:   "leovision",
	Short: "Near-field phase correction for LEO satellite passes",
	Long: `leovision rewrites the w-terms and visibility phases of a correlated
dataset so that a LEO satellite is treated as a near-field (spherical
wavefront) source instead of a far-field one. Rows at the head reference
time and the tail time (head minus --tailOffset seconds) are corrected;
every other row is left untouched. The corrected table is written back
atomically, alongside a per-baseline correction CSV, a distinct-timestamp
CSV and a w-term scatter plot.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&msPath, "ms", "", "visibility table to correct")
	rootCmd.Flags().StringVar(&tleSource, "tle", "", "ephemeris descriptor: JSON file path or http(s) URL")
	rootCmd.Flags().StringVar(&headTimeStr, "headTime", "", "head reference time, UTC (2006-01-02T15:04:05 with optional fractional seconds)")
	rootCmd.Flags().IntVar(&workers, "j", 10, "worker count for propagation and the row loop")
	rootCmd.Flags().StringVar(&outPrefix, "t", "leovision", "output file prefix")
	rootCmd.Flags().Float64Var(&tailOffset, "tailOffset", 2.0, "seconds between head and tail reference times")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "verbose timing output")
	rootCmd.Flags().StringVar(&pushURL, "pushgateway", "", "Prometheus Pushgateway URL for run metrics (optional)")

	for _, f := range []string{"ms", "tle", "headTime"} {
		if err := rootCmd.MarkFlagRequired(f); err != nil {
			panic(err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The reference times must parse before anything is read or computed.
	head, err := mstime.ParseRefTime(headTimeStr)
	if err != nil {
		logger.Error("invalid head time", "value", headTimeStr, "error", err)
		return err
	}
	refTimes := []time.Time{head, head.Add(-time.Duration(tailOffset * float64(time.Second)))}

	// Ephemeris loads and validates before the dataset is opened, so a
	// malformed descriptor aborts with the table untouched.
	tle, err := ephem.Load(ctx, tleSource)
	if err != nil {
		logger.Error("loading ephemeris", "source", tleSource, "error", err)
		return err
	}
	prop, err := propagation.NewSGP4(tle)
	if err != nil {
		logger.Error("initializing propagator", "error", err)
		return err
	}
	logger.Info("ephemeris loaded",
		"object", tle.Name,
		"epoch", tle.Epoch.Format(time.RFC3339),
		"head_time", head.Format(time.RFC3339Nano),
		"tail_offset_s", tailOffset,
	)

	tab, err := msdata.Read(msPath)
	if err != nil {
		logger.Error("reading visibility table", "path", msPath, "error", err)
		return err
	}
	metrics.SetDatasetRows(len(tab.Rows))
	logger.Info("visibility table loaded",
		"path", msPath,
		"rows", len(tab.Rows),
		"antennas", len(tab.Antennas),
		"channels", tab.NChan(),
		"polarizations", tab.NPol,
	)

	cacheStart := time.Now()
	cache, err := propagation.BuildRangeCache(ctx, prop, tab.Antennas, head, workers, logger)
	if err != nil {
		logger.Error("building range cache", "error", err)
		return err
	}
	metrics.ObserveRangeCacheBuild(time.Since(cacheStart))
	logger.Debug("range cache timing", "duration_ms", time.Since(cacheStart).Milliseconds())

	cor := correct.NewCorrector(tab.Antennas, cache)
	loopStart := time.Now()
	res, err := correct.Process(ctx, tab, cor, correct.Options{
		RefTimes: refTimes,
		Workers:  workers,
	}, logger)
	if err != nil {
		logger.Error("row correction failed, dataset left untouched", "error", err)
		return err
	}
	metrics.ObserveRowLoop(time.Since(loopStart))
	metrics.AddRowsCorrected(res.RowsCorrected)

	// Persistence is all-or-nothing: nothing above mutated the file, and the
	// write itself goes through a temp file plus rename.
	if err := msdata.Write(msPath, tab); err != nil {
		logger.Error("writing visibility table", "path", msPath, "error", err)
		return err
	}

	if err := report.WriteCorrections(outPrefix+"_corrections.csv", res.Corrections, head); err != nil {
		logger.Error("writing correction log", "error", err)
		return err
	}
	if err := report.WriteTimestamps(outPrefix+"_timestamps.csv", res.Timestamps); err != nil {
		logger.Error("writing timestamp log", "error", err)
		return err
	}
	if err := report.PlotWTerms(outPrefix+"_wterm.png", res.Corrections); err != nil {
		logger.Error("writing w-term plot", "error", err)
		return err
	}
	report.Summary(logger, res.Corrections)

	if pushURL != "" {
		// The table is already corrected and persisted; a metrics push
		// failure downgrades to a warning.
		if err := metrics.Push(pushURL); err != nil {
			logger.Warn("pushing metrics", "error", err)
		}
	}

	logger.Info("run complete",
		"rows_corrected", res.RowsCorrected,
		"matched_timestamps", len(res.Timestamps),
		"output_prefix", outPrefix,
	)
	return nil
}
