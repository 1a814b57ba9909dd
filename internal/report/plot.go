package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/StevePrabu/LEOVision/internal/correct"
)

// PlotWTerms renders the diagnostic scatter: physical baseline length
// against the old w, the near-field w, and their difference.
func PlotWTerms(path string, entries []correct.Correction) error {
	p := plot.New()
	p.Title.Text = "Near-field w-term correction"
	p.X.Label.Text = "baseline length (m)"
	p.Y.Label.Text = "w (m)"

	oldPts := make(plotter.XYs, len(entries))
	newPts := make(plotter.XYs, len(entries))
	deltaPts := make(plotter.XYs, len(entries))
	for i, e := range entries {
		oldPts[i] = plotter.XY{X: e.Dist, Y: e.WOld}
		newPts[i] = plotter.XY{X: e.Dist, Y: e.WNew}
		deltaPts[i] = plotter.XY{X: e.Dist, Y: e.WNew - e.WOld}
	}

	if err := plotutil.AddScatters(p,
		"w_old", oldPts,
		"w_new", newPts,
		"w_new - w_old", deltaPts,
	); err != nil {
		return fmt.Errorf("report: building scatter: %w", err)
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("report: saving plot %s: %w", path, err)
	}
	return nil
}
