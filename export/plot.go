package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotSink renders each run's series as <Dir>/<site>-<round>-<id>.png:
// traversal cycles against sample index, one point per interval.
type PlotSink struct {
	Dir string
}

// NewPlot returns a sink writing under dir, creating it if needed.
func NewPlot(dir string) (*PlotSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: plot dir: %w", err)
	}
	return &PlotSink{Dir: dir}, nil
}

// Path returns the image a run is rendered to.
func (p *PlotSink) Path(r *Run) string {
	return filepath.Join(p.Dir, r.Site+"-"+strconv.Itoa(r.Round)+"-"+r.ID+".png")
}

// Export renders the run. Empty runs produce no image.
func (p *PlotSink) Export(r *Run) error {
	if len(r.Samples) == 0 {
		return nil
	}

	xys := make(plotter.XYs, len(r.Samples))
	for i, v := range r.Samples {
		xys[i].X = float64(i)
		xys[i].Y = float64(v)
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("export: plot %s: %w", r.ID, err)
	}
	line.LineStyle.Width = vg.Points(0.5)

	pl := plot.New()
	pl.Title.Text = r.Site + " round " + strconv.Itoa(r.Round)
	pl.X.Label.Text = "sample"
	pl.Y.Label.Text = "traversal cycles"
	pl.Add(line)

	if err := pl.Save(30*vg.Centimeter, 12*vg.Centimeter, p.Path(r)); err != nil {
		return fmt.Errorf("export: save plot %s: %w", r.ID, err)
	}
	return nil
}

// Close is a no-op.
func (p *PlotSink) Close() error { return nil }
