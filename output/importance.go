package output

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Importance is the mean decrease in impurity attributed to one feature.
type Importance struct {
	Feature string
	Value   float64
}

// TopImportances returns the n most important features, most important first. Ties keep feature order.
func TopImportances(names []string, values []float64, n int) []Importance {
	imps := make([]Importance, 0, len(values))
	for i, v := range values {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		imps = append(imps, Importance{Feature: name, Value: v})
	}
	sort.SliceStable(imps, func(i, j int) bool {
		return imps[i].Value > imps[j].Value
	})
	if n >= 0 && n < len(imps) {
		imps = imps[:n]
	}
	return imps
}

// PlotImportance draws a bar chart of feature importances and saves it to path; the image format
// follows the file extension.
func PlotImportance(path string, imps []Importance) error {
	if len(imps) == 0 {
		return errors.New("no feature importances to plot")
	}

	values := make(plotter.Values, len(imps))
	names := make([]string, len(imps))
	for i, imp := range imps {
		values[i] = imp.Value
		names[i] = imp.Feature
	}

	p := plot.New()
	p.Y.Label.Text = "Mean decrease in impurity"

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return errors.Wrap(err, "building bar chart")
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	p.Add(bars)

	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 2.5
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving %s", path)
	}
	return nil
}
