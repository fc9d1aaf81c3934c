package output

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/guptarohit/asciigraph"
	"github.com/hscells/tagpipe/eval"
	"github.com/pkg/errors"
)

func curveChart(title, xName, yName string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Evaluation", Width: "720px", Height: "540px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: 0, Max: 1, Name: xName, NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: 0, Max: 1, Name: yName, NameLocation: "middle", NameGap: 30}),
	)
	return line
}

// RenderReport renders the precision-recall and ROC curves of each split as an HTML page.
func RenderReport(reports []eval.Report) ([]byte, error) {
	prc := curveChart("Precision-Recall", "Recall", "Precision")
	roc := curveChart("ROC", "False positive rate", "True positive rate")

	for _, r := range reports {
		data := make([]opts.LineData, len(r.PRC))
		for i, p := range r.PRC {
			data[i] = opts.LineData{Value: []interface{}{p.Recall, p.Precision}}
		}
		prc.AddSeries(r.Split, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

		if r.ROC == nil {
			continue
		}
		data = make([]opts.LineData, len(r.ROC))
		for i, p := range r.ROC {
			data[i] = opts.LineData{Value: []interface{}{p.FPR, p.TPR}}
		}
		roc.AddSeries(r.Split, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}

	page := components.NewPage()
	page.PageTitle = "Evaluation"
	page.AddCharts(prc, roc)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, errors.Wrap(err, "rendering report")
	}
	return buf.Bytes(), nil
}

// WriteReport renders the HTML report to path.
func WriteReport(path string, reports []eval.Report) error {
	b, err := RenderReport(reports)
	if err != nil {
		return err
	}
	return WriteFile(path, b)
}

// PlotPrecision draws the precision of a curve, in threshold order, as text for terminals.
// An empty curve draws nothing.
func PlotPrecision(c eval.Curve, width, height int) string {
	if len(c) == 0 {
		return ""
	}
	data := make([]float64, len(c))
	for i, p := range c {
		data[i] = p.Precision
	}
	return asciigraph.Plot(data,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(fmt.Sprintf("precision over %d thresholds", len(c))))
}
