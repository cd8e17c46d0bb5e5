package plotting

import (
	"fmt"
	"io"

	"github.com/banshee-data/lineprofile/internal/spectral"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderHTML writes a self-contained go-echarts line chart of the spectra to w.
func RenderHTML(w io.Writer, title string, spectra ...*spectral.Spectrum) error {
	if len(spectra) == 0 {
		return fmt.Errorf("no spectra to chart")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%d spectra", len(spectra))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Velocity (km/s)", Type: "value", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "T_B (K)", NameLocation: "middle", NameGap: 40}),
	)

	for _, s := range spectra {
		pts, err := xys(s)
		if err != nil {
			return err
		}
		data := make([]opts.LineData, len(pts))
		for i, p := range pts {
			data[i] = opts.LineData{Value: []interface{}{p.X, p.Y}}
		}
		line.AddSeries(s.Label, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}

	return line.Render(w)
}
