// Package plotting renders spectra as static PNG plots and interactive HTML
// charts.
package plotting

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/banshee-data/lineprofile/internal/spectral"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SavePNG draws every spectrum as a line of brightness temperature against
// velocity and writes the plot to path. The parent directory is created.
func SavePNG(path, title string, spectra ...*spectral.Spectrum) error {
	if len(spectra) == 0 {
		return fmt.Errorf("no spectra to plot")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Velocity (km/s)"
	p.Y.Label.Text = "T_B (K)"

	colors := palette(len(spectra))
	for i, s := range spectra {
		pts, err := xys(s)
		if err != nil {
			return err
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.Label, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save spectrum plot: %w", err)
	}
	return nil
}

func xys(s *spectral.Spectrum) (plotter.XYs, error) {
	v, err := s.Velocities()
	if err != nil {
		return nil, fmt.Errorf("spectrum %q: %w", s.Label, err)
	}
	if len(v) != len(s.Values) {
		return nil, fmt.Errorf("spectrum %q: %d velocities but %d values", s.Label, len(v), len(s.Values))
	}
	pts := make(plotter.XYs, len(v))
	for i := range v {
		pts[i] = plotter.XY{X: v[i], Y: s.Values[i]}
	}
	return pts, nil
}

// palette creates n distinct colors spread around the hue wheel.
func palette(n int) []color.Color {
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		r, g, b := hslToRGB(float64(i)/float64(n), 0.7, 0.45)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
