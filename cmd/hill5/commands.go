package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/lineprofile/internal/config"
	"github.com/banshee-data/lineprofile/internal/guess"
	"github.com/banshee-data/lineprofile/internal/models"
	"github.com/banshee-data/lineprofile/internal/monitoring"
	"github.com/banshee-data/lineprofile/internal/plotting"
	"github.com/banshee-data/lineprofile/internal/spectral"
	"github.com/banshee-data/lineprofile/internal/store"
	"github.com/banshee-data/lineprofile/internal/sweep"
	"github.com/banshee-data/lineprofile/internal/units"
	"gonum.org/v1/gonum/floats"
)

var logf = monitoring.Component("hill5")

func runEval(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	mf := addModelFlags(fs)
	pngPath := fs.String("png", "", "Write a PNG plot to this path")
	htmlPath := fs.String("html", "", "Write an HTML chart to this path")
	plot := fs.Bool("plot", false, "Write PNG and HTML plots into the configured plot directory")
	record := fs.Bool("record", false, "Record the evaluation in the database")
	dbPath := fs.String("db", "", "Database path; implies --record (default from config)")
	label := fs.String("label", "", "Label for plots and recorded runs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := mf.resolve(fs)
	if err != nil {
		return err
	}
	s, err := newSetup(cfg)
	if err != nil {
		return err
	}

	values, err := s.model.Evaluate(s.axis, s.params)
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", s.model.Name(), err)
	}
	velocities, err := s.axis.AsUnit(units.KMS)
	if err != nil {
		return err
	}

	if err := writeSpectrumCSV(stdout, velocities, values); err != nil {
		return err
	}

	name := *label
	if name == "" {
		name = s.model.Name()
	}
	spectrum, err := spectral.NewSpectrum(name, s.axis, values)
	if err != nil {
		return err
	}
	if *plot {
		defaultPlotPaths(cfg.GetPlotDir(), name, pngPath, htmlPath)
	}
	if err := writePlots(*pngPath, *htmlPath, name, spectrum); err != nil {
		return err
	}

	if *record || *dbPath != "" {
		if *dbPath != "" {
			cfg.DatabasePath = dbPath
		}
		run := &store.SpectrumRun{
			Model:           s.model.Name(),
			Label:           *label,
			Params:          s.params,
			TBG:             cfg.GetTBG(),
			RestFrequencyHz: cfg.GetRestFrequencyHz(),
			Velocities:      velocities,
			Values:          values,
		}
		if err := recordRun(cfg.GetDatabasePath(), run); err != nil {
			return err
		}
	}
	return nil
}

func runGuess(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("guess", flag.ContinueOnError)
	in := fs.String("in", "", "CSV file of velocity (km/s), brightness (K) rows (required)")
	modelName := fs.String("model", models.Hill5Name, "Model name")
	restHz := fs.Float64("rest-hz", config.DefaultRestFrequencyHz, "Line rest frequency (Hz)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("--in is required")
	}

	m, err := models.Default().Lookup(*modelName)
	if err != nil {
		return err
	}

	f, err := os.Open(filepath.Clean(*in))
	if err != nil {
		return fmt.Errorf("open spectrum: %w", err)
	}
	defer f.Close()

	velocities, values, err := readSpectrumCSV(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", *in, err)
	}
	axis, err := spectral.NewAxis(velocities, units.KMS, *restHz)
	if err != nil {
		return err
	}
	spectrum, err := spectral.NewSpectrum(filepath.Base(*in), axis, values)
	if err != nil {
		return err
	}

	params, err := guess.Initial(m.Descriptor(), spectrum)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for i, name := range m.Descriptor().ParNames() {
		fmt.Fprintf(tw, "%s\t%s\n", name, strconv.FormatFloat(params[i], 'g', 6, 64))
	}
	return tw.Flush()
}

func runSweep(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	mf := addModelFlags(fs)
	param := fs.String("param", "v_infall", "Parameter to sweep")
	valuesSpec := fs.String("values", "0:1:0.2", "Values as min:max:step or a comma-separated list")
	pngPath := fs.String("png", "", "Write a PNG plot of every spectrum to this path")
	htmlPath := fs.String("html", "", "Write an HTML chart of every spectrum to this path")
	plot := fs.Bool("plot", false, "Write PNG and HTML plots into the configured plot directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := mf.resolve(fs)
	if err != nil {
		return err
	}
	s, err := newSetup(cfg)
	if err != nil {
		return err
	}

	values, err := sweep.ParseParamList(*valuesSpec)
	if err != nil {
		return fmt.Errorf("invalid --values: %w", err)
	}
	if len(values) == 0 {
		return fmt.Errorf("--values %q produced no values", *valuesSpec)
	}

	start := time.Now()
	points, err := sweep.Run(s.model, s.axis, s.params, *param, values)
	if err != nil {
		return err
	}
	logf("swept %s over %d values in %v", *param, len(points), time.Since(start))

	w := csv.NewWriter(stdout)
	if err := w.Write([]string{*param, "blue_red_ratio", "peak_k"}); err != nil {
		return err
	}
	spectra := make([]*spectral.Spectrum, 0, len(points))
	for _, p := range points {
		if err := w.Write([]string{
			formatFloat(p.Value),
			formatFloat(p.BlueRedRatio),
			formatFloat(floats.Max(p.Spectrum)),
		}); err != nil {
			return err
		}
		sp, err := spectral.NewSpectrum(fmt.Sprintf("%s=%g", *param, p.Value), s.axis, p.Spectrum)
		if err != nil {
			return err
		}
		spectra = append(spectra, sp)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	title := fmt.Sprintf("%s sweep of %s", s.model.Name(), *param)
	if *plot {
		defaultPlotPaths(cfg.GetPlotDir(), title, pngPath, htmlPath)
	}
	return writePlots(*pngPath, *htmlPath, title, spectra...)
}

func runRuns(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	configPath := fs.String("config", "", "JSON or YAML config file")
	dbPath := fs.String("db", "", "Database path (default from config, "+config.DefaultDatabasePath+")")
	modelName := fs.String("model", "", "Model to list runs for (default from config, hill5)")
	deleteID := fs.String("delete", "", "Delete the run with this ID")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if *modelName != "" {
		cfg.Model = modelName
	}

	db, err := store.Open(cfg.GetDatabasePath())
	if err != nil {
		return err
	}
	defer db.Close()
	runs := store.NewSpectrumStore(db.DB)

	if *deleteID != "" {
		if err := runs.Delete(*deleteID); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "deleted %s\n", *deleteID)
		return nil
	}

	list, err := runs.ListByModel(cfg.GetModel())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tCREATED\tLABEL\tSAMPLES\tPEAK (K)")
	for _, r := range list {
		peak := 0.0
		if len(r.Values) > 0 {
			peak = floats.Max(r.Values)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.4f\n",
			r.RunID,
			time.Unix(0, r.CreatedAt).UTC().Format(time.RFC3339),
			r.Label,
			len(r.Values),
			peak,
		)
	}
	return tw.Flush()
}

func recordRun(path string, run *store.SpectrumRun) error {
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.NewSpectrumStore(db.DB).Insert(run); err != nil {
		return err
	}
	logf("recorded run %s in %s", run.RunID, path)
	return nil
}

// defaultPlotPaths fills any unset plot path with a file in dir named
// after label.
func defaultPlotPaths(dir, label string, pngPath, htmlPath *string) {
	if *pngPath == "" {
		*pngPath = plotting.OutputPath(dir, label, "png")
	}
	if *htmlPath == "" {
		*htmlPath = plotting.OutputPath(dir, label, "html")
	}
}

func writePlots(pngPath, htmlPath, title string, spectra ...*spectral.Spectrum) error {
	if pngPath != "" {
		if err := plotting.SavePNG(pngPath, title, spectra...); err != nil {
			return err
		}
		logf("wrote %s", pngPath)
	}
	if htmlPath != "" {
		if err := os.MkdirAll(filepath.Dir(htmlPath), 0o755); err != nil {
			return fmt.Errorf("create plot dir: %w", err)
		}
		f, err := os.Create(htmlPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", htmlPath, err)
		}
		if err := plotting.RenderHTML(f, title, spectra...); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logf("wrote %s", htmlPath)
	}
	return nil
}

func writeSpectrumCSV(w io.Writer, velocities, values []float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"velocity_kms", "tb_k"}); err != nil {
		return err
	}
	for i := range values {
		if err := cw.Write([]string{formatFloat(velocities[i]), formatFloat(values[i])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// readSpectrumCSV reads velocity, brightness pairs. A non-numeric first row
// is treated as a header; lines starting with '#' are comments.
func readSpectrumCSV(r io.Reader) (velocities, values []float64, err error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	for i, row := range rows {
		if len(row) < 2 {
			return nil, nil, fmt.Errorf("row %d: expected 2 columns, got %d", i+1, len(row))
		}
		v, verr := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		t, terr := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if verr != nil || terr != nil {
			if i == 0 {
				continue
			}
			return nil, nil, fmt.Errorf("row %d: non-numeric value", i+1)
		}
		velocities = append(velocities, v)
		values = append(values, t)
	}
	if len(values) == 0 {
		return nil, nil, errors.New("no samples")
	}
	return velocities, values, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
