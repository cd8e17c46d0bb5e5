package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/banshee-data/lineprofile/internal/monitoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet(t *testing.T) {
	t.Helper()
	monitoring.SetLogger(nil)
}

func runCmd(t *testing.T, command string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(command, args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func parseCSV(t *testing.T, s string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(s)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestVersionAndHelp(t *testing.T) {
	out, _, code := runCmd(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "hill5 version")

	out, _, code = runCmd(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Commands:")
}

func TestUnknownCommand(t *testing.T) {
	_, errOut, code := runCmd(t, "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Unknown command: frobnicate")
}

func TestEvalDefaults(t *testing.T) {
	quiet(t)
	out, errOut, code := runCmd(t, "eval")
	require.Equal(t, 0, code, errOut)

	rows := parseCSV(t, out)
	require.Len(t, rows, 102, "header plus -5:5:0.1")
	assert.Equal(t, []string{"velocity_kms", "tb_k"}, rows[0])
	assert.Equal(t, "-5", rows[1][0])
	assert.Equal(t, "5", rows[101][0])
}

func TestEvalFlagsOverride(t *testing.T) {
	quiet(t)
	out, errOut, code := runCmd(t, "eval", "-range", "-1:1:1", "-v-infall", "0")
	require.Equal(t, 0, code, errOut)

	rows := parseCSV(t, out)
	require.Len(t, rows, 4)
	blue, err := strconv.ParseFloat(rows[1][1], 64)
	require.NoError(t, err)
	red, err := strconv.ParseFloat(rows[3][1], 64)
	require.NoError(t, err)
	// Only the frequency dependence of J separates the two wings.
	assert.InEpsilon(t, blue, red, 1e-4, "no infall gives a symmetric profile")
}

func TestEvalConfigFile(t *testing.T) {
	quiet(t)
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte("velocity_range: \"-2:2:2\"\ntpeak: 2.73\n"), 0o644))

	out, errOut, code := runCmd(t, "eval", "-config", path)
	require.Equal(t, 0, code, errOut)
	rows := parseCSV(t, out)
	require.Len(t, rows, 4)
	for _, row := range rows[1:] {
		tb, err := strconv.ParseFloat(row[1], 64)
		require.NoError(t, err)
		assert.Zero(t, tb, "tpeak == tbg gives no line")
	}

	// Command-line flags win over the file.
	out, errOut, code = runCmd(t, "eval", "-config", path, "-tpeak", "5")
	require.Equal(t, 0, code, errOut)
	rows = parseCSV(t, out)
	peak, err := strconv.ParseFloat(rows[2][1], 64)
	require.NoError(t, err)
	assert.Greater(t, peak, 0.1)
}

func TestEvalErrors(t *testing.T) {
	quiet(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"negative tau", []string{"-tau", "-1"}, "below lower limit"},
		{"bad range", []string{"-range", "1:2"}, "velocity_range"},
		{"unknown model", []string{"-model", "gaussian"}, "unknown model"},
		{"nan result", []string{"-range", "-2:2:1", "-sigma", "0"}, "Hill5 model has a NAN"},
		{"missing config", []string{"-config", "/nonexistent/model.json"}, "stat config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, code := runCmd(t, "eval", tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, errOut, tt.want)
		})
	}
}

func TestEvalPlotsAndRecord(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	pngPath := filepath.Join(dir, "plots", "hill5.png")
	htmlPath := filepath.Join(dir, "plots", "hill5.html")
	dbPath := filepath.Join(dir, "runs.db")

	_, errOut, code := runCmd(t, "eval",
		"-range", "-3:3:0.5",
		"-png", pngPath,
		"-html", htmlPath,
		"-db", dbPath,
		"-label", "infall-demo",
	)
	require.Equal(t, 0, code, errOut)

	assert.FileExists(t, pngPath)
	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "infall-demo")

	out, errOut, code := runCmd(t, "runs", "-db", dbPath)
	require.Equal(t, 0, code, errOut)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "infall-demo")
	assert.Contains(t, lines[1], "13")

	runID := strings.Fields(lines[1])[0]
	out, errOut, code = runCmd(t, "runs", "-db", dbPath, "-delete", runID)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "deleted "+runID)

	_, errOut, code = runCmd(t, "runs", "-db", dbPath, "-delete", runID)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "not found")
}

func TestRunsUsesConfiguredDatabase(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "configured.db")
	cfgPath := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database_path: "+dbPath+"\nvelocity_range: \"-1:1:1\"\n"), 0o644))

	_, errOut, code := runCmd(t, "eval", "-config", cfgPath, "-record", "-label", "from-config")
	require.Equal(t, 0, code, errOut)
	assert.FileExists(t, dbPath)

	out, errOut, code := runCmd(t, "runs", "-config", cfgPath)
	require.Equal(t, 0, code, errOut)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "from-config")
}

func TestEvalRejectsNonFiniteConfig(t *testing.T) {
	quiet(t)
	path := filepath.Join(t.TempDir(), "inf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tpeak: .inf\n"), 0o644))

	_, errOut, code := runCmd(t, "eval", "-config", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "not finite")
}

func TestGuessFromEvaluatedSpectrum(t *testing.T) {
	quiet(t)
	out, errOut, code := runCmd(t, "eval")
	require.Equal(t, 0, code, errOut)

	path := filepath.Join(t.TempDir(), "spectrum.csv")
	require.NoError(t, os.WriteFile(path, []byte("# synthetic\n"+out), 0o644))

	out, errOut, code = runCmd(t, "guess", "-in", path)
	require.Equal(t, 0, code, errOut)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"tau", "1"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"v_infall", "1"}, strings.Fields(lines[2]))
	assert.Equal(t, "tpeak", strings.Fields(lines[4])[0])
}

func TestGuessErrors(t *testing.T) {
	quiet(t)
	_, errOut, code := runCmd(t, "guess")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "--in is required")

	path := filepath.Join(t.TempDir(), "flat.csv")
	require.NoError(t, os.WriteFile(path, []byte("v,t\n-1,0\n0,0\n1,0\n"), 0o644))
	_, errOut, code = runCmd(t, "guess", "-in", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "no positive signal")
}

func TestSweep(t *testing.T) {
	quiet(t)
	pngPath := filepath.Join(t.TempDir(), "sweep.png")
	out, errOut, code := runCmd(t, "sweep", "-param", "v_infall", "-values", "0:1:0.2", "-png", pngPath)
	require.Equal(t, 0, code, errOut)

	rows := parseCSV(t, out)
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"v_infall", "blue_red_ratio", "peak_k"}, rows[0])

	first, err := strconv.ParseFloat(rows[1][1], 64)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, first, 1e-3, "no infall")
	prev := first
	for _, row := range rows[2:4] {
		ratio, err := strconv.ParseFloat(row[1], 64)
		require.NoError(t, err)
		assert.Greater(t, ratio, prev, "blue/red ratio grows with infall at small speeds")
		prev = ratio
	}
	assert.FileExists(t, pngPath)
}

func TestSweepPlotDir(t *testing.T) {
	quiet(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "model.json")
	plotDir := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"plot_dir": "`+plotDir+`"}`), 0o644))

	_, errOut, code := runCmd(t, "sweep", "-config", cfgPath, "-param", "tau", "-values", "0.5,1,2", "-plot")
	require.Equal(t, 0, code, errOut)

	assert.FileExists(t, filepath.Join(plotDir, "hill5_sweep_of_tau.png"))
	assert.FileExists(t, filepath.Join(plotDir, "hill5_sweep_of_tau.html"))
}

func TestSweepUnknownParam(t *testing.T) {
	quiet(t)
	_, errOut, code := runCmd(t, "sweep", "-param", "mass")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "no parameter")
}

func TestReadSpectrumCSV(t *testing.T) {
	v, tb, err := readSpectrumCSV(strings.NewReader("velocity,tb\n-1, 0.5\n0,1\n# note\n1,0.25\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 0, 1}, v)
	assert.Equal(t, []float64{0.5, 1, 0.25}, tb)

	_, _, err = readSpectrumCSV(strings.NewReader("1,2\nx,y\n"))
	assert.Error(t, err)

	_, _, err = readSpectrumCSV(strings.NewReader("header,only\n"))
	assert.Error(t, err)
}
