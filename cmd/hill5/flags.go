package main

import (
	"flag"
	"fmt"

	"github.com/banshee-data/lineprofile/internal/config"
	"github.com/banshee-data/lineprofile/internal/models"
	"github.com/banshee-data/lineprofile/internal/spectral"
)

// modelFlags are the flags shared by commands that evaluate a model.
type modelFlags struct {
	configPath *string
	model      *string
	tau        *float64
	vlsr       *float64
	vinfall    *float64
	sigma      *float64
	tpeak      *float64
	tbg        *float64
	restHz     *float64
	vrange     *string
}

func addModelFlags(fs *flag.FlagSet) *modelFlags {
	return &modelFlags{
		configPath: fs.String("config", "", "JSON or YAML config file"),
		model:      fs.String("model", models.Hill5Name, "Model name"),
		tau:        fs.Float64("tau", 0.5, "Peak optical depth"),
		vlsr:       fs.Float64("v-lsr", 0, "Systemic velocity (km/s)"),
		vinfall:    fs.Float64("v-infall", 1.0, "Infall speed (km/s)"),
		sigma:      fs.Float64("sigma", 1.0, "Velocity dispersion (km/s)"),
		tpeak:      fs.Float64("tpeak", 5.0, "Peak excitation temperature (K)"),
		tbg:        fs.Float64("tbg", models.DefaultTBG, "Background temperature (K)"),
		restHz:     fs.Float64("rest-hz", config.DefaultRestFrequencyHz, "Line rest frequency (Hz)"),
		vrange:     fs.String("range", config.DefaultVelocityRange, "Velocity range min:max:step (km/s)"),
	}
}

// loadConfig loads path, or returns an empty config when path is empty.
func loadConfig(path string) (*config.ModelConfig, error) {
	if path == "" {
		return config.EmptyModelConfig(), nil
	}
	return config.LoadModelConfig(path)
}

// resolve loads the config file, if any, and overlays the flags that were
// set explicitly on the command line.
func (f *modelFlags) resolve(fs *flag.FlagSet) (*config.ModelConfig, error) {
	cfg, err := loadConfig(*f.configPath)
	if err != nil {
		return nil, err
	}

	overlay := config.EmptyModelConfig()
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "model":
			overlay.Model = f.model
		case "tau":
			overlay.Tau = f.tau
		case "v-lsr":
			overlay.VLSR = f.vlsr
		case "v-infall":
			overlay.VInfall = f.vinfall
		case "sigma":
			overlay.Sigma = f.sigma
		case "tpeak":
			overlay.TPeak = f.tpeak
		case "tbg":
			overlay.TBG = f.tbg
		case "rest-hz":
			overlay.RestFrequencyHz = f.restHz
		case "range":
			overlay.VelocityRange = f.vrange
		}
	})
	cfg.Merge(overlay)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setup is everything a model evaluation needs.
type setup struct {
	cfg    *config.ModelConfig
	model  models.Model
	axis   *spectral.DopplerAxis
	params []float64
}

func newSetup(cfg *config.ModelConfig) (*setup, error) {
	m, err := models.Default().Lookup(cfg.GetModel())
	if err != nil {
		return nil, err
	}
	if bm, ok := m.(models.BackgroundModel); ok {
		m = bm.WithBackground(cfg.GetTBG())
	}

	r := cfg.GetVelocityRange()
	axis, err := spectral.NewVelocityRange(r.Min, r.Max, r.Step, cfg.GetRestFrequencyHz())
	if err != nil {
		return nil, fmt.Errorf("velocity axis: %w", err)
	}

	return &setup{
		cfg:    cfg,
		model:  m,
		axis:   axis,
		params: cfg.GetHill5Params().Vector(),
	}, nil
}
