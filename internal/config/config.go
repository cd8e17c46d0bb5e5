// Package config loads model evaluation settings from JSON or YAML files.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/lineprofile/internal/models"
	"github.com/banshee-data/lineprofile/internal/sweep"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the path to the canonical defaults file.
const DefaultConfigPath = "config/hill5.defaults.json"

// Default values used when a field is not set.
const (
	DefaultRestFrequencyHz = 89.188525e9 // HCO+ J=1-0
	DefaultVelocityRange   = "-5:5:0.1"
	DefaultDatabasePath    = "lineprofile.db"
	DefaultListenAddr      = ":50051"
	DefaultPlotDir         = "plots"
)

// maxFileSize bounds how large a config file may be (1MB).
const maxFileSize = 1 * 1024 * 1024

// ModelConfig is the root configuration for evaluating a line model.
// Every field is optional; the Get* methods fall back to defaults.
type ModelConfig struct {
	Model           *string  `json:"model,omitempty" yaml:"model,omitempty"`
	RestFrequencyHz *float64 `json:"rest_frequency_hz,omitempty" yaml:"rest_frequency_hz,omitempty"`
	TBG             *float64 `json:"tbg,omitempty" yaml:"tbg,omitempty"`

	// Hill5 parameters
	Tau     *float64 `json:"tau,omitempty" yaml:"tau,omitempty"`
	VLSR    *float64 `json:"v_lsr,omitempty" yaml:"v_lsr,omitempty"`
	VInfall *float64 `json:"v_infall,omitempty" yaml:"v_infall,omitempty"`
	Sigma   *float64 `json:"sigma,omitempty" yaml:"sigma,omitempty"`
	TPeak   *float64 `json:"tpeak,omitempty" yaml:"tpeak,omitempty"`

	// Velocity axis as "min:max:step" in km/s
	VelocityRange *string `json:"velocity_range,omitempty" yaml:"velocity_range,omitempty"`

	// Outputs and services
	DatabasePath *string `json:"database_path,omitempty" yaml:"database_path,omitempty"`
	ListenAddr   *string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	PlotDir      *string `json:"plot_dir,omitempty" yaml:"plot_dir,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }

// EmptyModelConfig returns a ModelConfig with all fields set to nil.
func EmptyModelConfig() *ModelConfig {
	return &ModelConfig{}
}

// LoadModelConfig loads a ModelConfig from a .json, .yaml or .yml file.
// Fields omitted from the file keep their defaults, so partial configs are safe.
func LoadModelConfig(path string) (*ModelConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyModelConfig()
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", ext, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ModelConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadModelConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *ModelConfig) Validate() error {
	if c.Model != nil {
		if _, err := models.Default().Lookup(*c.Model); err != nil {
			return err
		}
	}

	if c.RestFrequencyHz != nil && (!(*c.RestFrequencyHz > 0) || math.IsInf(*c.RestFrequencyHz, 1)) {
		return fmt.Errorf("rest_frequency_hz must be positive and finite, got %g", *c.RestFrequencyHz)
	}

	if c.TBG != nil && (!(*c.TBG >= 0) || math.IsInf(*c.TBG, 1)) {
		return fmt.Errorf("tbg must be non-negative and finite, got %g", *c.TBG)
	}

	params := c.GetHill5Params().Vector()
	if err := models.Hill5Descriptor().CheckFinite(params); err != nil {
		return err
	}
	if err := models.Hill5Descriptor().CheckLimits(params); err != nil {
		return err
	}

	if c.VelocityRange != nil {
		if _, err := sweep.ParseRangeSpec(*c.VelocityRange); err != nil {
			return fmt.Errorf("invalid velocity_range '%s': %w", *c.VelocityRange, err)
		}
	}

	return nil
}

// Merge overlays every field set in other onto c.
func (c *ModelConfig) Merge(other *ModelConfig) {
	if other == nil {
		return
	}
	mergeString(&c.Model, other.Model)
	mergeFloat(&c.RestFrequencyHz, other.RestFrequencyHz)
	mergeFloat(&c.TBG, other.TBG)
	mergeFloat(&c.Tau, other.Tau)
	mergeFloat(&c.VLSR, other.VLSR)
	mergeFloat(&c.VInfall, other.VInfall)
	mergeFloat(&c.Sigma, other.Sigma)
	mergeFloat(&c.TPeak, other.TPeak)
	mergeString(&c.VelocityRange, other.VelocityRange)
	mergeString(&c.DatabasePath, other.DatabasePath)
	mergeString(&c.ListenAddr, other.ListenAddr)
	mergeString(&c.PlotDir, other.PlotDir)
}

func mergeFloat(dst **float64, src *float64) {
	if src != nil {
		*dst = ptrFloat64(*src)
	}
}

func mergeString(dst **string, src *string) {
	if src != nil {
		*dst = ptrString(*src)
	}
}

// GetModel returns the model name or the default.
func (c *ModelConfig) GetModel() string {
	if c.Model == nil {
		return models.Hill5Name
	}
	return *c.Model
}

// GetRestFrequencyHz returns the rest frequency or the default.
func (c *ModelConfig) GetRestFrequencyHz() float64 {
	if c.RestFrequencyHz == nil {
		return DefaultRestFrequencyHz
	}
	return *c.RestFrequencyHz
}

// GetTBG returns the background temperature or the default.
func (c *ModelConfig) GetTBG() float64 {
	if c.TBG == nil {
		return models.DefaultTBG
	}
	return *c.TBG
}

// GetHill5Params returns the Hill5 parameters, filling unset ones with defaults.
func (c *ModelConfig) GetHill5Params() models.Hill5Params {
	return models.Hill5Params{
		Tau:     floatOr(c.Tau, 0.5),
		VLSR:    floatOr(c.VLSR, 0),
		VInfall: floatOr(c.VInfall, 1.0),
		Sigma:   floatOr(c.Sigma, 1.0),
		TPeak:   floatOr(c.TPeak, 5.0),
	}
}

// GetVelocityRange parses and returns the velocity range.
func (c *ModelConfig) GetVelocityRange() sweep.RangeSpec {
	def, _ := sweep.ParseRangeSpec(DefaultVelocityRange)
	if c.VelocityRange == nil || *c.VelocityRange == "" {
		return def
	}
	r, err := sweep.ParseRangeSpec(*c.VelocityRange)
	if err != nil {
		return def // default on parse error
	}
	return r
}

// GetDatabasePath returns the sqlite path or the default.
func (c *ModelConfig) GetDatabasePath() string {
	return stringOr(c.DatabasePath, DefaultDatabasePath)
}

// GetListenAddr returns the gRPC listen address or the default.
func (c *ModelConfig) GetListenAddr() string {
	return stringOr(c.ListenAddr, DefaultListenAddr)
}

// GetPlotDir returns the plot output directory or the default.
func (c *ModelConfig) GetPlotDir() string {
	return stringOr(c.PlotDir, DefaultPlotDir)
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func stringOr(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}
