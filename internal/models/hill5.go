package models

import (
	"fmt"
	"math"

	"github.com/banshee-data/lineprofile/internal/spectral"
	"github.com/banshee-data/lineprofile/internal/units"
	"gonum.org/v1/gonum/floats"
)

// Hill5Name is the registry key of the Hill5 model.
const Hill5Name = "hill5"

// DefaultTBG is the cosmic microwave background temperature in K.
const DefaultTBG = 2.73

// escapeThreshold is the optical depth at or below which the escape
// probability is taken as exactly 1.
const escapeThreshold = 1e-4

var hill5Descriptor = mustDescriptor(DescriptorSpec{
	Name:          Hill5Name,
	ParNames:      []string{"tau", "v_lsr", "v_infall", "sigma", "tpeak"},
	ShortVarNames: []string{`\tau`, `v_{lsr}`, `v_{infall}`, `\sigma`, `T_{peak}`},
	ParLimited: []Limit{
		{Lower: true},
		{},
		{Lower: true},
		{Lower: true},
		{Lower: true},
	},
	ParLimits: make([]Bounds, 5),
	FitUnit:   units.KMS,
	GuessTypes: []GuessHint{
		Fixed(1.0),
		{Kind: GuessCenter},
		Fixed(1.0),
		{Kind: GuessWidth},
		{Kind: GuessAmplitude},
	},
})

// Hill5Descriptor returns the shared Hill5 descriptor.
func Hill5Descriptor() *Descriptor { return hill5Descriptor }

// Hill5Params are the five fitted parameters of the Hill5 model.
type Hill5Params struct {
	Tau     float64 `json:"tau"`      // core-center optical depth
	VLSR    float64 `json:"v_lsr"`    // systemic velocity, km/s
	VInfall float64 `json:"v_infall"` // infall velocity, km/s
	Sigma   float64 `json:"sigma"`    // line width, km/s
	TPeak   float64 `json:"tpeak"`    // peak excitation temperature, K
}

// Vector returns the parameters in descriptor order.
func (p Hill5Params) Vector() []float64 {
	return []float64{p.Tau, p.VLSR, p.VInfall, p.Sigma, p.TPeak}
}

// Hill5ParamsFromVector is the inverse of Vector.
func Hill5ParamsFromVector(v []float64) (Hill5Params, error) {
	if err := checkParamCount(hill5Descriptor, v); err != nil {
		return Hill5Params{}, err
	}
	return Hill5Params{Tau: v[0], VLSR: v[1], VInfall: v[2], Sigma: v[3], TPeak: v[4]}, nil
}

// Hill5 is the analytic infall model of De Vries & Myers (2005, ApJ 620, 800):
// a two-layer core with zero envelope optical depth, no envelope velocity and
// a fixed background radiation temperature TBG.
type Hill5 struct {
	TBG float64
}

// Ensure Hill5 implements BackgroundModel.
var _ BackgroundModel = Hill5{}

// NewHill5 returns a Hill5 model against the cosmic microwave background.
func NewHill5() Hill5 { return Hill5{TBG: DefaultTBG} }

// NewHill5WithBackground returns a Hill5 model with a caller-chosen background.
func NewHill5WithBackground(tbg float64) Hill5 { return Hill5{TBG: tbg} }

// WithBackground implements BackgroundModel.
func (Hill5) WithBackground(tbg float64) Model { return Hill5{TBG: tbg} }

func (Hill5) Name() string { return Hill5Name }

func (Hill5) Descriptor() *Descriptor { return hill5Descriptor }

// Evaluate implements Model.
func (m Hill5) Evaluate(x spectral.Axis, params []float64) ([]float64, error) {
	p, err := Hill5ParamsFromVector(params)
	if err != nil {
		return nil, err
	}
	return Hill5Profile(x, p, m.TBG)
}

// Hill5Profile computes the Hill5 brightness temperature at every sample of x.
//
// The front (approaching) and rear layers carry Gaussian optical-depth
// profiles centred at v_lsr+v_infall and v_lsr-v_infall. The result is
//
//	(J(tpeak) - J(tbg)) * (subf - exp(-tauf)*subr)
//
// with sub(x) = (1-exp(-x))/x the escape probability of each layer. A NaN
// anywhere in the result is returned as a *ComputationError.
func Hill5Profile(x spectral.Axis, p Hill5Params, tbg float64) ([]float64, error) {
	vf := p.VLSR + p.VInfall
	vr := p.VLSR - p.VInfall

	velocity, err := x.AsUnit(units.KMS)
	if err != nil {
		return nil, fmt.Errorf("hill5 velocity axis: %w", err)
	}
	frequency, err := x.AsUnit(units.Hz)
	if err != nil {
		return nil, fmt.Errorf("hill5 frequency axis: %w", err)
	}
	if len(frequency) != len(velocity) {
		return nil, fmt.Errorf("hill5: axis views disagree: %d velocities, %d frequencies", len(velocity), len(frequency))
	}

	result := make([]float64, len(velocity))
	for i, v := range velocity {
		tauf := gaussianDepth(p.Tau, v, vf, p.Sigma)
		taur := gaussianDepth(p.Tau, v, vr, p.Sigma)

		subf := EscapeProbability(tauf)
		subr := EscapeProbability(taur)
		if math.IsNaN(subf) {
			subf = 1.0
		}
		if math.IsNaN(subr) {
			subr = 1.0
		}

		nu := frequency[i]
		result[i] = (JFunc(p.TPeak, nu) - JFunc(tbg, nu)) * (subf - math.Exp(-tauf)*subr)
	}

	if floats.HasNaN(result) {
		return nil, &ComputationError{Model: "Hill5", Index: firstNaN(result)}
	}

	return result, nil
}

func firstNaN(s []float64) int {
	for i, v := range s {
		if math.IsNaN(v) {
			return i
		}
	}
	return -1
}

func gaussianDepth(tau, v, center, sigma float64) float64 {
	z := (v - center) / sigma
	return tau * math.Exp(-z*z/2.0)
}

// EscapeProbability returns (1-exp(-x))/x for x above 1e-4 and exactly 1
// otherwise, including for NaN.
func EscapeProbability(x float64) float64 {
	if x > escapeThreshold {
		return (1 - math.Exp(-x)) / x
	}
	return 1.0
}
