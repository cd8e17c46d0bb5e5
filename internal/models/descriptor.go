package models

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfBounds is returned by CheckLimits when a parameter violates an
// active limit.
var ErrOutOfBounds = errors.New("parameter out of bounds")

// ErrNonFinite is returned by CheckFinite for a NaN or infinite parameter.
var ErrNonFinite = errors.New("parameter is not finite")

// Limit says which sides of a parameter's range are enforced.
type Limit struct {
	Lower bool `json:"lower"`
	Upper bool `json:"upper"`
}

// Bounds holds the limit values. A side is only meaningful when the
// matching Limit flag is set.
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// GuessKind selects how a fitting engine seeds a parameter before iterating.
type GuessKind int

const (
	// GuessFixed seeds the parameter with GuessHint.Value.
	GuessFixed GuessKind = iota
	// GuessCenter seeds the parameter with the data's apparent line center.
	GuessCenter
	// GuessWidth seeds the parameter with the data's apparent line width.
	GuessWidth
	// GuessAmplitude seeds the parameter with the data's apparent peak.
	GuessAmplitude
)

func (k GuessKind) String() string {
	switch k {
	case GuessFixed:
		return "fixed"
	case GuessCenter:
		return "center"
	case GuessWidth:
		return "width"
	case GuessAmplitude:
		return "amplitude"
	default:
		return fmt.Sprintf("GuessKind(%d)", int(k))
	}
}

// GuessHint is one parameter's seeding strategy.
type GuessHint struct {
	Kind  GuessKind `json:"kind"`
	Value float64   `json:"value,omitempty"`
}

// Fixed returns a hint that seeds with a constant.
func Fixed(v float64) GuessHint { return GuessHint{Kind: GuessFixed, Value: v} }

// DescriptorSpec is the input to NewDescriptor. All slices must have one
// entry per parameter.
type DescriptorSpec struct {
	Name          string
	ParNames      []string
	ShortVarNames []string
	ParLimited    []Limit
	ParLimits     []Bounds
	FitUnit       string
	GuessTypes    []GuessHint
}

// Descriptor is the read-only metadata a fitting engine uses to clamp,
// label and seed a model's parameters. Accessors return copies so a
// Descriptor can be shared freely.
type Descriptor struct {
	spec DescriptorSpec
}

// NewDescriptor validates spec and freezes it.
func NewDescriptor(spec DescriptorSpec) (*Descriptor, error) {
	n := len(spec.ParNames)
	if n == 0 {
		return nil, fmt.Errorf("descriptor %q has no parameters", spec.Name)
	}
	lengths := map[string]int{
		"short var names": len(spec.ShortVarNames),
		"limited flags":   len(spec.ParLimited),
		"limit values":    len(spec.ParLimits),
		"guess types":     len(spec.GuessTypes),
	}
	for field, got := range lengths {
		if got != n {
			return nil, fmt.Errorf("descriptor %q: %d %s for %d parameters", spec.Name, got, field, n)
		}
	}
	seen := make(map[string]bool, n)
	for _, name := range spec.ParNames {
		if seen[name] {
			return nil, fmt.Errorf("descriptor %q: duplicate parameter %q", spec.Name, name)
		}
		seen[name] = true
	}

	return &Descriptor{spec: DescriptorSpec{
		Name:          spec.Name,
		ParNames:      append([]string(nil), spec.ParNames...),
		ShortVarNames: append([]string(nil), spec.ShortVarNames...),
		ParLimited:    append([]Limit(nil), spec.ParLimited...),
		ParLimits:     append([]Bounds(nil), spec.ParLimits...),
		FitUnit:       spec.FitUnit,
		GuessTypes:    append([]GuessHint(nil), spec.GuessTypes...),
	}}, nil
}

func mustDescriptor(spec DescriptorSpec) *Descriptor {
	d, err := NewDescriptor(spec)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Descriptor) Name() string    { return d.spec.Name }
func (d *Descriptor) NumParams() int  { return len(d.spec.ParNames) }
func (d *Descriptor) FitUnit() string { return d.spec.FitUnit }

func (d *Descriptor) ParNames() []string { return append([]string(nil), d.spec.ParNames...) }

func (d *Descriptor) ShortVarNames() []string {
	return append([]string(nil), d.spec.ShortVarNames...)
}

func (d *Descriptor) ParLimited() []Limit { return append([]Limit(nil), d.spec.ParLimited...) }

func (d *Descriptor) ParLimits() []Bounds { return append([]Bounds(nil), d.spec.ParLimits...) }

func (d *Descriptor) GuessTypes() []GuessHint {
	return append([]GuessHint(nil), d.spec.GuessTypes...)
}

// Index returns the position of the named parameter.
func (d *Descriptor) Index(name string) (int, bool) {
	for i, n := range d.spec.ParNames {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// CheckFinite reports the first parameter that is NaN or infinite.
func (d *Descriptor) CheckFinite(params []float64) error {
	if err := checkParamCount(d, params); err != nil {
		return err
	}
	for i, p := range params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: %s = %g", ErrNonFinite, d.spec.ParNames[i], p)
		}
	}
	return nil
}

// CheckLimits reports the first parameter that falls outside an active limit.
func (d *Descriptor) CheckLimits(params []float64) error {
	if err := checkParamCount(d, params); err != nil {
		return err
	}
	for i, p := range params {
		lim, b := d.spec.ParLimited[i], d.spec.ParLimits[i]
		if lim.Lower && p < b.Lower {
			return fmt.Errorf("%w: %s = %g below lower limit %g", ErrOutOfBounds, d.spec.ParNames[i], p, b.Lower)
		}
		if lim.Upper && p > b.Upper {
			return fmt.Errorf("%w: %s = %g above upper limit %g", ErrOutOfBounds, d.spec.ParNames[i], p, b.Upper)
		}
	}
	return nil
}
