// Package kernel provides the interpolation weight functions used by the
// resampling engine.
//
// A weight function takes the signed distance between a destination sample
// point and a source pixel center, measured in source pixels, and returns the
// contribution of that source pixel. Every function is zero outside its
// support radius.
package kernel

import (
	"math"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/srlehn/upscaler/internal/consts"
	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/internal/util"
)

var ErrUnknownAlgorithm = consts.ErrUnknownAlgorithm

// WeightFunc maps a source pixel offset to its weight.
type WeightFunc func(x float64) float64

// Kernel binds a weight function to its support radius.
type Kernel struct {
	Name    string
	Support int
	Weight  WeightFunc
}

// Bilinear is the triangle filter, support 1.
func Bilinear(x float64) float64 {
	x = math.Abs(x)
	if x < 1 {
		return 1 - x
	}
	if x >= 1 {
		return 0
	}
	return x // NaN
}

// MitchellNetravali returns the two-piece cubic of the Mitchell–Netravali
// family for the parameters b and c. Its support is 2.
func MitchellNetravali(b, c float64) WeightFunc {
	// coefficients of the inner (|x| < 1) and outer (1 <= |x| < 2) cubic
	p3 := (12 - 9*b - 6*c) / 6
	p2 := (-18 + 12*b + 6*c) / 6
	p0 := (6 - 2*b) / 6
	q3 := (-b - 6*c) / 6
	q2 := (6*b + 30*c) / 6
	q1 := (-12*b - 48*c) / 6
	q0 := (8*b + 24*c) / 6
	return func(x float64) float64 {
		x = math.Abs(x)
		switch {
		case x < 1:
			return (p3*x+p2)*x*x + p0
		case x < 2:
			return ((q3*x+q2)*x+q1)*x + q0
		case x >= 2:
			return 0
		}
		return x // NaN
	}
}

var mitchell = MitchellNetravali(1.0/3, 1.0/3)

// Bicubic is the Mitchell–Netravali cubic with B = C = 1/3, support 2.
func Bicubic(x float64) float64 { return mitchell(x) }

func sinc(t float64) float64 {
	if t == 0 {
		return 1
	}
	t *= math.Pi
	return math.Sin(t) / t
}

// Lanczos returns the windowed sinc with n lobes, support n.
func Lanczos(n int) WeightFunc {
	a := float64(n)
	return func(x float64) float64 {
		if math.Abs(x) >= a {
			return 0
		}
		return sinc(x) * sinc(x/a)
	}
}

var lanczos3 = Lanczos(3)

// Lanczos3 is the three lobe windowed sinc, support 3.
func Lanczos3(x float64) float64 { return lanczos3(x) }

// Algorithm selects one of the built-in kernels.
type Algorithm int

const (
	AlgorithmBilinear Algorithm = iota
	AlgorithmBicubic
	AlgorithmLanczos3
)

var kernels = [...]Kernel{
	AlgorithmBilinear: {Name: `bilinear`, Support: 1, Weight: Bilinear},
	AlgorithmBicubic:  {Name: `bicubic`, Support: 2, Weight: Bicubic},
	AlgorithmLanczos3: {Name: `lanczos3`, Support: 3, Weight: Lanczos3},
}

// Kernel returns the weight function and support radius of a.
func (a Algorithm) Kernel() (Kernel, error) {
	if !a.Valid() {
		return Kernel{}, errors.Errorf(`%w: %d`, ErrUnknownAlgorithm, int(a))
	}
	return kernels[a], nil
}

func (a Algorithm) Valid() bool { return a >= 0 && int(a) < len(kernels) }

func (a Algorithm) String() string {
	if !a.Valid() {
		return `unknown`
	}
	return kernels[a].Name
}

// Set and Type make Algorithm usable as a command line flag value.
func (a *Algorithm) Set(s string) error {
	alg, err := ParseAlgorithm(s)
	if err != nil {
		return err
	}
	*a = alg
	return nil
}

func (a *Algorithm) Type() string { return `algorithm` }

var algorithmsByName = map[string]Algorithm{
	normalizeName(`bilinear`):  AlgorithmBilinear,
	normalizeName(`linear`):    AlgorithmBilinear,
	normalizeName(`bicubic`):   AlgorithmBicubic,
	normalizeName(`cubic`):     AlgorithmBicubic,
	normalizeName(`mitchell`):  AlgorithmBicubic,
	normalizeName(`lanczos3`):  AlgorithmLanczos3,
	normalizeName(`lanczos-3`): AlgorithmLanczos3,
	normalizeName(`lanczos`):   AlgorithmLanczos3,
}

// normalizeName folds case and separators: "Lanczos-3", "LANCZOS_3" and
// "lanczos3" compare equal.
func normalizeName(s string) string {
	s = strcase.ToSnake(strings.TrimSpace(s))
	return strings.NewReplacer(`_`, ``, `-`, ``, ` `, ``, `.`, ``).Replace(s)
}

// ParseAlgorithm looks up an algorithm by name.
func ParseAlgorithm(name string) (Algorithm, error) {
	if alg, ok := algorithmsByName[normalizeName(name)]; ok {
		return alg, nil
	}
	return 0, errors.Errorf(`%w: %q`, ErrUnknownAlgorithm, name)
}

// Names lists the accepted algorithm names.
func Names() []string {
	m := make(map[string]struct{}, len(kernels))
	for _, k := range kernels {
		m[k.Name] = struct{}{}
	}
	return util.MapsKeysSorted(m)
}

// All returns the built-in algorithms in declaration order.
func All() []Algorithm {
	return []Algorithm{AlgorithmBilinear, AlgorithmBicubic, AlgorithmLanczos3}
}
