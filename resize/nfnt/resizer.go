package nfnt

import (
	"image"

	"github.com/nfnt/resize"

	"github.com/srlehn/upscaler/kernel"
	rsz "github.com/srlehn/upscaler/resize"
)

// Resizer uses "github.com/nfnt/resize"
type Resizer struct {
	Interpolation resize.InterpolationFunction
}

var _ rsz.Resizer = (*Resizer)(nil)

// New picks the nfnt interpolation closest to alg.
func New(alg kernel.Algorithm) *Resizer {
	switch alg {
	case kernel.AlgorithmBilinear:
		return &Resizer{Interpolation: resize.Bilinear}
	case kernel.AlgorithmBicubic:
		return &Resizer{Interpolation: resize.MitchellNetravali}
	default:
		return &Resizer{Interpolation: resize.Lanczos3}
	}
}

func (r *Resizer) Resize(img image.Image, size image.Point) (image.Image, error) {
	if err := rsz.Check(img, size); err != nil {
		return nil, err
	}
	return resize.Resize(uint(size.X), uint(size.Y), img, r.Interpolation), nil
}
