package bild

import (
	"image"

	"github.com/anthonynsimon/bild/transform"

	"github.com/srlehn/upscaler/kernel"
	"github.com/srlehn/upscaler/resize"
)

// Resizer uses "github.com/anthonynsimon/bild/transform"
type Resizer struct {
	Filter transform.ResampleFilter
}

var _ resize.Resizer = (*Resizer)(nil)

// New picks the bild filter closest to alg.
func New(alg kernel.Algorithm) *Resizer {
	switch alg {
	case kernel.AlgorithmBilinear:
		return &Resizer{Filter: transform.Linear}
	case kernel.AlgorithmBicubic:
		return &Resizer{Filter: transform.MitchellNetravali}
	default:
		return &Resizer{Filter: transform.Lanczos}
	}
}

func (r *Resizer) Resize(img image.Image, size image.Point) (image.Image, error) {
	if err := resize.Check(img, size); err != nil {
		return nil, err
	}
	return transform.Resize(img, size.X, size.Y, r.Filter), nil
}
