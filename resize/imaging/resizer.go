package imaging

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/srlehn/upscaler/kernel"
	"github.com/srlehn/upscaler/resize"
)

// Resizer uses "github.com/disintegration/imaging"
type Resizer struct {
	Filter imaging.ResampleFilter
}

var _ resize.Resizer = (*Resizer)(nil)

// New picks the imaging filter closest to alg. imaging's MitchellNetravali
// uses the same B = C = 1/3 as kernel.Bicubic.
func New(alg kernel.Algorithm) *Resizer {
	switch alg {
	case kernel.AlgorithmBilinear:
		return &Resizer{Filter: imaging.Linear}
	case kernel.AlgorithmBicubic:
		return &Resizer{Filter: imaging.MitchellNetravali}
	default:
		return &Resizer{Filter: imaging.Lanczos}
	}
}

func (r *Resizer) Resize(img image.Image, size image.Point) (image.Image, error) {
	if err := resize.Check(img, size); err != nil {
		return nil, err
	}
	return imaging.Resize(img, size.X, size.Y, r.Filter), nil
}
