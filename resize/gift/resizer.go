package gift

import (
	"image"

	"github.com/disintegration/gift"

	"github.com/srlehn/upscaler/kernel"
	"github.com/srlehn/upscaler/resize"
)

// Resizer uses "github.com/disintegration/gift"
type Resizer struct {
	Resampling gift.Resampling
}

var _ resize.Resizer = (*Resizer)(nil)

// New picks the gift resampling closest to alg.
func New(alg kernel.Algorithm) *Resizer {
	switch alg {
	case kernel.AlgorithmBilinear:
		return &Resizer{Resampling: gift.LinearResampling}
	case kernel.AlgorithmBicubic:
		return &Resizer{Resampling: gift.CubicResampling}
	default:
		return &Resizer{Resampling: gift.LanczosResampling}
	}
}

func (r *Resizer) Resize(img image.Image, size image.Point) (image.Image, error) {
	if err := resize.Check(img, size); err != nil {
		return nil, err
	}
	m := image.NewNRGBA(image.Rectangle{Max: size})
	gift.New(gift.Resize(size.X, size.Y, r.Resampling)).Draw(m, img)
	return m, nil
}
