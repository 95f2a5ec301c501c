package rez

import (
	"image"

	"github.com/bamiaux/rez"

	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/kernel"
	"github.com/srlehn/upscaler/resize"
)

// Resizer uses "github.com/bamiaux/rez"
type Resizer struct {
	Filter rez.Filter
}

var _ resize.Resizer = (*Resizer)(nil)

// New picks the rez filter closest to alg.
func New(alg kernel.Algorithm) *Resizer {
	switch alg {
	case kernel.AlgorithmBilinear:
		return &Resizer{Filter: rez.NewBilinearFilter()}
	case kernel.AlgorithmBicubic:
		return &Resizer{Filter: rez.NewBicubicFilter()}
	default:
		return &Resizer{Filter: rez.NewLanczosFilter(3)}
	}
}

func (r *Resizer) Resize(img image.Image, size image.Point) (image.Image, error) {
	if err := resize.Check(img, size); err != nil {
		return nil, err
	}
	filter := r.Filter
	if filter == nil {
		filter = rez.NewBilinearFilter()
	}
	switch img.(type) {
	case *image.YCbCr, *image.RGBA, *image.NRGBA, *image.Gray:
	default:
		img = resize.NRGBA(img)
	}
	m := image.NewNRGBA(image.Rectangle{Max: size})
	if err := rez.Convert(m, img, filter); err != nil {
		return nil, errors.New(err)
	}
	return m, nil
}
