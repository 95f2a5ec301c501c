// Package caire resizes with seam carving for content-aware image resizing.
// It removes or inserts low energy seams instead of interpolating and serves
// as a contrast to the interpolating resizers.
package caire

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/esimov/caire"

	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/resize"
)

type Resizer struct {
	BlurRadius     int
	SobelThreshold int
}

var _ resize.Resizer = (*Resizer)(nil)

func New() *Resizer { return &Resizer{BlurRadius: 1, SobelThreshold: 4} }

func (r *Resizer) Resize(img image.Image, size image.Point) (image.Image, error) {
	if err := resize.Check(img, size); err != nil {
		return nil, err
	}
	p := &caire.Processor{
		BlurRadius:     r.BlurRadius,
		SobelThreshold: r.SobelThreshold,
		NewWidth:       size.X,
		NewHeight:      size.Y,
	}
	// the caller's image stays untouched
	m, err := p.Resize(imaging.Clone(img))
	if err != nil {
		return nil, errors.New(err)
	}
	return m, nil
}
