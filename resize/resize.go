// Package resize holds the interface shared by the reference resizers the
// native engine is compared against. Backends live in the subpackages,
// rall looks them up by name.
package resize

import (
	"image"
	"image/draw"

	"github.com/srlehn/upscaler/internal/consts"
	"github.com/srlehn/upscaler/internal/errors"
)

var (
	ErrInvalidDimensions = consts.ErrInvalidDimensions
	ErrUnknownResizer    = consts.ErrUnknownResizer
)

// Resizer resizes images
type Resizer interface {
	Resize(img image.Image, size image.Point) (image.Image, error)
}

// Check validates the arguments of a Resize call.
func Check(img image.Image, size image.Point) error {
	if img == nil {
		return errors.New(consts.ErrNilImage)
	}
	if size.X <= 0 || size.Y <= 0 {
		return errors.Errorf(`%w: target %dx%d`, ErrInvalidDimensions, size.X, size.Y)
	}
	if b := img.Bounds(); b.Empty() {
		return errors.Errorf(`%w: source %dx%d`, ErrInvalidDimensions, b.Dx(), b.Dy())
	}
	return nil
}

// NRGBA returns img as *image.NRGBA with its origin at 0,0, converting it if needed.
func NRGBA(img image.Image) *image.NRGBA {
	if m, ok := img.(*image.NRGBA); ok && m.Rect.Min == (image.Point{}) {
		return m
	}
	b := img.Bounds()
	m := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(m, m.Bounds(), img, b.Min, draw.Src)
	return m
}
