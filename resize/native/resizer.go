// Package native adapts the resampling engine to resize.Resizer.
package native

import (
	"image"
	"math"

	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/kernel"
	"github.com/srlehn/upscaler/pixbuf"
	"github.com/srlehn/upscaler/resample"
	"github.com/srlehn/upscaler/resize"
)

// Resizer runs the native engine synchronously.
type Resizer struct {
	Algorithm kernel.Algorithm
	// Engine defaults to the package level engine of resample.
	Engine *resample.Engine
}

var _ resize.Resizer = (*Resizer)(nil)

func New(alg kernel.Algorithm) *Resizer { return &Resizer{Algorithm: alg} }

// Resize derives the uniform scale factor from size. It fails when size is not
// floor(bounds*scale) for a single scale.
func (r *Resizer) Resize(img image.Image, size image.Point) (image.Image, error) {
	if r == nil {
		return nil, errors.NilReceiver()
	}
	if err := resize.Check(img, size); err != nil {
		return nil, err
	}
	b := img.Bounds()
	scale, err := uniformScale(b.Dx(), b.Dy(), size)
	if err != nil {
		return nil, err
	}
	src, err := pixbuf.FromImage(img)
	if err != nil {
		return nil, err
	}
	dst, err := r.Scale(src, scale)
	if err != nil {
		return nil, err
	}
	return dst.Image(), nil
}

// Scale resamples buf by scale.
func (r *Resizer) Scale(buf *pixbuf.Buffer, scale float64) (*pixbuf.Buffer, error) {
	if r == nil {
		return nil, errors.NilReceiver()
	}
	if r.Engine != nil {
		return r.Engine.Resample(buf, scale, r.Algorithm, resample.Hooks{})
	}
	return resample.Resample(buf, scale, r.Algorithm, resample.Hooks{})
}

func uniformScale(w, h int, size image.Point) (float64, error) {
	fits := func(scale float64) bool {
		return int(math.Floor(float64(w)*scale)) == size.X && int(math.Floor(float64(h)*scale)) == size.Y
	}
	for _, scale := range []float64{
		float64(size.X) / float64(w),
		float64(size.Y) / float64(h),
	} {
		if fits(scale) {
			return scale, nil
		}
	}
	return 0, errors.Errorf(`%w: %dx%d is no uniform scaling of %dx%d`, resize.ErrInvalidDimensions, size.X, size.Y, w, h)
}
