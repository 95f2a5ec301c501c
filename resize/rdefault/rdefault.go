// Package rdefault picks a fast reference resizer for the platform.
package rdefault

import (
	"image"
	"runtime"

	"github.com/srlehn/upscaler/kernel"
	"github.com/srlehn/upscaler/resize"
	"github.com/srlehn/upscaler/resize/rez"
	"github.com/srlehn/upscaler/resize/xdraw"
)

type Resizer struct{}

var _ resize.Resizer = (*Resizer)(nil)

func (r *Resizer) Resize(img image.Image, size image.Point) (image.Image, error) {
	if err := resize.Check(img, size); err != nil {
		return nil, err
	}
	if runtime.GOARCH != `amd64` {
		return xdraw.ApproxBiLinear().Resize(img, size)
	}
	switch img.(type) {
	case *image.YCbCr, *image.RGBA, *image.NRGBA, *image.Gray:
		// use SIMD assembly if possible
		imgRet, err := rez.New(kernel.AlgorithmBilinear).Resize(img, size)
		if err == nil {
			return imgRet, nil
		}
	}
	return xdraw.ApproxBiLinear().Resize(img, size)
}
