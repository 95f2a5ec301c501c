// Package xdraw provides a resizer implementation using golang.org/x/image/draw.
// Besides the scalers of x/image/draw it can run the weight functions of
// package kernel through draw.Kernel.
package xdraw

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/srlehn/upscaler/kernel"
	"github.com/srlehn/upscaler/resize"
)

// resizer uses "golang.org/x/image/draw"
type resizer struct {
	scaler draw.Scaler
}

var _ resize.Resizer = (*resizer)(nil)

// ApproxBiLinear creates a new resizer with ApproxBiLinear scaling (balanced speed/quality).
func ApproxBiLinear() resize.Resizer {
	return &resizer{scaler: draw.ApproxBiLinear}
}

// BiLinear creates a new resizer with BiLinear scaling (higher quality, slower).
func BiLinear() resize.Resizer {
	return &resizer{scaler: draw.BiLinear}
}

// CatmullRom creates a new resizer with CatmullRom scaling (highest quality, slowest).
func CatmullRom() resize.Resizer {
	return &resizer{scaler: draw.CatmullRom}
}

// Kernel creates a resizer that evaluates the weight function of alg with
// the separable two pass scaler of x/image/draw.
func Kernel(alg kernel.Algorithm) (resize.Resizer, error) {
	k, err := alg.Kernel()
	if err != nil {
		return nil, err
	}
	return &resizer{scaler: &draw.Kernel{Support: float64(k.Support), At: k.Weight}}, nil
}

// Resize scales an image to the target size using the configured scaler.
func (r *resizer) Resize(img image.Image, size image.Point) (image.Image, error) {
	if err := resize.Check(img, size); err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	r.scaler.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}
