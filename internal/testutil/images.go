// Package testutil provides deterministic test images.
package testutil

import (
	"image"
	"image/color"

	"github.com/srlehn/upscaler/pixbuf"
)

// FillFunc returns the RGBA channels of pixel (x, y).
type FillFunc func(x, y int) [4]uint8

var (
	Red   = [4]uint8{255, 0, 0, 255}
	Green = [4]uint8{0, 255, 0, 255}
	Blue  = [4]uint8{0, 0, 255, 255}
	White = [4]uint8{255, 255, 255, 255}
)

// Pattern is a non-uniform image with varying alpha.
func Pattern(x, y int) [4]uint8 {
	return [4]uint8{uint8(x * 37 % 256), uint8(y * 59 % 256), uint8((x*y + 11) % 256), uint8(128 + (x+y)%128)}
}

// Opaque is Pattern with full alpha.
func Opaque(x, y int) [4]uint8 {
	p := Pattern(x, y)
	p[3] = 255
	return p
}

// Corners2x2 is red, green, blue and white from the top left, row by row.
func Corners2x2(x, y int) [4]uint8 {
	return [2][2][4]uint8{{Red, Green}, {Blue, White}}[y%2][x%2]
}

// Uniform fills every pixel with c.
func Uniform(c [4]uint8) FillFunc { return func(int, int) [4]uint8 { return c } }

// Buffer allocates a w×h pixel buffer filled by fill.
func Buffer(w, h int, fill FillFunc) (*pixbuf.Buffer, error) {
	buf, err := pixbuf.New(w, h)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf.SetRGBA(x, y, fill(x, y))
		}
	}
	return buf, nil
}

// Image returns a w×h image filled by fill.
func Image(w, h int, fill FillFunc) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := fill(x, y)
			m.SetNRGBA(x, y, color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]})
		}
	}
	return m
}
