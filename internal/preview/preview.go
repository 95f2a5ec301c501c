// Package preview prints images inline on sixel capable terminals.
package preview

import (
	"bytes"
	"image"
	"io"

	sixel "github.com/mattn/go-sixel"

	"github.com/srlehn/upscaler/internal/consts"
	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/resize"
)

// MaxWidth bounds the width of the printed image in pixels, larger images
// are scaled down first.
const MaxWidth = 800

// Sixel writes img as a sixel sequence to w. A non-nil rsz shrinks images
// wider than maxWidth while keeping the aspect ratio; maxWidth <= 0 selects
// MaxWidth.
func Sixel(w io.Writer, img image.Image, rsz resize.Resizer, maxWidth int) error {
	if w == nil || img == nil {
		return errors.New(consts.ErrNilParam)
	}
	if maxWidth <= 0 {
		maxWidth = MaxWidth
	}
	if sz := img.Bounds().Size(); sz.X > maxWidth && rsz != nil {
		h := max(1, sz.Y*maxWidth/sz.X)
		m, err := rsz.Resize(img, image.Point{X: maxWidth, Y: h})
		if err != nil {
			return err
		}
		img = m
	}
	// https://vt100.net/docs/vt3xx-gp/chapter14.html
	byteBuf := new(bytes.Buffer)
	enc := sixel.NewEncoder(byteBuf)
	enc.Dither = true
	if err := enc.Encode(img); err != nil {
		return errors.New(err)
	}
	// sixel data ends with a newline of its own
	if _, err := w.Write(byteBuf.Bytes()); err != nil {
		return errors.New(err)
	}
	return nil
}
