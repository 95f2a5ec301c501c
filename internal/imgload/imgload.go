// Package imgload decodes source images for the host tools and enforces the
// size bound the resampling engine relies on.
package imgload

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/srlehn/upscaler/internal/consts"
	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/pixbuf"
)

var ErrImageTooLarge = consts.ErrImageTooLarge

// Check rejects empty images and images with a side above consts.MaxSide.
func Check(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.Errorf(`%w: %dx%d`, consts.ErrInvalidDimensions, width, height)
	}
	if width > consts.MaxSide || height > consts.MaxSide {
		return errors.Errorf(`%w: %dx%d exceeds %d`, ErrImageTooLarge, width, height, consts.MaxSide)
	}
	return nil
}

// Decode reads the header first so oversized images are rejected before
// their pixels are decoded.
func Decode(r io.Reader) (image.Image, string, error) {
	if r == nil {
		return nil, ``, errors.New(consts.ErrNilParam)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, ``, errors.New(err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return nil, ``, errors.New(err)
	}
	if err := Check(cfg.Width, cfg.Height); err != nil {
		return nil, format, err
	}
	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, format, errors.New(err)
	}
	return img, format, nil
}

// File decodes the image at path.
func File(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ``, errors.New(err)
	}
	defer f.Close()
	return Decode(f)
}

// Buffer decodes the image at path into a pixel buffer.
func Buffer(path string) (*pixbuf.Buffer, error) {
	img, _, err := File(path)
	if err != nil {
		return nil, err
	}
	return pixbuf.FromImage(img)
}
