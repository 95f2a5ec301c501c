package encmulti

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/srlehn/upscaler/internal/consts"
	"github.com/srlehn/upscaler/internal/encoder"
	"github.com/srlehn/upscaler/internal/errors"
)

var _ encoder.ImageEncoder = (*MultiEncoder)(nil)

type MultiEncoder struct {
	// JPEGQuality defaults to 90.
	JPEGQuality int
}

// Formats lists the supported output formats.
func Formats() []string { return []string{`bmp`, `gif`, `jpeg`, `jpg`, `png`, `tif`, `tiff`} }

func (e *MultiEncoder) Encode(w io.Writer, img image.Image, fileExt string) error {
	if w == nil || img == nil {
		return errors.New(consts.ErrNilParam)
	}
	// allow passing whole filename
	fmtStr := encoder.Format(fileExt)
	if len(fmtStr) == 0 {
		return errors.New(`no file format specified`)
	}
	var err error
	switch fmtStr {
	case `bmp`:
		err = bmp.Encode(w, img)
	case `gif`:
		err = gif.Encode(w, img, nil)
	case `png`:
		err = png.Encode(w, img)
	case `tif`, `tiff`:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.LZW, Predictor: true})
	case `jpg`, `jpeg`:
		q := 90
		if e != nil && e.JPEGQuality > 0 {
			q = e.JPEGQuality
		}
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	default:
		err = errors.New(`unsupported file format: "` + fmtStr + `"`)
	}
	if err != nil {
		return errors.New(err)
	}
	return nil
}

// EncodeFile writes img to path in the format of its extension.
func (e *MultiEncoder) EncodeFile(path string, img image.Image) (err error) {
	if len(encoder.Format(path)) == 0 {
		return errors.New(`no file format specified`)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.New(err)
	}
	defer func() {
		if errClose := f.Close(); errClose != nil && err == nil {
			err = errors.New(errClose)
		}
	}()
	return e.Encode(f, img, path)
}
