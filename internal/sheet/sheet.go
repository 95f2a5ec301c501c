// Package sheet renders labelled comparison tiles of resizer outputs into a
// single contact sheet image.
package sheet

import (
	"image"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	imagingOrig "github.com/kovidgoyal/imaging"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/srlehn/upscaler/internal/errors"
)

// Tile is one labelled image of a sheet.
type Tile struct {
	Label string
	Image image.Image
}

// Options configure Render. The zero value renders all tiles in one row.
type Options struct {
	// Columns defaults to len(tiles).
	Columns int
	// FontSize in points, defaults to 12.
	FontSize float64
	// Detail crops every tile to this rectangle (in tile coordinates) before
	// it is enlarged by DetailZoom with nearest neighbor sampling, so single
	// pixels stay visible.
	Detail     image.Rectangle
	DetailZoom int
	// Padding between tiles in pixels.
	Padding int
}

const abbrChar = '…'

// Render draws tiles on a white grid with their labels below them.
func Render(tiles []Tile, opts Options) (image.Image, error) {
	if len(tiles) == 0 {
		return nil, errors.New(`no tiles`)
	}
	if opts.Columns <= 0 || opts.Columns > len(tiles) {
		opts.Columns = len(tiles)
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 12
	}
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	imgs := make([]image.Image, len(tiles))
	var tileWidth, imgHeight int
	for i, t := range tiles {
		if t.Image == nil {
			return nil, errors.Errorf(`tile %d (%s): nil image`, i, t.Label)
		}
		imgs[i] = t.Image
		if !opts.Detail.Empty() {
			imgs[i] = detail(t.Image, opts.Detail, opts.DetailZoom)
		}
		sz := imgs[i].Bounds().Size()
		tileWidth = max(tileWidth, sz.X)
		imgHeight = max(imgHeight, sz.Y)
	}

	goFont, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.New(err)
	}
	goFontFace := truetype.NewFace(goFont, &truetype.Options{Size: opts.FontSize})
	defer goFontFace.Close()

	rows := (len(tiles) + opts.Columns - 1) / opts.Columns
	measure := gg.NewContext(1, 1)
	measure.SetFontFace(goFontFace)
	textHeight := int(measure.FontHeight()*1.5) + 1
	tileHeight := imgHeight + textHeight
	pad := opts.Padding
	c := gg.NewContext(
		opts.Columns*tileWidth+(opts.Columns+1)*pad,
		rows*tileHeight+(rows+1)*pad,
	)
	c.SetFontFace(goFontFace)
	c.SetRGB(1, 1, 1)
	c.Clear()
	c.SetRGB(0, 0, 0)
	for i, img := range imgs {
		x := pad + (i%opts.Columns)*(tileWidth+pad)
		y := pad + (i/opts.Columns)*(tileHeight+pad)
		b := img.Bounds()
		c.DrawImage(img, x-b.Min.X, y-b.Min.Y)
		c.DrawString(fitLabel(c, tiles[i].Label, float64(tileWidth)), float64(x), float64(y+imgHeight)+c.FontHeight()+1)
	}
	return c.Image(), nil
}

// fitLabel shortens label with an ellipsis until it fits into width.
func fitLabel(c *gg.Context, label string, width float64) string {
	if w, _ := c.MeasureString(label); w <= width {
		return label
	}
	runes := []rune(label)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		s := string(append(runes, abbrChar))
		if w, _ := c.MeasureString(s); w <= width {
			return s
		}
	}
	return ``
}

func detail(img image.Image, rect image.Rectangle, zoom int) image.Image {
	b := img.Bounds()
	rect = rect.Add(b.Min).Intersect(b)
	if rect.Empty() {
		return img
	}
	cropped := imagingOrig.Crop(img, rect)
	if zoom <= 1 {
		return cropped
	}
	return imagingOrig.Resize(cropped, rect.Dx()*zoom, rect.Dy()*zoom, imagingOrig.NearestNeighbor)
}
