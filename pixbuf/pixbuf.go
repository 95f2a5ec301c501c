// Package pixbuf holds the RGBA8 pixel buffer exchanged between a job
// controller and the resampling worker.
//
// A Buffer has a single owner. Transfer moves the pixels into a new Buffer
// and leaves the old one released, so a sender cannot touch pixels it has
// handed off.
package pixbuf

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/srlehn/upscaler/internal/consts"
	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/internal/memguard"
)

var (
	ErrReleased          = consts.ErrReleased
	ErrInvalidDimensions = consts.ErrInvalidDimensions
	ErrAllocation        = consts.ErrAllocation
)

// Channels is the number of bytes per pixel: R, G, B, A.
const Channels = 4

// Buffer is a row-major RGBA8 image with len(pix) == width*height*4.
// Color channels are not premultiplied by alpha.
type Buffer struct {
	width  int
	height int
	pix    []uint8
}

// Size returns the byte length of a width×height buffer and false if it
// overflows or a side is negative.
func Size(width, height int) (int, bool) {
	if width < 0 || height < 0 {
		return 0, false
	}
	if width == 0 || height == 0 {
		return 0, true
	}
	if width > math.MaxInt/Channels/height {
		return 0, false
	}
	return width * height * Channels, true
}

// New allocates a zeroed width×height buffer. The allocation is checked
// against the available memory and a failing allocation is returned as an
// error wrapping ErrAllocation instead of crashing the process.
func New(width, height int) (buf *Buffer, err error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf(`%w: %dx%d`, ErrInvalidDimensions, width, height)
	}
	n, ok := Size(width, height)
	if !ok {
		return nil, errors.Errorf(`%w: %dx%d overflows`, ErrAllocation, width, height)
	}
	if err := memguard.Check(uint64(n)); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = errors.Errorf(`%w: %dx%d: %v`, ErrAllocation, width, height, r)
		}
	}()
	return &Buffer{width: width, height: height, pix: make([]uint8, n)}, nil
}

// FromPix adopts pix without copying. The caller gives up ownership of pix.
func FromPix(width, height int, pix []uint8) (*Buffer, error) {
	n, ok := Size(width, height)
	if !ok || width == 0 || height == 0 {
		return nil, errors.Errorf(`%w: %dx%d`, ErrInvalidDimensions, width, height)
	}
	if len(pix) != n {
		return nil, errors.Errorf(`%w: %dx%d needs %d bytes, got %d`, ErrInvalidDimensions, width, height, n, len(pix))
	}
	return &Buffer{width: width, height: height, pix: pix}, nil
}

// FromImage converts img to a new Buffer. *image.NRGBA sources are copied
// row-wise, every other image goes through draw.Draw.
func FromImage(img image.Image) (*Buffer, error) {
	if img == nil {
		return nil, errors.New(consts.ErrNilImage)
	}
	b := img.Bounds()
	buf, err := New(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	if m, ok := img.(*image.NRGBA); ok {
		rowLen := b.Dx() * Channels
		for y := 0; y < b.Dy(); y++ {
			i := m.PixOffset(b.Min.X, b.Min.Y+y)
			copy(buf.pix[y*rowLen:(y+1)*rowLen], m.Pix[i:i+rowLen])
		}
		return buf, nil
	}
	dst := buf.nrgba()
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return buf, nil
}

func (b *Buffer) Width() int {
	if b == nil {
		return 0
	}
	return b.width
}

func (b *Buffer) Height() int {
	if b == nil {
		return 0
	}
	return b.height
}

// Pix returns the underlying pixels without copying. It is nil once the
// buffer was transferred.
func (b *Buffer) Pix() []uint8 {
	if b == nil {
		return nil
	}
	return b.pix
}

// Released reports whether ownership of the pixels moved elsewhere.
func (b *Buffer) Released() bool { return b == nil || b.pix == nil }

// Err returns ErrReleased for a released buffer.
func (b *Buffer) Err() error {
	if b == nil {
		return errors.NilReceiver()
	}
	if b.pix == nil {
		return errors.New(ErrReleased)
	}
	return nil
}

// Transfer moves the pixels into a new Buffer and releases b.
func (b *Buffer) Transfer() (*Buffer, error) {
	if err := b.Err(); err != nil {
		return nil, err
	}
	moved := &Buffer{width: b.width, height: b.height, pix: b.pix}
	b.width, b.height, b.pix = 0, 0, nil
	return moved, nil
}

// Offset returns the index of the red byte of pixel (x, y).
func (b *Buffer) Offset(x, y int) int { return (y*b.width + x) * Channels }

// RGBA returns the four channels of pixel (x, y).
func (b *Buffer) RGBA(x, y int) [Channels]uint8 {
	i := b.Offset(x, y)
	return [Channels]uint8{b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3]}
}

// SetRGBA stores the four channels of pixel (x, y).
func (b *Buffer) SetRGBA(x, y int, c [Channels]uint8) {
	i := b.Offset(x, y)
	copy(b.pix[i:i+Channels], c[:])
}

// Image exposes the pixels as *image.NRGBA sharing the same memory.
// It returns nil for a released buffer.
func (b *Buffer) Image() *image.NRGBA {
	if b.Released() {
		return nil
	}
	return b.nrgba()
}

func (b *Buffer) nrgba() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.pix,
		Stride: b.width * Channels,
		Rect:   image.Rect(0, 0, b.width, b.height),
	}
}
