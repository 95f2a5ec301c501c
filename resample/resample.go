// Package resample scales RGBA8 pixel buffers with the interpolation kernels
// of package kernel.
//
// Every destination pixel is mapped back onto the source grid with the pixel
// center convention and gathers the weighted source neighborhood within the
// kernel support. The weight of a source pixel is the product of the
// horizontal and vertical kernel weights. Source coordinates are clamped to
// the image edges.
//
// The loop runs synchronously. Between scanlines it polls Hooks.Cancelled and
// reports progress through Hooks.Progress, which keeps it free of any
// threading concerns.
package resample

import (
	"log/slog"
	"math"

	"github.com/srlehn/upscaler/internal/consts"
	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/internal/logx"
	"github.com/srlehn/upscaler/internal/util"
	"github.com/srlehn/upscaler/kernel"
	"github.com/srlehn/upscaler/pixbuf"
)

var (
	ErrCancelled         = consts.ErrCancelled
	ErrInvalidDimensions = consts.ErrInvalidDimensions
	ErrInvalidScale      = consts.ErrInvalidScale
)

// Hooks connect the loop to its caller. Both fields are optional.
type Hooks struct {
	// Cancelled is polled before each destination row.
	Cancelled func() bool
	// Progress receives floor(row*100/height) after a row completed,
	// throttled to advances of at least the engine's progress step.
	Progress func(percent int)
}

// Allocator creates the zeroed destination buffer.
type Allocator func(width, height int) (*pixbuf.Buffer, error)

// Engine runs the resampling loop. The zero value is not usable, use New.
type Engine struct {
	alloc        Allocator
	progressStep int
	logger       *slog.Logger
}

var _ logx.LoggerProvider = (*Engine)(nil)

// New creates an Engine with the default allocator pixbuf.New and a progress
// step of 5 percent.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		alloc:        pixbuf.New,
		progressStep: consts.ProgressStep,
	}
	if err := e.SetOptions(opts...); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) Logger() *slog.Logger {
	if e == nil {
		return nil
	}
	return e.logger
}

var defaultEngine = &Engine{alloc: pixbuf.New, progressStep: consts.ProgressStep}

// Resample runs the default engine.
func Resample(src *pixbuf.Buffer, scale float64, alg kernel.Algorithm, hooks Hooks) (*pixbuf.Buffer, error) {
	return defaultEngine.Resample(src, scale, alg, hooks)
}

// DestSize returns floor(width*scale) × floor(height*scale).
func DestSize(width, height int, scale float64) (int, int, error) {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return 0, 0, errors.Errorf(`%w: %v`, ErrInvalidScale, scale)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, errors.Errorf(`%w: source %dx%d`, ErrInvalidDimensions, width, height)
	}
	dw := math.Floor(float64(width) * scale)
	dh := math.Floor(float64(height) * scale)
	if dw < 1 || dh < 1 || dw > math.MaxInt32 || dh > math.MaxInt32 {
		return 0, 0, errors.Errorf(`%w: destination %.0fx%.0f`, ErrInvalidDimensions, dw, dh)
	}
	return int(dw), int(dh), nil
}

// Resample scales src by scale with the kernel of alg. src is only read.
// On cancellation it returns an error wrapping ErrCancelled and no buffer.
func (e *Engine) Resample(src *pixbuf.Buffer, scale float64, alg kernel.Algorithm, hooks Hooks) (*pixbuf.Buffer, error) {
	if err := errors.NilReceiver(e); err != nil {
		return nil, err
	}
	if err := errors.NilParam(src); err != nil {
		return nil, err
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	k, err := alg.Kernel()
	if err != nil {
		return nil, err
	}
	sw, sh := src.Width(), src.Height()
	dw, dh, err := DestSize(sw, sh, scale)
	if err != nil {
		return nil, err
	}
	if e.alloc == nil {
		return nil, errors.NilReceiver()
	}
	dst, err := e.alloc(dw, dh)
	if err != nil {
		return nil, err
	}
	if dst == nil || dst.Width() != dw || dst.Height() != dh {
		return nil, errors.Errorf(`%w: allocator returned a mismatching buffer`, consts.ErrAllocation)
	}
	logx.Debug(`resampling`, e,
		`algorithm`, k.Name, `scale`, scale,
		`src_width`, sw, `src_height`, sh, `dst_width`, dw, `dst_height`, dh)

	xTaps := taps(dw, sw, scale, k)
	yTaps := taps(dh, sh, scale, k)

	step := e.progressStep
	if step < 1 {
		step = 1
	}
	var lastPercent int
	spix := src.Pix()
	dpix := dst.Pix()
	for dy := 0; dy < dh; dy++ {
		if hooks.Cancelled != nil && hooks.Cancelled() {
			logx.Debug(`resampling cancelled`, e, `row`, dy, `rows`, dh)
			return nil, errors.New(ErrCancelled)
		}
		rowOut := dpix[dy*dw*pixbuf.Channels : (dy+1)*dw*pixbuf.Channels]
		for dx := 0; dx < dw; dx++ {
			var r, g, b, a, total float64
			for _, ty := range yTaps[dy] {
				if ty.weight == 0 {
					continue
				}
				rowIn := spix[ty.index*sw*pixbuf.Channels:]
				for _, tx := range xTaps[dx] {
					w := tx.weight * ty.weight
					if w == 0 {
						continue
					}
					p := rowIn[tx.index*pixbuf.Channels : tx.index*pixbuf.Channels+pixbuf.Channels]
					r += w * float64(p[0])
					g += w * float64(p[1])
					b += w * float64(p[2])
					a += w * float64(p[3])
					total += w
				}
			}
			if total == 0 {
				continue
			}
			o := rowOut[dx*pixbuf.Channels : dx*pixbuf.Channels+pixbuf.Channels]
			o[0] = toByte(r / total)
			o[1] = toByte(g / total)
			o[2] = toByte(b / total)
			o[3] = toByte(a / total)
		}
		if hooks.Progress != nil {
			if percent := dy * 100 / dh; percent-lastPercent >= step {
				lastPercent = percent
				hooks.Progress(percent)
			}
		}
	}
	return dst, nil
}

func toByte(v float64) uint8 {
	return uint8(math.Round(util.Clamp(v, 0, 255)))
}

// tap is a clamped source index and its 1D kernel weight.
type tap struct {
	index  int
	weight float64
}

// taps lists for every destination coordinate along one axis the source
// indices of the sampling window [floor(s)-r+1, floor(s)+r] with
// s = (d+0.5)/scale - 0.5, clamped to [0, srcLen-1], and their weights
// k(s - unclamped index). Clamped duplicates stay separate entries so the
// 2D weight of each window position is the plain product of two taps.
func taps(dstLen, srcLen int, scale float64, k kernel.Kernel) [][]tap {
	r := k.Support
	all := make([]tap, dstLen*2*r)
	ret := make([][]tap, dstLen)
	for d := 0; d < dstLen; d++ {
		s := (float64(d)+0.5)/scale - 0.5
		base := int(math.Floor(s))
		row := all[d*2*r : (d+1)*2*r]
		for i := range row {
			j := base - r + 1 + i
			row[i] = tap{
				index:  util.Clamp(j, 0, srcLen-1),
				weight: k.Weight(s - float64(j)),
			}
		}
		ret[d] = row
	}
	return ret
}
