// Package upscaler scales images with bilinear, bicubic and Lanczos-3
// interpolation off the caller's goroutine.
//
// The functions of this package share one lazily started job.Controller, so
// only one job runs at a time and concurrent calls fail with job.ErrBusy.
// Use package job directly for more control.
package upscaler

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/srlehn/upscaler/internal/consts"
	"github.com/srlehn/upscaler/internal/encoder/encmulti"
	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/internal/imgload"
	"github.com/srlehn/upscaler/job"
	"github.com/srlehn/upscaler/kernel"
	"github.com/srlehn/upscaler/pixbuf"
)

var (
	// chosen defaults
	DefaultAlgorithm = kernel.AlgorithmBicubic
	DefaultScale     = 2.
	DefaultTimeout   = 5 * time.Minute
)

var (
	DefaultConfig = job.ControllerOptions{
		job.SetTimeout(DefaultTimeout),
	}
)

var (
	ctrlActive *job.Controller
	ctrlMu     sync.Mutex
)

// Controller returns the shared controller, starting it on first use.
func Controller() (*job.Controller, error) {
	ctrlMu.Lock()
	defer ctrlMu.Unlock()
	if ctrlActive != nil {
		return ctrlActive, nil
	}
	c, err := job.NewController(DefaultConfig)
	if err != nil {
		return nil, err
	}
	ctrlActive = c
	return c, nil
}

// Upscale resamples buf and returns the result. Ownership of buf moves to the
// worker. A cancelled job (ctx or timeout) returns an error wrapping
// job.ErrCancelled.
func Upscale(ctx context.Context, buf *pixbuf.Buffer, scale float64, alg kernel.Algorithm) (*pixbuf.Buffer, error) {
	c, err := Controller()
	if err != nil {
		return nil, err
	}
	h, err := c.Submit(buf, scale, alg)
	if err != nil {
		return nil, err
	}
	return outcomeBuffer(h.Wait(ctx))
}

func outcomeBuffer(o job.Outcome, err error) (*pixbuf.Buffer, error) {
	if err != nil {
		return nil, err
	}
	switch o.State {
	case job.StateCompleted:
		return o.Buffer, nil
	case job.StateCancelled:
		return nil, errors.New(consts.ErrCancelled)
	}
	return nil, errors.Errorf(`job ended in state %s`, o.State)
}

// UpscaleImage copies img into a pixel buffer and resamples it.
func UpscaleImage(ctx context.Context, img image.Image, scale float64, alg kernel.Algorithm) (*image.NRGBA, error) {
	if img == nil {
		return nil, errors.New(consts.ErrNilImage)
	}
	b := img.Bounds()
	if err := imgload.Check(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}
	buf, err := pixbuf.FromImage(img)
	if err != nil {
		return nil, err
	}
	dst, err := Upscale(ctx, buf, scale, alg)
	if err != nil {
		return nil, err
	}
	return dst.Image(), nil
}

// UpscaleFile reads inFile, resamples it and writes outFile in the format of
// its extension.
func UpscaleFile(ctx context.Context, inFile, outFile string, scale float64, alg kernel.Algorithm) error {
	buf, err := imgload.Buffer(inFile)
	if err != nil {
		return err
	}
	dst, err := Upscale(ctx, buf, scale, alg)
	if err != nil {
		return err
	}
	return (&encmulti.MultiEncoder{}).EncodeFile(outFile, dst.Image())
}

// CleanUp stops the shared controller.
func CleanUp() error {
	ctrlMu.Lock()
	defer ctrlMu.Unlock()
	if ctrlActive == nil {
		return nil
	}
	err := ctrlActive.Close()
	ctrlActive = nil
	return err
}
