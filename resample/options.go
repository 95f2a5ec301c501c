package resample

import (
	"log/slog"

	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/internal/logx"
)

type Option interface {
	ApplyOption(e *Engine) error
}

var _ Option = (OptFunc)(nil)

type OptFunc func(*Engine) error

func (o OptFunc) ApplyOption(e *Engine) error { return o(e) }

var _ Option = (Options)(nil)

type Options []Option

func (o Options) ApplyOption(e *Engine) error { return e.SetOptions([]Option(o)...) }

func (e *Engine) SetOptions(opts ...Option) error {
	if e == nil {
		return errors.NilReceiver()
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.ApplyOption(e); err != nil {
			return errors.New(err)
		}
	}
	return nil
}

// SetAllocator replaces the destination allocator.
func SetAllocator(alloc Allocator) Option {
	return OptFunc(func(e *Engine) error {
		if alloc == nil {
			return errors.NilParam(alloc)
		}
		e.alloc = alloc
		return nil
	})
}

// SetProgressStep sets the minimum advance in percent between two progress reports.
func SetProgressStep(percent int) Option {
	return OptFunc(func(e *Engine) error {
		if percent < 1 || percent > 100 {
			return errors.Errorf(`progress step out of range [1,100]: %d`, percent)
		}
		e.progressStep = percent
		return nil
	})
}

func SetSLogger(h slog.Handler, enable bool) Option {
	return OptFunc(func(e *Engine) error { e.logger = logx.NewLogger(h, enable); return nil })
}
