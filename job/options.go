package job

import (
	"log/slog"
	"time"

	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/internal/logx"
	"github.com/srlehn/upscaler/resample"
)

type WorkerOption interface {
	ApplyWorkerOption(w *Worker) error
}

var _ WorkerOption = (WorkerOptFunc)(nil)

type WorkerOptFunc func(*Worker) error

func (o WorkerOptFunc) ApplyWorkerOption(w *Worker) error { return o(w) }

var _ WorkerOption = (WorkerOptions)(nil)

type WorkerOptions []WorkerOption

func (o WorkerOptions) ApplyWorkerOption(w *Worker) error { return w.SetOptions([]WorkerOption(o)...) }

// SetOptions applies opts. Options are meant for NewWorker, the outbox
// size has no effect on a running worker.
func (w *Worker) SetOptions(opts ...WorkerOption) error {
	if w == nil {
		return errors.NilReceiver()
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.ApplyWorkerOption(w); err != nil {
			return errors.New(err)
		}
	}
	return nil
}

// SetEngine sets the engine the worker runs jobs on.
func SetEngine(e *resample.Engine) WorkerOption {
	return WorkerOptFunc(func(w *Worker) error {
		if err := errors.NilParam(e); err != nil {
			return err
		}
		w.engine = e
		return nil
	})
}

// SetOutboxSize sets the capacity of the message stream. Progress messages
// that do not fit are dropped.
func SetOutboxSize(n int) WorkerOption {
	return WorkerOptFunc(func(w *Worker) error {
		if n < 1 {
			return errors.Errorf(`outbox size must be positive: %d`, n)
		}
		w.outboxSize = n
		return nil
	})
}

func SetWorkerSLogger(h slog.Handler, enable bool) WorkerOption {
	return WorkerOptFunc(func(w *Worker) error { w.logger = logx.NewLogger(h, enable); return nil })
}

type ControllerOption interface {
	ApplyControllerOption(c *Controller) error
}

var _ ControllerOption = (ControllerOptFunc)(nil)

type ControllerOptFunc func(*Controller) error

func (o ControllerOptFunc) ApplyControllerOption(c *Controller) error { return o(c) }

var _ ControllerOption = (ControllerOptions)(nil)

type ControllerOptions []ControllerOption

func (o ControllerOptions) ApplyControllerOption(c *Controller) error {
	return c.setOptions([]ControllerOption(o)...)
}

func (c *Controller) setOptions(opts ...ControllerOption) error {
	if c == nil {
		return errors.NilReceiver()
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.ApplyControllerOption(c); err != nil {
			return errors.New(err)
		}
	}
	return nil
}

// SetWorker makes the controller drive w instead of starting its own worker.
// The controller then reads w.Messages() exclusively and Close leaves w
// running unless own is set.
func SetWorker(w *Worker, own bool) ControllerOption {
	return ControllerOptFunc(func(c *Controller) error {
		if err := errors.NilParam(w); err != nil {
			return err
		}
		c.worker = w
		c.ownsWorker = own
		return nil
	})
}

// SetWorkerOptions configures the worker the controller starts itself.
func SetWorkerOptions(opts ...WorkerOption) ControllerOption {
	return ControllerOptFunc(func(c *Controller) error {
		c.workerOpts = append(c.workerOpts, opts...)
		return nil
	})
}

// SetTimeout cancels jobs still running after d. Zero disables the timeout.
func SetTimeout(d time.Duration) ControllerOption {
	return ControllerOptFunc(func(c *Controller) error {
		if d < 0 {
			return errors.Errorf(`negative timeout: %s`, d)
		}
		c.timeout = d
		return nil
	})
}

func SetSLogger(h slog.Handler, enable bool) ControllerOption {
	return ControllerOptFunc(func(c *Controller) error { c.logger = logx.NewLogger(h, enable); return nil })
}
