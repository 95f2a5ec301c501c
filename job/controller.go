package job

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/internal/logx"
	"github.com/srlehn/upscaler/kernel"
	"github.com/srlehn/upscaler/pixbuf"
)

// State is the terminal state of a job.
type State int

const (
	StateRunning State = iota
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return `running`
	case StateCompleted:
		return `completed`
	case StateCancelled:
		return `cancelled`
	case StateFailed:
		return `failed`
	}
	return `unknown`
}

// Outcome is the terminal result of a job.
type Outcome struct {
	State State
	// Buffer is set for StateCompleted and owned by the receiver.
	Buffer *pixbuf.Buffer
	// Err is set for StateFailed, verbatim as reported by the worker.
	Err error
}

// Controller submits jobs to a worker and tracks the single job in flight.
type Controller struct {
	worker     *Worker
	workerOpts []WorkerOption
	ownsWorker bool
	timeout    time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	pending *Handle

	dispatched chan struct{}
	closeOnce  sync.Once
}

var _ logx.LoggerProvider = (*Controller)(nil)

// NewController starts a worker unless one is passed with SetWorker.
func NewController(opts ...ControllerOption) (*Controller, error) {
	c := &Controller{dispatched: make(chan struct{})}
	if err := c.setOptions(opts...); err != nil {
		return nil, err
	}
	if c.worker == nil {
		wOpts := c.workerOpts
		if c.logger != nil {
			wOpts = append([]WorkerOption{SetWorkerSLogger(c.logger.Handler(), true)}, wOpts...)
		}
		w, err := NewWorker(wOpts...)
		if err != nil {
			return nil, err
		}
		c.worker = w
		c.ownsWorker = true
	}
	go c.dispatch()
	return c, nil
}

func (c *Controller) Logger() *slog.Logger {
	if c == nil {
		return nil
	}
	return c.logger
}

// Submit starts a job on the worker. Ownership of buf moves to the worker,
// buf is released when Submit returns without error.
// It fails with ErrBusy while the previous job has not reached a terminal state.
func (c *Controller) Submit(buf *pixbuf.Buffer, scale float64, alg kernel.Algorithm) (*Handle, error) {
	if c == nil || c.worker == nil {
		return nil, errors.NilReceiver()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		return nil, errors.New(ErrBusy)
	}
	id, err := c.worker.Start(Request{Buffer: buf, Scale: scale, Algorithm: alg})
	if err != nil {
		return nil, err
	}
	h := &Handle{
		id:       id,
		ctrl:     c,
		progress: make(chan int, 101),
		done:     make(chan struct{}),
	}
	c.pending = h
	if c.timeout > 0 {
		h.timer = time.AfterFunc(c.timeout, func() {
			logx.Warn(`job timed out`, c, `job`, id, `timeout`, c.timeout)
			_ = h.Cancel()
		})
	}
	logx.Debug(`job submitted`, c, `job`, id)
	return h, nil
}

// Pending returns the handle of the job in flight.
func (c *Controller) Pending() *Handle {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Close cancels the job in flight, stops an owned worker and waits until the
// pending handle is resolved.
func (c *Controller) Close() error {
	if c == nil {
		return nil
	}
	var err error
	c.closeOnce.Do(func() {
		if h := c.Pending(); h != nil {
			_ = h.Cancel()
		}
		if c.ownsWorker {
			err = c.worker.Close()
			<-c.dispatched
		}
	})
	return err
}

func (c *Controller) dispatch() {
	defer close(c.dispatched)
	for msg := range c.worker.Messages() {
		c.mu.Lock()
		h := c.pending
		if h != nil && h.id == msg.JobID && msg.Terminal() {
			c.pending = nil
		}
		c.mu.Unlock()
		if h == nil || h.id != msg.JobID {
			logx.Warn(`message of unknown job dropped`, c, `job`, msg.JobID, `kind`, msg.Kind)
			continue
		}
		switch msg.Kind {
		case KindProgress:
			select {
			case h.progress <- msg.Percent:
			default:
			}
		case KindDone:
			h.resolve(Outcome{State: StateCompleted, Buffer: msg.Buffer})
		case KindError:
			if msg.Cancelled() {
				h.resolve(Outcome{State: StateCancelled})
			} else {
				err := msg.Err
				if err == nil {
					err = errors.New(msg.Reason)
				}
				h.resolve(Outcome{State: StateFailed, Err: err})
			}
		}
	}
	// the worker stopped without answering
	c.mu.Lock()
	h := c.pending
	c.pending = nil
	c.mu.Unlock()
	if h != nil {
		h.resolve(Outcome{State: StateFailed, Err: errors.New(ErrWorkerClosed)})
	}
}

// Handle tracks one submitted job.
type Handle struct {
	id         uint64
	ctrl       *Controller
	progress   chan int
	done       chan struct{}
	outcome    Outcome
	resolved   atomic.Bool
	cancelOnce sync.Once
	cancelErr  error
	cancelReq  atomic.Bool
	timer      *time.Timer
}

func (h *Handle) ID() uint64 { return h.id }

// Progress streams the job's progress in percent. It is closed when the job
// reached its terminal state.
func (h *Handle) Progress() <-chan int { return h.progress }

// Done is closed when the job reached its terminal state.
func (h *Handle) Done() <-chan struct{} { return h.done }

// CancelRequested reports whether Cancel was called.
func (h *Handle) CancelRequested() bool { return h.cancelReq.Load() }

// Cancel asks the worker to stop the job at its next scanline. The job may
// still complete if it finishes first. Calling Cancel more than once or after
// the job finished is a no-op.
func (h *Handle) Cancel() error {
	if h == nil || h.ctrl == nil {
		return errors.NilReceiver()
	}
	if h.resolved.Load() {
		return nil
	}
	h.cancelOnce.Do(func() {
		h.cancelReq.Store(true)
		h.cancelErr = h.ctrl.worker.Cancel(h.id)
		logx.Debug(`cancel requested`, h.ctrl, `job`, h.id)
	})
	return h.cancelErr
}

// Outcome returns the terminal outcome once the job finished.
func (h *Handle) Outcome() (Outcome, bool) {
	if !h.resolved.Load() {
		return Outcome{State: StateRunning}, false
	}
	return h.outcome, true
}

// Wait blocks until the job's terminal outcome. When ctx ends first the job
// is cancelled and Wait keeps waiting for the worker's answer, which can
// still be a completed result. The returned error is the outcome's Err.
func (h *Handle) Wait(ctx context.Context) (Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-h.done:
	case <-ctx.Done():
		logx.Debug(`wait context ended, cancelling`, h.ctrl, `job`, h.id, `cause`, context.Cause(ctx))
		_ = h.Cancel()
		<-h.done
	}
	return h.outcome, h.outcome.Err
}

// resolve is called once by the dispatcher.
func (h *Handle) resolve(o Outcome) {
	if h.timer != nil {
		h.timer.Stop()
	}
	h.outcome = o
	h.resolved.Store(true)
	close(h.progress)
	close(h.done)
	logx.Debug(`job resolved`, h.ctrl, `job`, h.id, `state`, o.State.String())
}
