package job

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/internal/logx"
	"github.com/srlehn/upscaler/resample"
)

const (
	defaultMailboxSize = 8
	// enough for one job with a progress step of 1 plus its terminal message
	defaultOutboxSize = 128
)

// Worker is the isolated execution context of the resampling engine.
type Worker struct {
	engine      *resample.Engine
	logger      *slog.Logger
	mailboxSize int
	outboxSize  int

	mailbox   chan Request
	out       chan Message
	quit      chan struct{}
	closeOnce sync.Once
	stopped   chan struct{}

	// busy is set by Post on an accepted start and cleared right before the
	// terminal message of that job is sent.
	busy   atomic.Bool
	nextID atomic.Uint64

	// owned by the loop goroutine
	active *running
}

var _ logx.LoggerProvider = (*Worker)(nil)

type running struct {
	id        uint64
	cancelled atomic.Bool
	finished  chan struct{}
}

// NewWorker starts a worker goroutine. Close stops it.
func NewWorker(opts ...WorkerOption) (*Worker, error) {
	w := &Worker{
		mailboxSize: defaultMailboxSize,
		outboxSize:  defaultOutboxSize,
	}
	if err := w.SetOptions(opts...); err != nil {
		return nil, err
	}
	if w.engine == nil {
		var engOpts []resample.Option
		if w.logger != nil {
			engOpts = append(engOpts, resample.SetSLogger(w.logger.Handler(), true))
		}
		eng, err := resample.New(engOpts...)
		if err != nil {
			return nil, err
		}
		w.engine = eng
	}
	w.mailbox = make(chan Request, w.mailboxSize)
	w.out = make(chan Message, w.outboxSize)
	w.quit = make(chan struct{})
	w.stopped = make(chan struct{})
	go w.loop()
	return w, nil
}

func (w *Worker) Logger() *slog.Logger {
	if w == nil {
		return nil
	}
	return w.logger
}

// Messages streams progress and terminal messages in the order they were
// sent. It is closed after Close once the last job reported its outcome.
func (w *Worker) Messages() <-chan Message {
	if w == nil {
		return nil
	}
	return w.out
}

// Busy reports whether a job was accepted and has not sent its terminal
// message yet.
func (w *Worker) Busy() bool { return w != nil && w.busy.Load() }

// Post delivers a request to the worker and returns the job ID.
//
// A start request takes ownership of req.Buffer: the caller's buffer is
// released and must not be used afterwards. It fails with ErrBusy while
// another job is in flight. A cancel request only sets the cancellation flag
// of the running job, the job stops at its next scanline.
func (w *Worker) Post(req Request) (uint64, error) {
	if err := errors.NilReceiver(w); err != nil {
		return 0, err
	}
	select {
	case <-w.quit:
		return 0, errors.New(ErrWorkerClosed)
	default:
	}
	switch req.Action {
	case ActionStart:
		if !w.busy.CompareAndSwap(false, true) {
			return 0, errors.New(ErrBusy)
		}
		if err := errors.NilParam(req.Buffer); err != nil {
			w.busy.Store(false)
			return 0, err
		}
		moved, err := req.Buffer.Transfer()
		if err != nil {
			w.busy.Store(false)
			return 0, err
		}
		req.Buffer = moved
		req.JobID = w.nextID.Add(1)
	case ActionCancel:
	default:
		return 0, errors.Errorf(`unknown action %q`, req.Action)
	}
	select {
	case w.mailbox <- req:
		logx.Debug(`request posted`, w, `action`, req.Action, `job`, req.JobID)
		return req.JobID, nil
	case <-w.quit:
		if req.Action == ActionStart {
			w.busy.Store(false)
		}
		return 0, errors.New(ErrWorkerClosed)
	}
}

// Start posts a start request.
func (w *Worker) Start(req Request) (uint64, error) {
	req.Action = ActionStart
	return w.Post(req)
}

// Cancel posts a cancel request for jobID, 0 selects the running job.
func (w *Worker) Cancel(jobID uint64) error {
	_, err := w.Post(Request{Action: ActionCancel, JobID: jobID})
	return err
}

// Close cancels a running job, waits for its terminal message to be queued
// and closes the message stream.
func (w *Worker) Close() error {
	if w == nil {
		return nil
	}
	w.closeOnce.Do(func() { close(w.quit) })
	<-w.stopped
	return nil
}

func (w *Worker) loop() {
	defer close(w.stopped)
	defer close(w.out)
	for {
		select {
		case req := <-w.mailbox:
			w.handle(req)
		case <-w.quit:
			if w.active != nil {
				w.active.cancelled.Store(true)
				<-w.active.finished
			}
			// start requests that were accepted but not yet run still get
			// their terminal message
			for drained := false; !drained; {
				select {
				case req := <-w.mailbox:
					if req.Action == ActionStart {
						w.busy.Store(false)
						w.out <- Message{JobID: req.JobID, Kind: KindError, Reason: ErrWorkerClosed.Error(), Err: errors.New(ErrWorkerClosed)}
					}
				default:
					drained = true
				}
			}
			logx.Debug(`worker stopped`, w)
			return
		}
	}
}

func (w *Worker) handle(req Request) {
	switch req.Action {
	case ActionStart:
		if w.active != nil {
			// the previous job cleared busy and is queueing its terminal message
			<-w.active.finished
		}
		j := &running{id: req.JobID, finished: make(chan struct{})}
		w.active = j
		go w.run(j, req)
	case ActionCancel:
		if w.active == nil {
			return
		}
		if req.JobID != 0 && req.JobID != w.active.id {
			logx.Debug(`ignoring cancel of finished job`, w, `job`, req.JobID)
			return
		}
		w.active.cancelled.Store(true)
		logx.Debug(`cancel requested`, w, `job`, w.active.id)
	}
}

func (w *Worker) run(j *running, req Request) {
	defer close(j.finished)
	logx.Info(`job started`, w, `job`, j.id, `algorithm`, req.Algorithm.String(), `scale`, req.Scale,
		`width`, req.Buffer.Width(), `height`, req.Buffer.Height())
	msg := w.execute(j, req)
	switch {
	case msg.Kind == KindDone:
		logx.Info(`job done`, w, `job`, j.id, `width`, msg.Buffer.Width(), `height`, msg.Buffer.Height())
	case msg.Cancelled():
		logx.Info(`job cancelled`, w, `job`, j.id)
	default:
		logx.IsErr(msg.Err, w, slog.LevelError, `job`, j.id)
	}
	w.busy.Store(false)
	w.out <- msg
}

// execute never panics: a panic of the loop becomes an error message.
func (w *Worker) execute(j *running, req Request) (msg Message) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.Recovered(r, `resampling panicked`)
			msg = Message{JobID: j.id, Kind: KindError, Reason: err.Error(), Err: err}
		}
	}()
	hooks := resample.Hooks{
		Cancelled: j.cancelled.Load,
		Progress: func(percent int) {
			// a stalled receiver loses progress, never the terminal message
			select {
			case w.out <- Message{JobID: j.id, Kind: KindProgress, Percent: percent}:
			default:
				logx.Debug(`outbox full, progress dropped`, w, `job`, j.id, `percent`, percent)
			}
		},
	}
	dst, err := w.engine.Resample(req.Buffer, req.Scale, req.Algorithm, hooks)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return Message{JobID: j.id, Kind: KindError, Reason: ReasonCancelled, Err: err}
		}
		return Message{JobID: j.id, Kind: KindError, Reason: err.Error(), Err: err}
	}
	return Message{JobID: j.id, Kind: KindDone, Percent: 100, Buffer: dst}
}
