// Package job runs the resampling engine off the caller's goroutine.
//
// A Worker owns a mailbox goroutine that accepts start and cancel requests
// and runs one job at a time on its own goroutine. It answers with progress
// messages followed by exactly one terminal message (done or error). Pixel
// buffers move with the messages: posting a start request releases the
// caller's buffer, a done message hands the result to the receiver.
//
// A Controller wraps a Worker for callers that want a handle per job with
// Wait, Cancel and a progress stream.
package job

import (
	"github.com/srlehn/upscaler/internal/consts"
	"github.com/srlehn/upscaler/kernel"
	"github.com/srlehn/upscaler/pixbuf"
)

var (
	ErrBusy         = consts.ErrBusy
	ErrCancelled    = consts.ErrCancelled
	ErrWorkerClosed = consts.ErrWorkerClosed
)

// ReasonCancelled is the Reason of an error message caused by a cancel request.
const ReasonCancelled = consts.ReasonCancelled

// Action is the kind of a controller to worker request.
type Action string

const (
	ActionStart  Action = `start`
	ActionCancel Action = `cancel`
)

// Request is a controller to worker message.
type Request struct {
	Action Action
	// JobID selects the job of a cancel request, 0 cancels whatever runs.
	// It is assigned by the worker for start requests.
	JobID     uint64
	Buffer    *pixbuf.Buffer
	Scale     float64
	Algorithm kernel.Algorithm
}

// Kind is the kind of a worker to controller message.
type Kind string

const (
	KindProgress Kind = `progress`
	KindDone     Kind = `done`
	KindError    Kind = `error`
)

// Message is a worker to controller message.
type Message struct {
	JobID   uint64
	Kind    Kind
	Percent int
	// Buffer is the result of a done message.
	Buffer *pixbuf.Buffer
	// Reason describes an error message. It equals ReasonCancelled for a
	// cooperative stop.
	Reason string
	Err    error
}

// Terminal reports whether m is the last message of its job.
func (m Message) Terminal() bool { return m.Kind == KindDone || m.Kind == KindError }

// Cancelled reports whether m acknowledges a cancel request.
func (m Message) Cancelled() bool { return m.Kind == KindError && m.Reason == ReasonCancelled }
