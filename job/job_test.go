package job_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srlehn/upscaler/internal/errors"
	"github.com/srlehn/upscaler/internal/testutil"
	"github.com/srlehn/upscaler/job"
	"github.com/srlehn/upscaler/kernel"
	"github.com/srlehn/upscaler/pixbuf"
	"github.com/srlehn/upscaler/resample"
)

func newBuffer(t *testing.T, w, h int) *pixbuf.Buffer {
	t.Helper()
	buf, err := testutil.Buffer(w, h, testutil.Opaque)
	require.NoError(t, err)
	return buf
}

// blockingEngine holds every job in its allocator until release is closed.
func blockingEngine(t *testing.T, release <-chan struct{}) *resample.Engine {
	t.Helper()
	e, err := resample.New(resample.SetAllocator(func(w, h int) (*pixbuf.Buffer, error) {
		<-release
		return pixbuf.New(w, h)
	}))
	require.NoError(t, err)
	return e
}

// collect reads the messages of one job up to and including its terminal message.
func collect(t *testing.T, w *job.Worker, id uint64) []job.Message {
	t.Helper()
	var msgs []job.Message
	timeout := time.After(30 * time.Second)
	for {
		select {
		case msg, ok := <-w.Messages():
			require.True(t, ok, `message stream closed before the terminal message`)
			require.Equal(t, id, msg.JobID)
			msgs = append(msgs, msg)
			if msg.Terminal() {
				return msgs
			}
		case <-timeout:
			t.Fatal(`no terminal message`)
		}
	}
}

func TestWorkerMessages(t *testing.T) {
	w, err := job.NewWorker()
	require.NoError(t, err)
	defer w.Close()

	src := newBuffer(t, 10, 10)
	id, err := w.Start(job.Request{Buffer: src, Scale: 4, Algorithm: kernel.AlgorithmBicubic})
	require.NoError(t, err)
	assert.NotZero(t, id)
	// ownership moved to the worker
	assert.True(t, src.Released())
	assert.Nil(t, src.Pix())

	msgs := collect(t, w, id)
	last := msgs[len(msgs)-1]
	require.Equal(t, job.KindDone, last.Kind)
	require.NotNil(t, last.Buffer)
	assert.Equal(t, 40, last.Buffer.Width())
	assert.Equal(t, 40, last.Buffer.Height())
	assert.Equal(t, 100, last.Percent)

	prev := 0
	for _, msg := range msgs[:len(msgs)-1] {
		require.Equal(t, job.KindProgress, msg.Kind)
		assert.GreaterOrEqual(t, msg.Percent, prev)
		assert.LessOrEqual(t, msg.Percent, 100)
		prev = msg.Percent
	}
	assert.Len(t, msgs, 20)
	assert.False(t, w.Busy())
}

func TestWorkerBusy(t *testing.T) {
	release := make(chan struct{})
	w, err := job.NewWorker(job.SetEngine(blockingEngine(t, release)))
	require.NoError(t, err)
	defer w.Close()

	id, err := w.Start(job.Request{Buffer: newBuffer(t, 2, 2), Scale: 2, Algorithm: kernel.AlgorithmBilinear})
	require.NoError(t, err)
	assert.True(t, w.Busy())

	second := newBuffer(t, 2, 2)
	_, err = w.Start(job.Request{Buffer: second, Scale: 2, Algorithm: kernel.AlgorithmBilinear})
	assert.True(t, errors.Is(err, job.ErrBusy))
	// a rejected start keeps the caller's buffer
	assert.False(t, second.Released())

	close(release)
	msgs := collect(t, w, id)
	assert.Equal(t, job.KindDone, msgs[len(msgs)-1].Kind)

	id2, err := w.Start(job.Request{Buffer: second, Scale: 2, Algorithm: kernel.AlgorithmBilinear})
	require.NoError(t, err)
	assert.Greater(t, id2, id)
	msgs = collect(t, w, id2)
	assert.Equal(t, job.KindDone, msgs[len(msgs)-1].Kind)
}

func TestWorkerInvalidRequests(t *testing.T) {
	w, err := job.NewWorker()
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Start(job.Request{Scale: 2})
	assert.Error(t, err)
	assert.False(t, w.Busy())

	src := newBuffer(t, 2, 2)
	_, err = src.Transfer()
	require.NoError(t, err)
	_, err = w.Start(job.Request{Buffer: src, Scale: 2})
	assert.True(t, errors.Is(err, pixbuf.ErrReleased))
	assert.False(t, w.Busy())

	_, err = w.Post(job.Request{Action: `resume`})
	assert.Error(t, err)

	// a cancel without a running job is ignored
	assert.NoError(t, w.Cancel(0))
}

func TestWorkerFailure(t *testing.T) {
	w, err := job.NewWorker()
	require.NoError(t, err)
	defer w.Close()

	id, err := w.Start(job.Request{Buffer: newBuffer(t, 2, 2), Scale: 0, Algorithm: kernel.AlgorithmBilinear})
	require.NoError(t, err)
	msgs := collect(t, w, id)
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, job.KindError, msg.Kind)
	assert.False(t, msg.Cancelled())
	assert.True(t, errors.Is(msg.Err, resample.ErrInvalidScale))
	assert.Equal(t, msg.Err.Error(), msg.Reason)
}

func TestWorkerPanic(t *testing.T) {
	e, err := resample.New(resample.SetAllocator(func(w, h int) (*pixbuf.Buffer, error) {
		panic(`allocator exploded`)
	}))
	require.NoError(t, err)
	w, err := job.NewWorker(job.SetEngine(e))
	require.NoError(t, err)
	defer w.Close()

	id, err := w.Start(job.Request{Buffer: newBuffer(t, 2, 2), Scale: 2, Algorithm: kernel.AlgorithmLanczos3})
	require.NoError(t, err)
	msgs := collect(t, w, id)
	require.Len(t, msgs, 1)
	assert.Equal(t, job.KindError, msgs[0].Kind)
	assert.Contains(t, msgs[0].Reason, `allocator exploded`)

	// the worker survives the panic
	id, err = w.Start(job.Request{Buffer: newBuffer(t, 2, 2), Scale: 1, Algorithm: kernel.AlgorithmBilinear})
	require.NoError(t, err)
	msgs = collect(t, w, id)
	assert.Equal(t, job.KindError, msgs[len(msgs)-1].Kind)
}

func TestWorkerCancel(t *testing.T) {
	w, err := job.NewWorker()
	require.NoError(t, err)
	defer w.Close()

	// large enough that the job is far from done after its first report
	id, err := w.Start(job.Request{Buffer: newBuffer(t, 256, 256), Scale: 4, Algorithm: kernel.AlgorithmLanczos3})
	require.NoError(t, err)

	msg := <-w.Messages()
	require.Equal(t, job.KindProgress, msg.Kind)
	require.NoError(t, w.Cancel(id))

	msgs := collect(t, w, id)
	terminals := 0
	for _, m := range msgs {
		if m.Terminal() {
			terminals++
		}
	}
	assert.Equal(t, 1, terminals)
	last := msgs[len(msgs)-1]
	assert.True(t, last.Cancelled())
	assert.Equal(t, job.ReasonCancelled, last.Reason)
	assert.True(t, errors.Is(last.Err, job.ErrCancelled))
	assert.Nil(t, last.Buffer)
}

func TestWorkerCancelStaleID(t *testing.T) {
	release := make(chan struct{})
	w, err := job.NewWorker(job.SetEngine(blockingEngine(t, release)))
	require.NoError(t, err)
	defer w.Close()

	id, err := w.Start(job.Request{Buffer: newBuffer(t, 2, 2), Scale: 2, Algorithm: kernel.AlgorithmBilinear})
	require.NoError(t, err)
	// cancelling another job does not touch the running one
	require.NoError(t, w.Cancel(id+1))
	close(release)
	msgs := collect(t, w, id)
	assert.Equal(t, job.KindDone, msgs[len(msgs)-1].Kind)
}

func TestWorkerClose(t *testing.T) {
	release := make(chan struct{})
	w, err := job.NewWorker(job.SetEngine(blockingEngine(t, release)))
	require.NoError(t, err)

	id, err := w.Start(job.Request{Buffer: newBuffer(t, 2, 2), Scale: 2, Algorithm: kernel.AlgorithmBilinear})
	require.NoError(t, err)

	closed := make(chan error)
	go func() { closed <- w.Close() }()
	close(release)
	require.NoError(t, <-closed)

	var msgs []job.Message
	for msg := range w.Messages() {
		msgs = append(msgs, msg)
	}
	require.NotEmpty(t, msgs)
	last := msgs[len(msgs)-1]
	assert.Equal(t, id, last.JobID)
	assert.True(t, last.Terminal())

	_, err = w.Start(job.Request{Buffer: newBuffer(t, 2, 2), Scale: 2})
	assert.True(t, errors.Is(err, job.ErrWorkerClosed))
	assert.NoError(t, w.Close())
}

func TestControllerCompleted(t *testing.T) {
	c, err := job.NewController()
	require.NoError(t, err)
	defer c.Close()

	src := newBuffer(t, 8, 8)
	h, err := c.Submit(src, 4, kernel.AlgorithmBicubic)
	require.NoError(t, err)
	assert.True(t, src.Released())

	var reports []int
	for p := range h.Progress() {
		reports = append(reports, p)
	}
	out, err := h.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, job.StateCompleted, out.State)
	require.NotNil(t, out.Buffer)
	assert.Equal(t, 32, out.Buffer.Width())
	assert.Equal(t, 32, out.Buffer.Height())

	require.NotEmpty(t, reports)
	for i := 1; i < len(reports); i++ {
		assert.GreaterOrEqual(t, reports[i], reports[i-1])
	}

	got, ok := h.Outcome()
	assert.True(t, ok)
	assert.Equal(t, out, got)
	// cancelling a finished job is a no-op
	assert.NoError(t, h.Cancel())
	assert.Nil(t, c.Pending())
}

func TestControllerBusy(t *testing.T) {
	release := make(chan struct{})
	c, err := job.NewController(job.SetWorkerOptions(job.SetEngine(blockingEngine(t, release))))
	require.NoError(t, err)
	defer c.Close()

	h, err := c.Submit(newBuffer(t, 2, 2), 2, kernel.AlgorithmBilinear)
	require.NoError(t, err)
	assert.Equal(t, h, c.Pending())
	_, err = c.Submit(newBuffer(t, 2, 2), 2, kernel.AlgorithmBilinear)
	assert.True(t, errors.Is(err, job.ErrBusy))

	_, ok := h.Outcome()
	assert.False(t, ok)

	close(release)
	out, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, job.StateCompleted, out.State)

	h, err = c.Submit(newBuffer(t, 2, 2), 2, kernel.AlgorithmBilinear)
	require.NoError(t, err)
	out, err = h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, job.StateCompleted, out.State)
}

func TestControllerCancel(t *testing.T) {
	release := make(chan struct{})
	c, err := job.NewController(job.SetWorkerOptions(job.SetEngine(blockingEngine(t, release))))
	require.NoError(t, err)
	defer c.Close()

	h, err := c.Submit(newBuffer(t, 4, 4), 2, kernel.AlgorithmLanczos3)
	require.NoError(t, err)
	require.NoError(t, h.Cancel())
	require.NoError(t, h.Cancel())
	assert.True(t, h.CancelRequested())
	close(release)

	out, err := h.Wait(context.Background())
	require.NoError(t, err)
	// the worker may have finished before the cancel request arrived
	switch out.State {
	case job.StateCancelled:
		assert.Nil(t, out.Buffer)
	case job.StateCompleted:
		assert.NotNil(t, out.Buffer)
	default:
		t.Fatalf(`unexpected state %s`, out.State)
	}
}

func TestControllerWaitContext(t *testing.T) {
	c, err := job.NewController()
	require.NoError(t, err)
	defer c.Close()

	h, err := c.Submit(newBuffer(t, 256, 256), 4, kernel.AlgorithmLanczos3)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	<-h.Progress()
	cancel()

	out, err := h.Wait(ctx)
	assert.NoError(t, err)
	assert.Equal(t, job.StateCancelled, out.State)
	assert.True(t, h.CancelRequested())
}

func TestControllerTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	c, err := job.NewController(
		job.SetTimeout(20*time.Millisecond),
		job.SetWorkerOptions(job.SetEngine(blockingEngine(t, release))),
	)
	require.NoError(t, err)

	h, err := c.Submit(newBuffer(t, 4, 4), 2, kernel.AlgorithmBilinear)
	require.NoError(t, err)
	require.Eventually(t, h.CancelRequested, 5*time.Second, 5*time.Millisecond)

	_, err = job.NewController(job.SetTimeout(-time.Second))
	assert.Error(t, err)
}

func TestControllerFailed(t *testing.T) {
	c, err := job.NewController()
	require.NoError(t, err)
	defer c.Close()

	h, err := c.Submit(newBuffer(t, 3, 3), 0.2, kernel.AlgorithmBicubic)
	require.NoError(t, err)
	out, err := h.Wait(context.Background())
	assert.Equal(t, job.StateFailed, out.State)
	assert.True(t, errors.Is(err, resample.ErrInvalidDimensions))
	assert.True(t, strings.Contains(err.Error(), `invalid dimensions`))
}

func TestControllerClose(t *testing.T) {
	release := make(chan struct{})
	c, err := job.NewController(job.SetWorkerOptions(job.SetEngine(blockingEngine(t, release))))
	require.NoError(t, err)

	h, err := c.Submit(newBuffer(t, 2, 2), 2, kernel.AlgorithmBilinear)
	require.NoError(t, err)
	closed := make(chan error)
	go func() { closed <- c.Close() }()
	close(release)
	require.NoError(t, <-closed)

	select {
	case <-h.Done():
	case <-time.After(30 * time.Second):
		t.Fatal(`handle not resolved after Close`)
	}
	out, _ := h.Outcome()
	assert.NotEqual(t, job.StateRunning, out.State)

	_, err = c.Submit(newBuffer(t, 2, 2), 2, kernel.AlgorithmBilinear)
	assert.True(t, errors.Is(err, job.ErrWorkerClosed))
}
