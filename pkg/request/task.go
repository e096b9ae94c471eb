package request

import "context"

// BlockingRequest is a finalized, ready-to-send configuration built with
// Builder.BuildSync(). Send blocks the calling goroutine until the exchange
// (and any redirects) completes.
type BlockingRequest struct {
	cfg      Config
	buildErr error
}

// Send runs the request to completion, blocking until a Response, error, or
// ctx cancellation.
func (r *BlockingRequest) Send(ctx context.Context) (*Response, error) {
	if r.buildErr != nil {
		return nil, r.buildErr
	}
	return send(ctx, r.cfg)
}

// AsyncRequest is a finalized configuration built with Builder.BuildAsync().
// SendAsync hands the exchange to a background goroutine and returns
// immediately with a Task handle, modeling this library's cooperative-task
// mode without requiring a native coroutine runtime.
type AsyncRequest struct {
	cfg      Config
	buildErr error
}

// SendAsync starts the exchange on a new goroutine and returns a Task that
// the caller can Wait() on or Cancel().
func (r *AsyncRequest) SendAsync(ctx context.Context) *Task {
	t := &Task{done: make(chan struct{})}

	if r.buildErr != nil {
		t.err = r.buildErr
		close(t.done)
		return t
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	go func() {
		defer close(t.done)
		resp, err := send(runCtx, r.cfg)
		t.resp, t.err = resp, err
	}()

	return t
}

// Task represents an in-flight (or completed) cooperative request. It is
// the Go-native stand-in for the native coroutine handle this library's
// cooperative-task mode exposes in other languages: Wait blocks the calling
// goroutine until the background goroutine finishes, and Cancel requests
// early termination via context cancellation.
type Task struct {
	done   chan struct{}
	cancel context.CancelFunc
	resp   *Response
	err    error
}

// Wait blocks until the task completes and returns its result. Calling Wait
// more than once returns the same result.
func (t *Task) Wait() (*Response, error) {
	<-t.done
	return t.resp, t.err
}

// Cancel requests that the task stop as soon as possible by canceling its
// context. It does not block for the task to actually finish — call Wait
// for that.
func (t *Task) Cancel() {
	if t.cancel != nil {
		t.cancel()
	}
}

// Done returns a channel closed when the task completes, for use in a
// select alongside other cancellation sources.
func (t *Task) Done() <-chan struct{} {
	return t.done
}
