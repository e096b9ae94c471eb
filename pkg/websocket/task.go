package websocket

import (
	"context"

	"github.com/coregate/rawclient/pkg/urlinfo"
)

func dial(ctx context.Context, cfg Config) (*WebSocket, error) {
	target, err := urlinfo.Parse(cfg.URL)
	if err != nil {
		return nil, err
	}
	return connect(ctx, cfg, target)
}

// BlockingDial is a finalized configuration built with
// WebSocketBuilder.BuildSync(). Connect blocks until the handshake
// completes.
type BlockingDial struct {
	cfg Config
}

// Connect performs the handshake and returns an open WebSocket.
func (d *BlockingDial) Connect(ctx context.Context) (*WebSocket, error) {
	return dial(ctx, d.cfg)
}

// AsyncDial is a finalized configuration built with
// WebSocketBuilder.BuildAsync(). ConnectAsync hands the handshake to a
// background goroutine and returns a Task immediately.
type AsyncDial struct {
	cfg Config
}

// ConnectAsync starts the handshake on a new goroutine and returns a Task
// the caller can Wait() on or Cancel().
func (d *AsyncDial) ConnectAsync(ctx context.Context) *Task {
	t := &Task{done: make(chan struct{})}

	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	go func() {
		defer close(t.done)
		ws, err := dial(runCtx, d.cfg)
		t.ws, t.err = ws, err
	}()

	return t
}

// Task represents an in-flight (or completed) cooperative WebSocket dial,
// the same Go-native stand-in for a native coroutine handle used by
// request.Task.
type Task struct {
	done   chan struct{}
	cancel context.CancelFunc
	ws     *WebSocket
	err    error
}

// Wait blocks until the dial completes and returns its result.
func (t *Task) Wait() (*WebSocket, error) {
	<-t.done
	return t.ws, t.err
}

// Cancel requests that the dial stop as soon as possible.
func (t *Task) Cancel() {
	if t.cancel != nil {
		t.cancel()
	}
}

// Done returns a channel closed when the task completes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}
