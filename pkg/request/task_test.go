package request

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestBlockingRequestSend(t *testing.T) {
	addr := serveOnce(t, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok")

	req := NewBuilder().Get("http://" + addr + "/").Timeout(2000).BuildSync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := req.Send(ctx)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	body, _ := resp.Text().Value()
	if body != "ok" {
		t.Fatalf("body = %q, want ok", body)
	}
}

func TestAsyncRequestWait(t *testing.T) {
	addr := serveOnce(t, "HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok")

	req := NewBuilder().Get("http://" + addr + "/").Timeout(2000).BuildAsync()
	task := req.SendAsync(context.Background())

	resp, err := task.Wait()
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if resp.StatusCode() != 200 {
		t.Fatalf("status = %d", resp.StatusCode())
	}
}

func TestAsyncRequestCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	// Never accept — the kernel backlog completes the TCP connect, so the
	// exchange hangs waiting for a response until canceled.

	req := NewBuilder().Get("http://" + ln.Addr().String() + "/").Timeout(60_000).BuildAsync()
	ctx, cancel := context.WithCancel(context.Background())
	task := req.SendAsync(ctx)

	task.Cancel()
	cancel()

	select {
	case <-task.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("task did not finish after cancellation")
	}
	if _, err := task.Wait(); err == nil {
		t.Fatal("expected an error after cancellation")
	}
}
