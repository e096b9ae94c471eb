package request

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/coregate/rawclient/pkg/urlinfo"
)

// serveOnce accepts a single connection on a loopback listener, drains the
// request, writes raw verbatim, and returns the listener's address.
func serveOnce(t *testing.T, raw string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4096)
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		conn.Read(buf)
		conn.Write([]byte(raw))
	}()
	t.Cleanup(func() { ln.Close() })
	return ln.Addr().String()
}

func targetAndConfig(t *testing.T, addr string) (urlinfo.Info, Config) {
	t.Helper()
	rawURL := "http://" + addr + "/"
	target, err := urlinfo.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse target: %v", err)
	}
	cfg := defaultConfig()
	cfg.Method = "GET"
	cfg.URL = rawURL
	cfg.TimeoutMS = 2000
	return target, cfg
}

func TestAttemptFixedLengthBody(t *testing.T) {
	addr := serveOnce(t, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello")
	target, cfg := targetAndConfig(t, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := attempt(ctx, cfg, target)
	if err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if resp.StatusCode() != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode())
	}
	body, err := resp.Text().Value()
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if body != "hello" {
		t.Fatalf("body = %q, want hello", body)
	}
}

func TestAttemptChunkedBody(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"
	addr := serveOnce(t, raw)
	target, cfg := targetAndConfig(t, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := attempt(ctx, cfg, target)
	if err != nil {
		t.Fatalf("attempt: %v", err)
	}
	body, err := resp.Text().Value()
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if body != "hello world" {
		t.Fatalf("body = %q, want %q", body, "hello world")
	}
}

func TestAttemptNoBodyOn204(t *testing.T) {
	addr := serveOnce(t, "HTTP/1.1 204 No Content\r\n\r\n")
	target, cfg := targetAndConfig(t, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := attempt(ctx, cfg, target)
	if err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if resp.StatusCode() != 204 {
		t.Fatalf("status = %d, want 204", resp.StatusCode())
	}
	body, err := resp.Binary().Value()
	if err != nil {
		t.Fatalf("binary: %v", err)
	}
	if len(body) != 0 {
		t.Fatalf("expected empty body, got %q", body)
	}
}

func TestComposeRequestHeadersSetsHostAndContentLength(t *testing.T) {
	target, err := urlinfo.Parse("http://example.com/path")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg := defaultConfig()
	cfg.Body = []byte("abc")
	cfg.Headers.Set("X-Test", "1")

	h := composeRequestHeaders(cfg, target)
	if v, _ := h.Get("Host"); v != "example.com" {
		t.Fatalf("Host = %q", v)
	}
	if v, _ := h.Get("Content-Length"); v != "3" {
		t.Fatalf("Content-Length = %q, want 3", v)
	}
	if v, _ := h.Get("X-Test"); v != "1" {
		t.Fatalf("X-Test = %q", v)
	}
}
