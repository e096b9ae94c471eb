package websocket

import (
	"bufio"
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coregate/rawclient/pkg/headermap"
	"github.com/coregate/rawclient/pkg/metrics"
	"github.com/coregate/rawclient/pkg/rawerrors"
	"github.com/coregate/rawclient/pkg/transport"
	"github.com/coregate/rawclient/pkg/urlinfo"
)

// MessageType distinguishes text from binary WebSocket messages, mirroring
// the opcode an application cares about (control frames never reach the
// caller — they're handled internally).
type MessageType int

const (
	TextMessage   MessageType = opText
	BinaryMessage MessageType = opBin
)

// WebSocket is an open, handshaked RFC 6455 connection. One goroutine
// should drive Receive at a time; SendText/SendBinary/Close may be called
// concurrently with an in-progress Receive.
type WebSocket struct {
	conn   net.Conn
	reader *bufio.Reader

	writeMu sync.Mutex
	closed  atomic.Bool

	leftover []byte

	Protocol   string
	Headers    headermap.Map
	Metrics    metrics.Metrics
	Connection transport.ConnectionMetadata
}

// connect dials target, performs the TLS upgrade if wss, and runs the
// RFC 6455 Section 4.1 opening handshake.
func connect(ctx context.Context, cfg Config, target urlinfo.Info) (*WebSocket, error) {
	timer := metrics.NewTimer()

	tcfg := transport.Config{
		Host:           target.Host,
		Port:           target.Port,
		ConnTimeout:    cfg.timeout(),
		Proxy:          cfg.Proxy,
		InsecureTLS:    cfg.InsecureTLS,
		CustomCACerts:  cfg.CustomCACerts,
		ClientCertPEM:  cfg.ClientCertPEM,
		ClientKeyPEM:   cfg.ClientKeyPEM,
		ClientCertFile: cfg.ClientCertFile,
		ClientKeyFile:  cfg.ClientKeyFile,
	}
	if target.Secure {
		tcfg.Scheme = "https"
	} else {
		tcfg.Scheme = "http"
	}

	tr := transport.New()
	conn, connMeta, err := tr.Connect(ctx, tcfg, timer)
	if err != nil {
		return nil, err
	}

	deadline, hasDeadline := ctx.Deadline()
	if cfg.TimeoutMS > 0 {
		if d := time.Now().Add(cfg.timeout()); !hasDeadline || d.Before(deadline) {
			deadline, hasDeadline = d, true
		}
	}
	if hasDeadline {
		conn.SetDeadline(deadline)
	}
	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stopWatch:
		}
	}()

	challengeKey, err := generateChallengeKey()
	if err != nil {
		conn.Close()
		return nil, rawerrors.HandshakeFailedError("failed to generate Sec-WebSocket-Key", err)
	}

	req := handshakeRequest(target, cfg.Headers, cfg.Protocols, challengeKey)
	if _, err := conn.Write(req); err != nil {
		conn.Close()
		return nil, rawerrors.IOError("write_handshake", err)
	}

	br := bufio.NewReader(conn)
	respHeaders, err := readHandshakeResponse(br, challengeKey)
	if err != nil {
		conn.Close()
		return nil, err
	}

	// Clear the deadline set for the handshake; message I/O after this
	// point runs without a deadline.
	conn.SetDeadline(time.Time{})

	protocol, _ := respHeaders.Get("Sec-WebSocket-Protocol")

	return &WebSocket{
		conn:       conn,
		reader:     br,
		Protocol:   protocol,
		Headers:    respHeaders,
		Metrics:    timer.GetMetrics(),
		Connection: *connMeta,
	}, nil
}

// SendText sends a single-frame text message.
func (w *WebSocket) SendText(s string) error {
	return w.sendFrame(opText, []byte(s))
}

// SendBinary sends a single-frame binary message.
func (w *WebSocket) SendBinary(b []byte) error {
	return w.sendFrame(opBin, b)
}

func (w *WebSocket) sendFrame(opcode byte, payload []byte) error {
	if w.closed.Load() {
		return rawerrors.ClosedError("send")
	}
	framed, err := buildFrame(opcode, payload, true)
	if err != nil {
		return rawerrors.IOError("build_frame", err)
	}
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if _, err := w.conn.Write(framed); err != nil {
		return rawerrors.IOError("write_frame", err)
	}
	return nil
}

// Receive blocks until a complete text or binary message arrives,
// transparently reassembling fragmented messages and answering ping frames
// with pong. A peer-initiated close frame is acknowledged and surfaced as
// rawerrors.Closed.
func (w *WebSocket) Receive() (MessageType, []byte, error) {
	var assembled []byte
	var assembling bool
	var assembledType MessageType

	buf := make([]byte, 4096)
	for {
		frames, rest, err := parseFrames(w.leftover)
		if err != nil {
			return 0, nil, rawerrors.ProtocolError("malformed websocket frame", err)
		}
		w.leftover = rest

		for _, f := range frames {
			switch f.Opcode {
			case opText, opBin:
				if !f.Fin {
					assembling = true
					assembledType = MessageType(f.Opcode)
					assembled = append(assembled[:0], f.Payload...)
					continue
				}
				if assembling {
					continue // a non-continuation frame mid-fragmentation: protocol error, ignore conservatively
				}
				return MessageType(f.Opcode), f.Payload, nil
			case opCont:
				assembled = append(assembled, f.Payload...)
				if f.Fin {
					assembling = false
					msg := assembled
					assembled = nil
					return assembledType, msg, nil
				}
			case opPing:
				if err := w.sendFrame(opPong, f.Payload); err != nil {
					return 0, nil, err
				}
			case opPong:
				// unsolicited pong: nothing to do
			case opClose:
				w.closed.Store(true)
				w.sendFrame(opClose, f.Payload)
				w.conn.Close()
				return 0, nil, rawerrors.ClosedError("receive")
			}
		}

		if len(frames) > 0 {
			continue
		}

		n, err := w.reader.Read(buf)
		if n > 0 {
			w.leftover = append(w.leftover, buf[:n]...)
		}
		if err != nil {
			return 0, nil, rawerrors.IOError("read_frame", err)
		}
	}
}

// Close sends a close frame and releases the underlying connection. Safe to
// call more than once.
func (w *WebSocket) Close() error {
	if w.closed.Swap(true) {
		return nil
	}
	w.sendFrame(opClose, nil)
	return w.conn.Close()
}
