// Package rawclient is a raw-socket HTTP(S) and WebSocket client: every
// request opens its own transport.Transport connection (no pooling across
// requests) and speaks HTTP/1.1 framing or RFC 6455 WebSocket framing
// directly over it. Two send modes share the same builder-produced
// configuration: blocking (Send/Connect block the calling goroutine) and
// cooperative-task (SendAsync/ConnectAsync return a Task the caller drives
// with Wait/Cancel).
package rawclient

import (
	"context"

	"github.com/coregate/rawclient/pkg/headermap"
	"github.com/coregate/rawclient/pkg/metrics"
	"github.com/coregate/rawclient/pkg/rawerrors"
	"github.com/coregate/rawclient/pkg/request"
	"github.com/coregate/rawclient/pkg/transport"
	"github.com/coregate/rawclient/pkg/websocket"
)

// Version is the current version of this library.
const Version = "1.0.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

// Re-exported types so callers only need to import this package for the
// common path; the pkg/* subpackages remain importable directly for
// advanced use (custom transports, direct wire access, and so on).
type (
	// Builder composes a blocking or cooperative-task HTTP(S) request.
	Builder = request.Builder

	// BlockingRequest is a request.Builder.BuildSync() result: Send blocks.
	BlockingRequest = request.BlockingRequest

	// AsyncRequest is a request.Builder.BuildAsync() result: SendAsync
	// returns a Task immediately.
	AsyncRequest = request.AsyncRequest

	// Task represents an in-flight or completed cooperative request
	// (WebSocket dials use WebSocketTask).
	Task = request.Task

	// Response is a completed HTTP(S) exchange.
	Response = request.Response

	// ResponseText is Response.Text()'s sibling view: the shared body read
	// as UTF-8.
	ResponseText = request.ResponseText

	// ResponseBinary is Response.Binary()'s (and Response.Decode()'s)
	// sibling view: the shared body read as raw bytes.
	ResponseBinary = request.ResponseBinary

	// Headers is the case-insensitive header collection used for both
	// requests and responses.
	Headers = headermap.Map

	// Metrics is the per-exchange timing breakdown (DNS, TCP, TLS, TTFB).
	Metrics = metrics.Metrics

	// ConnectionInfo reports what actually happened while dialing: the
	// resolved address, negotiated TLS parameters, and proxy hop used.
	ConnectionInfo = transport.ConnectionMetadata

	// Error is the single structured error type this library returns.
	Error = rawerrors.Error

	// ErrorKind categorizes an Error (see rawerrors.Kind).
	ErrorKind = rawerrors.Kind

	// WebSocketBuilder composes a blocking or cooperative-task WebSocket
	// connection.
	WebSocketBuilder = websocket.WebSocketBuilder

	// BlockingDial is a WebSocketBuilder.BuildSync() result: Connect blocks.
	BlockingDial = websocket.BlockingDial

	// AsyncDial is a WebSocketBuilder.BuildAsync() result: ConnectAsync
	// returns a WebSocketTask immediately.
	AsyncDial = websocket.AsyncDial

	// WebSocketTask represents an in-flight or completed cooperative
	// WebSocket dial.
	WebSocketTask = websocket.Task

	// WebSocket is an open, handshaked RFC 6455 connection.
	WebSocket = websocket.WebSocket

	// MessageType distinguishes text from binary WebSocket messages.
	MessageType = websocket.MessageType
)

// Re-exported error kind constants.
const (
	ErrInvalidURL        = rawerrors.InvalidURL
	ErrConnectionFailure = rawerrors.ConnectionFailure
	ErrTimeout           = rawerrors.Timeout
	ErrTLS               = rawerrors.TLS
	ErrProxyHandshake    = rawerrors.ProxyHandshake
	ErrProtocol          = rawerrors.Protocol
	ErrTooManyRedirects  = rawerrors.TooManyRedirects
	ErrHandshakeFailed   = rawerrors.HandshakeFailed
	ErrClosed            = rawerrors.Closed
	ErrIO                = rawerrors.IO
)

// Re-exported WebSocket message type constants.
const (
	TextMessage   = websocket.TextMessage
	BinaryMessage = websocket.BinaryMessage
)

// NewBuilder starts a new HTTP(S) request builder.
func NewBuilder() *Builder {
	return request.NewBuilder()
}

// NewWebSocketBuilder starts a new WebSocket connection builder.
func NewWebSocketBuilder() *WebSocketBuilder {
	return websocket.NewBuilder()
}

// NewHeaders returns an empty, case-insensitive header collection.
func NewHeaders() Headers {
	return headermap.New()
}

// Get is a shorthand for NewBuilder().Get(url).BuildSync().Send(ctx).
func Get(ctx context.Context, url string) (*Response, error) {
	return NewBuilder().Get(url).BuildSync().Send(ctx)
}

// Post is a shorthand for NewBuilder().Post(url).Body(body).BuildSync().Send(ctx).
func Post(ctx context.Context, url string, body []byte) (*Response, error) {
	return NewBuilder().Post(url).Body(body).BuildSync().Send(ctx)
}

// IsTimeout reports whether err represents a timed-out operation.
func IsTimeout(err error) bool {
	return rawerrors.IsTimeout(err)
}

// IsCanceled reports whether err represents a canceled context.
func IsCanceled(err error) bool {
	return rawerrors.IsCanceled(err)
}

// KindOf returns the ErrorKind of err, or "" if err isn't a library Error.
func KindOf(err error) ErrorKind {
	return rawerrors.KindOf(err)
}
