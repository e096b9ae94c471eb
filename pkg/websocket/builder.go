package websocket

import (
	"github.com/coregate/rawclient/pkg/headermap"
	"github.com/coregate/rawclient/pkg/transport"
)

// WebSocketBuilder accumulates a WebSocket connection configuration through
// chained calls, mirroring request.Builder's shape and immutable-snapshot
// contract.
type WebSocketBuilder struct {
	cfg Config
}

// NewBuilder returns an empty WebSocketBuilder with library defaults
// applied.
func NewBuilder() *WebSocketBuilder {
	return &WebSocketBuilder{cfg: defaultConfig()}
}

// Connect targets a ws:// or wss:// URL.
func (b *WebSocketBuilder) Connect(url string) *WebSocketBuilder {
	b.cfg.URL = url
	return b
}

// Headers merges m into the handshake request headers.
func (b *WebSocketBuilder) Headers(m headermap.Map) *WebSocketBuilder {
	b.cfg.Headers.Merge(m)
	return b
}

// Header merges a single handshake header.
func (b *WebSocketBuilder) Header(name, value string) *WebSocketBuilder {
	b.cfg.Headers.Set(name, value)
	return b
}

// Protocols sets the requested Sec-WebSocket-Protocol values, in preference
// order.
func (b *WebSocketBuilder) Protocols(protocols ...string) *WebSocketBuilder {
	b.cfg.Protocols = protocols
	return b
}

// Timeout sets the handshake and connect timeout in milliseconds.
func (b *WebSocketBuilder) Timeout(ms int64) *WebSocketBuilder {
	b.cfg.TimeoutMS = ms
	return b
}

// Buffer records BufferLimit on the Config. Receive does not consult it:
// messages are assembled fully in memory and never spill to disk.
func (b *WebSocketBuilder) Buffer(n int64) *WebSocketBuilder {
	b.cfg.BufferLimit = n
	return b
}

// HTTPProxy routes the handshake TCP connection through an HTTP CONNECT
// proxy.
func (b *WebSocketBuilder) HTTPProxy(host string, port int) *WebSocketBuilder {
	b.cfg.Proxy = &transport.Proxy{Kind: transport.ProxyHTTP, Host: host, Port: port}
	return b
}

// SOCKS5Proxy routes the handshake TCP connection through a SOCKS5 proxy.
func (b *WebSocketBuilder) SOCKS5Proxy(host string, port int) *WebSocketBuilder {
	b.cfg.Proxy = &transport.Proxy{Kind: transport.ProxySOCKS5, Host: host, Port: port, ResolveDNSViaProxy: true}
	return b
}

// SOCKS5ProxyAuth is SOCKS5Proxy with username/password authentication.
func (b *WebSocketBuilder) SOCKS5ProxyAuth(host string, port int, user, pass string) *WebSocketBuilder {
	b.cfg.Proxy = &transport.Proxy{
		Kind: transport.ProxySOCKS5, Host: host, Port: port,
		Username: user, Password: pass, ResolveDNSViaProxy: true,
	}
	return b
}

// InsecureTLS disables certificate verification for a wss:// connection.
func (b *WebSocketBuilder) InsecureTLS() *WebSocketBuilder {
	b.cfg.InsecureTLS = true
	return b
}

// ClientCert configures a client certificate/key pair for mutual TLS.
func (b *WebSocketBuilder) ClientCert(certPEM, keyPEM []byte) *WebSocketBuilder {
	b.cfg.ClientCertPEM = certPEM
	b.cfg.ClientKeyPEM = keyPEM
	return b
}

func (b *WebSocketBuilder) snapshot() Config {
	cfg := b.cfg
	cfg.Headers = b.cfg.Headers.Clone()
	cfg.Protocols = append([]string(nil), b.cfg.Protocols...)
	return cfg
}

// BuildSync finalizes the builder into a BlockingDial: Connect() blocks
// until the handshake completes.
func (b *WebSocketBuilder) BuildSync() *BlockingDial {
	return &BlockingDial{cfg: b.snapshot()}
}

// BuildAsync finalizes the builder into an AsyncDial: ConnectAsync() hands
// the handshake to a background goroutine and returns a Task immediately.
func (b *WebSocketBuilder) BuildAsync() *AsyncDial {
	return &AsyncDial{cfg: b.snapshot()}
}
