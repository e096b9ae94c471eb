// Package request implements the per-request builder and the blocking and
// cooperative-task send algorithms that share it: compose headers, build
// wire bytes, open a transport, write, read, follow redirects, and hand
// back a Response.
package request

import (
	"time"

	"github.com/coregate/rawclient/pkg/constants"
	"github.com/coregate/rawclient/pkg/headermap"
	"github.com/coregate/rawclient/pkg/transport"
)

// Config is the immutable snapshot of everything a Builder accumulated,
// taken at BuildSync()/BuildAsync() time so that concurrent sends built
// from the same Builder never share mutable state.
type Config struct {
	Method  string
	URL     string
	Headers headermap.Map
	Body    []byte

	TimeoutMS int64

	// ReadChunkSize is buffer_size: the per-Read chunk size used while
	// scanning for the end of headers and while draining the body.
	// Builder.Buffer() sets this; default 1024, minimum 1.
	ReadChunkSize int

	// BodyMemLimit is the body memory limit (bytes) before bodystore
	// spills to disk — a storage knob distinct from ReadChunkSize.
	// Builder.MemLimit() sets this.
	BodyMemLimit int64

	Redirect     bool
	MaxRedirects int
	AutoDecode   bool // Builder.Decode(): auto-decompress by Content-Encoding

	// HTTPVersionHint records a pinned version (Builder.HTTP1_1Only /
	// HTTP2Only); the wire is always HTTP/1.1 framing regardless (see
	// Open Question (a) in the design notes).
	HTTPVersionHint string

	Proxy *transport.Proxy

	InsecureTLS    bool
	CustomCACerts  [][]byte
	ClientCertPEM  []byte
	ClientKeyPEM   []byte
	ClientCertFile string
	ClientKeyFile  string

	// SNI overrides the TLS ServerName sent during the handshake; useful
	// when dialing an IP directly but presenting a virtual host name.
	// DisableSNI suppresses ServerName entirely and takes priority over SNI.
	SNI        string
	DisableSNI bool
}

func defaultConfig() Config {
	return Config{
		Headers:       headermap.New(),
		TimeoutMS:     30_000,
		ReadChunkSize: constants.DefaultReadChunkSize,
		BodyMemLimit:  constants.DefaultBodyMemLimit,
		Redirect:      false,
		MaxRedirects:  constants.DefaultMaxRedirects,
	}
}

func (c Config) timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}
