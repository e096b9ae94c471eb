package request

import (
	"github.com/coregate/rawclient/pkg/headermap"
	"github.com/coregate/rawclient/pkg/jsoncodec"
	"github.com/coregate/rawclient/pkg/transport"
)

// Builder accumulates a request configuration through chained calls; it is
// not safe for concurrent use, but every BuildSync()/BuildAsync() call
// snapshots a fresh, independent Config, so requests already built are
// unaffected by further calls on the Builder.
type Builder struct {
	cfg Config
	err error // first validation error encountered, surfaced at build time
}

// NewBuilder returns an empty Builder with library defaults applied.
func NewBuilder() *Builder {
	return &Builder{cfg: defaultConfig()}
}

// Get configures a GET request against url.
func (b *Builder) Get(url string) *Builder {
	b.cfg.Method = "GET"
	b.cfg.URL = url
	return b
}

// Post configures a POST request against url.
func (b *Builder) Post(url string) *Builder {
	b.cfg.Method = "POST"
	b.cfg.URL = url
	return b
}

// Method sets an arbitrary HTTP method (PUT, DELETE, PATCH, ...).
func (b *Builder) Method(method, url string) *Builder {
	b.cfg.Method = method
	b.cfg.URL = url
	return b
}

// Headers merges m into the accumulated header set, case-insensitive,
// last-writer-wins — repeated calls layer rather than replace.
func (b *Builder) Headers(m headermap.Map) *Builder {
	b.cfg.Headers.Merge(m)
	return b
}

// Header merges a single name/value pair.
func (b *Builder) Header(name, value string) *Builder {
	b.cfg.Headers.Set(name, value)
	return b
}

// Body sets a raw request body.
func (b *Builder) Body(body []byte) *Builder {
	b.cfg.Body = body
	return b
}

// Text sets the body to s and, if Content-Type wasn't already set, defaults
// it to text/plain; charset=utf-8.
func (b *Builder) Text(s string) *Builder {
	b.cfg.Body = []byte(s)
	if _, ok := b.cfg.Headers.Get("Content-Type"); !ok {
		b.cfg.Headers.Set("Content-Type", "text/plain; charset=utf-8")
	}
	return b
}

// JSON marshals v with the default JSON encoder and sets Content-Type:
// application/json if not already set.
func (b *Builder) JSON(v any) *Builder {
	body, err := jsoncodec.Default.Marshal(v)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Body = body
	if _, ok := b.cfg.Headers.Get("Content-Type"); !ok {
		b.cfg.Headers.Set("Content-Type", "application/json")
	}
	return b
}

// Timeout sets the per-attempt timeout in milliseconds: it bounds connection
// setup and the whole exchange of each attempt, and every redirect hop gets
// a fresh budget. An earlier ctx deadline still takes precedence.
func (b *Builder) Timeout(ms int64) *Builder {
	b.cfg.TimeoutMS = ms
	return b
}

// Buffer sets buffer_size, the per-Read chunk size used while scanning for
// the end of headers and while draining the body (minimum 1; values below
// that are clamped up to 1).
func (b *Builder) Buffer(n int) *Builder {
	if n < 1 {
		n = 1
	}
	b.cfg.ReadChunkSize = n
	return b
}

// MemLimit sets the body memory limit (bytes) before bodystore spills to
// disk. Distinct from Buffer, which controls the per-Read chunk size.
func (b *Builder) MemLimit(n int64) *Builder {
	b.cfg.BodyMemLimit = n
	return b
}

// Redirect enables following redirects; disabled by default, so a 3xx
// response is returned as-is unless this is called.
func (b *Builder) Redirect() *Builder {
	b.cfg.Redirect = true
	return b
}

// Unredirect disables following redirects (the default); a 3xx response is
// returned as-is.
func (b *Builder) Unredirect() *Builder {
	b.cfg.Redirect = false
	return b
}

// MaxRedirectTimes sets the redirect budget.
func (b *Builder) MaxRedirectTimes(n int) *Builder {
	b.cfg.MaxRedirects = n
	return b
}

// Decode enables automatic response body decompression by Content-Encoding.
func (b *Builder) Decode() *Builder {
	b.cfg.AutoDecode = true
	return b
}

// HTTP1_1Only pins the version hint to HTTP/1.1 (the engine only ever
// frames HTTP/1.1 on the wire regardless of this hint).
func (b *Builder) HTTP1_1Only() *Builder {
	b.cfg.HTTPVersionHint = "HTTP/1.1"
	return b
}

// HTTP2Only pins the version hint to HTTP/2. See the design notes: this is
// a recorded no-op, the wire still frames HTTP/1.1.
func (b *Builder) HTTP2Only() *Builder {
	b.cfg.HTTPVersionHint = "HTTP/2"
	return b
}

// HTTPProxy routes the request through an HTTP CONNECT proxy.
func (b *Builder) HTTPProxy(host string, port int) *Builder {
	b.cfg.Proxy = &transport.Proxy{Kind: transport.ProxyHTTP, Host: host, Port: port}
	return b
}

// HTTPProxyAuth is HTTPProxy with Basic authentication credentials.
func (b *Builder) HTTPProxyAuth(host string, port int, user, pass string) *Builder {
	b.cfg.Proxy = &transport.Proxy{Kind: transport.ProxyHTTP, Host: host, Port: port, Username: user, Password: pass}
	return b
}

// HTTPSProxy routes the request through an HTTP CONNECT proxy reached over
// TLS.
func (b *Builder) HTTPSProxy(host string, port int) *Builder {
	b.cfg.Proxy = &transport.Proxy{Kind: transport.ProxyHTTPS, Host: host, Port: port}
	return b
}

// HTTPSProxyAuth is HTTPSProxy with Basic authentication credentials.
func (b *Builder) HTTPSProxyAuth(host string, port int, user, pass string) *Builder {
	b.cfg.Proxy = &transport.Proxy{Kind: transport.ProxyHTTPS, Host: host, Port: port, Username: user, Password: pass}
	return b
}

// SOCKS5Proxy routes the request through a SOCKS5 proxy.
func (b *Builder) SOCKS5Proxy(host string, port int) *Builder {
	b.cfg.Proxy = &transport.Proxy{Kind: transport.ProxySOCKS5, Host: host, Port: port, ResolveDNSViaProxy: true}
	return b
}

// SOCKS5ProxyAuth is SOCKS5Proxy with username/password authentication.
func (b *Builder) SOCKS5ProxyAuth(host string, port int, user, pass string) *Builder {
	b.cfg.Proxy = &transport.Proxy{
		Kind: transport.ProxySOCKS5, Host: host, Port: port,
		Username: user, Password: pass, ResolveDNSViaProxy: true,
	}
	return b
}

// InsecureTLS disables certificate verification for this request.
func (b *Builder) InsecureTLS() *Builder {
	b.cfg.InsecureTLS = true
	return b
}

// CACert appends a PEM-encoded custom root CA certificate.
func (b *Builder) CACert(pem []byte) *Builder {
	b.cfg.CustomCACerts = append(b.cfg.CustomCACerts, pem)
	return b
}

// ClientCert configures a client certificate/key pair for mutual TLS.
func (b *Builder) ClientCert(certPEM, keyPEM []byte) *Builder {
	b.cfg.ClientCertPEM = certPEM
	b.cfg.ClientKeyPEM = keyPEM
	return b
}

// SNI overrides the TLS ServerName sent during the handshake, independent
// of the Host used to dial. Useful against a CDN edge IP or virtual host.
func (b *Builder) SNI(serverName string) *Builder {
	b.cfg.SNI = serverName
	return b
}

// DisableSNI suppresses the TLS ServerName entirely, for servers that
// reject a ClientHello carrying SNI.
func (b *Builder) DisableSNI() *Builder {
	b.cfg.DisableSNI = true
	return b
}

// snapshot copies b.cfg with its Headers deep-cloned, so a Config handed to
// a BlockingRequest/AsyncRequest is never affected by further calls on the
// Builder that produced it.
func (b *Builder) snapshot() Config {
	cfg := b.cfg
	cfg.Headers = b.cfg.Headers.Clone()
	cfg.Body = append([]byte(nil), b.cfg.Body...)
	return cfg
}

// BuildSync finalizes the builder into a BlockingRequest snapshot.
func (b *Builder) BuildSync() *BlockingRequest {
	return &BlockingRequest{cfg: b.snapshot(), buildErr: b.err}
}

// BuildAsync finalizes the builder into an AsyncRequest snapshot.
func (b *Builder) BuildAsync() *AsyncRequest {
	return &AsyncRequest{cfg: b.snapshot(), buildErr: b.err}
}
