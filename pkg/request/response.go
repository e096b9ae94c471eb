package request

import (
	"sync"

	"github.com/coregate/rawclient/pkg/bodystore"
	"github.com/coregate/rawclient/pkg/compression"
	"github.com/coregate/rawclient/pkg/headermap"
	"github.com/coregate/rawclient/pkg/metrics"
	"github.com/coregate/rawclient/pkg/transport"
)

// Response is the result of a completed exchange. Its body and headers are
// guarded by an RWMutex: a cooperative Task may hand a Response back to the
// caller while a Close()/cleanup path still touches the underlying
// bodystore, so reads and writes of the same Response must stay coherent.
type Response struct {
	mu sync.RWMutex

	httpVersion string
	statusCode  int
	statusText  string
	headers     headermap.Map
	body        *bodystore.Store

	// rawContentEncoding is the original, parse-time Content-Encoding —
	// Decode() always consults this rather than re-reading headers, so
	// repeated Decode() calls stay idempotent (see Open Question (b) in
	// the design notes).
	rawContentEncoding string
	decoded            bool

	// redirectLocation is wire.ParseResponseHeaders' redirect_url out-value:
	// the Location header's content when the status line fell in
	// [300,399], empty otherwise. send() in redirect.go reads this rather
	// than re-scanning headers.
	redirectLocation string

	Metrics    metrics.Metrics
	Connection transport.ConnectionMetadata
	Redirects  []string // URLs visited before landing on the final response
}

func newResponse(httpVersion string, statusCode int, statusText string, headers headermap.Map, body *bodystore.Store) *Response {
	contentEncoding, _ := headers.Get("Content-Encoding")
	return &Response{
		httpVersion:        httpVersion,
		statusCode:         statusCode,
		statusText:         statusText,
		headers:            headers,
		body:               body,
		rawContentEncoding: contentEncoding,
	}
}

// HTTPVersion returns the response's status-line protocol token.
func (r *Response) HTTPVersion() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.httpVersion
}

// StatusCode returns the numeric status code.
func (r *Response) StatusCode() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.statusCode
}

// StatusText returns the status line's reason phrase.
func (r *Response) StatusText() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.statusText
}

// Headers returns a copy of the response headers, safe for the caller to
// mutate independently.
func (r *Response) Headers() headermap.Map {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.headers.Clone()
}

// Header returns a single header value, case-insensitive.
func (r *Response) Header(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.headers.Get(name)
}

// RedirectLocation returns the Location value wire.ParseResponseHeaders
// extracted while parsing the status line and headers, or "" if the status
// wasn't a redirect or no Location header was present.
func (r *Response) RedirectLocation() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.redirectLocation
}

// bodyBytes returns the stored body bytes regardless of storage location,
// shared by both the ResponseText and ResponseBinary views.
func (r *Response) bodyBytes() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.body.ReadAll()
}

// Text returns a ResponseText view aliasing this Response's shared state.
func (r *Response) Text() *ResponseText {
	return &ResponseText{r: r}
}

// Binary returns a ResponseBinary view aliasing this Response's shared
// state.
func (r *Response) Binary() *ResponseBinary {
	return &ResponseBinary{r: r}
}

// Decode decompresses the body according to the original, parse-time
// Content-Encoding header, copying through a scratch buffer of bufferSize
// bytes, and installs the decoded bytes in place of the stored body.
// Calling it more than once is a no-op past the first call — it always
// decodes from the original encoding, never from its own output, so it can
// never double-decode. Returns the ResponseBinary view of the (now
// decoded) response; view.Err() reports a decode failure.
func (r *Response) Decode(bufferSize int) *ResponseBinary {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.decoded || r.rawContentEncoding == "" {
		r.decoded = true
		return &ResponseBinary{r: r}
	}

	raw, err := r.body.ReadAll()
	if err != nil {
		return &ResponseBinary{r: r, err: err}
	}
	out, err := compression.DecodeBuffered(raw, r.rawContentEncoding, bufferSize)
	if err != nil {
		return &ResponseBinary{r: r, err: err}
	}

	r.body.Close()
	r.body = bodystore.FromBytes(out)
	r.decoded = true
	return &ResponseBinary{r: r}
}

// BodySpilled reports whether the body exceeded the configured memory
// limit (Config.BodyMemLimit) and was spilled to a temporary file on disk.
func (r *Response) BodySpilled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.body.IsSpilled()
}

// BodySize returns the body size in bytes, whether held in memory or
// spilled to disk.
func (r *Response) BodySize() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.body.Size()
}

// Close releases any disk-spilled body storage. Safe to call more than
// once.
func (r *Response) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Close()
}

// ResponseText is the text-flavored sibling view of a Response: same
// shared status/headers/body state, read as UTF-8. A decode failure from
// the Response that produced this view (if any) is carried in err and
// surfaces from Value().
type ResponseText struct {
	r   *Response
	err error
}

// Value returns the body as a UTF-8 string.
func (t *ResponseText) Value() (string, error) {
	if t.err != nil {
		return "", t.err
	}
	b, err := t.r.bodyBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Err returns the decode error that produced this view, if any.
func (t *ResponseText) Err() error { return t.err }

func (t *ResponseText) HTTPVersion() string                { return t.r.HTTPVersion() }
func (t *ResponseText) StatusCode() int                    { return t.r.StatusCode() }
func (t *ResponseText) StatusText() string                 { return t.r.StatusText() }
func (t *ResponseText) Headers() headermap.Map              { return t.r.Headers() }
func (t *ResponseText) Header(name string) (string, bool)  { return t.r.Header(name) }
func (t *ResponseText) Close() error                        { return t.r.Close() }

// ResponseBinary is the binary-flavored sibling view of a Response: same
// shared status/headers/body state, read as raw bytes.
type ResponseBinary struct {
	r   *Response
	err error
}

// Value returns the raw body bytes.
func (b *ResponseBinary) Value() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.r.bodyBytes()
}

// Err returns the decode error that produced this view, if any.
func (b *ResponseBinary) Err() error { return b.err }

func (b *ResponseBinary) HTTPVersion() string               { return b.r.HTTPVersion() }
func (b *ResponseBinary) StatusCode() int                   { return b.r.StatusCode() }
func (b *ResponseBinary) StatusText() string                { return b.r.StatusText() }
func (b *ResponseBinary) Headers() headermap.Map             { return b.r.Headers() }
func (b *ResponseBinary) Header(name string) (string, bool) { return b.r.Header(name) }
func (b *ResponseBinary) BodySpilled() bool                  { return b.r.BodySpilled() }
func (b *ResponseBinary) BodySize() int64                    { return b.r.BodySize() }
func (b *ResponseBinary) Close() error                        { return b.r.Close() }
