package request

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/coregate/rawclient/pkg/bodystore"
	"github.com/coregate/rawclient/pkg/constants"
	"github.com/coregate/rawclient/pkg/headermap"
	"github.com/coregate/rawclient/pkg/metrics"
	"github.com/coregate/rawclient/pkg/rawerrors"
	"github.com/coregate/rawclient/pkg/transport"
	"github.com/coregate/rawclient/pkg/urlinfo"
	"github.com/coregate/rawclient/pkg/wire"
)

// attempt performs exactly one HTTP/1.1 exchange against target: it opens a
// fresh transport connection (no pooling), writes the request, reads the
// status line, headers and body, and returns a Response. Redirects are a
// caller concern (see redirect.go); attempt never follows one itself.
func attempt(ctx context.Context, cfg Config, target urlinfo.Info) (*Response, error) {
	timer := metrics.NewTimer()

	tcfg := transport.Config{
		Scheme:         target.Scheme,
		Host:           target.Host,
		Port:           target.Port,
		ConnTimeout:    cfg.timeout(),
		ReadTimeout:    cfg.timeout(),
		Proxy:          cfg.Proxy,
		InsecureTLS:    cfg.InsecureTLS,
		CustomCACerts:  cfg.CustomCACerts,
		ClientCertPEM:  cfg.ClientCertPEM,
		ClientKeyPEM:   cfg.ClientKeyPEM,
		ClientCertFile: cfg.ClientCertFile,
		ClientKeyFile:  cfg.ClientKeyFile,
		SNI:            cfg.SNI,
		DisableSNI:     cfg.DisableSNI,
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
	defer conn.Close()

	deadline, hasDeadline := ctx.Deadline()
	if cfg.TimeoutMS > 0 {
		if d := time.Now().Add(cfg.timeout()); !hasDeadline || d.Before(deadline) {
			deadline, hasDeadline = d, true
		}
	}
	if hasDeadline {
		conn.SetDeadline(deadline)
	}

	// net.Conn reads/writes don't observe context cancellation on their
	// own; closing the connection when ctx is done is what makes Cancel()
	// actually abort an in-flight read.
	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stopWatch:
		}
	}()

	headers := composeRequestHeaders(cfg, target)
	headerBytes := encodeHeaderBlock(headers)
	reqBytes := wire.BuildRequest(cfg.Method, target.RequestTarget(), headerBytes, cfg.Body, "HTTP/1.1")

	if _, err := conn.Write(reqBytes); err != nil {
		return nil, rawerrors.IOError("write_request", err)
	}

	timer.StartTTFB()
	resp, err := readResponse(conn, cfg, timer)
	timer.EndTTFB()
	if err != nil {
		return nil, err
	}

	resp.Metrics = timer.GetMetrics()
	resp.Connection = *connMeta

	if cfg.AutoDecode {
		decodeBufSize := cfg.ReadChunkSize
		if decodeBufSize < 1 {
			decodeBufSize = constants.DefaultReadChunkSize
		}
		if rb := resp.Decode(decodeBufSize); rb.Err() != nil {
			return nil, rb.Err()
		}
	}

	return resp, nil
}

// composeRequestHeaders layers the caller's headers over the mandatory
// framing headers (Host, Content-Length), the caller's values winning only
// where they don't conflict with framing correctness.
func composeRequestHeaders(cfg Config, target urlinfo.Info) headermap.Map {
	h := headermap.New()
	h.Set("Host", target.HostHeader())
	h.Set("Connection", "close")
	h.Merge(cfg.Headers)
	if cfg.Body != nil {
		h.Set("Content-Length", strconv.Itoa(len(cfg.Body)))
	}
	return h
}

func encodeHeaderBlock(h headermap.Map) []byte {
	var buf bytes.Buffer
	h.Each(func(key, value string) {
		buf.WriteString(key)
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteString("\r\n")
	})
	return buf.Bytes()
}

// readResponse scans the status line and headers off conn, then reads the
// body per the framing the headers describe (chunked, fixed-length, or
// read-until-close), mirroring the three body-reading strategies of
// RFC 7230 Section 3.3.3.
func readResponse(conn net.Conn, cfg Config, timer *metrics.Timer) (*Response, error) {
	chunkSize := cfg.ReadChunkSize
	if chunkSize < 1 {
		chunkSize = constants.DefaultReadChunkSize
	}
	raw := make([]byte, 0, chunkSize)
	chunk := make([]byte, chunkSize)
	boundary := -1

	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			needed := wire.CalculateBufferCapacity(raw, n, cap(raw))
			if needed > cap(raw) {
				grown := make([]byte, len(raw), needed)
				copy(grown, raw)
				raw = grown
			}
			raw = append(raw, chunk[:n]...)
			boundary = wire.FindDoubleCRLF(raw, 0)
			if boundary >= 0 {
				break
			}
			if len(raw) > constants.MaxHeaderBytes {
				return nil, rawerrors.ProtocolError("response header block exceeds limit", nil)
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil, rawerrors.ProtocolError("connection closed before headers were complete", nil)
			}
			return nil, rawerrors.IOError("read_headers", err)
		}
	}

	statusLineEnd := wire.FindCRLF(raw, 0)
	if statusLineEnd < 0 {
		return nil, rawerrors.ProtocolError("missing status line", nil)
	}
	statusLine, ok := wire.ParseStatusLine(raw[:statusLineEnd])
	if !ok {
		return nil, rawerrors.ProtocolError("malformed status line", nil)
	}

	headerBlock := raw[statusLineEnd+2 : boundary]
	pairs := wire.ParseHeaderBlock(headerBlock)
	headers := headermap.New()
	for _, p := range pairs {
		headers.Set(p.Name, p.Value)
	}

	leftover := append([]byte(nil), raw[boundary+4:]...)
	bodyReader := io.MultiReader(bytes.NewReader(leftover), conn)

	store := bodystore.New(cfg.BodyMemLimit)

	contentLength, redirectLocation := wire.ParseResponseHeaders(headerBlock, statusLine.StatusCode, []byte("Location:"))

	transferEncoding, _ := headers.Get("Transfer-Encoding")
	isChunked := strings.Contains(strings.ToLower(transferEncoding), "chunked")

	switch {
	case isChunked:
		if err := readChunkedBody(bodyReader, store); err != nil {
			return nil, err
		}
	case contentLength > 0 || hasContentLength(headers):
		if contentLength == 0 {
			if v, ok := headers.Get("Content-Length"); ok {
				contentLength, _ = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			}
		}
		if err := readFixedBody(bodyReader, store, contentLength); err != nil {
			return nil, err
		}
	case statusLine.StatusCode == 204 || statusLine.StatusCode == 304 || cfg.Method == "HEAD":
		// No body permitted by RFC 7230 Section 3.3.3 rules 1-2.
	default:
		if err := readUntilClose(bodyReader, store); err != nil {
			return nil, err
		}
	}

	resp := newResponse(statusLine.HTTPVersion, statusLine.StatusCode, statusLine.StatusText, headers, store)
	resp.redirectLocation = redirectLocation
	return resp, nil
}

func hasContentLength(h headermap.Map) bool {
	_, ok := h.Get("Content-Length")
	return ok
}

func readFixedBody(r io.Reader, store *bodystore.Store, length int64) error {
	if length <= 0 {
		return nil
	}
	if length > constants.MaxContentLength {
		return rawerrors.ProtocolError("Content-Length exceeds sanity limit", nil)
	}
	written, err := io.CopyN(store, r, length)
	if err != nil && err != io.EOF {
		return rawerrors.IOError("read_body", err)
	}
	if written < length {
		return rawerrors.ProtocolError("connection closed before body was fully read", nil)
	}
	return nil
}

func readUntilClose(r io.Reader, store *bodystore.Store) error {
	_, err := io.Copy(store, r)
	if err != nil && err != io.EOF {
		return rawerrors.IOError("read_body", err)
	}
	return nil
}

// readChunkedBody decodes RFC 7230 Section 4.1 chunked transfer coding:
// "<hex-size>\r\n<data>\r\n" repeated, terminated by a zero-size chunk and
// an (ignored) trailer section.
func readChunkedBody(r io.Reader, store *bodystore.Store) error {
	br := bufio.NewReader(r)
	for {
		line, err := readCRLFLine(br)
		if err != nil {
			return rawerrors.ProtocolError("failed to read chunk size", err)
		}
		sizeField := line
		if i := strings.IndexByte(sizeField, ';'); i >= 0 {
			sizeField = sizeField[:i]
		}
		size, err := strconv.ParseInt(strings.TrimSpace(sizeField), 16, 64)
		if err != nil {
			return rawerrors.ProtocolError(fmt.Sprintf("invalid chunk size %q", sizeField), err)
		}
		if size == 0 {
			break
		}
		if _, err := io.CopyN(store, br, size); err != nil {
			return rawerrors.IOError("read_chunk_data", err)
		}
		if _, err := readCRLFLine(br); err != nil {
			return rawerrors.ProtocolError("missing chunk trailer CRLF", err)
		}
	}
	// Drain trailer headers up to the final blank line.
	for {
		line, err := readCRLFLine(br)
		if err != nil {
			return rawerrors.ProtocolError("failed to read chunk trailer section", err)
		}
		if len(line) == 0 {
			return nil
		}
	}
}

// readCRLFLine reads one line and strips its trailing CRLF (or bare LF).
func readCRLFLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
