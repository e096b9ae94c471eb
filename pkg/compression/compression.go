// Package compression decodes response bodies by Content-Encoding, backing
// Response.Decode(). gzip and deflate go through klauspost/compress (a
// drop-in faster replacement for the matching stdlib packages); brotli has
// no stdlib equivalent at all, so andybalholm/brotli supplies it.
package compression

import (
	"bytes"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/coregate/rawclient/pkg/rawerrors"
)

// Decode inflates body according to contentEncoding ("gzip", "deflate",
// "br", "identity", or empty), copying through a 32KiB scratch buffer.
// Unknown encodings are returned unchanged — callers that care can inspect
// the original Content-Encoding themselves.
func Decode(body []byte, contentEncoding string) ([]byte, error) {
	return DecodeBuffered(body, contentEncoding, 32*1024)
}

// DecodeBuffered is Decode with the copy-buffer size pinned to bufferSize
// (clamped up to 1), backing Response.Decode(bufferSize) — the buffer_size
// knob the caller supplied flows all the way to the bytes actually moved
// off the decompressor.
func DecodeBuffered(body []byte, contentEncoding string, bufferSize int) ([]byte, error) {
	if bufferSize < 1 {
		bufferSize = 1
	}

	var r io.Reader
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
		return body, nil
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, rawerrors.ProtocolError("invalid gzip body", err)
		}
		defer gz.Close()
		r = gz
	case "deflate":
		fr := flate.NewReader(bytes.NewReader(body))
		defer fr.Close()
		r = fr
	case "br":
		r = brotli.NewReader(bytes.NewReader(body))
	default:
		return body, nil
	}

	var out bytes.Buffer
	scratch := make([]byte, bufferSize)
	if _, err := io.CopyBuffer(&out, r, scratch); err != nil {
		return nil, rawerrors.ProtocolError(contentEncoding+" decode failed", err)
	}
	return out.Bytes(), nil
}
