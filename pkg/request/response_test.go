package request

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/coregate/rawclient/pkg/bodystore"
	"github.com/coregate/rawclient/pkg/headermap"
)

func TestResponseTextAndBinaryViewsShareState(t *testing.T) {
	headers := headermap.New()
	headers.Set("X-Test", "v")
	resp := newResponse("HTTP/1.1", 200, "OK", headers, bodystore.FromBytes([]byte("hello")))

	text, err := resp.Text().Value()
	if err != nil {
		t.Fatalf("Text().Value(): %v", err)
	}
	if text != "hello" {
		t.Fatalf("text = %q, want hello", text)
	}

	bin, err := resp.Binary().Value()
	if err != nil {
		t.Fatalf("Binary().Value(): %v", err)
	}
	if string(bin) != "hello" {
		t.Fatalf("binary = %q, want hello", bin)
	}

	if v, ok := resp.Text().Header("X-Test"); !ok || v != "v" {
		t.Fatalf("Text() view header = %q, ok=%v", v, ok)
	}
	if resp.Binary().StatusCode() != 200 {
		t.Fatalf("Binary() view status = %d, want 200", resp.Binary().StatusCode())
	}
}

func TestResponseDecodeGzipIsIdempotent(t *testing.T) {
	var gz bytes.Buffer
	w := gzip.NewWriter(&gz)
	w.Write([]byte("decoded payload"))
	w.Close()

	headers := headermap.New()
	headers.Set("Content-Encoding", "gzip")
	resp := newResponse("HTTP/1.1", 200, "OK", headers, bodystore.FromBytes(gz.Bytes()))

	rb := resp.Decode(256)
	if rb.Err() != nil {
		t.Fatalf("Decode: %v", rb.Err())
	}
	body, err := rb.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if string(body) != "decoded payload" {
		t.Fatalf("body = %q, want %q", body, "decoded payload")
	}

	// A second Decode() call must not attempt to re-inflate the already
	// decoded bytes.
	rb2 := resp.Decode(256)
	if rb2.Err() != nil {
		t.Fatalf("second Decode: %v", rb2.Err())
	}
	body2, err := rb2.Value()
	if err != nil {
		t.Fatalf("second Value: %v", err)
	}
	if string(body2) != "decoded payload" {
		t.Fatalf("second body = %q, want %q", body2, "decoded payload")
	}
}

func TestResponseDecodeNoContentEncodingIsNoOp(t *testing.T) {
	resp := newResponse("HTTP/1.1", 200, "OK", headermap.New(), bodystore.FromBytes([]byte("plain")))
	rb := resp.Decode(64)
	if rb.Err() != nil {
		t.Fatalf("Decode: %v", rb.Err())
	}
	body, err := rb.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if string(body) != "plain" {
		t.Fatalf("body = %q, want plain", body)
	}
}
