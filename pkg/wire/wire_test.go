package wire

import "testing"

func TestBuildRequestRoundTrip(t *testing.T) {
	headers := []byte("Host: example.com\r\nAccept: */*\r\n")
	body := []byte(`{"a":1}`)

	req := BuildRequest("POST", "/v1/items", headers, body, "HTTP/1.1")

	idx := FindDoubleCRLF(req, 0)
	if idx < 0 {
		t.Fatalf("expected a double CRLF separating headers and body")
	}
	got := string(req[idx+4:])
	if got != string(body) {
		t.Fatalf("body mismatch: got %q want %q", got, body)
	}
	if req[0] != 'P' {
		t.Fatalf("expected request to start with method")
	}
}

func TestBuildRequestNoBody(t *testing.T) {
	req := BuildRequest("GET", "/", []byte("Host: example.com\r\n"), nil, "HTTP/1.1")
	want := "GET / HTTP/1.1\r\nHost: example.com\r\n\r\n"
	if string(req) != want {
		t.Fatalf("got %q want %q", req, want)
	}
}

func TestFindPatternCaseInsensitive(t *testing.T) {
	cases := []struct {
		haystack, needle string
		want             int
	}{
		{"Content-Length: 5", "content-length:", 0},
		{"X: y\r\nCONTENT-LENGTH: 5", "Content-Length:", 6},
		{"no match here", "missing", -1},
		{"short", "this needle is too long", -1},
		{"", "x", -1},
	}
	for _, c := range cases {
		got := FindPatternCaseInsensitive([]byte(c.haystack), []byte(c.needle))
		if got != c.want {
			t.Errorf("FindPatternCaseInsensitive(%q, %q) = %d, want %d", c.haystack, c.needle, got, c.want)
		}
	}
}

func TestFindCRLFAndDoubleCRLF(t *testing.T) {
	data := []byte("a\r\nb\r\n\r\nc")
	if i := FindCRLF(data, 0); i != 1 {
		t.Fatalf("FindCRLF = %d, want 1", i)
	}
	if i := FindDoubleCRLF(data, 0); i != 4 {
		t.Fatalf("FindDoubleCRLF = %d, want 4", i)
	}
	if i := FindCRLF([]byte("nocrlf"), 0); i != -1 {
		t.Fatalf("FindCRLF on absent input = %d, want -1", i)
	}
}

func TestGetContentLength(t *testing.T) {
	headers := []byte("Host: x\r\nContent-Length: 1234\r\nConnection: close\r\n")
	if got := GetContentLength(headers); got != 1234 {
		t.Fatalf("GetContentLength = %d, want 1234", got)
	}
	if got := GetContentLength([]byte("Host: x\r\n")); got != 0 {
		t.Fatalf("GetContentLength with no header = %d, want 0", got)
	}
}

func TestParseStatusCode(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"200", 200},
		{"404", 404},
		{"99", 0},   // wrong length
		{"abc", 0},  // non-digit
		{"1000", 0}, // wrong length
	}
	for _, c := range cases {
		if got := ParseStatusCode([]byte(c.in)); got != c.want {
			t.Errorf("ParseStatusCode(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseStatusLine(t *testing.T) {
	sl, ok := ParseStatusLine([]byte("HTTP/1.1 301 Moved Permanently"))
	if !ok {
		t.Fatal("expected ok")
	}
	if sl.HTTPVersion != "HTTP/1.1" || sl.StatusCode != 301 || sl.StatusText != "Moved Permanently" {
		t.Fatalf("got %+v", sl)
	}

	if _, ok := ParseStatusLine([]byte("garbage")); ok {
		t.Fatal("expected not ok for single-token line")
	}
}

func TestCalculateBufferCapacityMonotonic(t *testing.T) {
	cap0 := CalculateBufferCapacity(nil, 10, 0)
	if cap0 != 1024 {
		t.Fatalf("cold start capacity = %d, want 1024", cap0)
	}

	existing := make([]byte, 1024)
	cap1 := CalculateBufferCapacity(existing, 10, 1024)
	if cap1 <= 1024 {
		t.Fatalf("capacity must grow when over the limit, got %d", cap1)
	}

	if got := CalculateBufferCapacity(existing[:10], 5, 1024); got != 0 {
		t.Fatalf("capacity should not grow when under the limit, got %d", got)
	}
}

func TestParseHeaderBlockContinuation(t *testing.T) {
	block := []byte("X-Custom: first\r\n continued\r\nHost: example.com\r\n")
	pairs := ParseHeaderBlock(block)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d: %+v", len(pairs), pairs)
	}
	if pairs[0].Name != "X-Custom" || pairs[0].Value != "first continued" {
		t.Fatalf("continuation not merged: %+v", pairs[0])
	}
	if pairs[1].Name != "Host" || pairs[1].Value != "example.com" {
		t.Fatalf("unexpected second pair: %+v", pairs[1])
	}
}

func TestParseResponseHeadersSetsContentLengthAlways(t *testing.T) {
	block := []byte("Content-Length: 42\r\n")
	cl, loc := ParseResponseHeaders(block, 200, []byte("Location:"))
	if cl != 42 {
		t.Fatalf("content length = %d, want 42", cl)
	}
	if loc != "" {
		t.Fatalf("expected no redirect url on a 200, got %q", loc)
	}
}

func TestParseResponseHeadersExtractsLocationOnRedirectStatus(t *testing.T) {
	block := []byte("Content-Length: 0\r\nLocation: /new-place\r\n")
	cl, loc := ParseResponseHeaders(block, 301, []byte("Location:"))
	if cl != 0 {
		t.Fatalf("content length = %d, want 0", cl)
	}
	if loc != "/new-place" {
		t.Fatalf("redirect url = %q, want /new-place", loc)
	}
}

func TestParseResponseHeadersIgnoresLocationOutsideRedirectRange(t *testing.T) {
	block := []byte("Location: /ignored\r\n")
	_, loc := ParseResponseHeaders(block, 200, []byte("Location:"))
	if loc != "" {
		t.Fatalf("expected no redirect url on a non-3xx status, got %q", loc)
	}
}
