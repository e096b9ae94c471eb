// Package wire implements the byte-level HTTP/1.1 request/response codec:
// building request bytes and scanning response bytes without allocating an
// intermediate textual representation. Every function here is pure over
// []byte so it can be fuzzed and property-tested in isolation from any
// socket.
package wire

import "strconv"

// CRLF is the line terminator used throughout HTTP/1.1 framing.
var CRLF = []byte("\r\n")

// DoubleCRLF separates the header block from the body.
var DoubleCRLF = []byte("\r\n\r\n")

const contentLengthHeader = "Content-Length:"

// BuildRequest assembles a complete HTTP/1.1 request line, header block and
// optional body into one contiguous byte slice, precomputing the exact
// capacity so a single allocation covers the whole request.
func BuildRequest(method, path string, headerBytes []byte, body []byte, httpVersion string) []byte {
	requestLineSize := len(method) + 1 + len(path) + 1 + len(httpVersion)
	bodySize := len(body)
	total := requestLineSize + 2 + len(headerBytes) + 2 + bodySize

	buf := make([]byte, 0, total)
	buf = append(buf, method...)
	buf = append(buf, ' ')
	buf = append(buf, path...)
	buf = append(buf, ' ')
	buf = append(buf, httpVersion...)
	buf = append(buf, CRLF...)
	buf = append(buf, headerBytes...)
	buf = append(buf, CRLF...)
	if body != nil {
		buf = append(buf, body...)
	}
	return buf
}

// FindPatternCaseInsensitive returns the index of the first case-insensitive
// occurrence of needle in haystack, or -1 if absent.
func FindPatternCaseInsensitive(haystack, needle []byte) int {
	if len(needle) == 0 || len(haystack) < len(needle) {
		return -1
	}
	needleLen := len(needle)
	searchLen := len(haystack) - needleLen + 1
	firstLower := toLower(needle[0])

outer:
	for i := 0; i < searchLen; i++ {
		if toLower(haystack[i]) != firstLower {
			continue
		}
		for j := 1; j < needleLen; j++ {
			if toLower(haystack[i+j]) != toLower(needle[j]) {
				continue outer
			}
		}
		return i
	}
	return -1
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// FindCRLF returns the index (relative to data, not to start) of the first
// "\r\n" at or after start, or -1 if none is present.
func FindCRLF(data []byte, start int) int {
	if start >= len(data) {
		return -1
	}
	search := data[start:]
	for i := 0; i+1 < len(search); i++ {
		if search[i] == '\r' && search[i+1] == '\n' {
			return start + i
		}
	}
	return -1
}

// FindDoubleCRLF returns the index of the first "\r\n\r\n" at or after start,
// marking the end of the header block, or -1 if the block is incomplete.
func FindDoubleCRLF(data []byte, start int) int {
	if start >= len(data) {
		return -1
	}
	search := data[start:]
	for i := 0; i+3 < len(search); i++ {
		if search[i] == '\r' && search[i+1] == '\n' && search[i+2] == '\r' && search[i+3] == '\n' {
			return start + i
		}
	}
	return -1
}

// ParseDecimalBytes parses a (possibly whitespace-padded) decimal integer,
// stopping at the first non-digit byte. Returns 0 if no digits are found.
func ParseDecimalBytes(b []byte) int64 {
	var result int64
	started := false
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9':
			started = true
			result = result*10 + int64(c-'0')
		case (c == ' ' || c == '\t') && !started:
			continue
		default:
			return result
		}
	}
	return result
}

// ParseStatusCode parses an exact 3-digit status code; returns 0 if the
// slice isn't exactly 3 ASCII digits.
func ParseStatusCode(b []byte) int {
	if len(b) != 3 {
		return 0
	}
	result := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0
		}
		result = result*10 + int(c-'0')
	}
	return result
}

// GetContentLength scans headerBytes for a Content-Length header and
// returns its value, or 0 if absent or unparsable.
func GetContentLength(headerBytes []byte) int64 {
	pos := FindPatternCaseInsensitive(headerBytes, []byte(contentLengthHeader))
	if pos < 0 {
		return 0
	}
	valueStart := pos + len(contentLengthHeader)
	if valueStart < len(headerBytes) && headerBytes[valueStart] == ' ' {
		valueStart++
	}
	end := FindCRLF(headerBytes, valueStart)
	if end < 0 {
		return 0
	}
	return ParseDecimalBytes(headerBytes[valueStart:end])
}

// CalculateBufferCapacity returns the capacity a read buffer should grow to
// in order to hold len(existing)+extra bytes, or 0 if the current capacity
// already suffices. Growth follows a double-then-1.5x policy to amortize
// reallocation cost across repeated appends.
func CalculateBufferCapacity(existing []byte, extra int, currentCapacity int) int {
	if len(existing)+extra <= currentCapacity {
		return 0
	}
	needed := len(existing) + extra
	switch {
	case currentCapacity == 0:
		if needed < 1024 {
			return 1024
		}
		return needed
	case needed <= currentCapacity*2:
		return currentCapacity * 2
	default:
		return (needed * 3) / 2
	}
}

// ParseResponseHeaders scans a raw header block (without the status line)
// for Content-Length, always, and — only when statusCode falls in
// [300,399] — a redirect URL: the bytes between the end of locationPattern
// (e.g. []byte("Location:")) and the next CRLF. redirectURL is empty when
// the status isn't a redirect or no matching header is present.
func ParseResponseHeaders(headerBlock []byte, statusCode int, locationPattern []byte) (contentLength int64, redirectURL string) {
	contentLength = GetContentLength(headerBlock)

	if statusCode < 300 || statusCode > 399 {
		return contentLength, ""
	}

	pos := FindPatternCaseInsensitive(headerBlock, locationPattern)
	if pos < 0 {
		return contentLength, ""
	}
	valueStart := pos + len(locationPattern)
	if valueStart < len(headerBlock) && headerBlock[valueStart] == ' ' {
		valueStart++
	}
	end := FindCRLF(headerBlock, valueStart)
	if end < 0 {
		return contentLength, ""
	}
	return contentLength, string(headerBlock[valueStart:end])
}

// StatusLine is the parsed first line of an HTTP response.
type StatusLine struct {
	HTTPVersion string
	StatusCode  int
	StatusText  string
}

// ParseStatusLine parses "HTTP/1.1 200 OK" (without trailing CRLF) into its
// three components. Returns false if the line doesn't have at least a
// version and a status code.
func ParseStatusLine(line []byte) (StatusLine, bool) {
	parts := splitN(line, ' ', 3)
	if len(parts) < 2 {
		return StatusLine{}, false
	}
	code := ParseStatusCode(parts[1])
	if code == 0 {
		if n, err := strconv.Atoi(string(parts[1])); err == nil {
			code = n
		}
	}
	if code <= 0 {
		return StatusLine{}, false
	}
	sl := StatusLine{
		HTTPVersion: string(parts[0]),
		StatusCode:  code,
	}
	if len(parts) == 3 {
		sl.StatusText = string(parts[2])
	}
	return sl, true
}

// splitN splits data on sep into at most n fields, mirroring
// bytes.SplitN but without discarding the remainder into further splits.
func splitN(data []byte, sep byte, n int) [][]byte {
	var out [][]byte
	start := 0
	for len(out) < n-1 {
		idx := indexByteFrom(data, sep, start)
		if idx < 0 {
			break
		}
		out = append(out, data[start:idx])
		start = idx + 1
	}
	out = append(out, data[start:])
	return out
}

func indexByteFrom(data []byte, b byte, from int) int {
	for i := from; i < len(data); i++ {
		if data[i] == b {
			return i
		}
	}
	return -1
}

// ParsedHeaders is the result of scanning a raw header block.
type ParsedHeaders struct {
	Pairs         []HeaderPair
	ContentLength int64
	HasChunked    bool
}

// HeaderPair is a single "Name: Value" line as scanned off the wire, before
// case-insensitive merge into a HeaderMap.
type HeaderPair struct {
	Name  string
	Value string
}

// ParseHeaderBlock splits a raw header block (without the status line, with
// or without the trailing blank line) into name/value pairs, honoring
// RFC 7230 Section 3.2.4 header continuation lines (leading space or tab
// continues the previous value).
func ParseHeaderBlock(block []byte) []HeaderPair {
	var pairs []HeaderPair
	lines := splitLines(block)
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if len(pairs) == 0 {
				continue
			}
			last := &pairs[len(pairs)-1]
			last.Value = last.Value + " " + trimSpace(string(line))
			continue
		}
		idx := indexByteFrom(line, ':', 0)
		if idx < 0 {
			continue
		}
		name := trimSpace(string(line[:idx]))
		value := trimSpace(string(line[idx+1:]))
		pairs = append(pairs, HeaderPair{Name: name, Value: value})
	}
	return pairs
}

func splitLines(block []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i := 0; i+1 < len(block); i++ {
		if block[i] == '\r' && block[i+1] == '\n' {
			lines = append(lines, block[start:i])
			start = i + 2
			i++
		}
	}
	if start < len(block) {
		lines = append(lines, block[start:])
	}
	return lines
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}
