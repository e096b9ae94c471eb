package websocket

import (
	"bufio"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"io"
	"strings"

	"github.com/coregate/rawclient/pkg/headermap"
	"github.com/coregate/rawclient/pkg/rawerrors"
	"github.com/coregate/rawclient/pkg/urlinfo"
	"github.com/coregate/rawclient/pkg/wire"
)

// wsGUID is the fixed GUID Sec-WebSocket-Accept is derived from (RFC 6455
// Section 1.3).
const wsGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

const websocketVersion = "13"

func generateChallengeKey() (string, error) {
	key := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

func computeAcceptKey(challengeKey string) string {
	sum := sha1.Sum([]byte(challengeKey + wsGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// handshakeRequest builds the client opening handshake request per RFC 6455
// Section 4.1.
func handshakeRequest(target urlinfo.Info, extraHeaders headermap.Map, protocols []string, challengeKey string) []byte {
	h := headermap.New()
	h.Set("Host", target.HostHeader())
	h.Set("Upgrade", "websocket")
	h.Set("Connection", "Upgrade")
	h.Set("Sec-WebSocket-Key", challengeKey)
	h.Set("Sec-WebSocket-Version", websocketVersion)
	if len(protocols) > 0 {
		h.Set("Sec-WebSocket-Protocol", strings.Join(protocols, ", "))
	}
	h.Merge(extraHeaders)

	var headerBlock []byte
	h.Each(func(key, value string) {
		headerBlock = append(headerBlock, key...)
		headerBlock = append(headerBlock, ':', ' ')
		headerBlock = append(headerBlock, value...)
		headerBlock = append(headerBlock, '\r', '\n')
	})

	return wire.BuildRequest("GET", target.RequestTarget(), headerBlock, nil, "HTTP/1.1")
}

// readHandshakeResponse reads and validates the server's opening handshake
// response per RFC 6455 Section 4.2.2 and returns the response headers.
// Any bytes already read past the header block (which may contain the start
// of the first WebSocket frame) stay buffered in r.
func readHandshakeResponse(r *bufio.Reader, challengeKey string) (headermap.Map, error) {
	statusLine, err := r.ReadString('\n')
	if err != nil {
		return headermap.Map{}, rawerrors.HandshakeFailedError("failed to read status line", err)
	}
	sl, ok := wire.ParseStatusLine([]byte(strings.TrimRight(statusLine, "\r\n")))
	if !ok {
		return headermap.Map{}, rawerrors.HandshakeFailedError("malformed status line", nil)
	}
	if sl.StatusCode != 101 {
		return headermap.Map{}, rawerrors.HandshakeFailedError(
			"server did not switch protocols: "+sl.StatusText, nil)
	}

	headers := headermap.New()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return headermap.Map{}, rawerrors.HandshakeFailedError("failed to read handshake headers", err)
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			break
		}
		idx := strings.IndexByte(trimmed, ':')
		if idx < 0 {
			continue
		}
		headers.Set(strings.TrimSpace(trimmed[:idx]), strings.TrimSpace(trimmed[idx+1:]))
	}

	if upgrade, _ := headers.Get("Upgrade"); !strings.EqualFold(upgrade, "websocket") {
		return headermap.Map{}, rawerrors.HandshakeFailedError("missing or invalid Upgrade header", nil)
	}
	if conn, _ := headers.Get("Connection"); !strings.Contains(strings.ToLower(conn), "upgrade") {
		return headermap.Map{}, rawerrors.HandshakeFailedError("missing or invalid Connection header", nil)
	}
	accept, _ := headers.Get("Sec-WebSocket-Accept")
	if accept != computeAcceptKey(challengeKey) {
		return headermap.Map{}, rawerrors.HandshakeFailedError("Sec-WebSocket-Accept mismatch", nil)
	}

	return headers, nil
}
