package websocket

import (
	"time"

	"github.com/coregate/rawclient/pkg/constants"
	"github.com/coregate/rawclient/pkg/headermap"
	"github.com/coregate/rawclient/pkg/transport"
)

// Config is the immutable snapshot a WebSocketBuilder produces at
// BuildSync()/BuildAsync() time.
type Config struct {
	URL       string
	Headers   headermap.Map
	Protocols []string

	TimeoutMS   int64
	BufferLimit int64

	Proxy *transport.Proxy

	InsecureTLS    bool
	CustomCACerts  [][]byte
	ClientCertPEM  []byte
	ClientKeyPEM   []byte
	ClientCertFile string
	ClientKeyFile  string
}

func defaultConfig() Config {
	return Config{
		Headers:     headermap.New(),
		TimeoutMS:   30_000,
		BufferLimit: constants.DefaultBodyMemLimit,
	}
}

func (c Config) timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}
