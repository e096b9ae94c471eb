// Package urlinfo parses and resolves the URLs this library dials: http(s)
// and ws(s) targets, plus RFC 3986 Section 5.3 relative redirect resolution.
package urlinfo

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/coregate/rawclient/pkg/rawerrors"
)

// Info is the decomposed form of a request or WebSocket target URL.
type Info struct {
	Scheme   string // "http", "https", "ws", or "wss"
	Host     string
	Port     int
	Path     string // always starts with "/"
	RawQuery string
	Secure   bool // true for https/wss — governs the TLS upgrade
}

func defaultPort(scheme string) int {
	switch scheme {
	case "http", "ws":
		return 80
	case "https", "wss":
		return 443
	}
	return 0
}

// Parse decomposes rawURL into an Info, validating that the scheme is one
// this library supports and that a host is present.
func Parse(rawURL string) (Info, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Info{}, rawerrors.InvalidURLError("could not parse URL", err)
	}

	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "http", "https", "ws", "wss":
	case "":
		return Info{}, rawerrors.InvalidURLError("URL is missing a scheme", nil)
	default:
		return Info{}, rawerrors.InvalidURLError("unsupported scheme: "+scheme, nil)
	}

	host := u.Hostname()
	if host == "" {
		return Info{}, rawerrors.InvalidURLError("URL is missing a host", nil)
	}

	port := defaultPort(scheme)
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return Info{}, rawerrors.InvalidURLError("invalid port: "+p, nil)
		}
		port = n
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	return Info{
		Scheme:   scheme,
		Host:     host,
		Port:     port,
		Path:     path,
		RawQuery: u.RawQuery,
		Secure:   scheme == "https" || scheme == "wss",
	}, nil
}

// RequestTarget renders the path + "?" + query form sent on the request
// line (RFC 7230 Section 5.3.1, origin-form).
func (i Info) RequestTarget() string {
	if i.RawQuery == "" {
		return i.Path
	}
	return i.Path + "?" + i.RawQuery
}

// HostHeader renders the value for the Host header: host, or host:port when
// the port is non-default for the scheme.
func (i Info) HostHeader() string {
	if i.Port == defaultPort(i.Scheme) {
		return i.Host
	}
	return i.Host + ":" + strconv.Itoa(i.Port)
}

// String reconstructs an absolute URL for this Info (used to re-resolve
// redirect targets against).
func (i Info) String() string {
	s := i.Scheme + "://" + i.HostHeader() + i.Path
	if i.RawQuery != "" {
		s += "?" + i.RawQuery
	}
	return s
}

// ResolveRedirect resolves a Location header value against the current
// target, per RFC 3986 Section 5.3: absolute Location values replace the
// target outright, relative ones are resolved against it. The resulting
// scheme may differ from i's scheme (cross-scheme redirects are permitted).
func ResolveRedirect(current Info, location string) (Info, error) {
	base, err := url.Parse(current.String())
	if err != nil {
		return Info{}, rawerrors.InvalidURLError("could not parse current URL for redirect resolution", err)
	}
	loc, err := url.Parse(location)
	if err != nil {
		return Info{}, rawerrors.InvalidURLError("could not parse Location header", err)
	}
	resolved := base.ResolveReference(loc)
	return Parse(resolved.String())
}
