package request

import (
	"context"

	"github.com/coregate/rawclient/pkg/rawerrors"
	"github.com/coregate/rawclient/pkg/urlinfo"
)

// send runs cfg to completion: one attempt, then as many redirect hops as
// cfg.Redirect and cfg.MaxRedirects allow. The returned Response carries the
// list of URLs visited before the final one.
func send(ctx context.Context, cfg Config) (*Response, error) {
	target, err := urlinfo.Parse(cfg.URL)
	if err != nil {
		return nil, err
	}

	var visited []string
	current := cfg
	currentTarget := target

	for redirects := 0; ; redirects++ {
		resp, err := attempt(ctx, current, currentTarget)
		if err != nil {
			return nil, err
		}

		if !current.Redirect || !isRedirectStatus(resp.StatusCode()) {
			resp.Redirects = visited
			return resp, nil
		}

		location := resp.RedirectLocation()
		if location == "" {
			resp.Redirects = visited
			return resp, nil
		}

		if redirects >= current.MaxRedirects {
			return nil, rawerrors.TooManyRedirectsError(current.MaxRedirects)
		}

		nextTarget, err := urlinfo.ResolveRedirect(currentTarget, location)
		if err != nil {
			return nil, err
		}

		visited = append(visited, currentTarget.String())
		current = applyRedirectMethod(current, resp.StatusCode())
		currentTarget = nextTarget
	}
}

func isRedirectStatus(code int) bool {
	switch code {
	case 301, 302, 303, 307, 308:
		return true
	}
	return false
}

// applyRedirectMethod implements the per-status redirect semantics: 301,
// 302 and 303 downgrade a non-GET/HEAD method to GET and drop the body
// (matching every major browser's interpretation of an under-specified part
// of RFC 7231); 307 and 308 preserve the original method and body exactly.
func applyRedirectMethod(cfg Config, status int) Config {
	switch status {
	case 301, 302, 303:
		if cfg.Method != "GET" && cfg.Method != "HEAD" {
			cfg.Method = "GET"
			cfg.Body = nil
		}
	}
	return cfg
}
