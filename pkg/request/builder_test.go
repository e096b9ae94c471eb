package request

import "testing"

func TestBuilderGetSetsMethodAndURL(t *testing.T) {
	req := NewBuilder().Get("http://example.com/").BuildSync()
	if req.cfg.Method != "GET" || req.cfg.URL != "http://example.com/" {
		t.Fatalf("unexpected config: %+v", req.cfg)
	}
}

func TestBuilderJSONSetsContentType(t *testing.T) {
	req := NewBuilder().Post("http://example.com/").JSON(map[string]int{"a": 1}).BuildSync()
	if req.buildErr != nil {
		t.Fatalf("build error: %v", req.buildErr)
	}
	ct, ok := req.cfg.Headers.Get("Content-Type")
	if !ok || ct != "application/json" {
		t.Fatalf("Content-Type = %q, ok=%v", ct, ok)
	}
	if string(req.cfg.Body) != `{"a":1}` {
		t.Fatalf("body = %q", req.cfg.Body)
	}
}

func TestBuilderTextDoesNotOverrideExplicitContentType(t *testing.T) {
	req := NewBuilder().Post("http://example.com/").
		Header("Content-Type", "text/csv").
		Text("a,b,c").
		BuildSync()
	ct, _ := req.cfg.Headers.Get("Content-Type")
	if ct != "text/csv" {
		t.Fatalf("Content-Type = %q, want text/csv", ct)
	}
}

func TestBuilderHeadersLayerAcrossCalls(t *testing.T) {
	req := NewBuilder().Get("http://example.com/").
		Header("X-One", "1").
		Header("X-Two", "2").
		BuildSync()
	if v, _ := req.cfg.Headers.Get("X-One"); v != "1" {
		t.Fatalf("X-One = %q", v)
	}
	if v, _ := req.cfg.Headers.Get("X-Two"); v != "2" {
		t.Fatalf("X-Two = %q", v)
	}
}

func TestBuilderIndependentSnapshots(t *testing.T) {
	b := NewBuilder().Get("http://example.com/").Header("X-Shared", "v1")
	first := b.BuildSync()

	b.Header("X-Shared", "v2")
	second := b.BuildSync()

	if v, _ := first.cfg.Headers.Get("X-Shared"); v != "v1" {
		t.Fatalf("first snapshot mutated: X-Shared = %q", v)
	}
	if v, _ := second.cfg.Headers.Get("X-Shared"); v != "v2" {
		t.Fatalf("second snapshot = %q, want v2", v)
	}
}

func TestBuilderUnredirect(t *testing.T) {
	req := NewBuilder().Get("http://example.com/").Unredirect().BuildSync()
	if req.cfg.Redirect {
		t.Fatal("expected Redirect to be false")
	}
}

func TestBuilderMaxRedirectTimes(t *testing.T) {
	req := NewBuilder().Get("http://example.com/").MaxRedirectTimes(3).BuildSync()
	if req.cfg.MaxRedirects != 3 {
		t.Fatalf("MaxRedirects = %d, want 3", req.cfg.MaxRedirects)
	}
}
