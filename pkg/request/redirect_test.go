package request

import (
	"testing"

	"github.com/coregate/rawclient/pkg/headermap"
)

func TestIsRedirectStatus(t *testing.T) {
	for _, code := range []int{301, 302, 303, 307, 308} {
		if !isRedirectStatus(code) {
			t.Errorf("expected %d to be a redirect status", code)
		}
	}
	for _, code := range []int{200, 404, 500, 304} {
		if isRedirectStatus(code) {
			t.Errorf("expected %d to not be a redirect status", code)
		}
	}
}

func TestApplyRedirectMethodDowngradesPostTo303(t *testing.T) {
	cfg := Config{Method: "POST", Body: []byte("payload"), Headers: headermap.New()}
	out := applyRedirectMethod(cfg, 303)
	if out.Method != "GET" {
		t.Fatalf("expected method GET, got %s", out.Method)
	}
	if out.Body != nil {
		t.Fatalf("expected body to be dropped, got %q", out.Body)
	}
}

func TestApplyRedirectMethodPreserves307(t *testing.T) {
	cfg := Config{Method: "POST", Body: []byte("payload"), Headers: headermap.New()}
	out := applyRedirectMethod(cfg, 307)
	if out.Method != "POST" {
		t.Fatalf("expected method POST preserved, got %s", out.Method)
	}
	if string(out.Body) != "payload" {
		t.Fatalf("expected body preserved, got %q", out.Body)
	}
}

func TestApplyRedirectMethodLeavesGetAlone(t *testing.T) {
	cfg := Config{Method: "GET", Headers: headermap.New()}
	out := applyRedirectMethod(cfg, 301)
	if out.Method != "GET" {
		t.Fatalf("expected GET to stay GET, got %s", out.Method)
	}
}
