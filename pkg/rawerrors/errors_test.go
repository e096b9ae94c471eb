package rawerrors

import (
	"errors"
	"testing"
	"time"
)

func TestErrorFormatting(t *testing.T) {
	e := ConnectionFailureError("example.com", 443, errors.New("refused"))
	msg := e.Error()
	if msg == "" {
		t.Fatal("expected non-empty message")
	}
	if KindOf(e) != ConnectionFailure {
		t.Fatalf("KindOf = %s, want %s", KindOf(e), ConnectionFailure)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := TLSError("host", 443, cause)
	if !errors.Is(e, cause) {
		t.Fatal("expected Unwrap to expose cause to errors.Is")
	}
}

func TestIsSameKind(t *testing.T) {
	a := TimeoutError("dial", time.Second, nil)
	b := TimeoutError("read", 2*time.Second, nil)
	if !errors.Is(a, b) {
		t.Fatal("two Timeout errors should satisfy errors.Is regardless of op/message")
	}
	c := ProtocolError("bad status line", nil)
	if errors.Is(a, c) {
		t.Fatal("different kinds must not match")
	}
}

func TestTooManyRedirects(t *testing.T) {
	e := TooManyRedirectsError(5)
	if e.Kind != TooManyRedirects {
		t.Fatalf("got kind %s", e.Kind)
	}
}
