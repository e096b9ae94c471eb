package urlinfo

import "testing"

func TestParseDefaults(t *testing.T) {
	i, err := Parse("https://example.com/a/b?x=1")
	if err != nil {
		t.Fatal(err)
	}
	if i.Port != 443 || i.Path != "/a/b" || i.RawQuery != "x=1" || !i.Secure {
		t.Fatalf("got %+v", i)
	}
}

func TestParseExplicitPort(t *testing.T) {
	i, err := Parse("ws://example.com:9000/socket")
	if err != nil {
		t.Fatal(err)
	}
	if i.Port != 9000 || i.Secure {
		t.Fatalf("got %+v", i)
	}
}

func TestParseRejectsUnsupportedScheme(t *testing.T) {
	if _, err := Parse("ftp://example.com/"); err == nil {
		t.Fatal("expected error for ftp scheme")
	}
}

func TestParseRejectsMissingHost(t *testing.T) {
	if _, err := Parse("http:///path"); err == nil {
		t.Fatal("expected error for missing host")
	}
}

func TestResolveRedirectRelative(t *testing.T) {
	cur, _ := Parse("https://example.com/a/b")
	next, err := ResolveRedirect(cur, "/c")
	if err != nil {
		t.Fatal(err)
	}
	if next.Host != "example.com" || next.Path != "/c" || !next.Secure {
		t.Fatalf("got %+v", next)
	}
}

func TestResolveRedirectCrossScheme(t *testing.T) {
	cur, _ := Parse("http://example.com/a")
	next, err := ResolveRedirect(cur, "https://other.com/b")
	if err != nil {
		t.Fatal(err)
	}
	if next.Scheme != "https" || next.Host != "other.com" || next.Path != "/b" {
		t.Fatalf("got %+v", next)
	}
}

func TestRequestTargetWithQuery(t *testing.T) {
	i, _ := Parse("http://example.com/search?q=go")
	if got := i.RequestTarget(); got != "/search?q=go" {
		t.Fatalf("got %q", got)
	}
}
