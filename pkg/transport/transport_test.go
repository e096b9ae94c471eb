package transport

import (
	"crypto/tls"
	"testing"

	"github.com/coregate/rawclient/pkg/tlsconfig"
)

func TestProxyEffectivePortDefaults(t *testing.T) {
	cases := []struct {
		kind ProxyKind
		want int
	}{
		{ProxyHTTP, 8080},
		{ProxyHTTPS, 443},
		{ProxySOCKS4, 1080},
		{ProxySOCKS5, 1080},
	}
	for _, c := range cases {
		p := &Proxy{Kind: c.kind}
		if got := p.effectivePort(); got != c.want {
			t.Errorf("effectivePort(%s) = %d, want %d", c.kind, got, c.want)
		}
	}
}

func TestProxyEffectivePortExplicit(t *testing.T) {
	p := &Proxy{Kind: ProxyHTTP, Port: 3128}
	if got := p.effectivePort(); got != 3128 {
		t.Fatalf("got %d, want 3128", got)
	}
}

func TestValidateConfigRejectsConflictingSNI(t *testing.T) {
	tr := New()
	err := tr.validateConfig(Config{
		Host: "example.com", Port: 443, Scheme: "https",
		SNI: "other.com", DisableSNI: true,
	})
	if err == nil {
		t.Fatal("expected validation error for conflicting SNI options")
	}
}

func TestValidateConfigRejectsBadPort(t *testing.T) {
	tr := New()
	if err := tr.validateConfig(Config{Host: "x", Port: 0, Scheme: "http"}); err == nil {
		t.Fatal("expected error for port 0")
	}
	if err := tr.validateConfig(Config{Host: "x", Port: 70000, Scheme: "http"}); err == nil {
		t.Fatal("expected error for port > 65535")
	}
}

func TestConfigureSNIPriority(t *testing.T) {
	cfg := &tls.Config{ServerName: "preset.com"}
	tlsconfig.ConfigureSNI(cfg, "custom.com", false, "fallback.com")
	if cfg.ServerName != "preset.com" {
		t.Fatalf("preset ServerName should win, got %q", cfg.ServerName)
	}

	cfg2 := &tls.Config{}
	tlsconfig.ConfigureSNI(cfg2, "", true, "fallback.com")
	if cfg2.ServerName != "" {
		t.Fatalf("DisableSNI should leave ServerName empty, got %q", cfg2.ServerName)
	}

	cfg3 := &tls.Config{}
	tlsconfig.ConfigureSNI(cfg3, "custom.com", false, "fallback.com")
	if cfg3.ServerName != "custom.com" {
		t.Fatalf("custom SNI should be used, got %q", cfg3.ServerName)
	}

	cfg4 := &tls.Config{}
	tlsconfig.ConfigureSNI(cfg4, "", false, "fallback.com")
	if cfg4.ServerName != "fallback.com" {
		t.Fatalf("fallback host should be used, got %q", cfg4.ServerName)
	}
}
