// Package tlsconfig collects SSL/TLS version and cipher-suite helpers used
// when building a *tls.Config for the transport layer.
package tlsconfig

import "crypto/tls"

// Protocol version constants, re-exported from crypto/tls for callers who
// don't want to import it directly just to pin MinTLSVersion/MaxTLSVersion.
const (
	VersionSSL30 uint16 = tls.VersionSSL30
	VersionTLS10 uint16 = tls.VersionTLS10
	VersionTLS11 uint16 = tls.VersionTLS11
	VersionTLS12 uint16 = tls.VersionTLS12
	VersionTLS13 uint16 = tls.VersionTLS13
)

// VersionProfile is a named Min/Max version range.
type VersionProfile struct {
	Min         uint16
	Max         uint16
	Description string
}

var (
	ProfileModern = VersionProfile{
		Min: VersionTLS13, Max: VersionTLS13,
		Description: "TLS 1.3 only",
	}
	ProfileSecure = VersionProfile{
		Min: VersionTLS12, Max: VersionTLS13,
		Description: "TLS 1.2+, recommended default",
	}
	ProfileCompatible = VersionProfile{
		Min: VersionTLS10, Max: VersionTLS13,
		Description: "TLS 1.0+, maximum compatibility",
	}
)

// GetVersionName returns a human-readable name for a TLS version constant.
func GetVersionName(version uint16) string {
	switch version {
	case VersionSSL30:
		return "SSL 3.0"
	case VersionTLS10:
		return "TLS 1.0"
	case VersionTLS11:
		return "TLS 1.1"
	case VersionTLS12:
		return "TLS 1.2"
	case VersionTLS13:
		return "TLS 1.3"
	default:
		return "unknown"
	}
}

// IsVersionDeprecated reports whether version predates TLS 1.2.
func IsVersionDeprecated(version uint16) bool {
	return version < VersionTLS12
}

// CipherSuitesSecure are ECDHE+AEAD suites suitable for TLS 1.2.
var CipherSuitesSecure = []uint16{
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
}

// ApplyVersionProfile sets MinVersion/MaxVersion from a VersionProfile.
func ApplyVersionProfile(config *tls.Config, profile VersionProfile) {
	config.MinVersion = profile.Min
	config.MaxVersion = profile.Max
}

// ConfigureSNI applies the SNI priority rule used across the transport
// layer: an already-set ServerName wins, then DisableSNI forces it empty,
// then an explicit custom SNI, then the fallback host.
func ConfigureSNI(tlsConfig *tls.Config, customSNI string, disableSNI bool, fallbackHost string) {
	if tlsConfig == nil {
		return
	}
	if tlsConfig.ServerName != "" {
		return
	}
	if disableSNI {
		return
	}
	if customSNI != "" {
		tlsConfig.ServerName = customSNI
		return
	}
	tlsConfig.ServerName = fallbackHost
}
