// FILE: logship/src/internal/tls/parse.go
package tls

import (
	"crypto/tls"
	"fmt"
	"strings"
)

var cipherSuitesByName = func() map[string]uint16 {
	m := make(map[string]uint16)
	for _, s := range tls.CipherSuites() {
		m[s.Name] = s.ID
	}
	return m
}()

func parseTLSVersion(version string, defaultVersion uint16) uint16 {
	switch strings.ToUpper(version) {
	case "TLS1.2", "TLS12":
		return tls.VersionTLS12
	case "TLS1.3", "TLS13":
		return tls.VersionTLS13
	default:
		return defaultVersion
	}
}

// parseCipherSuites ignores names that are unknown or considered insecure by crypto/tls.
func parseCipherSuites(suites string) []uint16 {
	var result []uint16
	for _, name := range strings.Split(suites, ",") {
		if id, ok := cipherSuitesByName[strings.TrimSpace(name)]; ok {
			result = append(result, id)
		}
	}
	return result
}

func tlsVersionString(version uint16) string {
	switch version {
	case tls.VersionTLS12:
		return "TLS1.2"
	case tls.VersionTLS13:
		return "TLS1.3"
	default:
		return fmt.Sprintf("0x%04x", version)
	}
}
