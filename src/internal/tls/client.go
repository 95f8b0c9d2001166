// FILE: logship/src/internal/tls/client.go
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"logship/src/internal/config"

	"github.com/lixenwraith/log"
)

// ClientManager owns the TLS settings of the HTTP sender.
type ClientManager struct {
	settings  config.TLSClientConfig
	tlsConfig *tls.Config
}

// NewClientManager returns nil when TLS is not enabled.
func NewClientManager(cfg *config.TLSClientConfig, logger *log.Logger) (*ClientManager, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	tlsConfig := &tls.Config{
		MinVersion:         parseTLSVersion(cfg.MinVersion, tls.VersionTLS12),
		MaxVersion:         parseTLSVersion(cfg.MaxVersion, tls.VersionTLS13),
		ServerName:         cfg.ServerName,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
	if cfg.CipherSuites != "" {
		tlsConfig.CipherSuites = parseCipherSuites(cfg.CipherSuites)
	}

	certs, err := loadClientCert(cfg.ClientCertFile, cfg.ClientKeyFile)
	if err != nil {
		return nil, err
	}
	tlsConfig.Certificates = certs

	if cfg.ServerCAFile != "" {
		if tlsConfig.RootCAs, err = loadCAPool(cfg.ServerCAFile); err != nil {
			return nil, err
		}
	}

	if cfg.InsecureSkipVerify {
		logger.Warn("msg", "Server certificate verification disabled",
			"component", "tls")
	}
	logger.Info("msg", "Client TLS configured",
		"component", "tls",
		"mtls", len(certs) > 0,
		"custom_ca", tlsConfig.RootCAs != nil,
		"min_version", tlsVersionString(tlsConfig.MinVersion))

	return &ClientManager{settings: *cfg, tlsConfig: tlsConfig}, nil
}

// loadClientCert returns nothing when neither file is set, and an error when
// only one of them is.
func loadClientCert(certFile, keyFile string) ([]tls.Certificate, error) {
	switch {
	case certFile == "" && keyFile == "":
		return nil, nil
	case certFile == "" || keyFile == "":
		return nil, fmt.Errorf("both client_cert_file and client_key_file must be provided for mTLS")
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client cert/key: %w", err)
	}
	return []tls.Certificate{cert}, nil
}

func loadCAPool(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read server CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in server CA file %s", path)
	}
	return pool, nil
}

// GetConfig returns a copy safe for the caller to modify.
func (m *ClientManager) GetConfig() *tls.Config {
	if m == nil {
		return nil
	}
	return m.tlsConfig.Clone()
}

// GetStats reports the effective TLS settings.
func (m *ClientManager) GetStats() map[string]any {
	if m == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"enabled":              true,
		"min_version":          tlsVersionString(m.tlsConfig.MinVersion),
		"max_version":          tlsVersionString(m.tlsConfig.MaxVersion),
		"mtls":                 len(m.tlsConfig.Certificates) > 0,
		"custom_ca":            m.tlsConfig.RootCAs != nil,
		"server_name":          m.settings.ServerName,
		"insecure_skip_verify": m.settings.InsecureSkipVerify,
	}
}
