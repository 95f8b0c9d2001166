// FILE: logship/src/internal/tls/client_test.go
package tls

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"logship/src/internal/config"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientManager(t *testing.T) {
	logger := log.NewLogger()

	t.Run("DisabledReturnsNil", func(t *testing.T) {
		m, err := NewClientManager(&config.TLSClientConfig{Enabled: false}, logger)
		require.NoError(t, err)
		assert.Nil(t, m)
		assert.Nil(t, m.GetConfig())
		assert.Equal(t, false, m.GetStats()["enabled"])
	})

	t.Run("VersionsAndSuites", func(t *testing.T) {
		m, err := NewClientManager(&config.TLSClientConfig{
			Enabled:      true,
			MinVersion:   "TLS1.3",
			ServerName:   "ingest.internal",
			CipherSuites: "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256, NOT_A_SUITE",
		}, logger)
		require.NoError(t, err)

		cfg := m.GetConfig()
		assert.Equal(t, uint16(tls.VersionTLS13), cfg.MinVersion)
		assert.Equal(t, uint16(tls.VersionTLS13), cfg.MaxVersion)
		assert.Equal(t, "ingest.internal", cfg.ServerName)
		assert.Equal(t, []uint16{tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256}, cfg.CipherSuites)
		assert.Equal(t, "TLS1.3", m.GetStats()["min_version"])
		assert.Equal(t, false, m.GetStats()["mtls"])
	})

	t.Run("HalfClientPair", func(t *testing.T) {
		_, err := NewClientManager(&config.TLSClientConfig{
			Enabled:        true,
			ClientCertFile: "client.pem",
		}, logger)
		assert.Error(t, err)
	})

	t.Run("CAFileWithoutCertificates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ca.pem")
		require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

		_, err := NewClientManager(&config.TLSClientConfig{
			Enabled:      true,
			ServerCAFile: path,
		}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no certificates")
	})

	t.Run("MissingCAFile", func(t *testing.T) {
		_, err := NewClientManager(&config.TLSClientConfig{
			Enabled:      true,
			ServerCAFile: filepath.Join(t.TempDir(), "missing.pem"),
		}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server CA")
	})
}
