package certs

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(t *testing.T, cert tls.Certificate) *x509.Certificate {
	t.Helper()
	require.Len(t, cert.Certificate, 1)
	parsed, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return parsed
}

func TestFileManager_GetOrCreateCertificate(t *testing.T) {
	tests := []struct {
		setup   func(t *testing.T, dir string)
		check   func(t *testing.T, cert *x509.Certificate)
		name    string
		hosts   []string
		wantErr bool
	}{
		{
			name: "creates certificate when none exists",
			check: func(t *testing.T, cert *x509.Certificate) {
				t.Helper()
				assert.Equal(t, []string{Organization}, cert.Subject.Organization)
				assert.Contains(t, cert.DNSNames, "localhost")
				assert.NoError(t, cert.VerifyHostname("127.0.0.1"))
				assert.True(t, cert.NotAfter.After(time.Now().Add(Validity-time.Hour)))
			},
		},
		{
			name:  "covers extra hosts",
			hosts: []string{"office.local", "192.168.1.20"},
			check: func(t *testing.T, cert *x509.Certificate) {
				t.Helper()
				assert.NoError(t, cert.VerifyHostname("office.local"))
				assert.NoError(t, cert.VerifyHostname("192.168.1.20"))
			},
		},
		{
			name: "regenerates unreadable files",
			setup: func(t *testing.T, dir string) {
				t.Helper()
				require.NoError(t, os.MkdirAll(dir, 0700))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "buildtrack.crt"), []byte("junk"), 0600))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "buildtrack.key"), []byte("junk"), 0600))
			},
			check: func(t *testing.T, cert *x509.Certificate) {
				t.Helper()
				assert.Contains(t, cert.DNSNames, "localhost")
			},
		},
		{
			name: "fails when the directory is a file",
			setup: func(t *testing.T, dir string) {
				t.Helper()
				require.NoError(t, os.WriteFile(dir, []byte("not a directory"), 0600))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "certs")
			if tt.setup != nil {
				tt.setup(t, dir)
			}

			m := NewFileManager(dir, tt.hosts...)
			cert, err := m.GetOrCreateCertificate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, leaf(t, cert))

			for _, path := range []string{m.CertFile(), m.KeyFile()} {
				info, statErr := os.Stat(path)
				require.NoError(t, statErr)
				assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
			}
		})
	}
}

func TestFileManager_ReusesValidCertificate(t *testing.T) {
	m := NewFileManager(t.TempDir())

	first, err := m.GetOrCreateCertificate()
	require.NoError(t, err)
	second, err := m.GetOrCreateCertificate()
	require.NoError(t, err)

	assert.Equal(t, leaf(t, first).SerialNumber, leaf(t, second).SerialNumber)
}

func TestFileManager_RegeneratesExpiredCertificate(t *testing.T) {
	m := NewFileManager(t.TempDir())

	first, err := m.GetOrCreateCertificate()
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(Validity + 24*time.Hour) }
	second, err := m.GetOrCreateCertificate()
	require.NoError(t, err)

	assert.NotEqual(t, leaf(t, first).SerialNumber, leaf(t, second).SerialNumber)
}

func TestFileManager_RegeneratesWhenHostMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := NewFileManager(dir).GetOrCreateCertificate()
	require.NoError(t, err)

	cert, err := NewFileManager(dir, "site.example").GetOrCreateCertificate()
	require.NoError(t, err)
	assert.NoError(t, leaf(t, cert).VerifyHostname("site.example"))
}

func TestFileManager_TLSConfig(t *testing.T) {
	cfg, err := NewFileManager(t.TempDir()).TLSConfig()
	require.NoError(t, err)

	require.Len(t, cfg.Certificates, 1)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
}

var _ Manager = (*FileManager)(nil)
