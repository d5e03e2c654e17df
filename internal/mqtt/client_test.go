package mqtt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tharushika0418/Vescueye-Deploy/internal/config"
)

// writeTestCerts 生成自签名证书和私钥，写入临时目录
func writeTestCerts(t *testing.T) (keyPath, certPath, caPath string) {
	t.Helper()
	dir := t.TempDir()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "test-device"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	keyPath = filepath.Join(dir, "privateKey.pem")
	certPath = filepath.Join(dir, "certificate.pem")
	caPath = filepath.Join(dir, "caCert.pem")

	require.NoError(t, os.WriteFile(keyPath, keyPEM, 0600))
	require.NoError(t, os.WriteFile(certPath, certPEM, 0600))
	require.NoError(t, os.WriteFile(caPath, certPEM, 0600))

	return keyPath, certPath, caPath
}

func TestNewTLSConfig_ValidCerts(t *testing.T) {
	keyPath, certPath, caPath := writeTestCerts(t)

	cfg := &config.MQTTConfig{
		KeyPath:  keyPath,
		CertPath: certPath,
		CAPath:   caPath,
	}

	tlsConfig, err := newTLSConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, tlsConfig)
	assert.Len(t, tlsConfig.Certificates, 1)
	assert.NotNil(t, tlsConfig.RootCAs)
}

func TestNewTLSConfig_MissingCACert(t *testing.T) {
	keyPath, certPath, _ := writeTestCerts(t)

	cfg := &config.MQTTConfig{
		KeyPath:  keyPath,
		CertPath: certPath,
		CAPath:   "/nonexistent/caCert.pem",
	}

	_, err := newTLSConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CA certificate")
}

func TestNewTLSConfig_GarbageCACert(t *testing.T) {
	keyPath, certPath, _ := writeTestCerts(t)

	badCA := filepath.Join(t.TempDir(), "bad.pem")
	require.NoError(t, os.WriteFile(badCA, []byte("not a certificate"), 0600))

	cfg := &config.MQTTConfig{
		KeyPath:  keyPath,
		CertPath: certPath,
		CAPath:   badCA,
	}

	_, err := newTLSConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse CA certificate")
}

func TestNewTLSConfig_MissingDeviceKey(t *testing.T) {
	_, certPath, caPath := writeTestCerts(t)

	cfg := &config.MQTTConfig{
		KeyPath:  "/nonexistent/privateKey.pem",
		CertPath: certPath,
		CAPath:   caPath,
	}

	_, err := newTLSConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "certificate/key pair")
}

// 证书加载失败时 NewClient 必须直接失败（拒绝启动摄取），
// 而不是带着不完整的 TLS 配置去连 broker
func TestNewClient_FailsFastOnMissingCerts(t *testing.T) {
	cfg := &config.MQTTConfig{
		Broker:   "ssl://localhost:8883",
		ClientID: "test",
		KeyPath:  "/nonexistent/privateKey.pem",
		CertPath: "/nonexistent/certificate.pem",
		CAPath:   "/nonexistent/caCert.pem",
	}

	_, err := NewClient(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TLS credentials")
}
