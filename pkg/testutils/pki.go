package testutils

import (
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/whitekid/goxp/fx"

	"cryptohub/pkg/helper/x509x"
)

type CertificateOpt struct {
	CommonName string
	DNSNames   []string
	Serial     *big.Int  // random if nil
	NotBefore  time.Time // now - 1h if zero
	NotAfter   time.Time // now + 1 year if zero
	Algorithm  x509.PublicKeyAlgorithm
	KeyBits    int
}

type Certificate struct {
	Cert    *x509.Certificate
	CertPEM []byte
	KeyPEM  []byte
}

// NewCertificate generate self-signed certificate for tests
func NewCertificate(t *testing.T, opt CertificateOpt) *Certificate {
	algorithm := fx.Ternary(opt.Algorithm == x509.UnknownPublicKeyAlgorithm, x509.ECDSA, opt.Algorithm)
	key, err := x509x.GenerateKey(algorithm, opt.KeyBits)
	require.NoError(t, err)

	serial := opt.Serial
	if serial == nil {
		serial = x509x.RandomSerial()
	}

	notBefore := fx.Ternary(opt.NotBefore.IsZero(), time.Now().Add(-time.Hour), opt.NotBefore)
	notAfter := fx.Ternary(opt.NotAfter.IsZero(), time.Now().AddDate(1, 0, 0), opt.NotAfter)

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: opt.CommonName},
		DNSNames:              opt.DNSNames,
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	if ip := net.ParseIP(opt.CommonName); ip != nil {
		template.IPAddresses = []net.IP{ip}
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, key.Public(), key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	keyPEM, err := x509x.EncodePrivateKeyToPEM(key)
	require.NoError(t, err)

	return &Certificate{
		Cert:    cert,
		CertPEM: x509x.EncodeCertificateToPEM(der),
		KeyPEM:  keyPEM,
	}
}
