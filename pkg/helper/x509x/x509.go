package x509x

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"math/big"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/fx"
)

const (
	CertificatePEMBlockType              = "CERTIFICATE"
	RsaPrivateKeyPEMBlockType            = "RSA PRIVATE KEY"
	EcdsaPrivateKeyPEMBlockType          = "EC PRIVATE KEY"
	Pkcs8PrivateKeyPEMBlockType          = "PRIVATE KEY"
	EncryptedPKCS8PrivateKeyPEMBLockType = "ENCRYPTED PRIVATE KEY"
	PublicKeyPEMBlockType                = "PUBLIC KEY"
	RsaPublicKeyPEMBlockType             = "RSA PUBLIC KEY"

	pemPrefix = "-----BEGIN "
)

var (
	ErrInvalidPEM          = errors.New("invalid PEM")
	ErrUnsupportedKey      = errors.New("unsupported key")
	ErrEncryptedPrivateKey = errors.New("encrypted private key")

	pemPrefixCertificate = []byte(pemPrefix + CertificatePEMBlockType)
)

var randReader = rand.Reader

// ParseCertificate parse x509 certificate PEM block or DER bytes
func ParseCertificate(certBytes []byte) (*x509.Certificate, error) {
	if bytes.HasPrefix(bytes.TrimSpace(certBytes), pemPrefixCertificate) {
		p, _ := pem.Decode(bytes.TrimSpace(certBytes))
		if p == nil {
			return nil, ErrInvalidPEM
		}

		certBytes = p.Bytes
	}

	return x509.ParseCertificate(certBytes)
}

// ParseCertificates parse all CERTIFICATE blocks; other blocks are ignored
func ParseCertificates(pemBytes []byte) ([]*x509.Certificate, error) {
	certs := make([]*x509.Certificate, 0)
	for {
		p, rest := pem.Decode(pemBytes)
		if p == nil {
			return certs, nil
		}
		pemBytes = rest

		if p.Type != CertificatePEMBlockType {
			continue
		}

		cert, err := x509.ParseCertificate(p.Bytes)
		if err != nil {
			return nil, errors.Wrap(err, "certificate parse failed")
		}
		certs = append(certs, cert)
	}
}

// ParsePrivateKey parse pem formatted private key: PKCS#1, SEC1, PKCS#8
func ParsePrivateKey(keyPemBytes []byte) (crypto.PrivateKey, error) {
	p, _ := pem.Decode(keyPemBytes)
	if p == nil {
		return nil, ErrInvalidPEM
	}

	if _, ok := p.Headers["Proc-Type"]; ok {
		return nil, ErrEncryptedPrivateKey
	}

	var key crypto.PrivateKey
	var err error
	switch p.Type {
	case RsaPrivateKeyPEMBlockType:
		key, err = x509.ParsePKCS1PrivateKey(p.Bytes)

	case EcdsaPrivateKeyPEMBlockType:
		key, err = x509.ParseECPrivateKey(p.Bytes)

	case Pkcs8PrivateKeyPEMBlockType:
		key, err = x509.ParsePKCS8PrivateKey(p.Bytes)

	case EncryptedPKCS8PrivateKeyPEMBLockType:
		return nil, ErrEncryptedPrivateKey

	default:
		return nil, errors.Errorf("unknown pem type: %s", p.Type)
	}

	if err != nil {
		return nil, errors.Wrap(err, "fail to parse private key")
	}
	return key, nil
}

// ParsePublicKey parse PEM encoded public key; PKIX or PKCS#1 RSA
func ParsePublicKey(pemBytes []byte) (crypto.PublicKey, error) {
	p, _ := pem.Decode(pemBytes)
	if p == nil {
		return nil, ErrInvalidPEM
	}

	switch p.Type {
	case PublicKeyPEMBlockType:
		return x509.ParsePKIXPublicKey(p.Bytes)
	case RsaPublicKeyPEMBlockType:
		return x509.ParsePKCS1PublicKey(p.Bytes)
	default:
		return nil, errors.Errorf("unknown pem type: %s", p.Type)
	}
}

// PublicKeyOf returns public part of private key
func PublicKeyOf(privateKey crypto.PrivateKey) (crypto.PublicKey, error) {
	signer, ok := privateKey.(crypto.Signer)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedKey, "%T", privateKey)
	}
	return signer.Public(), nil
}

// KeyInfo algorithm family and size of public key
type KeyInfo struct {
	Family     string // RSA, ECDSA, Ed25519
	Size       int    // modulus or curve bits
	Descriptor string // human readable family and size, e.g. RSA-2048, ECDSA-P-256
}

func DescribePublicKey(pub crypto.PublicKey) (*KeyInfo, error) {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		size := k.N.BitLen()
		return &KeyInfo{Family: "RSA", Size: size, Descriptor: fmt.Sprintf("RSA-%d", size)}, nil

	case *ecdsa.PublicKey:
		params := k.Curve.Params()
		return &KeyInfo{Family: "ECDSA", Size: params.BitSize, Descriptor: "ECDSA-" + params.Name}, nil

	case ed25519.PublicKey:
		return &KeyInfo{Family: "Ed25519", Size: 256, Descriptor: "Ed25519"}, nil

	default:
		return nil, errors.Wrapf(ErrUnsupportedKey, "%T", pub)
	}
}

// Fingerprint hex encoded sha256 digest of the DER encoded SubjectPublicKeyInfo
func Fingerprint(pub crypto.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", errors.Wrap(err, "fail to marshal public key")
	}

	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:]), nil
}

// SerialToHex lower case hex without separators, zero padded to full bytes
func SerialToHex(serial *big.Int) string {
	if serial == nil {
		return ""
	}

	return hex.EncodeToString(fx.Ternary(serial.Sign() == 0, []byte{0}, serial.Bytes()))
}

// GenerateKey generate private and public key pair
func GenerateKey(algorithm x509.PublicKeyAlgorithm, bits int) (privateKey crypto.Signer, err error) {
	switch algorithm {
	case x509.ECDSA:
		curve := elliptic.P256()
		switch bits {
		case 384:
			curve = elliptic.P384()
		case 521:
			curve = elliptic.P521()
		}
		privateKey, err = ecdsa.GenerateKey(curve, randReader)
	case x509.Ed25519:
		_, privateKey, err = ed25519.GenerateKey(randReader)
	case x509.RSA:
		privateKey, err = rsa.GenerateKey(randReader, bits)
	default:
		return nil, errors.Errorf("unknown algorithm: %s", algorithm)
	}

	if err != nil {
		return nil, err
	}

	return
}

func EncodeCertificateToPEM(derBytes []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  CertificatePEMBlockType,
		Bytes: derBytes,
	})
}

// EncodePrivateKeyToPEM encode as PKCS#8
func EncodePrivateKeyToPEM(privateKey crypto.PrivateKey) ([]byte, error) {
	derBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "fail to encode private key")
	}

	return pem.EncodeToMemory(&pem.Block{
		Type:  Pkcs8PrivateKeyPEMBlockType,
		Bytes: derBytes,
	}), nil
}

func EncodePublicKeyToPEM(pub crypto.PublicKey) ([]byte, error) {
	derBytes, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, errors.Wrap(err, "fail to encode public key")
	}

	return pem.EncodeToMemory(&pem.Block{
		Type:  PublicKeyPEMBlockType,
		Bytes: derBytes,
	}), nil
}

func RandomSerial() *big.Int {
	s, _ := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	return s
}
