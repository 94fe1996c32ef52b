package normalizer

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/fx"

	"cryptohub/inventory/types"
	"cryptohub/pkg/helper/x509x"
)

const SourcePEM = "On-Prem PEM"

// PEMBundle PEM encoded certificates and keys found on one host or file
type PEMBundle struct {
	PEM          []byte
	Source       string     // discovery origin; SourcePEM if empty
	Asset        string     // where the certificates are installed
	CreationDate *time.Time // creation of the key material, e.g. file modification time
}

// PEM normalize every CERTIFICATE and key block of the bundle
func (n *Normalizer) PEM(raw *PEMBundle) {
	if raw == nil {
		return
	}

	rest := raw.PEM
	index := 0
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		index++

		switch block.Type {
		case x509x.CertificatePEMBlockType:
			cert, err := pemCertificate(raw, block)
			n.addCertificate(types.EnvironmentOnPrem, pemRecordID(raw, index), cert, "", err)

		case x509x.RsaPrivateKeyPEMBlockType, x509x.EcdsaPrivateKeyPEMBlockType, x509x.Pkcs8PrivateKeyPEMBlockType,
			x509x.EncryptedPKCS8PrivateKeyPEMBLockType, x509x.PublicKeyPEMBlockType, x509x.RsaPublicKeyPEMBlockType:
			key, err := pemKey(raw, block)
			n.addKey(types.EnvironmentOnPrem, pemRecordID(raw, index), key, err)

		default:
			n.skip(types.EnvironmentOnPrem, "pem", pemRecordID(raw, index), errors.Errorf("unsupported PEM block: %s", block.Type))
		}
	}

	if index == 0 && len(bytes.TrimSpace(raw.PEM)) > 0 {
		n.skip(types.EnvironmentOnPrem, "pem", raw.Source, x509x.ErrInvalidPEM)
	}
}

func pemRecordID(raw *PEMBundle, index int) string {
	return defaultString(raw.Source, SourcePEM) + "#" + strconv.Itoa(index)
}

func pemCertificate(raw *PEMBundle, block *pem.Block) (*types.Certificate, error) {
	parsed, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "certificate parse failed")
	}

	cert := &types.Certificate{
		ChainStatus:     pemChainStatus(parsed),
		Source:          defaultString(raw.Source, SourcePEM),
		IssuanceType:    types.IssuanceManual,
		AssociatedAsset: nonEmptyP(raw.Asset),
	}
	fromX509(cert, parsed)

	if cert.CommonName == "" {
		return nil, ErrMissingField
	}

	return cert, nil
}

// pemChainStatus a file carries no provider status; self-issued certificates are reported
// as untrusted roots, everything else as valid
func pemChainStatus(cert *x509.Certificate) types.ChainStatus {
	if bytes.Equal(cert.RawIssuer, cert.RawSubject) {
		return types.ChainStatusUntrusted
	}
	return types.ChainStatusValid
}

// fromX509 fill certificate fields from the parsed certificate
func fromX509(cert *types.Certificate, parsed *x509.Certificate) {
	cert.SerialNumber = x509x.SerialToHex(parsed.SerialNumber)
	cert.CommonName = parsed.Subject.CommonName
	cert.SANEntries = sanEntries(parsed)
	if cert.CommonName == "" && len(cert.SANEntries) > 0 {
		cert.CommonName = cert.SANEntries[0]
	}
	cert.Issuer = defaultString(parsed.Issuer.String(), "Unknown")
	cert.SignatureAlgorithm = parsed.SignatureAlgorithm.String()
	cert.ValidFrom = parsed.NotBefore
	cert.ValidTo = parsed.NotAfter

	if info, err := x509x.DescribePublicKey(parsed.PublicKey); err == nil {
		cert.KeySize = info.Size
	}
}

// sanEntries DNS names, IP addresses, emails and URIs in certificate order
func sanEntries(cert *x509.Certificate) []string {
	entries := append([]string{}, cert.DNSNames...)
	entries = append(entries, fx.Map(cert.IPAddresses, func(ip net.IP) string { return ip.String() })...)
	entries = append(entries, cert.EmailAddresses...)
	entries = append(entries, fx.Map(cert.URIs, func(u *url.URL) string { return u.String() })...)
	return entries
}

func pemKey(raw *PEMBundle, block *pem.Block) (*types.Key, error) {
	encoded := pem.EncodeToMemory(block)

	var pub crypto.PublicKey
	keyType := "PUBLIC_KEY"
	switch block.Type {
	case x509x.PublicKeyPEMBlockType, x509x.RsaPublicKeyPEMBlockType:
		var err error
		if pub, err = x509x.ParsePublicKey(encoded); err != nil {
			return nil, err
		}

	default:
		priv, err := x509x.ParsePrivateKey(encoded)
		if err != nil {
			return nil, err
		}

		if pub, err = x509x.PublicKeyOf(priv); err != nil {
			return nil, err
		}
		keyType = "PRIVATE_KEY"
	}

	info, err := x509x.DescribePublicKey(pub)
	if err != nil {
		return nil, err
	}

	fingerprint, err := x509x.Fingerprint(pub)
	if err != nil {
		return nil, err
	}

	return &types.Key{
		KeyID:           fingerprint,
		Name:            nonEmptyP(raw.Source),
		Environment:     types.EnvironmentOnPrem,
		KeyType:         keyType,
		Algorithm:       info.Descriptor,
		State:           types.KeyStateEnabled,
		CreationDate:    raw.CreationDate,
		CustomerManaged: true,
	}, nil
}
