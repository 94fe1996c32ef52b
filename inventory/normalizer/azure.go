package normalizer

import (
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"cryptohub/inventory/types"
	"cryptohub/pkg/helper/x509x"
)

// AzureKey Key Vault key properties of the current key version
type AzureKey struct {
	ID             string // key identifier, https://<vault>/keys/<name>/<version>
	Name           string
	KeyType        string // kty: RSA, RSA-HSM, EC, EC-HSM, oct, oct-HSM
	KeySize        *int32
	Curve          string // P-256, P-384, P-521, P-256K
	KeyOps         []string
	Enabled        *bool
	Deleted        bool // soft-deleted, awaiting purge
	Managed        bool // lifetime managed by a Key Vault certificate
	Created        *time.Time
	VersionCreated *time.Time // creation of the current version
	Expires        *time.Time

	RotateAfterDays *int // lifetime action of the key rotation policy
}

// AzureCertificate Key Vault certificate properties and policy
//
// CER is the DER encoded certificate when the collector downloaded it; without it the
// serial is not exposed and the thumbprint stands in as identity.
type AzureCertificate struct {
	ID          string
	Name        string
	VaultURL    string
	Thumbprint  []byte
	CER         []byte
	SubjectName string // policy subject, CN=...
	SANDNSNames []string
	IssuerName  string // policy issuer: Self, Unknown or a CA provider name
	KeySize     *int32
	Enabled     *bool
	NotBefore   *time.Time
	Expires     *time.Time
}

func (n *Normalizer) AzureKey(raw *AzureKey) {
	key, err := azureKey(raw)
	n.addKey(types.EnvironmentAzure, fieldOrEmpty(raw, func(r *AzureKey) string { return r.ID }), key, err)
}

func (n *Normalizer) AzureCertificate(raw *AzureCertificate) {
	cert, proxy, err := azureCertificate(raw)
	n.addCertificate(types.EnvironmentAzure, fieldOrEmpty(raw, func(r *AzureCertificate) string { return r.ID }), cert, proxy, err)
}

func fieldOrEmpty[T any](raw *T, fn func(*T) string) string {
	if raw == nil {
		return ""
	}
	return fn(raw)
}

func azureKey(raw *AzureKey) (*types.Key, error) {
	if raw == nil || raw.ID == "" {
		return nil, ErrMissingIdentity
	}

	if raw.KeyType == "" {
		return nil, ErrMissingField
	}

	key := &types.Key{
		KeyID:           raw.ID,
		Name:            nonEmptyP(raw.Name),
		Environment:     types.EnvironmentAzure,
		KeyType:         raw.KeyType,
		Algorithm:       azureKeyAlgorithm(raw),
		State:           azureKeyState(raw),
		CreationDate:    raw.Created,
		RotationEnabled: raw.RotateAfterDays != nil && *raw.RotateAfterDays > 0,
		ExpiryDate:      raw.Expires,
		CustomerManaged: !raw.Managed,
		Usage:           nonEmptyP(strings.Join(raw.KeyOps, ",")),
	}

	if key.RotationEnabled {
		key.RotationIntervalDays = types.P(*raw.RotateAfterDays)
	}

	// a newer current version means the key was rotated
	if raw.Created != nil && raw.VersionCreated != nil && raw.VersionCreated.After(*raw.Created) {
		key.LastRotated = raw.VersionCreated
	}

	return key, nil
}

// azureKeyAlgorithm <kty>-<size> for RSA and oct, <kty>-<curve> for EC
func azureKeyAlgorithm(raw *AzureKey) string {
	family := strings.ToUpper(strings.TrimSuffix(raw.KeyType, "-HSM"))
	hsm := strings.HasSuffix(raw.KeyType, "-HSM")

	var alg string
	switch {
	case family == "EC" && raw.Curve != "":
		alg = "EC-" + raw.Curve
	case raw.KeySize != nil && *raw.KeySize > 0:
		alg = fmt.Sprintf("%s-%d", family, *raw.KeySize)
	default:
		alg = family
	}

	if hsm {
		alg += "-HSM"
	}
	return alg
}

func azureKeyState(raw *AzureKey) types.KeyState {
	switch {
	case raw.Deleted:
		return types.KeyStatePendingDeletion
	case raw.Enabled == nil:
		return types.KeyStateUnavailable
	case *raw.Enabled:
		return types.KeyStateEnabled
	default:
		return types.KeyStateDisabled
	}
}

func azureCertificate(raw *AzureCertificate) (cert *types.Certificate, proxy string, err error) {
	if raw == nil {
		return nil, "", ErrMissingIdentity
	}

	var parsed *x509.Certificate
	if len(raw.CER) > 0 {
		parsed, err = x509x.ParseCertificate(raw.CER)
		if err != nil {
			return nil, "", err
		}
	}

	cert = &types.Certificate{
		CommonName:         commonNameOf(raw.SubjectName),
		SANEntries:         append([]string{}, raw.SANDNSNames...),
		Issuer:             defaultString(raw.IssuerName, "Unknown"),
		SignatureAlgorithm: "Unknown",
		ChainStatus:        azureChainStatus(raw.Enabled),
		Source:             "Azure KV: " + raw.VaultURL,
		IssuanceType:       azureIssuanceType(raw.IssuerName),
	}

	if raw.KeySize != nil && *raw.KeySize > 0 {
		cert.KeySize = int(*raw.KeySize)
	}

	if raw.NotBefore != nil {
		cert.ValidFrom = *raw.NotBefore
	}
	if raw.Expires != nil {
		cert.ValidTo = *raw.Expires
	}

	if parsed != nil {
		fromX509(cert, parsed)
	} else {
		cert.SerialNumber = hex.EncodeToString(raw.Thumbprint)
		proxy = "certificate thumbprint"
	}

	if cert.SerialNumber == "" {
		return nil, "", ErrMissingIdentity
	}

	if cert.ValidFrom.IsZero() || cert.ValidTo.IsZero() {
		return nil, "", ErrMissingValidity
	}

	if cert.CommonName == "" {
		cert.CommonName = raw.Name
	}
	if cert.CommonName == "" {
		return nil, "", ErrMissingField
	}

	return cert, proxy, nil
}

func azureChainStatus(enabled *bool) types.ChainStatus {
	if enabled != nil && !*enabled {
		return types.ChainStatusRevoked
	}
	return types.ChainStatusValid
}

func azureIssuanceType(issuerName string) string {
	switch strings.ToLower(issuerName) {
	case "", "unknown":
		return types.IssuanceManual
	default:
		return types.IssuanceAutomated
	}
}

// commonNameOf CN component of a distinguished name; the whole name if it has no CN
func commonNameOf(dn string) string {
	for _, part := range strings.Split(dn, ",") {
		part = strings.TrimSpace(part)
		if len(part) > 3 && strings.EqualFold(part[:3], "CN=") {
			return strings.TrimSpace(part[3:])
		}
	}
	return strings.TrimSpace(dn)
}
