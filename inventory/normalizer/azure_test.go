package normalizer

import (
	"crypto/x509"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cryptohub/inventory/types"
	"cryptohub/pkg/testutils"
)

func TestAzureKey(t *testing.T) {
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	rotated := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	type args struct {
		raw *AzureKey
	}
	tests := []struct {
		name    string
		args    args
		want    *types.Key
		wantErr bool
	}{
		{"rsa hsm with rotation policy", args{&AzureKey{
			ID:              "https://vault.vault.azure.net/keys/payments/v2",
			Name:            "payments",
			KeyType:         "RSA-HSM",
			KeySize:         types.P(int32(3072)),
			KeyOps:          []string{"sign", "verify"},
			Enabled:         types.P(true),
			Created:         &created,
			VersionCreated:  &rotated,
			RotateAfterDays: types.P(90),
		}}, &types.Key{
			KeyID:                "https://vault.vault.azure.net/keys/payments/v2",
			Name:                 types.P("payments"),
			Environment:          types.EnvironmentAzure,
			KeyType:              "RSA-HSM",
			Algorithm:            "RSA-3072-HSM",
			State:                types.KeyStateEnabled,
			CreationDate:         &created,
			RotationEnabled:      true,
			RotationIntervalDays: types.P(90),
			LastRotated:          &rotated,
			CustomerManaged:      true,
			Usage:                types.P("sign,verify"),
		}, false},
		{"ec disabled managed", args{&AzureKey{
			ID:      "https://vault.vault.azure.net/keys/tls/v1",
			KeyType: "EC",
			Curve:   "P-256",
			Enabled: types.P(false),
			Managed: true,
			Created: &created,
		}}, &types.Key{
			KeyID:        "https://vault.vault.azure.net/keys/tls/v1",
			Environment:  types.EnvironmentAzure,
			KeyType:      "EC",
			Algorithm:    "EC-P-256",
			State:        types.KeyStateDisabled,
			CreationDate: &created,
		}, false},
		{"missing id", args{&AzureKey{KeyType: "RSA"}}, nil, true},
		{"missing key type", args{&AzureKey{ID: "id"}}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := azureKey(tt.args.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("azureKey() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestAzureKeyState(t *testing.T) {
	require.Equal(t, types.KeyStatePendingDeletion, azureKeyState(&AzureKey{Deleted: true, Enabled: types.P(true)}))
	require.Equal(t, types.KeyStateEnabled, azureKeyState(&AzureKey{Enabled: types.P(true)}))
	require.Equal(t, types.KeyStateDisabled, azureKeyState(&AzureKey{Enabled: types.P(false)}))
	require.Equal(t, types.KeyStateUnavailable, azureKeyState(&AzureKey{}))
}

func TestAzureCertificateThumbprint(t *testing.T) {
	notBefore := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expires := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	got, proxy, err := azureCertificate(&AzureCertificate{
		ID:          "https://vault.vault.azure.net/certificates/web/v1",
		Name:        "web",
		VaultURL:    "https://vault.vault.azure.net",
		Thumbprint:  []byte{0xde, 0xad, 0xbe, 0xef},
		SubjectName: "CN=web.example.com, O=Example",
		SANDNSNames: []string{"web.example.com"},
		IssuerName:  "DigiCert",
		Enabled:     types.P(false),
		NotBefore:   &notBefore,
		Expires:     &expires,
	})
	require.NoError(t, err)
	require.Equal(t, "certificate thumbprint", proxy)
	require.Equal(t, &types.Certificate{
		SerialNumber:       "deadbeef",
		CommonName:         "web.example.com",
		SANEntries:         []string{"web.example.com"},
		Issuer:             "DigiCert",
		SignatureAlgorithm: "Unknown",
		KeySize:            0,
		ValidFrom:          notBefore,
		ValidTo:            expires,
		ChainStatus:        types.ChainStatusRevoked,
		Source:             "Azure KV: https://vault.vault.azure.net",
		IssuanceType:       types.IssuanceAutomated,
	}, got)
}

func TestAzureCertificateCER(t *testing.T) {
	crt := testutils.NewCertificate(t, webCertificateOpt())

	n := New()
	n.AzureCertificate(&AzureCertificate{
		ID:         "https://vault.vault.azure.net/certificates/web/v1",
		VaultURL:   "https://vault.vault.azure.net",
		Thumbprint: []byte{0x01},
		CER:        crt.Cert.Raw,
		IssuerName: "Self",
	})

	result := n.Result()
	require.Empty(t, result.Diagnostics)
	require.Len(t, result.Certificates, 1)

	got := result.Certificates[0]
	require.Equal(t, "0102", got.SerialNumber)
	require.Equal(t, "web.example.com", got.CommonName)
	require.Equal(t, "ECDSA-SHA256", got.SignatureAlgorithm)
	require.Equal(t, 256, got.KeySize)
	require.True(t, crt.Cert.NotAfter.Equal(got.ValidTo))
}

func TestAzureCertificateSkipped(t *testing.T) {
	n := New()
	n.AzureCertificate(&AzureCertificate{ID: "no validity", Thumbprint: []byte{0x01}, SubjectName: "CN=x"})
	n.AzureCertificate(nil)

	require.Empty(t, n.Result().Certificates)
	require.Len(t, n.Result().Skipped(), 2)
}

// webCertificateOpt fixed serial ECDSA P-256 certificate
func webCertificateOpt() testutils.CertificateOpt {
	return testutils.CertificateOpt{
		CommonName: "web.example.com",
		DNSNames:   []string{"web.example.com"},
		Serial:     big.NewInt(0x0102),
		Algorithm:  x509.ECDSA,
	}
}

func TestCommonNameOf(t *testing.T) {
	require.Equal(t, "example.com", commonNameOf("CN=example.com"))
	require.Equal(t, "example.com", commonNameOf("O=Example, cn=example.com"))
	require.Equal(t, "example.com", commonNameOf("example.com"))
}
