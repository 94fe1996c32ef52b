package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"cryptohub/pkg/helper"
)

func TestEnvironment(t *testing.T) {
	type args struct {
		tag string
	}
	tests := []struct {
		name string
		args args
		want Environment
	}{
		{"aws", args{"AWS"}, EnvironmentAWS},
		{"lower", args{"azure"}, EnvironmentAzure},
		{"on-prem", args{"On-Prem"}, EnvironmentOnPrem},
		{"upper snake", args{"ON_PREM"}, EnvironmentOnPrem},
		{"unknown", args{"Oracle"}, EnvironmentNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Environment
			require.NoError(t, json.Unmarshal([]byte(`"`+tt.args.tag+`"`), &got))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEnumString(t *testing.T) {
	require.Equal(t, "VMware", EnvironmentVMware.String())
	require.Equal(t, "PendingDeletion", KeyStatePendingDeletion.String())
	require.Equal(t, "Untrusted Root", ChainStatusUntrusted.String())
	require.Equal(t, ChainStatusUntrusted, StrToChainStatus("UNTRUSTED"))
	require.Equal(t, KeyStatePendingDeletion, StrToKeyState("pending_deletion"))
	require.Len(t, Environments(), 5)
}

func TestKeyJSON(t *testing.T) {
	key := &Key{
		KeyID:                "k1",
		Environment:          EnvironmentGCP,
		KeyType:              "ENCRYPT_DECRYPT",
		Algorithm:            "GOOGLE-SYMMETRIC-ENCRYPTION",
		State:                KeyStateEnabled,
		RotationEnabled:      true,
		RotationIntervalDays: P(90),
	}

	data, err := json.Marshal(key)
	require.NoError(t, err)
	require.Contains(t, string(data), `"environment":"GCP"`)
	require.Contains(t, string(data), `"state":"Enabled"`)
	require.Contains(t, string(data), `"rotation_interval_days":90`)

	var got Key
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, key, &got)
}

func TestCertificateYAML(t *testing.T) {
	cert := &Certificate{
		SerialNumber:       "0a",
		CommonName:         "example.com",
		SANEntries:         []string{"example.com"},
		Issuer:             "Example CA",
		SignatureAlgorithm: "SHA256-RSA",
		KeySize:            2048,
		ValidFrom:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidTo:            time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ChainStatus:        ChainStatusUntrusted,
		Source:             "On-Prem PEM",
		IssuanceType:       IssuanceManual,
	}

	data, err := yaml.Marshal(cert)
	require.NoError(t, err)
	require.Contains(t, string(data), "chain_status: Untrusted Root")

	var got Certificate
	require.NoError(t, yaml.Unmarshal(data, &got))
	require.Equal(t, cert, &got)
}

func TestCanonicalize(t *testing.T) {
	key := (&Key{RotationEnabled: false, RotationIntervalDays: P(30)}).Canonicalize()
	require.Nil(t, key.RotationIntervalDays)

	key = (&Key{RotationEnabled: true, RotationIntervalDays: P(30)}).Canonicalize()
	require.Equal(t, 30, *key.RotationIntervalDays)

	cert := (&Certificate{}).Canonicalize()
	require.NotNil(t, cert.SANEntries)
}

func TestClone(t *testing.T) {
	key := &Key{KeyID: "k1", Name: P("name")}
	c := key.Clone()
	*c.Name = "changed"
	require.Equal(t, "name", *key.Name)

	cert := &Certificate{SANEntries: []string{"a"}}
	cc := cert.Clone()
	cc.SANEntries[0] = "b"
	require.Equal(t, "a", cert.SANEntries[0])
}

func TestValidateBatch(t *testing.T) {
	validKey := func() *Key {
		return &Key{KeyID: "k1", Environment: EnvironmentAWS, KeyType: "ENCRYPT_DECRYPT", Algorithm: "AES-256", State: KeyStateEnabled}
	}
	validCert := func() *Certificate {
		return &Certificate{
			SerialNumber: "0a", CommonName: "example.com", Issuer: "CA", SignatureAlgorithm: "SHA256-RSA",
			ValidFrom: time.Now(), ValidTo: time.Now().AddDate(1, 0, 0),
			ChainStatus: ChainStatusValid, Source: "AWS ACM", IssuanceType: IssuanceAutomated,
		}
	}

	type args struct {
		batch *Batch
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{"valid", args{&Batch{Keys: []*Key{validKey()}, Certificates: []*Certificate{validCert()}}}, false},
		{"empty", args{&Batch{}}, false},
		{"nil batch", args{nil}, true},
		{"nil record", args{&Batch{Keys: []*Key{nil}}}, true},
		{"missing key id", args{&Batch{Keys: []*Key{func() *Key { k := validKey(); k.KeyID = ""; return k }()}}}, true},
		{"unknown environment", args{&Batch{Keys: []*Key{func() *Key { k := validKey(); k.Environment = EnvironmentNone; return k }()}}}, true},
		{"non-positive interval", args{&Batch{Keys: []*Key{func() *Key { k := validKey(); k.RotationIntervalDays = P(0); return k }()}}}, true},
		{"interval too large", args{&Batch{Keys: []*Key{func() *Key { k := validKey(); k.RotationIntervalDays = P(200000); return k }()}}}, true},
		{"missing valid_to", args{&Batch{Certificates: []*Certificate{func() *Certificate { c := validCert(); c.ValidTo = time.Time{}; return c }()}}}, true},
		{"negative key size", args{&Batch{Certificates: []*Certificate{func() *Certificate { c := validCert(); c.KeySize = -1; return c }()}}}, true},
		{"inverted validity is accepted", args{&Batch{Certificates: []*Certificate{func() *Certificate {
			c := validCert()
			c.ValidFrom, c.ValidTo = c.ValidTo, c.ValidFrom
			return c
		}()}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBatch(tt.args.batch)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBatch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.args.batch != nil {
				require.True(t, helper.IsValidationError(err))
			}
		})
	}
}
