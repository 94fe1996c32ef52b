package normalizer

import (
	"strconv"
	"strings"
	"time"

	"cryptohub/inventory/types"
)

// GCPCryptoKey Cloud KMS CryptoKey
type GCPCryptoKey struct {
	Name                     string // projects/<p>/locations/<l>/keyRings/<r>/cryptoKeys/<k>
	Purpose                  string // ENCRYPT_DECRYPT, ASYMMETRIC_SIGN, ASYMMETRIC_DECRYPT, MAC
	CreateTime               *time.Time
	RotationPeriod           *time.Duration
	NextRotationTime         *time.Time
	VersionTemplateAlgorithm string
	Primary                  *GCPKeyVersion // nil for asymmetric keys
}

// GCPKeyVersion CryptoKeyVersion
type GCPKeyVersion struct {
	Name       string
	State      string // ENABLED, DISABLED, DESTROYED, DESTROY_SCHEDULED, PENDING_GENERATION, ...
	Algorithm  string // GOOGLE_SYMMETRIC_ENCRYPTION, RSA_SIGN_PSS_2048_SHA256, EC_SIGN_P256_SHA256, ...
	CreateTime *time.Time
}

func (n *Normalizer) GCPCryptoKey(raw *GCPCryptoKey) {
	key, err := gcpKey(raw)
	n.addKey(types.EnvironmentGCP, fieldOrEmpty(raw, func(r *GCPCryptoKey) string { return r.Name }), key, err)
}

func gcpKey(raw *GCPCryptoKey) (*types.Key, error) {
	if raw == nil || raw.Name == "" {
		return nil, ErrMissingIdentity
	}

	parts := strings.Split(raw.Name, "/")

	algorithm := raw.VersionTemplateAlgorithm
	state := types.KeyStateUnavailable
	if raw.Primary != nil {
		algorithm = defaultString(raw.Primary.Algorithm, algorithm)
		state = gcpKeyState(raw.Primary.State)
	}

	key := &types.Key{
		KeyID:           raw.Name,
		Name:            nonEmptyP(parts[len(parts)-1]),
		Environment:     types.EnvironmentGCP,
		KeyType:         defaultString(raw.Purpose, "UNKNOWN"),
		Algorithm:       gcpKeyAlgorithm(algorithm),
		State:           state,
		CreationDate:    raw.CreateTime,
		RotationEnabled: raw.RotationPeriod != nil && *raw.RotationPeriod > 0,
		CustomerManaged: true,
		Usage:           nonEmptyP(raw.Purpose),
	}

	if key.RotationEnabled {
		days := int(*raw.RotationPeriod / (24 * time.Hour))
		if days > 0 {
			key.RotationIntervalDays = &days
		}

		// provider reports only the next rotation
		if raw.NextRotationTime != nil {
			key.LastRotated = types.P(raw.NextRotationTime.Add(-*raw.RotationPeriod))
		}
	}

	return key, nil
}

func gcpKeyState(state string) types.KeyState {
	switch state {
	case "ENABLED":
		return types.KeyStateEnabled
	case "DISABLED":
		return types.KeyStateDisabled
	case "DESTROY_SCHEDULED":
		return types.KeyStatePendingDeletion
	case "DESTROYED", "PENDING_GENERATION", "PENDING_IMPORT", "IMPORT_FAILED", "GENERATION_FAILED",
		"PENDING_EXTERNAL_DESTRUCTION", "EXTERNAL_DESTRUCTION_FAILED":
		return types.KeyStateUnavailable
	default:
		return types.KeyStateUnavailable
	}
}

// gcpKeyAlgorithm RSA_SIGN_PSS_2048_SHA256 -> RSA-2048, EC_SIGN_P256_SHA256 -> EC-P256
func gcpKeyAlgorithm(alg string) string {
	if alg == "" {
		return "UNKNOWN"
	}

	parts := strings.Split(alg, "_")
	switch {
	case parts[0] == "RSA":
		for _, p := range parts[1:] {
			if _, err := strconv.Atoi(p); err == nil {
				return "RSA-" + p
			}
		}
	case len(parts) >= 3 && parts[0] == "EC" && parts[1] == "SIGN":
		return "EC-" + parts[2]
	}

	return dashed(alg)
}
