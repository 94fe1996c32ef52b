package normalizer

import (
	"strings"
	"time"

	"cryptohub/inventory/types"
)

// VMwareKey key status reported by a vSphere key provider
type VMwareKey struct {
	KeyID        string
	ProviderID   string // key provider (cluster) name
	Name         string
	Algorithm    string // AES_256, ...
	Status       string // AVAILABLE, ACTIVE, INACTIVE, ...
	Usage        string // VM, HOST, ...
	CreationDate *time.Time
	ExpiryDate   *time.Time
}

func (n *Normalizer) VMwareKey(raw *VMwareKey) {
	key, err := vmwareKey(raw)
	n.addKey(types.EnvironmentVMware, fieldOrEmpty(raw, func(r *VMwareKey) string { return r.KeyID }), key, err)
}

func vmwareKey(raw *VMwareKey) (*types.Key, error) {
	if raw == nil || raw.KeyID == "" {
		return nil, ErrMissingIdentity
	}

	return &types.Key{
		KeyID:           raw.KeyID,
		Name:            nonEmptyP(defaultString(raw.Name, raw.ProviderID)),
		Environment:     types.EnvironmentVMware,
		KeyType:         defaultString(strings.ToUpper(raw.Usage), "ENCRYPT_DECRYPT"),
		Algorithm:       defaultString(dashed(strings.ToUpper(raw.Algorithm)), "UNKNOWN"),
		State:           vmwareKeyState(raw.Status),
		CreationDate:    raw.CreationDate,
		ExpiryDate:      raw.ExpiryDate,
		CustomerManaged: true,
		Usage:           nonEmptyP(raw.Usage),
	}, nil
}

func vmwareKeyState(status string) types.KeyState {
	switch strings.ToLower(status) {
	case "available", "active", "enabled":
		return types.KeyStateEnabled
	case "inactive", "disabled":
		return types.KeyStateDisabled
	case "unavailable", "missing", "not_found", "error":
		return types.KeyStateUnavailable
	default:
		return types.KeyStateUnavailable
	}
}
