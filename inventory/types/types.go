package types

import (
	"time"
)

// Key canonical cryptographic key
//
// KeyID is the identity: two keys with the same KeyID are the same physical key.
type Key struct {
	KeyID                string      `json:"key_id" yaml:"key_id" validate:"required"` // ARN, resource URL, UUID, or public key fingerprint
	Name                 *string     `json:"name" yaml:"name"`
	Environment          Environment `json:"environment" yaml:"environment" validate:"required"`
	KeyType              string      `json:"key_type" yaml:"key_type" validate:"required"`   // purpose or usage class
	Algorithm            string      `json:"algorithm" yaml:"algorithm" validate:"required"` // algorithm and size, e.g. RSA-4096
	State                KeyState    `json:"state" yaml:"state" validate:"required"`
	CreationDate         *time.Time  `json:"creation_date" yaml:"creation_date"`
	RotationEnabled      bool        `json:"rotation_enabled" yaml:"rotation_enabled"`
	RotationIntervalDays *int        `json:"rotation_interval_days" yaml:"rotation_interval_days" validate:"omitempty,gt=0,lte=36500"`
	LastRotated          *time.Time  `json:"last_rotated" yaml:"last_rotated"`
	ExpiryDate           *time.Time  `json:"expiry_date" yaml:"expiry_date"`
	CustomerManaged      bool        `json:"customer_managed" yaml:"customer_managed"`
	Usage                *string     `json:"usage" yaml:"usage"`
	LastAccessed         *time.Time  `json:"last_accessed" yaml:"last_accessed"`
}

// Canonicalize enforce field invariants in place.
// rotation interval is cleared when rotation is disabled.
func (k *Key) Canonicalize() *Key {
	if !k.RotationEnabled {
		k.RotationIntervalDays = nil
	}
	return k
}

// Clone returns a deep copy
func (k *Key) Clone() *Key {
	if k == nil {
		return nil
	}

	c := *k
	c.Name = cloneP(k.Name)
	c.CreationDate = cloneP(k.CreationDate)
	c.RotationIntervalDays = cloneP(k.RotationIntervalDays)
	c.LastRotated = cloneP(k.LastRotated)
	c.ExpiryDate = cloneP(k.ExpiryDate)
	c.Usage = cloneP(k.Usage)
	c.LastAccessed = cloneP(k.LastAccessed)
	return &c
}

// Certificate canonical digital certificate
//
// SerialNumber is the identity. Some sources cannot expose a true serial; their normalizers
// substitute a stable proxy (ARN, thumbprint) so the identity is best-effort for those sources.
type Certificate struct {
	SerialNumber       string      `json:"serial_number" yaml:"serial_number" validate:"required"`
	CommonName         string      `json:"common_name" yaml:"common_name" validate:"required"`
	SANEntries         []string    `json:"san_entries" yaml:"san_entries"`
	Issuer             string      `json:"issuer" yaml:"issuer" validate:"required"`
	SignatureAlgorithm string      `json:"signature_algorithm" yaml:"signature_algorithm" validate:"required"`
	KeySize            int         `json:"key_size" yaml:"key_size" validate:"gte=0"` // 0 when the source cannot introspect the key
	ValidFrom          time.Time   `json:"valid_from" yaml:"valid_from" validate:"required"`
	ValidTo            time.Time   `json:"valid_to" yaml:"valid_to" validate:"required"`
	ChainStatus        ChainStatus `json:"chain_status" yaml:"chain_status" validate:"required"`
	Source             string      `json:"source" yaml:"source" validate:"required"`
	IssuanceType       string      `json:"issuance_type" yaml:"issuance_type" validate:"required"`
	AssociatedAsset    *string     `json:"associated_asset" yaml:"associated_asset"`
}

func (c *Certificate) Canonicalize() *Certificate {
	if c.SANEntries == nil {
		c.SANEntries = []string{}
	}
	return c
}

func (c *Certificate) Clone() *Certificate {
	if c == nil {
		return nil
	}

	cc := *c
	cc.SANEntries = append([]string{}, c.SANEntries...)
	cc.AssociatedAsset = cloneP(c.AssociatedAsset)
	return &cc
}

// Batch one ingestion call's records
type Batch struct {
	Keys         []*Key         `json:"keys" yaml:"keys" validate:"dive,required"`
	Certificates []*Certificate `json:"certificates" yaml:"certificates" validate:"dive,required"`
}

func (b *Batch) Len() int { return len(b.Keys) + len(b.Certificates) }

func cloneP[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// P returns pointer of v
func P[T any](v T) *T { return &v }
