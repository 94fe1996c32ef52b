// Package classifier derives reporting-time risk flags from canonical inventory records.
//
// Classification is a projection: it reads records and a reference time and never writes.
// Running it twice on the same input yields the same report.
package classifier

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/whitekid/goxp/fx"

	"cryptohub/inventory/types"
)

type Classifier struct {
	horizonDays          int
	patterns             []*regexp.Regexp
	rotationExpectedEnvs map[types.Environment]struct{}
}

// New returns ErrInvalidConfig if the horizon is out of range or a pattern does not compile
func New(cfg Config) (*Classifier, error) {
	patterns, err := cfg.compile()
	if err != nil {
		return nil, err
	}

	envs := make(map[types.Environment]struct{}, len(cfg.RotationExpectedEnvironments))
	for _, env := range cfg.RotationExpectedEnvironments {
		envs[env] = struct{}{}
	}

	return &Classifier{
		horizonDays:          cfg.ExpiryHorizonDays,
		patterns:             patterns,
		rotationExpectedEnvs: envs,
	}, nil
}

// KeyStatus risk flags of one key
type KeyStatus struct {
	Key             *types.Key `json:"key" yaml:"key"`
	WeakAlgorithm   bool       `json:"weak_algorithm" yaml:"weak_algorithm"`
	RotationOverdue bool       `json:"rotation_overdue" yaml:"rotation_overdue"`
	RotationDueAt   *time.Time `json:"rotation_due_at" yaml:"rotation_due_at"`
	Expired         bool       `json:"expired" yaml:"expired"`
	ExpiringSoon    bool       `json:"expiring_soon" yaml:"expiring_soon"`
}

// CertificateStatus risk flags of one certificate
type CertificateStatus struct {
	Certificate     *types.Certificate `json:"certificate" yaml:"certificate"`
	Expired         bool               `json:"expired" yaml:"expired"`
	ExpiringSoon    bool               `json:"expiring_soon" yaml:"expiring_soon"`
	NotYetValid     bool               `json:"not_yet_valid" yaml:"not_yet_valid"`
	InvalidValidity bool               `json:"invalid_validity" yaml:"invalid_validity"` // valid_from after valid_to
	WeakAlgorithm   bool               `json:"weak_algorithm" yaml:"weak_algorithm"`
	DaysRemaining   int                `json:"days_remaining" yaml:"days_remaining"` // negative once expired
}

// Summary dashboard counters
type Summary struct {
	TotalKeys            int            `json:"total_keys" yaml:"total_keys"`
	TotalCertificates    int            `json:"total_certificates" yaml:"total_certificates"`
	ExpiredCertificates  int            `json:"expired_certificates" yaml:"expired_certificates"`
	ExpiringCertificates int            `json:"expiring_certificates" yaml:"expiring_certificates"`
	WeakCertificates     int            `json:"weak_certificates" yaml:"weak_certificates"`
	ExpiredKeys          int            `json:"expired_keys" yaml:"expired_keys"`
	ExpiringKeys         int            `json:"expiring_keys" yaml:"expiring_keys"`
	WeakKeys             int            `json:"weak_keys" yaml:"weak_keys"`
	RotationOverdueKeys  int            `json:"rotation_overdue_keys" yaml:"rotation_overdue_keys"`
	KeysByEnvironment    map[string]int `json:"keys_by_environment" yaml:"keys_by_environment"`
	CertificatesBySource map[string]int `json:"certificates_by_source" yaml:"certificates_by_source"`
}

// Report classified inventory
type Report struct {
	GeneratedAt       time.Time            `json:"generated_at" yaml:"generated_at"`
	ExpiryHorizonDays int                  `json:"expiry_horizon_days" yaml:"expiry_horizon_days"`
	Summary           Summary              `json:"summary" yaml:"summary"`
	Keys              []*KeyStatus         `json:"keys" yaml:"keys"`
	Certificates      []*CertificateStatus `json:"certificates" yaml:"certificates"`
}

// expiry expired and expiring soon are mutually exclusive: expired at now >= validTo,
// expiring when now < validTo < now+horizon
func (c *Classifier) expiry(now, validTo time.Time) (expired, expiringSoon bool) {
	if !now.Before(validTo) {
		return true, false
	}
	return false, validTo.Before(now.AddDate(0, 0, c.horizonDays))
}

func (c *Classifier) isWeak(descriptors ...string) bool {
	for _, d := range descriptors {
		if d == "" {
			continue
		}
		for _, re := range c.patterns {
			if re.MatchString(d) {
				return true
			}
		}
	}
	return false
}

func (c *Classifier) KeyStatus(now time.Time, key *types.Key) *KeyStatus {
	status := &KeyStatus{
		Key:           key,
		WeakAlgorithm: c.isWeak(key.Algorithm),
	}

	if key.ExpiryDate != nil {
		status.Expired, status.ExpiringSoon = c.expiry(now, *key.ExpiryDate)
	}

	if key.RotationEnabled {
		ref := key.LastRotated
		if ref == nil {
			ref = key.CreationDate
		}

		if ref != nil && key.RotationIntervalDays != nil {
			due := ref.AddDate(0, 0, *key.RotationIntervalDays)
			status.RotationDueAt = &due
			status.RotationOverdue = now.After(due)
		}
	} else if key.CustomerManaged {
		_, expected := c.rotationExpectedEnvs[key.Environment]
		status.RotationOverdue = expected
	}

	return status
}

func (c *Classifier) CertificateStatus(now time.Time, cert *types.Certificate) *CertificateStatus {
	status := &CertificateStatus{
		Certificate:     cert,
		NotYetValid:     now.Before(cert.ValidFrom),
		InvalidValidity: cert.ValidFrom.After(cert.ValidTo),
		WeakAlgorithm:   c.isWeak(cert.SignatureAlgorithm, certificateKeyDescriptor(cert)),
		DaysRemaining:   int(math.Floor(cert.ValidTo.Sub(now).Hours() / 24)),
	}
	status.Expired, status.ExpiringSoon = c.expiry(now, cert.ValidTo)

	return status
}

// certificateKeyDescriptor <family>-<key_size>, e.g. RSA-1024; empty when the size is unknown
func certificateKeyDescriptor(cert *types.Certificate) string {
	if cert.KeySize <= 0 {
		return ""
	}

	alg := strings.ToUpper(cert.SignatureAlgorithm)
	var family string
	switch {
	case strings.Contains(alg, "ECDSA"):
		family = "ECDSA"
	case strings.Contains(alg, "RSA"):
		family = "RSA"
	case strings.Contains(alg, "DSA"):
		family = "DSA"
	default:
		return ""
	}

	return family + "-" + strconv.Itoa(cert.KeySize)
}

// Classify flag every record and summarize
func (c *Classifier) Classify(now time.Time, keys []*types.Key, certs []*types.Certificate) *Report {
	report := &Report{
		GeneratedAt:       now,
		ExpiryHorizonDays: c.horizonDays,
		Keys:              fx.Map(keys, func(k *types.Key) *KeyStatus { return c.KeyStatus(now, k) }),
		Certificates:      fx.Map(certs, func(cert *types.Certificate) *CertificateStatus { return c.CertificateStatus(now, cert) }),
		Summary: Summary{
			TotalKeys:            len(keys),
			TotalCertificates:    len(certs),
			KeysByEnvironment:    map[string]int{},
			CertificatesBySource: map[string]int{},
		},
	}

	summary := &report.Summary
	for _, k := range report.Keys {
		summary.KeysByEnvironment[k.Key.Environment.String()]++
		summary.ExpiredKeys += b2i(k.Expired)
		summary.ExpiringKeys += b2i(k.ExpiringSoon)
		summary.WeakKeys += b2i(k.WeakAlgorithm)
		summary.RotationOverdueKeys += b2i(k.RotationOverdue)
	}

	for _, cert := range report.Certificates {
		summary.CertificatesBySource[cert.Certificate.Source]++
		summary.ExpiredCertificates += b2i(cert.Expired)
		summary.ExpiringCertificates += b2i(cert.ExpiringSoon)
		summary.WeakCertificates += b2i(cert.WeakAlgorithm)
	}

	return report
}

func b2i(b bool) int { return fx.Ternary(b, 1, 0) }
