package v1

import (
	"time"

	"cryptohub/inventory/classifier"
	"cryptohub/inventory/types"
)

type (
	Key         = types.Key
	Certificate = types.Certificate
	Batch       = types.Batch
	Report      = classifier.Report
)

// IngestResponse outcome of one accepted batch
type IngestResponse struct {
	Status              string   `json:"status"`
	BatchID             string   `json:"batch_id"`
	KeysProcessed       int      `json:"keys_processed"`
	CertsProcessed      int      `json:"certs_processed"`
	CreatedKeys         []string `json:"created_keys"`
	UpdatedKeys         []string `json:"updated_keys"`
	CreatedCertificates []string `json:"created_certificates"`
	UpdatedCertificates []string `json:"updated_certificates"`
}

type KeyList struct {
	Items []*Key `json:"items"`
}

type CertificateList struct {
	Items []*Certificate `json:"items"`
}

// ClassifyRequest unset fields fall back to the server's configuration
type ClassifyRequest struct {
	Now                          *time.Time          `json:"now,omitempty"`
	ExpiryHorizonDays            *int                `json:"expiry_horizon_days,omitempty"`
	WeakAlgorithmPatterns        []string            `json:"weak_algorithm_patterns,omitempty"`
	RotationExpectedEnvironments []types.Environment `json:"rotation_expected_environments,omitempty"`
}

// Config merge the request over base
func (r *ClassifyRequest) Config(base classifier.Config) classifier.Config {
	cfg := base
	if r == nil {
		return cfg
	}

	if r.ExpiryHorizonDays != nil {
		cfg.ExpiryHorizonDays = *r.ExpiryHorizonDays
	}
	if r.WeakAlgorithmPatterns != nil {
		cfg.WeakAlgorithmPatterns = r.WeakAlgorithmPatterns
	}
	if r.RotationExpectedEnvironments != nil {
		cfg.RotationExpectedEnvironments = r.RotationExpectedEnvironments
	}
	return cfg
}
