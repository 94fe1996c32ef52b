package reconciler

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/whitekid/goxp/log"

	"cryptohub/inventory/store"
	"cryptohub/inventory/types"
	"cryptohub/pkg/helper"
	"cryptohub/pkg/metrics"
)

var (
	ErrInvalidBatch = errors.New("invalid batch")
	ErrStorage      = errors.New("storage failure")
)

// Result outcome of one reconciled batch
type Result struct {
	BatchID             string   `json:"batch_id"`
	KeysProcessed       int      `json:"keys_processed"`
	CertsProcessed      int      `json:"certs_processed"`
	CreatedKeys         []string `json:"created_keys"`
	UpdatedKeys         []string `json:"updated_keys"`
	CreatedCertificates []string `json:"created_certificates"`
	UpdatedCertificates []string `json:"updated_certificates"`
}

// Reconciler merge validated batches into the inventory store
//
// A batch is applied in one store transaction: either every record is written or none.
// Matching is by identity key only; an existing record is fully overwritten.
type Reconciler struct {
	store store.Interface
}

func New(s store.Interface) *Reconciler {
	return &Reconciler{store: s}
}

// Reconcile validate batch and upsert every record
func (r *Reconciler) Reconcile(ctx context.Context, batch *types.Batch) (*Result, error) {
	result := &Result{
		BatchID:             helper.NewID(),
		CreatedKeys:         []string{},
		UpdatedKeys:         []string{},
		CreatedCertificates: []string{},
		UpdatedCertificates: []string{},
	}

	if err := types.ValidateBatch(batch); err != nil {
		metrics.BatchesRejected.Inc()
		log.Infof("batch %s rejected: %v", result.BatchID, err)
		return nil, &Error{Kind: ErrInvalidBatch, BatchID: result.BatchID, Err: err}
	}

	timer := prometheus.NewTimer(metrics.ReconcileLatency)
	defer timer.ObserveDuration()

	log.Debugf("Reconcile(): batch=%s, keys=%d, certificates=%d", result.BatchID, len(batch.Keys), len(batch.Certificates))

	err := r.store.Transaction(ctx, func(tx store.Tx) error {
		for _, key := range batch.Keys {
			created, err := reconcileKey(ctx, tx, key.Clone().Canonicalize())
			if err != nil {
				return err
			}

			if created {
				result.CreatedKeys = append(result.CreatedKeys, key.KeyID)
			} else {
				result.UpdatedKeys = append(result.UpdatedKeys, key.KeyID)
			}
		}

		for _, cert := range batch.Certificates {
			created, err := reconcileCertificate(ctx, tx, cert.Clone().Canonicalize())
			if err != nil {
				return err
			}

			if created {
				result.CreatedCertificates = append(result.CreatedCertificates, cert.SerialNumber)
			} else {
				result.UpdatedCertificates = append(result.UpdatedCertificates, cert.SerialNumber)
			}
		}

		return nil
	})
	if err != nil {
		metrics.BatchesFailed.Inc()
		log.Errorf("batch %s failed: %+v", result.BatchID, err)
		return nil, &Error{Kind: ErrStorage, BatchID: result.BatchID, Err: err}
	}

	result.KeysProcessed = len(batch.Keys)
	result.CertsProcessed = len(batch.Certificates)

	metrics.RecordsReconciled.WithLabelValues("key", "created").Add(float64(len(result.CreatedKeys)))
	metrics.RecordsReconciled.WithLabelValues("key", "updated").Add(float64(len(result.UpdatedKeys)))
	metrics.RecordsReconciled.WithLabelValues("certificate", "created").Add(float64(len(result.CreatedCertificates)))
	metrics.RecordsReconciled.WithLabelValues("certificate", "updated").Add(float64(len(result.UpdatedCertificates)))

	log.Infof("batch %s reconciled: keys=%d certificates=%d", result.BatchID, result.KeysProcessed, result.CertsProcessed)
	return result, nil
}

func reconcileKey(ctx context.Context, tx store.Tx, key *types.Key) (created bool, err error) {
	_, err = tx.GetKey(ctx, key.KeyID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		created = true
	case err != nil:
		return false, err
	}

	if err := tx.PutKey(ctx, key); err != nil {
		return false, err
	}

	return created, nil
}

func reconcileCertificate(ctx context.Context, tx store.Tx, cert *types.Certificate) (created bool, err error) {
	_, err = tx.GetCertificate(ctx, cert.SerialNumber)
	switch {
	case errors.Is(err, store.ErrNotFound):
		created = true
	case err != nil:
		return false, err
	}

	if err := tx.PutCertificate(ctx, cert); err != nil {
		return false, err
	}

	return created, nil
}

// Error batch failure; Kind is ErrInvalidBatch or ErrStorage and nothing of the batch was committed
type Error struct {
	Kind    error
	BatchID string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("batch %s: %s: %s", e.BatchID, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }
