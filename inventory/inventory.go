package inventory

import (
	"context"
	"time"

	"cryptohub/inventory/classifier"
	"cryptohub/inventory/reconciler"
	"cryptohub/inventory/store"
	"cryptohub/inventory/types"
)

type (
	Store = store.Interface

	Key         = types.Key
	Certificate = types.Certificate
	Batch       = types.Batch

	Result           = reconciler.Result
	ClassifierConfig = classifier.Config
	Report           = classifier.Report
)

var (
	ErrInvalidBatch  = reconciler.ErrInvalidBatch
	ErrStorage       = reconciler.ErrStorage
	ErrInvalidConfig = classifier.ErrInvalidConfig
	ErrNotFound      = store.ErrNotFound
)

// Interface inventory operations exposed to the ingestion and read boundary
type Interface interface {
	Ingest(ctx context.Context, batch *Batch) (*Result, error)
	ListKeys(ctx context.Context) ([]*Key, error)
	ListCertificates(ctx context.Context) ([]*Certificate, error)

	// Classify classify every stored record at now; the configuration is validated before the store is read
	Classify(ctx context.Context, now time.Time, cfg ClassifierConfig) (*Report, error)
}

func New(s Store) Interface {
	return &inventoryImpl{
		store:      s,
		reconciler: reconciler.New(s),
	}
}

func MemoryStore() Store                   { return store.NewMemory() }
func SQLStore(dburl string) (Store, error) { return store.NewSQL(dburl) }

type inventoryImpl struct {
	store      Store
	reconciler *reconciler.Reconciler
}

func (i *inventoryImpl) Ingest(ctx context.Context, batch *Batch) (*Result, error) {
	return i.reconciler.Reconcile(ctx, batch)
}

func (i *inventoryImpl) ListKeys(ctx context.Context) ([]*Key, error) {
	return i.store.ListKeys(ctx)
}

func (i *inventoryImpl) ListCertificates(ctx context.Context) ([]*Certificate, error) {
	return i.store.ListCertificates(ctx)
}

func (i *inventoryImpl) Classify(ctx context.Context, now time.Time, cfg ClassifierConfig) (*Report, error) {
	c, err := classifier.New(cfg)
	if err != nil {
		return nil, err
	}

	keys, err := i.store.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	certs, err := i.store.ListCertificates(ctx)
	if err != nil {
		return nil, err
	}

	return c.Classify(now, keys, certs), nil
}
