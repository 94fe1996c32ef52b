package store

import (
	"context"
	"sort"
	"sync"

	"github.com/whitekid/goxp/fx"
	"github.com/whitekid/goxp/log"

	"cryptohub/inventory/types"
)

// memoryStoreImpl store inventory in memory
//
// Transactions are serialized by mu and stage their writes; staged writes are merged
// only when the transaction function succeeds.
type memoryStoreImpl struct {
	mu    sync.RWMutex
	keys  map[string]*types.Key
	certs map[string]*types.Certificate
}

var _ Interface = (*memoryStoreImpl)(nil)

func NewMemory() Interface {
	return &memoryStoreImpl{
		keys:  make(map[string]*types.Key),
		certs: make(map[string]*types.Certificate),
	}
}

func (s *memoryStoreImpl) Close() error { return nil }

func (s *memoryStoreImpl) ListKeys(ctx context.Context) ([]*types.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := fx.Map(fx.Values(s.keys), func(k *types.Key) *types.Key { return k.Clone() })
	sort.Slice(keys, func(i, j int) bool { return keys[i].KeyID < keys[j].KeyID })
	return keys, nil
}

func (s *memoryStoreImpl) ListCertificates(ctx context.Context) ([]*types.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	certs := fx.Map(fx.Values(s.certs), func(c *types.Certificate) *types.Certificate { return c.Clone() })
	sort.Slice(certs, func(i, j int) bool { return certs[i].SerialNumber < certs[j].SerialNumber })
	return certs, nil
}

func (s *memoryStoreImpl) GetKey(ctx context.Context, keyID string) (*types.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.keys[keyID]
	if !ok {
		return nil, ErrNotFound
	}
	return key.Clone(), nil
}

func (s *memoryStoreImpl) GetCertificate(ctx context.Context, serialNumber string) (*types.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cert, ok := s.certs[serialNumber]
	if !ok {
		return nil, ErrNotFound
	}
	return cert.Clone(), nil
}

func (s *memoryStoreImpl) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		store: s,
		keys:  make(map[string]*types.Key),
		certs: make(map[string]*types.Certificate),
	}

	if err := fn(tx); err != nil {
		log.Debugf("rollback: %d keys, %d certificates discarded", len(tx.keys), len(tx.certs))
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	for id, key := range tx.keys {
		s.keys[id] = key
	}
	for serial, cert := range tx.certs {
		s.certs[serial] = cert
	}

	return nil
}

// memoryTx staged writes; store lock is held by Transaction
type memoryTx struct {
	store *memoryStoreImpl
	keys  map[string]*types.Key
	certs map[string]*types.Certificate
}

var _ Tx = (*memoryTx)(nil)

func (tx *memoryTx) GetKey(ctx context.Context, keyID string) (*types.Key, error) {
	if key, ok := tx.keys[keyID]; ok {
		return key.Clone(), nil
	}

	if key, ok := tx.store.keys[keyID]; ok {
		return key.Clone(), nil
	}

	return nil, ErrNotFound
}

func (tx *memoryTx) PutKey(ctx context.Context, key *types.Key) error {
	tx.keys[key.KeyID] = key.Clone().Canonicalize()
	return nil
}

func (tx *memoryTx) GetCertificate(ctx context.Context, serialNumber string) (*types.Certificate, error) {
	if cert, ok := tx.certs[serialNumber]; ok {
		return cert.Clone(), nil
	}

	if cert, ok := tx.store.certs[serialNumber]; ok {
		return cert.Clone(), nil
	}

	return nil, ErrNotFound
}

func (tx *memoryTx) PutCertificate(ctx context.Context, cert *types.Certificate) error {
	tx.certs[cert.SerialNumber] = cert.Clone().Canonicalize()
	return nil
}
