package store

import (
	"context"

	"github.com/pkg/errors"

	"cryptohub/inventory/types"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Interface inventory storage
//
// Records are keyed by their identity key. Writes happen only inside Transaction; a
// transaction either commits every write or none of them.
type Interface interface {
	ListKeys(ctx context.Context) ([]*types.Key, error)
	ListCertificates(ctx context.Context) ([]*types.Certificate, error)
	GetKey(ctx context.Context, keyID string) (*types.Key, error)
	GetCertificate(ctx context.Context, serialNumber string) (*types.Certificate, error)

	// Transaction run fn in one transaction; commit if fn returns nil, rollback otherwise
	Transaction(ctx context.Context, fn func(tx Tx) error) error

	Close() error
}

// Tx transactional view of the inventory
//
// Put replaces every field of the stored record, nil fields included.
type Tx interface {
	GetKey(ctx context.Context, keyID string) (*types.Key, error)
	PutKey(ctx context.Context, key *types.Key) error
	GetCertificate(ctx context.Context, serialNumber string) (*types.Certificate, error)
	PutCertificate(ctx context.Context, cert *types.Certificate) error
}
