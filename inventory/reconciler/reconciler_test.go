package reconciler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"cryptohub/inventory/store"
	"cryptohub/inventory/types"
	"cryptohub/pkg/helper"
	"cryptohub/pkg/testutils"
)

func newKey(id string) *types.Key {
	return &types.Key{
		KeyID:                id,
		Name:                 types.P("alias/" + id),
		Environment:          types.EnvironmentAWS,
		KeyType:              "ENCRYPT_DECRYPT",
		Algorithm:            "RSA-2048",
		State:                types.KeyStateEnabled,
		RotationEnabled:      true,
		RotationIntervalDays: types.P(365),
		CustomerManaged:      true,
	}
}

func newCertificate(serial string) *types.Certificate {
	return &types.Certificate{
		SerialNumber:       serial,
		CommonName:         "server.example.com",
		SANEntries:         []string{"server.example.com"},
		Issuer:             "Example CA",
		SignatureAlgorithm: "SHA256-RSA",
		KeySize:            2048,
		ValidFrom:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidTo:            time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ChainStatus:        types.ChainStatusValid,
		Source:             "AWS ACM",
		IssuanceType:       types.IssuanceAutomated,
	}
}

func TestReconcileFreshInsert(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	got, err := New(s).Reconcile(ctx, &types.Batch{
		Keys:         []*types.Key{newKey("k1")},
		Certificates: []*types.Certificate{newCertificate("0a")},
	})
	require.NoError(t, err)
	require.NotEmpty(t, got.BatchID)
	require.Equal(t, 1, got.KeysProcessed)
	require.Equal(t, 1, got.CertsProcessed)
	require.Equal(t, []string{"k1"}, got.CreatedKeys)
	require.Empty(t, got.UpdatedKeys)
	require.Equal(t, []string{"0a"}, got.CreatedCertificates)

	key, err := s.GetKey(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, newKey("k1"), key)
}

func TestReconcileUpdateOverwrite(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	r := New(s)

	_, err := r.Reconcile(ctx, &types.Batch{Keys: []*types.Key{newKey("k1")}})
	require.NoError(t, err)

	updated := newKey("k1")
	updated.Name = nil
	updated.State = types.KeyStateDisabled
	updated.RotationEnabled = false

	got, err := r.Reconcile(ctx, &types.Batch{Keys: []*types.Key{updated}})
	require.NoError(t, err)
	require.Empty(t, got.CreatedKeys)
	require.Equal(t, []string{"k1"}, got.UpdatedKeys)

	key, err := s.GetKey(ctx, "k1")
	require.NoError(t, err)
	require.Nil(t, key.Name, "absent field overwrites stored value")
	require.Equal(t, types.KeyStateDisabled, key.State)
	require.Nil(t, key.RotationIntervalDays, "interval is dropped when rotation is disabled")

	keys, err := s.ListKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
}

func TestReconcileIdempotent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	r := New(s)
	batch := &types.Batch{
		Keys:         []*types.Key{newKey("k1"), newKey("k2")},
		Certificates: []*types.Certificate{newCertificate("0a")},
	}

	_, err := r.Reconcile(ctx, batch)
	require.NoError(t, err)
	keys1 := testutils.Must1(s.ListKeys(ctx))
	certs1 := testutils.Must1(s.ListCertificates(ctx))

	got, err := r.Reconcile(ctx, batch)
	require.NoError(t, err)
	require.Empty(t, got.CreatedKeys)
	require.Len(t, got.UpdatedKeys, 2)

	require.Equal(t, keys1, testutils.Must1(s.ListKeys(ctx)))
	require.Equal(t, certs1, testutils.Must1(s.ListCertificates(ctx)))
}

func TestReconcileDuplicateInBatch(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	second := newKey("k1")
	second.Algorithm = "RSA-4096"

	got, err := New(s).Reconcile(ctx, &types.Batch{Keys: []*types.Key{newKey("k1"), second}})
	require.NoError(t, err)
	require.Equal(t, []string{"k1"}, got.CreatedKeys)
	require.Equal(t, []string{"k1"}, got.UpdatedKeys)

	key := testutils.Must1(s.GetKey(ctx, "k1"))
	require.Equal(t, "RSA-4096", key.Algorithm)
}

func TestReconcileInvalidBatch(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	bad := newCertificate("0b")
	bad.ValidTo = time.Time{}

	_, err := New(s).Reconcile(ctx, &types.Batch{
		Keys:         []*types.Key{newKey("k1")},
		Certificates: []*types.Certificate{newCertificate("0a"), bad},
	})
	require.ErrorIs(t, err, ErrInvalidBatch)
	require.True(t, helper.IsValidationError(err))

	require.Empty(t, testutils.Must1(s.ListKeys(ctx)))
	require.Empty(t, testutils.Must1(s.ListCertificates(ctx)))

	_, err = New(s).Reconcile(ctx, nil)
	require.ErrorIs(t, err, ErrInvalidBatch)
}

// failingStore fail PutCertificate after other writes were staged
type failingStore struct {
	store.Interface
}

func (s *failingStore) Transaction(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Interface.Transaction(ctx, func(tx store.Tx) error {
		return fn(&failingTx{Tx: tx})
	})
}

type failingTx struct {
	store.Tx
}

var errDisk = errors.New("disk full")

func (tx *failingTx) PutCertificate(ctx context.Context, cert *types.Certificate) error {
	return errDisk
}

func TestReconcileStorageFailure(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	_, err := New(&failingStore{Interface: s}).Reconcile(ctx, &types.Batch{
		Keys:         []*types.Key{newKey("k1")},
		Certificates: []*types.Certificate{newCertificate("0a")},
	})
	require.ErrorIs(t, err, ErrStorage)
	require.ErrorIs(t, err, errDisk)

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	require.NotEmpty(t, rerr.BatchID)

	require.Empty(t, testutils.Must1(s.ListKeys(ctx)), "whole batch is rolled back")
}

func TestReconcileSQL(t *testing.T) {
	testutils.ForEachSQLDriver(t, func(t *testing.T, dbURL string, reset func()) {
		ctx := context.Background()
		s := testutils.Must1(store.NewSQL(dbURL))
		defer s.Close()

		r := New(s)
		_, err := r.Reconcile(ctx, &types.Batch{Keys: []*types.Key{newKey("k1")}})
		require.NoError(t, err)

		_, err = New(&failingStore{Interface: s}).Reconcile(ctx, &types.Batch{
			Keys:         []*types.Key{newKey("k2")},
			Certificates: []*types.Certificate{newCertificate("0a")},
		})
		require.ErrorIs(t, err, ErrStorage)

		keys := testutils.Must1(s.ListKeys(ctx))
		require.Len(t, keys, 1)
		require.Equal(t, "k1", keys[0].KeyID)
	})
}

func TestReconcileNullOverwrite(t *testing.T) {
	forEachStore(t, func(t *testing.T, s store.Interface) {
		ctx := context.Background()
		r := New(s)

		rotated := newKey("k1")
		rotated.LastRotated = types.P(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
		_, err := r.Reconcile(ctx, &types.Batch{Keys: []*types.Key{rotated}})
		require.NoError(t, err)

		key := testutils.Must1(s.GetKey(ctx, "k1"))
		require.True(t, key.RotationEnabled)
		require.NotNil(t, key.LastRotated)

		disabled := newKey("k1")
		disabled.RotationEnabled = false
		disabled.LastRotated = nil
		_, err = r.Reconcile(ctx, &types.Batch{Keys: []*types.Key{disabled}})
		require.NoError(t, err)

		key = testutils.Must1(s.GetKey(ctx, "k1"))
		require.False(t, key.RotationEnabled)
		require.Nil(t, key.LastRotated)
		require.Nil(t, key.RotationIntervalDays)
	})
}

func TestReconcileConcurrent(t *testing.T) {
	const batches = 16

	forEachSerialStore(t, func(t *testing.T, s store.Interface) {
		ctx := context.Background()
		r := New(s)

		var wg sync.WaitGroup
		results := make([]*Result, batches)
		errs := make([]error, batches)
		for i := 0; i < batches; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()

				key := newKey("k1")
				key.Algorithm = fmt.Sprintf("RSA-%d", 2048+i)
				results[i], errs[i] = r.Reconcile(ctx, &types.Batch{
					Keys:         []*types.Key{key},
					Certificates: []*types.Certificate{newCertificate("0a")},
				})
			}(i)
		}
		wg.Wait()

		created, updated := 0, 0
		for i := 0; i < batches; i++ {
			require.NoError(t, errs[i])
			created += len(results[i].CreatedKeys)
			updated += len(results[i].UpdatedKeys)
		}
		require.Equal(t, 1, created, "only the first batch creates the key")
		require.Equal(t, batches-1, updated)

		keys := testutils.Must1(s.ListKeys(ctx))
		require.Len(t, keys, 1)
		require.Contains(t, keys[0].Algorithm, "RSA-20")
		require.Len(t, testutils.Must1(s.ListCertificates(ctx)), 1)
	})
}

func forEachStore(t *testing.T, testfn func(t *testing.T, s store.Interface)) {
	t.Run("memory", func(t *testing.T) { testfn(t, store.NewMemory()) })

	testutils.ForEachSQLDriver(t, func(t *testing.T, dbURL string, reset func()) {
		s := testutils.Must1(store.NewSQL(dbURL))
		defer s.Close()

		testfn(t, s)
	})
}

// forEachSerialStore stores that run whole transactions one at a time
func forEachSerialStore(t *testing.T, testfn func(t *testing.T, s store.Interface)) {
	t.Run("memory", func(t *testing.T) { testfn(t, store.NewMemory()) })

	testutils.ForOneSQLDriver(t, "sqlite", func(t *testing.T, dbURL string, reset func()) {
		s := testutils.Must1(store.NewSQL(dbURL))
		defer s.Close()

		testfn(t, s)
	})
}
