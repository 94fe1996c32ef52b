package store

import (
	"context"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/fx"
	"github.com/whitekid/goxp/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"cryptohub/inventory/store/models"
	"cryptohub/inventory/types"
	"cryptohub/pkg/helper/gormx"
)

// sqlStoreImpl store inventory to SQL Server
type sqlStoreImpl struct {
	db *gorm.DB
}

var _ Interface = (*sqlStoreImpl)(nil)

// NewSQL create new SQL store and migrate schema
func NewSQL(dburl string) (Interface, error) {
	db, err := gormx.Open(dburl, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: "cryptohub_",
		},
	})
	if err != nil {
		return nil, err
	}

	if err := models.Migrate(db); err != nil {
		return nil, err
	}

	return &sqlStoreImpl{db: db}, nil
}

func (s *sqlStoreImpl) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *sqlStoreImpl) ListKeys(ctx context.Context) ([]*types.Key, error) {
	var results []*models.Key
	if tx := s.db.WithContext(ctx).Order("key_id").Find(&results); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "ListKeys() failed")
	}

	return fx.Map(results, keyFromModel), nil
}

func (s *sqlStoreImpl) ListCertificates(ctx context.Context) ([]*types.Certificate, error) {
	var results []*models.Certificate
	if tx := s.db.WithContext(ctx).Order("serial_number").Find(&results); tx.Error != nil {
		return nil, errors.Wrap(gormx.ConvertSQLError(tx.Error), "ListCertificates() failed")
	}

	return fx.Map(results, certificateFromModel), nil
}

func (s *sqlStoreImpl) GetKey(ctx context.Context, keyID string) (*types.Key, error) {
	return (&sqlTx{db: s.db.WithContext(ctx)}).GetKey(ctx, keyID)
}

func (s *sqlStoreImpl) GetCertificate(ctx context.Context, serialNumber string) (*types.Certificate, error) {
	return (&sqlTx{db: s.db.WithContext(ctx)}).GetCertificate(ctx, serialNumber)
}

func (s *sqlStoreImpl) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&sqlTx{db: db, locking: !gormx.IsSQLite(db)})
	})
}

type sqlTx struct {
	db      *gorm.DB
	locking bool // SELECT ... FOR UPDATE inside transactions
}

var _ Tx = (*sqlTx)(nil)

func (tx *sqlTx) query() *gorm.DB {
	if tx.locking {
		return tx.db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx.db
}

func (tx *sqlTx) GetKey(ctx context.Context, keyID string) (*types.Key, error) {
	log.Debugf("GetKey(): key=%s", keyID)

	var m models.Key
	if r := tx.query().Where("key_id = ?", keyID).Take(&m); r.Error != nil {
		if errors.Is(r.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(gormx.ConvertSQLError(r.Error), "GetKey() failed")
	}

	return keyFromModel(&m), nil
}

// PutKey insert or replace every column except created_at
func (tx *sqlTx) PutKey(ctx context.Context, key *types.Key) error {
	log.Debugf("PutKey(): key=%s", key.KeyID)

	m := keyToModel(key.Clone().Canonicalize())
	if r := tx.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(m); r.Error != nil {
		return errors.Wrap(gormx.ConvertSQLError(r.Error), "PutKey() failed")
	}

	return nil
}

func (tx *sqlTx) GetCertificate(ctx context.Context, serialNumber string) (*types.Certificate, error) {
	log.Debugf("GetCertificate(): serial=%s", serialNumber)

	var m models.Certificate
	if r := tx.query().Where("serial_number = ?", serialNumber).Take(&m); r.Error != nil {
		if errors.Is(r.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(gormx.ConvertSQLError(r.Error), "GetCertificate() failed")
	}

	return certificateFromModel(&m), nil
}

func (tx *sqlTx) PutCertificate(ctx context.Context, cert *types.Certificate) error {
	log.Debugf("PutCertificate(): serial=%s", cert.SerialNumber)

	m := certificateToModel(cert.Clone().Canonicalize())
	if r := tx.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(m); r.Error != nil {
		return errors.Wrap(gormx.ConvertSQLError(r.Error), "PutCertificate() failed")
	}

	return nil
}

func keyToModel(k *types.Key) *models.Key {
	return &models.Key{
		KeyID:                k.KeyID,
		Name:                 k.Name,
		Environment:          k.Environment.String(),
		KeyType:              k.KeyType,
		Algorithm:            k.Algorithm,
		State:                k.State.String(),
		CreationDate:         k.CreationDate,
		RotationEnabled:      k.RotationEnabled,
		RotationIntervalDays: k.RotationIntervalDays,
		LastRotated:          k.LastRotated,
		ExpiryDate:           k.ExpiryDate,
		CustomerManaged:      k.CustomerManaged,
		Usage:                k.Usage,
		LastAccessed:         k.LastAccessed,
	}
}

func keyFromModel(m *models.Key) *types.Key {
	return &types.Key{
		KeyID:                m.KeyID,
		Name:                 m.Name,
		Environment:          types.StrToEnvironment(m.Environment),
		KeyType:              m.KeyType,
		Algorithm:            m.Algorithm,
		State:                types.StrToKeyState(m.State),
		CreationDate:         m.CreationDate,
		RotationEnabled:      m.RotationEnabled,
		RotationIntervalDays: m.RotationIntervalDays,
		LastRotated:          m.LastRotated,
		ExpiryDate:           m.ExpiryDate,
		CustomerManaged:      m.CustomerManaged,
		Usage:                m.Usage,
		LastAccessed:         m.LastAccessed,
	}
}

func certificateToModel(c *types.Certificate) *models.Certificate {
	return &models.Certificate{
		SerialNumber:       c.SerialNumber,
		CommonName:         c.CommonName,
		SANEntries:         c.SANEntries,
		Issuer:             c.Issuer,
		SignatureAlgorithm: c.SignatureAlgorithm,
		KeySize:            c.KeySize,
		ValidFrom:          c.ValidFrom,
		ValidTo:            c.ValidTo,
		ChainStatus:        c.ChainStatus.String(),
		Source:             c.Source,
		IssuanceType:       c.IssuanceType,
		AssociatedAsset:    c.AssociatedAsset,
	}
}

func certificateFromModel(m *models.Certificate) *types.Certificate {
	return (&types.Certificate{
		SerialNumber:       m.SerialNumber,
		CommonName:         m.CommonName,
		SANEntries:         m.SANEntries,
		Issuer:             m.Issuer,
		SignatureAlgorithm: m.SignatureAlgorithm,
		KeySize:            m.KeySize,
		ValidFrom:          m.ValidFrom,
		ValidTo:            m.ValidTo,
		ChainStatus:        types.StrToChainStatus(m.ChainStatus),
		Source:             m.Source,
		IssuanceType:       m.IssuanceType,
		AssociatedAsset:    m.AssociatedAsset,
	}).Canonicalize()
}
