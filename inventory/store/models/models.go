package models

import (
	"time"

	"cryptohub/pkg/helper/gormx"
)

type Key struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	KeyID                string  `gorm:"primaryKey;size:512" validate:"required"`
	Name                 *string `gorm:"size:256"`
	Environment          string  `gorm:"size:16;index;not null"`
	KeyType              string  `gorm:"size:64;not null"`
	Algorithm            string  `gorm:"size:64;not null"`
	State                string  `gorm:"size:32;not null"`
	CreationDate         *time.Time
	RotationEnabled      bool
	RotationIntervalDays *int
	LastRotated          *time.Time
	ExpiryDate           *time.Time
	CustomerManaged      bool
	Usage                *string `gorm:"size:64"`
	LastAccessed         *time.Time
}

type Certificate struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	SerialNumber       string        `gorm:"primaryKey;size:512" validate:"required"`
	CommonName         string        `gorm:"size:256;index;not null"`
	SANEntries         gormx.Strings `gorm:"type:text"`
	Issuer             string        `gorm:"size:512;not null"`
	SignatureAlgorithm string        `gorm:"size:64;not null"`
	KeySize            int
	ValidFrom          time.Time `gorm:"not null"`
	ValidTo            time.Time `gorm:"index;not null"`
	ChainStatus        string    `gorm:"size:32;not null"`
	Source             string    `gorm:"size:64;not null"`
	IssuanceType       string    `gorm:"size:32;not null"`
	AssociatedAsset    *string   `gorm:"size:512"`
}
