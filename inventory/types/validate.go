package types

import (
	"github.com/pkg/errors"

	"cryptohub/pkg/helper"
)

var ErrEmptyBatch = errors.New("batch is empty")

// ValidateBatch structural validation of an ingestion payload
// unknown enum tags decode to None and fail here as missing values
func ValidateBatch(b *Batch) error {
	if b == nil {
		return ErrEmptyBatch
	}

	return helper.ValidateStruct(b)
}
