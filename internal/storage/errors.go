package storage

import (
	apperrors "github.com/consensuslabs/pavilion-mint/internal/errors"
)

// NewStorageError wraps a storage backend failure
func NewStorageError(message string, cause error) error {
	return apperrors.NewStorageError(message, cause)
}
