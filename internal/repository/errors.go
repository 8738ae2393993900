package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Repository-level sentinel errors. Services map anything that is neither
// ErrNotFound nor ErrDuplicate to a directory/storage-unavailable condition.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// translate converts GORM errors into the package sentinels so callers never
// depend on the storage technology.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
