// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow the service layer to
// distinguish between failure scenarios without inspecting driver errors.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique or primary key,
// such as joining the same carpool twice.
var ErrDuplicate = errors.New("duplicate")

// ErrInvalidReference is returned when an insert references a row that does
// not exist, for example a creator id whose user row has been removed.
var ErrInvalidReference = errors.New("invalid reference")

// translate maps gorm errors onto the sentinels above.  Other errors are
// returned unchanged.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrInvalidReference
	}
	return err
}
