// Package repository holds the gorm-backed implementations of the domain
// repository interfaces. All uniqueness guarantees live here as database
// constraints; the services never rely on read-then-write checks.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// isDuplicateKey reports whether err is a unique-constraint violation,
// via gorm's error translation or the raw postgres error code.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
