package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"yamdb/internal/apperr"
)

const pgUniqueViolation = "23505"

var gormNotFound = gorm.ErrRecordNotFound

// translateError maps driver and gorm errors onto the apperr sentinels.
func translateError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(what)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", what, apperr.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	// sqlite without an error translator
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
