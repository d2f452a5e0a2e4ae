package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// IsUniqueViolation reports a unique constraint failure. With a constraint
// name the Postgres error must name it; SQLite does not report index names,
// so any SQLite uniqueness failure matches.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if pgErr, ok := asPgError(err); ok {
		return pgErr.Code == pgUniqueViolation &&
			(constraintName == "" || pgErr.ConstraintName == constraintName)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return true
	}
	return strings.Contains(msg, "duplicate key value") &&
		(constraintName == "" || strings.Contains(msg, constraintName))
}

// IsForeignKeyViolation reports a restricted delete or dangling reference.
func IsForeignKeyViolation(err error) bool {
	if pgErr, ok := asPgError(err); ok {
		return pgErr.Code == pgForeignKeyViolation
	}
	return err != nil && (errors.Is(err, gorm.ErrForeignKeyViolated) ||
		strings.Contains(err.Error(), "FOREIGN KEY constraint failed"))
}

// IsCheckViolation reports a CHECK failure such as a negative copy count.
func IsCheckViolation(err error) bool {
	if pgErr, ok := asPgError(err); ok {
		return pgErr.Code == pgCheckViolation
	}
	return err != nil && (errors.Is(err, gorm.ErrCheckConstraintViolated) ||
		strings.Contains(err.Error(), "CHECK constraint failed"))
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
