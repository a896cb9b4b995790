package models

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("duplicate record")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// ValidationError wraps the field errors of a rejected document.
type ValidationError struct {
	Entity string
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Entity + " validation failed: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// translatePgError maps driver errors of the relational store onto the package sentinels.
// A foreign key violation means the referenced user is gone and reads as ErrNotFound.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		return errors.Join(ErrDuplicate, err)
	case foreignKeyViolation:
		return errors.Join(ErrNotFound, err)
	}
	return err
}

// translateMongoError maps driver errors of the document store onto the package sentinels.
func translateMongoError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}
