package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind is the closed set of failures a store operation can report.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindNotActive
	KindAlreadyExists
	KindBadForeignKey
	KindIntegrity
	KindDatabase
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindNotActive:
		return "not_active"
	case KindAlreadyExists:
		return "already_exists"
	case KindBadForeignKey:
		return "bad_foreign_key"
	case KindIntegrity:
		return "integrity"
	case KindDatabase:
		return "database"
	default:
		return "unknown"
	}
}

// Error is returned by every Store operation that fails.
type Error struct {
	Kind   Kind
	Table  string
	ID     int64
	Field  string
	Detail any
	Err    error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindNotFound:
		msg = fmt.Sprintf("record with id %d not found in %s", e.ID, e.Table)
	case KindNotActive:
		msg = fmt.Sprintf("record with id %d in %s is not active", e.ID, e.Table)
	case KindAlreadyExists:
		msg = fmt.Sprintf("record already exists in %s", e.Table)
	case KindBadForeignKey:
		msg = fmt.Sprintf("%s %d does not reference an active record", e.Field, e.ID)
	case KindIntegrity:
		msg = fmt.Sprintf("integrity violation on %s", e.Table)
	default:
		msg = fmt.Sprintf("database error on %s", e.Table)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Kind so callers can write
// errors.Is(err, storage.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Table == "" && t.ID == 0
}

var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrNotActive     = &Error{Kind: KindNotActive}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists}
	ErrBadForeignKey = &Error{Kind: KindBadForeignKey}
	ErrIntegrity     = &Error{Kind: KindIntegrity}
	ErrDatabase      = &Error{Kind: KindDatabase}
)

// KindOf reports the Kind carried by err, or 0 when err is not a storage error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func NotFound(table string, id int64) error {
	return &Error{Kind: KindNotFound, Table: table, ID: id}
}

func NotActive(table string, id int64) error {
	return &Error{Kind: KindNotActive, Table: table, ID: id}
}

func BadForeignKey(field string, id int64) error {
	return &Error{Kind: KindBadForeignKey, Field: field, ID: id}
}

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateNotNullViolation    = "23502"
	sqlStateCheckViolation      = "23514"
	sqlStateStringTooLong       = "22001"
)

// Classify is classify for queries that do not go through a Store.
func Classify(err error, table string) error {
	return classify(err, table, nil)
}

// classify turns a driver error into a storage Error. detail is attached
// verbatim so the HTTP layer can echo the offending data back.
func classify(err error, table string, detail any) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Kind: KindNotFound, Table: table, Detail: detail, Err: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &Error{Kind: KindAlreadyExists, Table: table, Detail: detail, Err: err}
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return &Error{Kind: KindIntegrity, Table: table, Detail: detail, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation:
			return &Error{Kind: KindAlreadyExists, Table: table, Field: pgErr.ConstraintName, Detail: detail, Err: err}
		case sqlStateForeignKeyViolation, sqlStateNotNullViolation, sqlStateCheckViolation, sqlStateStringTooLong:
			return &Error{Kind: KindIntegrity, Table: table, Field: pgErr.ConstraintName, Detail: detail, Err: err}
		}
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "duplicate key value"), strings.Contains(errMsg, "unique constraint failed"):
		return &Error{Kind: KindAlreadyExists, Table: table, Detail: detail, Err: err}
	case strings.Contains(errMsg, "foreign key constraint"),
		strings.Contains(errMsg, "not null constraint"),
		strings.Contains(errMsg, "check constraint"):
		return &Error{Kind: KindIntegrity, Table: table, Detail: detail, Err: err}
	}

	return &Error{Kind: KindDatabase, Table: table, Detail: detail, Err: err}
}
