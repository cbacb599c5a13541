package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes with a mapping
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgTruncation          = "22001"
	pgInvalidText         = "22P02"
	pgSerialization       = "40001"
	pgDeadlock            = "40P01"
	pgLockNotAvailable    = "55P03"
	pgReadOnly            = "25006"
	pgCannotConnectNow    = "57P03"
)

var pgCodes = map[string]ErrorCode{
	pgUniqueViolation:     ErrorCodeDuplicateKey,
	pgForeignKeyViolation: ErrorCodeInvalidArgument,
	pgTruncation:          ErrorCodeInvalidArgument,
	pgInvalidText:         ErrorCodeInvalidArgument,
	pgNotNullViolation:    ErrorCodeValidation,
	pgCheckViolation:      ErrorCodeValidation,
	pgReadOnly:            ErrorCodeUnavailable,
	pgCannotConnectNow:    ErrorCodeUnavailable,
	pgLockNotAvailable:    ErrorCodeUnavailable,
}

// retryable statements abort on these; rerunning the tx may succeed
var pgRetryable = map[string]bool{
	pgSerialization:    true,
	pgDeadlock:         true,
	pgLockNotAvailable: true,
}

// pgx reports some aborts only as text, notably on commit
var retryableText = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"canceling statement due to lock timeout",
	"could not obtain lock on row",
}

// PgError returns the *pgconn.PgError in err's chain
func PgError(err error) (*pgconn.PgError, bool) {
	var pg *pgconn.PgError
	if stderrs.As(err, &pg) {
		return pg, true
	}
	return nil, false
}

// IsSQLState reports whether err is a postgres error with code
func IsSQLState(err error, code string) bool {
	pg, ok := PgError(err)
	return ok && pg.Code == code
}

// FromPostgres wraps err with a code derived from its SQLSTATE. Non-postgres
// errors become ErrorCodeDB; nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code := ErrorCodeDB
	if pg, ok := PgError(err); ok {
		if c, ok := pgCodes[pg.Code]; ok {
			code = c
		}
		if pg.ColumnName != "" && code == ErrorCodeValidation {
			return &Error{code: code, msg: msg, field: pg.ColumnName, cause: err}
		}
	}
	return Wrap(err, code, msg)
}

// IsRetryable reports whether a transaction that failed with err is worth
// rerunning. Context cancellation never is
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pg, ok := PgError(err); ok {
		return pgRetryable[pg.Code]
	}
	s := strings.ToLower(Root(err).Error())
	for _, t := range retryableText {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
