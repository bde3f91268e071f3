package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrGatewayUnavailable matches every failure of the remote data gateway
// (network, driver or server side).
var ErrGatewayUnavailable = errors.New("gateway unavailable")

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// GatewayError records which gateway operation failed and why
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is lets callers test for ErrGatewayUnavailable without caring about the cause
func (e *GatewayError) Is(target error) bool {
	return target == ErrGatewayUnavailable
}

func unavailable(op string, err error) error {
	return &GatewayError{Op: op, Err: err}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
