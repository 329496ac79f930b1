package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"biogate/internal/sentinel"
)

// unavailable wraps a driver failure so errors.Is(err, sentinel.ErrUnavailable)
// holds while the cause stays inspectable.
func unavailable(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w: sqlstate %s (%s): %w", op, sentinel.ErrUnavailable, pgErr.Code, pgClass(pgErr.Code), err)
	}
	return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
}

// pgClass names the SQLSTATE class for log context.
func pgClass(code string) string {
	if len(code) < 2 {
		return "unknown"
	}
	switch code[:2] {
	case "08":
		return "connection exception"
	case "23":
		return "integrity constraint violation"
	case "40":
		return "transaction rollback"
	case "53":
		return "insufficient resources"
	case "57":
		return "operator intervention"
	case "42":
		return "syntax error or access rule violation"
	default:
		return "class " + code[:2]
	}
}
