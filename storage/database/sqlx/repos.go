// Package sqlxrepos implements the core repositories on PostgreSQL with
// hand-written SQL via sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/ChristopherDeLaRosa/academia/core"
)

// trapErr maps storage errors to the core taxonomy: "no rows" to the entity's
// not-found sentinel and context expiry to a retryable UnavailableError.
func trapErr(err error, notFound error, msg string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return notFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return core.NewUnavailableError(err)
	default:
		return errors.Wrap(err, msg)
	}
}

// trapExecErr is trapErr for statements where "no rows" cannot happen.
func trapExecErr(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return core.NewUnavailableError(err)
	}
	return errors.Wrap(err, msg)
}
