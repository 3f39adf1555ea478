// Package service implements the application's business operations on
// top of the store and the search index. Store-level failures never
// cross this boundary raw; they are translated into domain errors here.
package service

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	domainerrors "github.com/pmemoapp/pmemo-server/internal/errors"
)

// storeFailure translates an unexpected storage error into a domain
// error. Cancellation, a closed or write-blocked database and a lost
// transaction conflict are transient and reported as unavailable, so
// callers may retry; everything else is internal.
func storeFailure(err error) error {
	switch {
	case domainerrors.Is(err, context.DeadlineExceeded),
		domainerrors.Is(err, context.Canceled),
		domainerrors.Is(err, badger.ErrDBClosed),
		domainerrors.Is(err, badger.ErrBlockedWrites),
		domainerrors.Is(err, badger.ErrConflict):
		return domainerrors.Unavailable("storage temporarily unavailable").WithCause(err)
	default:
		return domainerrors.Internal("storage operation failed").WithCause(err)
	}
}
