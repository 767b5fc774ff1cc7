package lock

import (
	"context"
	"fmt"
	"hash/fnv"

	"curriculum/internal/shared/db"
)

const advisoryNamespace = "course_import"

// AdvisoryLocker takes a PostgreSQL transaction-level advisory lock. The lock
// is released by commit or rollback, so it has to be the first statement of
// the import transaction.
type AdvisoryLocker struct{}

// NewAdvisoryLocker creates a PostgreSQL advisory locker.
func NewAdvisoryLocker() *AdvisoryLocker {
	return &AdvisoryLocker{}
}

// Lock blocks inside the transaction carried by ctx until key is free.
func (l *AdvisoryLocker) Lock(ctx context.Context, key string) (Release, error) {
	if !db.InTransaction(ctx) {
		return nil, ErrNotInTransaction
	}
	tx := db.GetTxFromContext(ctx, nil)
	if err := tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", advisoryKey64(advisoryNamespace, key)).Error; err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to acquire advisory lock: %w", err)
	}
	return func() {}, nil
}

// TransactionScoped reports true.
func (l *AdvisoryLocker) TransactionScoped() bool {
	return true
}

func advisoryKey64(namespace, key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(namespace))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64())
}
