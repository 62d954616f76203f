package service

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// UserLocks serializes read-modify-write work on one user's game state.
// Acquire honors context cancellation while waiting.
type UserLocks struct {
	locks sync.Map // user id -> *semaphore.Weighted
}

func NewUserLocks() *UserLocks {
	return &UserLocks{}
}

func (l *UserLocks) Acquire(ctx context.Context, userID string) (func(), error) {
	v, _ := l.locks.LoadOrStore(userID, semaphore.NewWeighted(1))
	sem := v.(*semaphore.Weighted)
	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { sem.Release(1) }, nil
}
