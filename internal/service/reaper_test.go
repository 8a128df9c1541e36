package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeExpiredRowStore struct {
	tokenSweeps   atomic.Int64
	pendingSweeps atomic.Int64
	tokenErr      error
}

func (f *fakeExpiredRowStore) DeleteExpiredRefreshTokens(context.Context) (int64, error) {
	f.tokenSweeps.Add(1)
	if f.tokenErr != nil {
		return 0, f.tokenErr
	}
	return 3, nil
}

func (f *fakeExpiredRowStore) DeleteExpiredPendingUsers(context.Context) (int64, error) {
	f.pendingSweeps.Add(1)
	return 1, nil
}

func TestReaperSweepsOnTick(t *testing.T) {
	store := &fakeExpiredRowStore{}
	reaper := NewReaper(store, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reaper.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for store.tokenSweeps.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("reaper never swept twice")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop on cancel")
	}
}

// A failing token sweep must not skip the pending-user sweep.
func TestReaperSweepContinuesPastErrors(t *testing.T) {
	store := &fakeExpiredRowStore{tokenErr: errors.New("connection refused")}
	reaper := NewReaper(store, time.Hour)

	reaper.sweep(context.Background())

	if store.pendingSweeps.Load() != 1 {
		t.Fatal("pending sweep skipped after token sweep error")
	}
}
