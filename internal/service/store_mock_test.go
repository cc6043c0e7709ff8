package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

type StoreMock struct {
	mu              sync.Mutex
	snaps           []Snapshot
	errorOutMessage *string
	saveCount       *int32
	latestCount     *int32
}

func (m *StoreMock) Save(ctx context.Context, snap Snapshot) error {
	if m.saveCount != nil {
		atomic.AddInt32(m.saveCount, 1)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.errorOutMessage != nil {
		return errors.New("store: " + *m.errorOutMessage)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, snap)
	return nil
}

func (m *StoreMock) Latest(ctx context.Context) (Snapshot, bool, error) {
	if m.latestCount != nil {
		atomic.AddInt32(m.latestCount, 1)
	}
	if err := ctx.Err(); err != nil {
		return Snapshot{}, false, err
	}
	if m.errorOutMessage != nil {
		return Snapshot{}, false, errors.New("store: " + *m.errorOutMessage)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.snaps) == 0 {
		return Snapshot{}, false, nil
	}
	return m.snaps[len(m.snaps)-1], true, nil
}

func valToPtr[T any](param T) *T {
	return &param
}
