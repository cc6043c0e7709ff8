package store

import (
	"context"
	"sync"

	"github.com/you/go-dish-demand/internal/service"
)

// Memory keeps snapshots for the lifetime of the process.
type Memory struct {
	mu    sync.RWMutex
	snaps []service.Snapshot
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(ctx context.Context, snap service.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, snap)
	return nil
}

func (m *Memory) Latest(ctx context.Context) (service.Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.snaps) == 0 {
		return service.Snapshot{}, false, nil
	}
	return m.snaps[len(m.snaps)-1], true, nil
}
