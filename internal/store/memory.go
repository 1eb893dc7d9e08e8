package store

import (
	"errors"
	"sync"

	"clickforge/internal/game"
)

// Memory is a KV backend with no durability. Dev mode and tests.
type Memory struct {
	mu        sync.Mutex
	data      map[string]string
	purchases []game.PurchaseRecord

	// FailWrites makes every Set/Delete fail, to exercise the
	// absorbed-storage-error path.
	FailWrites bool
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return errors.New("write disabled")
	}
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return errors.New("write disabled")
	}
	delete(m.data, key)
	return nil
}

func (m *Memory) LogPurchase(rec game.PurchaseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purchases = append(m.purchases, rec)
	return nil
}

// Purchases returns the recorded audit entries.
func (m *Memory) Purchases() []game.PurchaseRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]game.PurchaseRecord, len(m.purchases))
	copy(out, m.purchases)
	return out
}
