package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Baaaki/campus-market/internal/storage"
)

// ErrStoreFailure is returned by MemoryStore when FailStore is set
var ErrStoreFailure = errors.New("memory store: forced failure")

// MemoryStore keeps stored files in a map. It records deletions so tests can
// assert cleanup.
type MemoryStore struct {
	mu        sync.Mutex
	next      int
	objects   map[string][]byte
	deleted   []string
	FailStore bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Store(ctx context.Context, file storage.File) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailStore {
		return "", ErrStoreFailure
	}

	data, err := io.ReadAll(file.Body)
	if err != nil {
		return "", err
	}

	m.next++
	ref := fmt.Sprintf("products/mem-%d", m.next)
	m.objects[ref] = data
	return ref, nil
}

func (m *MemoryStore) Delete(ctx context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, ref)
	m.deleted = append(m.deleted, ref)
	return nil
}

// Has reports whether ref is currently stored
func (m *MemoryStore) Has(ref string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[ref]
	return ok
}

// Len returns the number of stored objects
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Deleted returns every ref passed to Delete, in order
func (m *MemoryStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
