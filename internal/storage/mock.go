package storage

import (
	"context"
	"fmt"
	"sync"
)

// MockAdapter is an in-memory blob store used in development and tests.
// Transcode and thumbnail jobs refuse to run against it.
type MockAdapter struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string
}

// NewMock creates an empty in-memory adapter.
func NewMock() *MockAdapter {
	return &MockAdapter{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (a *MockAdapter) Kind() Kind { return KindMock }

func (a *MockAdapter) Exists(ctx context.Context, key string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.objects[key]
	return ok, nil
}

func (a *MockAdapter) GetBuffer(ctx context.Context, key string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (a *MockAdapter) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	a.objects[key] = buf
	a.types[key] = contentType
	return nil
}

// ContentType returns the content type recorded for key, if any.
func (a *MockAdapter) ContentType(key string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.types[key]
}

var _ Adapter = (*MockAdapter)(nil)
