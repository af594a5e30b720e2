// Package storagetest provides an in-memory blob store for tests.
package storagetest

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrInjected is returned by the failure switches
var ErrInjected = errors.New("injected storage failure")

// Memory is an in-memory storage.Blob
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	FailUpload bool
	FailRemove bool
}

// NewMemory returns an empty store
func NewMemory() *Memory {
	return &Memory{objects: map[string][]byte{}, types: map[string]string{}}
}

func objectName(bucket, key string) string {
	return bucket + "/" + key
}

func (m *Memory) Upload(_ context.Context, bucket, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailUpload {
		return ErrInjected
	}
	name := objectName(bucket, key)
	m.objects[name] = append([]byte(nil), data...)
	m.types[name] = contentType
	return nil
}

func (m *Memory) PublicURL(bucket, key string) string {
	return "https://blobs.test/" + objectName(bucket, key)
}

func (m *Memory) Remove(_ context.Context, bucket string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailRemove {
		return ErrInjected
	}
	for _, k := range keys {
		delete(m.objects, objectName(bucket, k))
		delete(m.types, objectName(bucket, k))
	}
	return nil
}

// Get returns a stored object
func (m *Memory) Get(bucket, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[objectName(bucket, key)]
	return data, ok
}

// ContentType returns the content type an object was stored with
func (m *Memory) ContentType(bucket, key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.types[objectName(bucket, key)]
}

// Keys lists "bucket/key" names in sorted order
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
