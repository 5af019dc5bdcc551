package blobstore

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/domain/documents"
)

// Object is a stored blob.
type Object struct {
	Data        []byte
	ContentType string
}

// Memory is an in-process blob store for local runs and tests.
// Signed links use the memory:// scheme and carry their expiry.
type Memory struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]Object
	now     func() time.Time
}

var _ documents.BlobStore = (*Memory)(nil)

func NewMemory(bucket string) *Memory {
	return &Memory{
		bucket:  bucket,
		objects: make(map[string]Object),
		now:     time.Now,
	}
}

func (m *Memory) Upload(_ context.Context, path string, data []byte, contentType string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("memory blob: empty path")
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.objects[path] = Object{Data: buf, ContentType: contentType}
	m.mu.Unlock()
	return path, nil
}

func (m *Memory) SignedURL(_ context.Context, ref string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[ref]
	m.mu.RUnlock()
	if !ok {
		return "", apperror.NewNotFound("blob", ref)
	}
	u := url.URL{
		Scheme:   "memory",
		Host:     m.bucket,
		Path:     "/" + ref,
		RawQuery: url.Values{"expires": {m.now().Add(ttl).UTC().Format(time.RFC3339)}}.Encode(),
	}
	return u.String(), nil
}

func (m *Memory) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	delete(m.objects, ref)
	m.mu.Unlock()
	return nil
}

// Get returns a stored object.
func (m *Memory) Get(ref string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[ref]
	return o, ok
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
