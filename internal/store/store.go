// Package store abstracts the content store so the upload orchestrator can
// be tested without a network dependency.
package store

import (
	"context"
	"fmt"
	"sync"
)

// FileContent is the result of reading a file. SHA is the revision token a
// later update of the same path must present.
type FileContent struct {
	Content []byte
	SHA     string
}

// ContentStore wraps remote read/write of content files. Get returns
// (nil, nil) for a path that does not exist: absence is a distinguishable
// result, not an error. Put creates or updates; updating requires the
// revision token from a prior read, which implementations resolve
// internally.
type ContentStore interface {
	Get(ctx context.Context, path string) (*FileContent, error)
	Put(ctx context.Context, path string, content []byte, message string) error
}

// RemoteError is any non-2xx, non-404 response from the remote content API.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("content store error: status %d: %s", e.Status, e.Body)
}

// Memory is an in-memory ContentStore used in tests and local tooling.
type Memory struct {
	mu    sync.Mutex
	files map[string][]byte
	rev   int
}

func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, path string) (*FileContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[path]
	if !ok {
		return nil, nil
	}
	return &FileContent{
		Content: append([]byte(nil), content...),
		SHA:     fmt.Sprintf("rev-%d", m.rev),
	}, nil
}

func (m *Memory) Put(ctx context.Context, path string, content []byte, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = append([]byte(nil), content...)
	m.rev++
	return nil
}

// Paths returns the stored paths, for test assertions.
func (m *Memory) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	return paths
}
