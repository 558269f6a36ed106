package blob

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

var _ Bucket = (*MemoryBucket)(nil)

// MemoryBucket is an in-memory bucket with an optional on-disk mirror.
// When a root path is configured, objects written before a restart are
// readable again: Get and Open fall back to the mirror for keys that
// are not resident.
type MemoryBucket struct {
	name string
	root string

	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryBucket(name, rootPath string) (*MemoryBucket, error) {
	if rootPath != "" {
		if err := os.MkdirAll(rootPath, 0o755); err != nil {
			return nil, err
		}
	}
	return &MemoryBucket{
		name:    name,
		root:    rootPath,
		objects: make(map[string][]byte),
	}, nil
}

func (b *MemoryBucket) Name() string {
	return b.name
}

func (b *MemoryBucket) Put(ctx context.Context, key string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)

	b.mu.Lock()
	b.objects[key] = stored
	b.mu.Unlock()

	if b.root == "" {
		return nil
	}

	path := b.diskPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (b *MemoryBucket) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	data, ok := b.objects[key]
	b.mu.RUnlock()
	if ok {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}

	if b.root != "" {
		data, err := os.ReadFile(b.diskPath(key))
		if err == nil {
			return data, nil
		}
	}

	return nil, &NotFoundError{Key: key}
}

// Open prefers the disk mirror so processing streams from a file handle
// instead of a resident copy.
func (b *MemoryBucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if b.root != "" {
		f, err := os.Open(b.diskPath(key))
		if err == nil {
			return f, nil
		}
	}

	b.mu.RLock()
	data, ok := b.objects[key]
	b.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Key: key}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *MemoryBucket) List(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	b.mu.RUnlock()

	sort.Strings(keys)
	return keys, nil
}

func (b *MemoryBucket) diskPath(key string) string {
	return filepath.Join(b.root, filepath.FromSlash(key))
}
