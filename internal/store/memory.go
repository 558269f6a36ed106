package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/ntentasd/aggregator-api/pkg/types"
)

var _ ResultStore = (*MemoryStore)(nil)

// MemoryStore keeps records in memory with an optional JSON mirror on
// disk. The mirror is a single document mapping file_id to record,
// rewritten wholesale on every put, and reloaded on construction so a
// restarted process sees its previous records.
type MemoryStore struct {
	name string
	path string

	mu    sync.RWMutex
	items map[string]*types.ProcessingResult
}

func NewMemoryStore(name, persistencePath string) (*MemoryStore, error) {
	s := &MemoryStore{
		name:  name,
		path:  persistencePath,
		items: make(map[string]*types.ProcessingResult),
	}

	if persistencePath == "" {
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(persistencePath), 0o755); err != nil {
		return nil, err
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MemoryStore) Name() string {
	return s.name
}

func (s *MemoryStore) Put(ctx context.Context, record *types.ProcessingResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[record.FileID] = record.Clone()

	if s.path == "" {
		return nil
	}
	return s.flushLocked()
}

func (s *MemoryStore) Get(ctx context.Context, fileID string) (*types.ProcessingResult, error) {
	s.mu.RLock()
	record, ok := s.items[fileID]
	s.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{FileID: fileID}
	}
	return record.Clone(), nil
}

func (s *MemoryStore) Scan(ctx context.Context) ([]*types.ProcessingResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.ProcessingResult, 0, len(s.items))
	for _, record := range s.items {
		out = append(out, record.Clone())
	}
	return out, nil
}

func (s *MemoryStore) Close() {}

// flushLocked rewrites the whole mirror document. Callers hold s.mu.
func (s *MemoryStore) flushLocked() error {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

func (s *MemoryStore) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, &s.items)
}
