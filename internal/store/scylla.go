package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/ntentasd/aggregator-api/pkg/types"
)

var _ ResultStore = (*ScyllaStore)(nil)

// ScyllaStore persists records in a Scylla table, one row per file_id
// with the record serialized as JSON. Selected when SCYLLA_NODES is
// configured.
type ScyllaStore struct {
	session *gocql.Session
	table   string
}

func NewScyllaStore(nodes []string, keyspace, table string) (*ScyllaStore, error) {
	cluster := gocql.NewCluster(nodes...)
	cluster.Keyspace = keyspace
	cluster.Timeout = 2 * time.Second

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("unable to connect: %w", err)
	}

	return &ScyllaStore{
		session: session,
		table:   table,
	}, nil
}

func (s *ScyllaStore) Put(ctx context.Context, record *types.ProcessingResult) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	query := fmt.Sprintf(`
INSERT INTO %s (file_id, record)
VALUES (?, ?)
`, s.table)

	return s.session.Query(query, record.FileID, string(payload)).
		WithContext(ctx).
		Exec()
}

func (s *ScyllaStore) Get(ctx context.Context, fileID string) (*types.ProcessingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	query := fmt.Sprintf(`
SELECT record
FROM %s
WHERE file_id = ?
`, s.table)

	var payload string
	err := s.session.Query(query, fileID).WithContext(ctx).Scan(&payload)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, &NotFoundError{FileID: fileID}
		}
		return nil, err
	}

	var record types.ProcessingResult
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &record, nil
}

func (s *ScyllaStore) Scan(ctx context.Context) ([]*types.ProcessingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := fmt.Sprintf(`
SELECT record
FROM %s
`, s.table)

	iter := s.session.Query(query).WithContext(ctx).Iter()

	var out []*types.ProcessingResult
	var payload string
	for iter.Scan(&payload) {
		var record types.ProcessingResult
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			iter.Close()
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		out = append(out, &record)
	}

	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ScyllaStore) Close() {
	if s.session != nil {
		s.session.Close()
	}
}
