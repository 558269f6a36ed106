// Package events publishes terminal processing results so downstream
// consumers can react without polling the query API.
package events

import (
	"github.com/ntentasd/aggregator-api/pkg/types"
)

// Publisher emits one event per terminal record. Publishing is
// best-effort: a failed publish never fails the job that produced the
// record.
type Publisher interface {
	PublishResult(record *types.ProcessingResult) error
	Close() error
}

var _ Publisher = (*Noop)(nil)

// Noop is used when no broker is configured.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) PublishResult(record *types.ProcessingResult) error {
	return nil
}

func (n *Noop) Close() error {
	return nil
}
