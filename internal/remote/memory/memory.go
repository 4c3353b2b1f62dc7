// Package memory provides an in-memory remote store. It is the default
// backend for local development and the double used by sync tests; it
// honors the same idempotent-upsert contract as the real endpoint.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"trackrise/internal/remote"
)

type Store struct {
	mu      sync.Mutex
	records map[string]remote.Record

	// FailIDs lists ids whose upsert fails with FailErr; used to exercise
	// partial-failure behavior.
	FailIDs map[string]bool
	FailErr error
}

func New() *Store {
	return &Store{
		records: make(map[string]remote.Record),
		FailIDs: make(map[string]bool),
	}
}

func (s *Store) Upsert(ctx context.Context, rec remote.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailIDs[rec.ID] && s.FailErr != nil {
		return s.FailErr
	}
	s.records[rec.ID] = rec
	return nil
}

func (s *Store) FetchDelta(ctx context.Context, since time.Time) ([]remote.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []remote.Record
	for _, rec := range s.records {
		if rec.UpdatedAt.After(since) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Get returns a stored record by id.
func (s *Store) Get(id string) (remote.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	return rec, ok
}

// Seed stores records directly, bypassing the failure hooks.
func (s *Store) Seed(recs ...remote.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range recs {
		s.records[rec.ID] = rec
	}
}
