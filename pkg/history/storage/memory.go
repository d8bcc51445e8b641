package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tensorzero/tensorzero-go/pkg/history"
)

// MemoryStore implements the history.Store interface using an in-memory map.
// It is intended for tests and for embedders that want journaling without
// persistence.
type MemoryStore struct {
	records map[string]*history.Record
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory journal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*history.Record),
	}
}

// Append persists a journal record in memory.
func (s *MemoryStore) Append(ctx context.Context, record *history.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	s.records[record.ID] = &recordCopy

	return nil
}

// Query retrieves journal records matching the query filters.
func (s *MemoryStore) Query(ctx context.Context, query *history.Query) ([]*history.Record, error) {
	matched, err := s.collect(query)
	if err != nil {
		return nil, err
	}
	return paginate(matched, query), nil
}

// QueryStream streams matching records over a channel. Both channels are
// closed when the query completes or fails.
func (s *MemoryStore) QueryStream(ctx context.Context, query *history.Query) (<-chan *history.Record, <-chan error, error) {
	matched, err := s.collect(query)
	if err != nil {
		return nil, nil, err
	}
	matched = paginate(matched, query)

	recordsCh := make(chan *history.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		for _, record := range matched {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of journal records matching the query filters.
func (s *MemoryStore) Count(ctx context.Context, query *history.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}

	return count, nil
}

// Delete removes journal records matching the query filters.
// Returns the number of records deleted.
func (s *MemoryStore) Delete(ctx context.Context, query *history.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64

	toDelete := []string{}
	for id, record := range s.records {
		if matchesQuery(record, query) {
			toDelete = append(toDelete, id)
		}
	}

	for _, id := range toDelete {
		delete(s.records, id)
		deleted++
	}

	return deleted, nil
}

// Close releases resources held by the store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*history.Record)
	return nil
}

// collect returns copies of all matching records, sorted per the query.
func (s *MemoryStore) collect(query *history.Query) ([]*history.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*history.Record
	for _, record := range s.records {
		if matchesQuery(record, query) {
			recordCopy := *record
			matched = append(matched, &recordCopy)
		}
	}

	if err := sortRecords(matched, query); err != nil {
		return nil, err
	}

	return matched, nil
}

// sortRecords orders records the way the SQLite store would, so the two
// backends paginate identically.
func sortRecords(records []*history.Record, query *history.Query) error {
	sortBy := "started_at"
	if query.SortBy != "" {
		if !history.ValidSortFields[query.SortBy] {
			return history.NewQueryError(query, fmt.Errorf("invalid sort field: %s", query.SortBy))
		}
		sortBy = query.SortBy
	}
	descending := true
	switch query.SortOrder {
	case "", "desc":
	case "asc":
		descending = false
	default:
		return history.NewQueryError(query, fmt.Errorf("invalid sort order: %s", query.SortOrder))
	}

	less := func(a, b *history.Record) bool {
		switch sortBy {
		case "recorded_at":
			return a.RecordedAt.Before(b.RecordedAt)
		case "duration_ms":
			return a.Duration < b.Duration
		default:
			return a.StartedAt.Before(b.StartedAt)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if descending {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})

	return nil
}

// paginate applies offset and limit the way the SQLite store does.
func paginate(records []*history.Record, query *history.Query) []*history.Record {
	start := query.Offset
	if start > len(records) {
		return []*history.Record{}
	}

	limit := history.DefaultLimit
	if query.Limit > 0 {
		limit = query.Limit
	}

	end := start + limit
	if end > len(records) {
		end = len(records)
	}

	return records[start:end]
}

// matchesQuery checks if a record matches the query filters.
func matchesQuery(record *history.Record, query *history.Query) bool {
	if query.StartTime != nil && record.StartedAt.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.StartedAt.After(*query.EndTime) {
		return false
	}

	if query.Kind != "" && record.Kind != query.Kind {
		return false
	}

	if query.FunctionName != "" && record.FunctionName != query.FunctionName {
		return false
	}
	if query.VariantName != "" && record.VariantName != query.VariantName {
		return false
	}
	if query.Model != "" && record.Model != query.Model {
		return false
	}
	if query.EpisodeID != "" && record.EpisodeID != query.EpisodeID {
		return false
	}

	if query.Status != "" && record.Status != query.Status {
		return false
	}

	return true
}

// Clear removes all records from the store (for testing).
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*history.Record)
}

// GetByID retrieves a single record by ID (for testing).
func (s *MemoryStore) GetByID(id string) *history.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil
	}

	recordCopy := *record
	return &recordCopy
}

// Size returns the number of records in the store (for testing).
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}
