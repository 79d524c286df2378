package vectorstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
	"codeberg.org/hhbot/vectorstore/internal/logger"
)

// MemoryStore is a brute-force in-process backend for tests and local runs.
// Search is exact; CreateIndex only validates and records the options.
type MemoryStore struct {
	mu      sync.RWMutex
	table   string
	dims    int
	records []Record
	index   *IndexOptions
	ready   atomic.Bool
}

func NewMemoryStore(table string, dims int) *MemoryStore {
	if table == "" {
		table = DefaultTable
	}

	return &MemoryStore{table: table, dims: dims}
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) Ready() bool {
	return s.ready.Load()
}

func (s *MemoryStore) Dimensions() int {
	return s.dims
}

func (s *MemoryStore) TableName() string {
	return s.table
}

func (s *MemoryStore) EnsureTable(ctx context.Context) error {
	columns, err := s.Schema(ctx)
	if err != nil {
		return err
	}

	if err := VerifySchema(s.table, Definition(s.dims), columns); err != nil {
		return err
	}

	s.ready.Store(true)

	return nil
}

func (s *MemoryStore) Schema(context.Context) ([]Column, error) {
	return Definition(s.dims), nil
}

func (s *MemoryStore) Add(_ context.Context, rec Record) error {
	if err := validateRecord(rec, s.dims); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, cloneRecord(prepareRecord(rec, now())))

	return nil
}

func (s *MemoryStore) AddBatch(_ context.Context, recs []Record) error {
	for i, rec := range recs {
		if err := validateRecord(rec, s.dims); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	ts := now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range recs {
		s.records = append(s.records, cloneRecord(prepareRecord(rec, ts)))
	}

	return nil
}

func (s *MemoryStore) Upsert(_ context.Context, rec Record) error {
	if err := validateRecord(rec, s.dims); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsertLocked(rec, now())

	return nil
}

// validates every record before writing any of them
func (s *MemoryStore) UpsertBatch(_ context.Context, recs []Record) error {
	for i, rec := range recs {
		if err := validateRecord(rec, s.dims); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	ts := now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range recs {
		s.upsertLocked(rec, ts)
	}

	return nil
}

func (s *MemoryStore) upsertLocked(rec Record, ts time.Time) {
	if i := s.find(rec.ID); i >= 0 {
		rec.CreatedAt = s.records[i].CreatedAt
		rec.UpdatedAt = ts
		s.remove(rec.ID)
	}

	s.records = append(s.records, cloneRecord(prepareRecord(rec, ts)))
}

func (s *MemoryStore) GetRecord(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.find(id)
	if i < 0 {
		return nil, nil
	}

	rec := cloneRecord(s.records[i])

	return &rec, nil
}

func (s *MemoryStore) UpdateRecord(_ context.Context, id string, update RecordUpdate) (*Record, error) {
	if update.Embedding != nil && len(update.Embedding) != s.dims {
		return nil, apperrors.DimensionMismatch("embedding", s.dims, len(update.Embedding))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(id)
	if i < 0 {
		return nil, apperrors.NotFound("record", id)
	}

	updated := cloneRecord(mergeUpdate(s.records[i], update, now()))
	if err := validateRecord(updated, s.dims); err != nil {
		return nil, err
	}

	s.remove(id)
	s.records = append(s.records, updated)

	out := cloneRecord(updated)

	return &out, nil
}

func (s *MemoryStore) DeleteRecord(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(id)

	return nil
}

func (s *MemoryStore) Search(_ context.Context, vector []float32, limit int) ([]Result, error) {
	if len(vector) != s.dims {
		return nil, apperrors.DimensionMismatch("query_embedding", s.dims, len(vector))
	}

	if limit <= 0 {
		return nil, apperrors.Validation("limit", "must be positive, got %d", limit)
	}

	s.mu.RLock()
	results := make([]Result, 0, len(s.records))

	for _, rec := range s.records {
		result := Result{Record: cloneRecord(rec)}

		if d, ok := cosineDistance(vector, rec.Embedding); ok {
			result.Distance = &d
		}

		result.Score = ScoreFromDistance(result.Distance)
		results = append(results, result)
	}
	s.mu.RUnlock()

	// records without a distance sort last, like NULLs in an ascending ORDER BY
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Distance, results[j].Distance
		if a == nil || b == nil {
			return a != nil && b == nil
		}

		return *a < *b
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

func (s *MemoryStore) GetAllRecords(_ context.Context, maxLimit int) ([]Result, error) {
	if maxLimit <= 0 {
		maxLimit = defaultExportLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Result, 0, min(maxLimit, len(s.records)))

	for _, rec := range s.records {
		if len(results) == maxLimit {
			break
		}

		results = append(results, Result{Record: cloneRecord(rec), Score: neutralScore})
	}

	return results, nil
}

func (s *MemoryStore) CreateIndex(_ context.Context, column string, opts IndexOptions) error {
	opts, err := validateIndexOptions(column, opts, s.dims)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.index = &opts
	s.mu.Unlock()

	logger.Debug("memory store index options recorded", "type", opts.Type, "metric", opts.Metric)

	return nil
}

// options of the last CreateIndex call, nil if none
func (s *MemoryStore) Index() *IndexOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.index == nil {
		return nil
	}

	opts := *s.index

	return &opts
}

func (s *MemoryStore) CountRows(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records), nil
}

func (s *MemoryStore) RecreateTable(ctx context.Context) error {
	s.mu.Lock()
	s.records = nil
	s.index = nil
	s.mu.Unlock()

	return s.EnsureTable(ctx)
}

// position of the first record with id, -1 if absent. Caller holds the lock
func (s *MemoryStore) find(id string) int {
	return slices.IndexFunc(s.records, func(r Record) bool { return r.ID == id })
}

// drops every record with id. Caller holds the write lock
func (s *MemoryStore) remove(id string) {
	s.records = slices.DeleteFunc(s.records, func(r Record) bool { return r.ID == id })
}

func cloneRecord(rec Record) Record {
	rec.Embedding = slices.Clone(rec.Embedding)
	return rec
}

var _ Store = (*MemoryStore)(nil)
