package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
	"codeberg.org/hhbot/vectorstore/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PostgresStore keeps records in a pgvector-enabled Postgres table
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
	dims  int
	q     queries
	ready atomic.Bool
}

// NewPool opens a small connection pool suitable for a pooled (PgBouncer)
// endpoint and verifies connectivity
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// transaction-mode poolers do not support prepared statements
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func NewPostgresStore(pool *pgxpool.Pool, table string, dims int) (*PostgresStore, error) {
	if table == "" {
		table = DefaultTable
	}

	if dims <= 0 {
		return nil, apperrors.Validation("dimensions", "must be positive, got %d", dims)
	}

	return &PostgresStore{
		pool:  pool,
		table: table,
		dims:  dims,
		q:     newQueries(table, dims),
	}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ready() bool {
	return s.ready.Load()
}

func (s *PostgresStore) Dimensions() int {
	return s.dims
}

func (s *PostgresStore) TableName() string {
	return s.table
}

func (s *PostgresStore) EnsureTable(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createExtensionQuery); err != nil {
		return fmt.Errorf("failed to enable vector extension: %w", err)
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, tableExistsQuery, s.q.table).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check table: %w", err)
	}

	if !exists {
		if _, err := s.pool.Exec(ctx, s.q.createTable); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}

		if _, err := s.pool.Exec(ctx, s.q.createIDIndex); err != nil {
			return fmt.Errorf("failed to create id index: %w", err)
		}

		logger.Info("created vector table", "table", s.table, "dimensions", s.dims)
	}

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

func (s *PostgresStore) Schema(ctx context.Context) ([]Column, error) {
	rows, err := s.pool.Query(ctx, tableColumnsQuery, s.q.table)
	if err != nil {
		return nil, fmt.Errorf("failed to read table schema: %w", err)
	}
	defer rows.Close()

	var columns []Column

	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.Type, &col.Nullable); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}

	return columns, nil
}

func (s *PostgresStore) Add(ctx context.Context, rec Record) error {
	if err := validateRecord(rec, s.dims); err != nil {
		return err
	}

	rec = prepareRecord(rec, now())

	if _, err := s.pool.Exec(ctx, s.q.insert, insertArgs(rec)...); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	return nil
}

// inserts every record in one transaction; nothing is written if any fails
func (s *PostgresStore) AddBatch(ctx context.Context, recs []Record) error {
	for i, rec := range recs {
		if err := validateRecord(rec, s.dims); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	if len(recs) == 0 {
		return nil
	}

	ts := now()

	return s.withTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}

		for _, rec := range recs {
			batch.Queue(s.q.insert, insertArgs(prepareRecord(rec, ts))...)
		}

		br := tx.SendBatch(ctx, batch)

		for i := range len(recs) {
			if _, err := br.Exec(); err != nil {
				br.Close() //nolint:errcheck,gosec // G104: error path cleanup
				return fmt.Errorf("failed to insert record %d: %w", i, err)
			}
		}

		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to close batch: %w", err)
		}

		return nil
	})
}

// replaces the record with the same id, keeping its created_at
func (s *PostgresStore) Upsert(ctx context.Context, rec Record) error {
	if err := validateRecord(rec, s.dims); err != nil {
		return err
	}

	ts := now()

	return s.withTx(ctx, func(tx pgx.Tx) error {
		return s.upsertTx(ctx, tx, rec, ts)
	})
}

// upserts every record in one transaction; nothing is written if any fails
func (s *PostgresStore) UpsertBatch(ctx context.Context, recs []Record) error {
	for i, rec := range recs {
		if err := validateRecord(rec, s.dims); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	if len(recs) == 0 {
		return nil
	}

	ts := now()

	return s.withTx(ctx, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if err := s.upsertTx(ctx, tx, rec, ts); err != nil {
				return fmt.Errorf("record %s: %w", rec.ID, err)
			}
		}

		return nil
	})
}

func (s *PostgresStore) upsertTx(ctx context.Context, tx pgx.Tx, rec Record, ts time.Time) error {
	existing, err := scanRecord(tx.QueryRow(ctx, s.q.getForUpdate, rec.ID))

	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to read record: %w", err)
	default:
		rec.CreatedAt = existing.CreatedAt
		rec.UpdatedAt = ts

		if _, err := tx.Exec(ctx, s.q.deleteByID, rec.ID); err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, s.q.insert, insertArgs(prepareRecord(rec, ts))...); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	return nil
}

// returns nil, nil when no record has the id
func (s *PostgresStore) GetRecord(ctx context.Context, id string) (*Record, error) {
	rec, err := scanRecord(s.pool.QueryRow(ctx, s.q.getByID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	return &rec, nil
}

// read, merge, then delete and re-insert in one transaction
func (s *PostgresStore) UpdateRecord(ctx context.Context, id string, update RecordUpdate) (*Record, error) {
	if update.Embedding != nil && len(update.Embedding) != s.dims {
		return nil, apperrors.DimensionMismatch("embedding", s.dims, len(update.Embedding))
	}

	var updated Record

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		current, err := scanRecord(tx.QueryRow(ctx, s.q.getForUpdate, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("record", id)
		}

		if err != nil {
			return fmt.Errorf("failed to read record: %w", err)
		}

		updated = mergeUpdate(current, update, now())

		if err := validateRecord(updated, s.dims); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, s.q.deleteByID, id); err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}

		if _, err := tx.Exec(ctx, s.q.insert, insertArgs(updated)...); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// deleting an absent id is not an error
func (s *PostgresStore) DeleteRecord(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, s.q.deleteByID, id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	return nil
}

func (s *PostgresStore) Search(ctx context.Context, vector []float32, limit int) ([]Result, error) {
	if len(vector) != s.dims {
		return nil, apperrors.DimensionMismatch("query_embedding", s.dims, len(vector))
	}

	if limit <= 0 {
		return nil, apperrors.Validation("limit", "must be positive, got %d", limit)
	}

	rows, err := s.pool.Query(ctx, s.q.search, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search query: %w", err)
	}
	defer rows.Close()

	var results []Result

	for rows.Next() {
		var distance *float64

		rec, err := scanRecord(rows, &distance)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		// zero vectors produce NaN, which cannot be encoded as JSON
		if distance != nil && math.IsNaN(*distance) {
			distance = nil
		}

		results = append(results, Result{
			Record:   rec,
			Score:    ScoreFromDistance(distance),
			Distance: distance,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

func (s *PostgresStore) GetAllRecords(ctx context.Context, maxLimit int) ([]Result, error) {
	if maxLimit <= 0 {
		maxLimit = defaultExportLimit
	}

	rows, err := s.pool.Query(ctx, s.q.export, maxLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to export records: %w", err)
	}
	defer rows.Close()

	var results []Result

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		results = append(results, Result{Record: rec, Score: neutralScore})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

// replaces the vector index on the table
func (s *PostgresStore) CreateIndex(ctx context.Context, column string, opts IndexOptions) error {
	opts, err := validateIndexOptions(column, opts, s.dims)
	if err != nil {
		return err
	}

	if opts.Type == IndexIVFPQ {
		logger.Info("building ivfflat index for IVF_PQ request",
			"table", s.table,
			"sub_vectors", opts.SubVectors,
		)
	}

	start := time.Now()

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, s.q.dropIndex); err != nil {
			return fmt.Errorf("failed to drop index: %w", err)
		}

		if _, err := tx.Exec(ctx, indexDDL(s.q.table, s.q.indexName, opts)); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("vector index created",
		"table", s.table,
		"type", opts.Type,
		"metric", opts.Metric,
		"partitions", opts.Partitions,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

func (s *PostgresStore) CountRows(ctx context.Context) (int, error) {
	var count int

	if err := s.pool.QueryRow(ctx, s.q.count).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}

	return count, nil
}

// drops the table and creates it again from the definition
func (s *PostgresStore) RecreateTable(ctx context.Context) error {
	s.ready.Store(false)

	if _, err := s.pool.Exec(ctx, s.q.dropTable); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}

	logger.Warn("dropped vector table", "table", s.table)

	return s.EnsureTable(ctx)
}

func (s *PostgresStore) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// defer rollback - will be no-op if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func insertArgs(rec Record) []any {
	return []any{
		rec.ID,
		rec.ContentType,
		rec.Title,
		pgvector.NewVector(rec.Embedding),
		rec.SearchableText,
		rec.ContentHash,
		rec.References,
		rec.CreatedAt,
		rec.UpdatedAt,
	}
}

// scans the record columns in order, followed by any extra destinations
func scanRecord(row pgx.Row, extra ...any) (Record, error) {
	var rec Record
	var embedding pgvector.Vector

	dest := append([]any{
		&rec.ID,
		&rec.ContentType,
		&rec.Title,
		&embedding,
		&rec.SearchableText,
		&rec.ContentHash,
		&rec.References,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	}, extra...)

	if err := row.Scan(dest...); err != nil {
		return rec, err
	}

	rec.Embedding = embedding.Slice()
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()

	return rec, nil
}

var _ Store = (*PostgresStore)(nil)
