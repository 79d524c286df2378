package vectorstore

import (
	"context"
	"time"
)

const (
	// vector column name; the only column CreateIndex accepts
	EmbeddingColumn = "embedding"

	DefaultTable       = "content_embeddings"
	defaultExportLimit = 10000

	// score reported when no distance is available (bulk export, zero vectors)
	neutralScore = 0.5
)

// Record is one row of the content table
type Record struct {
	ID             string    `json:"id"`
	ContentType    string    `json:"content_type"`
	Title          *string   `json:"title"`
	Embedding      []float32 `json:"embedding"`
	SearchableText *string   `json:"searchable_text"`
	ContentHash    *string   `json:"content_hash"`
	References     string    `json:"references"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RecordUpdate holds the fields to replace; nil fields are left as they are
type RecordUpdate struct {
	ContentType    *string
	Title          *string
	Embedding      []float32
	SearchableText *string
	ContentHash    *string
	References     *string
}

// Result is a record returned by a search or export.
// Distance is nil when the backend reported none.
type Result struct {
	Record
	Score    float64  `json:"score"`
	Distance *float64 `json:"distance,omitempty"`
}

type IndexType string

const (
	IndexIVFPQ   IndexType = "IVF_PQ"
	IndexIVFFlat IndexType = "IVF_FLAT"
	IndexHNSW    IndexType = "HNSW"
)

// Metric is the index distance metric. Search ranks by cosine distance, so
// cosine is the only metric an index can be built for
type Metric string

const MetricCosine Metric = "cosine"

type IndexOptions struct {
	Type       IndexType
	Partitions int
	SubVectors int
	Metric     Metric
}

// Column is one entry of a table schema
type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// Store is implemented by every storage backend
type Store interface {
	// opens or creates the table and verifies its schema
	EnsureTable(ctx context.Context) error
	Ready() bool
	Dimensions() int
	TableName() string

	Add(ctx context.Context, rec Record) error
	AddBatch(ctx context.Context, recs []Record) error
	Upsert(ctx context.Context, rec Record) error
	UpsertBatch(ctx context.Context, recs []Record) error
	GetRecord(ctx context.Context, id string) (*Record, error)
	UpdateRecord(ctx context.Context, id string, update RecordUpdate) (*Record, error)
	DeleteRecord(ctx context.Context, id string) error

	Search(ctx context.Context, vector []float32, limit int) ([]Result, error)
	GetAllRecords(ctx context.Context, maxLimit int) ([]Result, error)

	CreateIndex(ctx context.Context, column string, opts IndexOptions) error
	CountRows(ctx context.Context) (int, error)
	RecreateTable(ctx context.Context) error
	Schema(ctx context.Context) ([]Column, error)

	Close()
}
