package vectorstore

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const suiteDims = 4

func strPtr(s string) *string { return &s }

func testRecord(id string, embedding ...float32) Record {
	return Record{
		ID:             id,
		ContentType:    "text",
		Title:          strPtr("title " + id),
		Embedding:      embedding,
		SearchableText: strPtr("searchable " + id),
		ContentHash:    strPtr("text-" + id),
		References:     fmt.Sprintf(`{"type":"text","slug":%q}`, id),
	}
}

// runs the behaviour every backend must share. newStore returns a store whose
// table has already been ensured and is empty
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("add and get", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Add(ctx, testRecord("a", 1, 0, 0, 0)))

		got, err := store.GetRecord(ctx, "a")
		require.NoError(t, err)
		require.NotNil(t, got)

		assert.Equal(t, "text", got.ContentType)
		assert.Equal(t, "title a", *got.Title)
		assert.Equal(t, []float32{1, 0, 0, 0}, got.Embedding)
		assert.JSONEq(t, `{"type":"text","slug":"a"}`, got.References)
		assert.False(t, got.CreatedAt.IsZero())
		assert.Equal(t, got.CreatedAt, got.UpdatedAt)
	})

	t.Run("get absent returns nil", func(t *testing.T) {
		store := newStore(t)

		got, err := store.GetRecord(context.Background(), "missing")

		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("add rejects wrong dimension", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		err := store.Add(ctx, testRecord("short", 1, 2, 3))

		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))

		count, err := store.CountRows(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("add requires id and content type", func(t *testing.T) {
		store := newStore(t)

		rec := testRecord("", 1, 0, 0, 0)
		assert.True(t, apperrors.IsValidation(store.Add(context.Background(), rec)))

		rec = testRecord("x", 1, 0, 0, 0)
		rec.ContentType = ""
		assert.True(t, apperrors.IsValidation(store.Add(context.Background(), rec)))
	})

	t.Run("nullable fields round trip as nil", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Add(ctx, Record{ID: "bare", ContentType: "image", Embedding: []float32{0, 1, 0, 0}}))

		got, err := store.GetRecord(ctx, "bare")
		require.NoError(t, err)
		require.NotNil(t, got)

		assert.Nil(t, got.Title)
		assert.Nil(t, got.SearchableText)
		assert.Nil(t, got.ContentHash)
		assert.Empty(t, got.References)
	})

	t.Run("add then get returns the record as written", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		title, text, hash := "Harbour", "boats at dusk", "image-harbour"
		in := Record{
			ID:             "harbour",
			ContentType:    "image",
			Title:          &title,
			Embedding:      []float32{0.25, 0.5, 0, 1},
			SearchableText: &text,
			ContentHash:    &hash,
			References:     `{"type":"image","asset_id":"harbour"}`,
		}

		require.NoError(t, store.Add(ctx, in))

		got, err := store.GetRecord(ctx, "harbour")
		require.NoError(t, err)
		require.NotNil(t, got)

		assert.False(t, got.CreatedAt.IsZero())
		assert.Equal(t, got.CreatedAt, got.UpdatedAt)

		got.CreatedAt, got.UpdatedAt = in.CreatedAt, in.UpdatedAt
		assert.Equal(t, in, *got)
	})

	t.Run("add batch is all or nothing", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		err := store.AddBatch(ctx, []Record{
			testRecord("b1", 1, 0, 0, 0),
			testRecord("b2", 1, 0),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))

		count, err := store.CountRows(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		require.NoError(t, store.AddBatch(ctx, []Record{
			testRecord("b1", 1, 0, 0, 0),
			testRecord("b2", 0, 1, 0, 0),
		}))

		count, err = store.CountRows(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("update merges fields", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Add(ctx, testRecord("u", 1, 0, 0, 0)))
		before, err := store.GetRecord(ctx, "u")
		require.NoError(t, err)

		time.Sleep(2 * time.Millisecond)

		updated, err := store.UpdateRecord(ctx, "u", RecordUpdate{
			Title:     strPtr("new title"),
			Embedding: []float32{0, 0, 1, 0},
		})
		require.NoError(t, err)

		assert.Equal(t, "new title", *updated.Title)
		assert.Equal(t, "searchable u", *updated.SearchableText, "untouched fields survive")

		got, err := store.GetRecord(ctx, "u")
		require.NoError(t, err)
		require.NotNil(t, got)

		assert.Equal(t, "new title", *got.Title)
		assert.Equal(t, []float32{0, 0, 1, 0}, got.Embedding)
		assert.Equal(t, before.CreatedAt, got.CreatedAt)
		assert.True(t, got.UpdatedAt.After(before.UpdatedAt))

		count, err := store.CountRows(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "update replaces, never duplicates")
	})

	t.Run("update absent is not found", func(t *testing.T) {
		store := newStore(t)

		_, err := store.UpdateRecord(context.Background(), "nope", RecordUpdate{Title: strPtr("x")})

		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("update rejects wrong dimension", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Add(ctx, testRecord("u", 1, 0, 0, 0)))

		_, err := store.UpdateRecord(ctx, "u", RecordUpdate{Embedding: []float32{1}})
		assert.True(t, apperrors.IsValidation(err))

		got, err := store.GetRecord(ctx, "u")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0, 0, 0}, got.Embedding)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Add(ctx, testRecord("d", 1, 0, 0, 0)))

		require.NoError(t, store.DeleteRecord(ctx, "d"))
		require.NoError(t, store.DeleteRecord(ctx, "d"))

		got, err := store.GetRecord(ctx, "d")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("upsert replaces and keeps created_at", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Upsert(ctx, testRecord("up", 1, 0, 0, 0)))
		first, err := store.GetRecord(ctx, "up")
		require.NoError(t, err)

		replacement := testRecord("up", 0, 1, 0, 0)
		replacement.Title = strPtr("second")
		require.NoError(t, store.Upsert(ctx, replacement))

		got, err := store.GetRecord(ctx, "up")
		require.NoError(t, err)
		assert.Equal(t, "second", *got.Title)
		assert.Equal(t, first.CreatedAt, got.CreatedAt)

		count, err := store.CountRows(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("search ranks by cosine similarity", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.AddBatch(ctx, []Record{
			testRecord("far", -1, 0, 0, 0),
			testRecord("exact", 1, 0, 0, 0),
			testRecord("near", 1, 1, 0, 0),
			testRecord("orthogonal", 0, 0, 1, 0),
		}))

		results, err := store.Search(ctx, []float32{1, 0, 0, 0}, 3)
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, "exact", results[0].ID)
		assert.Equal(t, "near", results[1].ID)
		assert.Equal(t, "orthogonal", results[2].ID)

		require.NotNil(t, results[0].Distance)
		assert.InDelta(t, 1.0, results[0].Score, 1e-6)
		assert.InDelta(t, 1/math.Sqrt2, results[1].Score, 1e-4, "score is 1 - cosine distance")
		assert.InDelta(t, 0.0, results[2].Score, 1e-6)

		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
		}
	})

	t.Run("search validates input", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Search(ctx, []float32{1, 0}, 5)
		assert.True(t, apperrors.IsValidation(err))

		_, err = store.Search(ctx, []float32{1, 0, 0, 0}, 0)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("export returns neutral scores", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for i := range 5 {
			require.NoError(t, store.Add(ctx, testRecord(fmt.Sprintf("e%d", i), 1, float32(i), 0, 0)))
		}

		results, err := store.GetAllRecords(ctx, 3)
		require.NoError(t, err)
		require.Len(t, results, 3)

		for _, r := range results {
			assert.Equal(t, 0.5, r.Score)
			assert.Nil(t, r.Distance)
		}

		all, err := store.GetAllRecords(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("create index validates options", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.AddBatch(ctx, []Record{
			testRecord("i1", 1, 0, 0, 0),
			testRecord("i2", 0, 1, 0, 0),
		}))

		err := store.CreateIndex(ctx, "title", DefaultIndexOptions())
		assert.True(t, apperrors.IsValidation(err))

		err = store.CreateIndex(ctx, EmbeddingColumn, IndexOptions{Type: IndexIVFPQ, Partitions: 1, SubVectors: 3})
		assert.True(t, apperrors.IsValidation(err), "3 does not divide 4")

		require.NoError(t, store.CreateIndex(ctx, EmbeddingColumn,
			IndexOptions{Type: IndexIVFPQ, Partitions: 1, SubVectors: 2, Metric: MetricCosine}))
		require.NoError(t, store.CreateIndex(ctx, EmbeddingColumn, IndexOptions{Type: IndexHNSW}))

		err = store.CreateIndex(ctx, EmbeddingColumn, IndexOptions{Type: IndexHNSW, Metric: "l2"})
		assert.True(t, apperrors.IsValidation(err), "search cannot use an l2 index")

		results, err := store.Search(ctx, []float32{1, 0, 0, 0}, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "i1", results[0].ID)
	})

	t.Run("schema holds after writes", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Add(ctx, testRecord("s1", 1, 0, 0, 0)))
		_, err := store.UpdateRecord(ctx, "s1", RecordUpdate{ContentHash: strPtr("h")})
		require.NoError(t, err)
		require.NoError(t, store.Upsert(ctx, testRecord("s2", 0, 1, 0, 0)))

		columns, err := store.Schema(ctx)
		require.NoError(t, err)
		assert.NoError(t, VerifySchema(store.TableName(), Definition(suiteDims), columns))
	})

	t.Run("recreate empties the table", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Add(ctx, testRecord("r", 1, 0, 0, 0)))

		require.NoError(t, store.RecreateTable(ctx))

		count, err := store.CountRows(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.True(t, store.Ready())
	})
}
