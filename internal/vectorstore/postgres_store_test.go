package vectorstore

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connects to the database named by VECTOR_STORE_TEST_DSN, skipping otherwise
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("VECTOR_STORE_TEST_DSN")
	if dsn == "" {
		t.Skip("VECTOR_STORE_TEST_DSN not set")
	}

	pool, err := NewPool(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

// each test gets its own table, dropped afterwards
func testTableName() string {
	return "vs_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func dropTable(t *testing.T, pool *pgxpool.Pool, table string) {
	t.Cleanup(func() {
		_, err := pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+pgx.Identifier{table}.Sanitize())
		assert.NoError(t, err)
	})
}

func TestPostgresStore(t *testing.T) {
	pool := testPool(t)

	runStoreSuite(t, func(t *testing.T) Store {
		table := testTableName()
		dropTable(t, pool, table)

		store, err := NewPostgresStore(pool, table, suiteDims)
		require.NoError(t, err)
		require.NoError(t, store.EnsureTable(context.Background()))

		return store
	})
}

func TestPostgresStore_EnsureTableIsIdempotent(t *testing.T) {
	pool := testPool(t)
	table := testTableName()
	dropTable(t, pool, table)
	ctx := context.Background()

	store, err := NewPostgresStore(pool, table, suiteDims)
	require.NoError(t, err)
	require.NoError(t, store.EnsureTable(ctx))
	require.NoError(t, store.Add(ctx, testRecord("keep", 1, 0, 0, 0)))

	reopened, err := NewPostgresStore(pool, table, suiteDims)
	require.NoError(t, err)
	require.NoError(t, reopened.EnsureTable(ctx))

	count, err := reopened.CountRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPostgresStore_DetectsWidenedEmbedding(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, createExtensionQuery)
	require.NoError(t, err)

	for _, columnType := range []string{"vector", "real[]", "double precision[]", "vector(3)"} {
		t.Run(columnType, func(t *testing.T) {
			table := testTableName()
			dropTable(t, pool, table)

			_, err := pool.Exec(ctx, fmt.Sprintf(`
				CREATE TABLE %s (
					id text NOT NULL,
					content_type text NOT NULL,
					title text,
					embedding %s NOT NULL,
					searchable_text text,
					content_hash text,
					"references" text NOT NULL,
					created_at timestamptz NOT NULL,
					updated_at timestamptz NOT NULL
				)`, pgx.Identifier{table}.Sanitize(), columnType))
			require.NoError(t, err)

			store, err := NewPostgresStore(pool, table, suiteDims)
			require.NoError(t, err)

			err = store.EnsureTable(ctx)

			var schemaErr *apperrors.SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, EmbeddingColumn, schemaErr.Column)
			assert.Equal(t, "vector(4)", schemaErr.Expected)
			assert.False(t, store.Ready())
		})
	}
}

func TestPostgresStore_DebugSchemaRendering(t *testing.T) {
	pool := testPool(t)
	table := testTableName()
	dropTable(t, pool, table)
	ctx := context.Background()

	store, err := NewPostgresStore(pool, table, suiteDims)
	require.NoError(t, err)
	require.NoError(t, store.EnsureTable(ctx))

	columns, err := store.Schema(ctx)
	require.NoError(t, err)

	rendered := RenderSchema(table, columns)
	assert.Contains(t, rendered, "vector(4), not null")
	assert.Contains(t, rendered, "references")
}
