package vectorstore

import (
	"context"

	"codeberg.org/hhbot/vectorstore/internal/config"
	"codeberg.org/hhbot/vectorstore/internal/logger"
)

// opens the backend selected by VECTOR_STORE. The table is not touched;
// call EnsureTable before serving
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.StoreBackend == config.BackendMemory {
		logger.Warn("using in-memory vector store, records are lost on restart")
		return NewMemoryStore(cfg.TableName, cfg.EmbeddingDimensions), nil
	}

	pool, err := NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	store, err := NewPostgresStore(pool, cfg.TableName, cfg.EmbeddingDimensions)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}
