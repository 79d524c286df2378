package vectorstore

import (
	"fmt"
	"strings"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
)

// DefaultIndexOptions mirrors the ingester's create-index defaults
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		Type:       IndexIVFPQ,
		Partitions: 256,
		SubVectors: 96,
		Metric:     MetricCosine,
	}
}

// normalizes casing and checks the options against the vector dimension
func validateIndexOptions(column string, opts IndexOptions, dims int) (IndexOptions, error) {
	if column != EmbeddingColumn {
		return opts, apperrors.Validation("column", "index can only be built on %q, got %q", EmbeddingColumn, column)
	}

	opts.Type = IndexType(strings.ToUpper(strings.TrimSpace(string(opts.Type))))
	opts.Metric = Metric(strings.ToLower(strings.TrimSpace(string(opts.Metric))))

	if opts.Metric == "" {
		opts.Metric = MetricCosine
	}

	if opts.Metric != MetricCosine {
		return opts, apperrors.Validation("metric_type",
			"unsupported metric %q, search ranks by cosine distance", opts.Metric)
	}

	switch opts.Type {
	case IndexHNSW:
		return opts, nil

	case IndexIVFFlat, IndexIVFPQ:
		if opts.Partitions <= 0 {
			return opts, apperrors.Validation("num_partitions", "must be positive, got %d", opts.Partitions)
		}

		if opts.Type == IndexIVFPQ {
			if opts.SubVectors <= 0 {
				return opts, apperrors.Validation("num_sub_vectors", "must be positive, got %d", opts.SubVectors)
			}

			if dims%opts.SubVectors != 0 {
				return opts, apperrors.Validation("num_sub_vectors",
					"%d does not divide the vector dimension %d", opts.SubVectors, dims)
			}
		}

		return opts, nil
	}

	return opts, apperrors.Validation("type", "unsupported index type %q", opts.Type)
}

// pgvector operator class matching the <=> operator used by Search
const cosineOpClass = "vector_cosine_ops"

// CREATE INDEX statement for validated options. pgvector has no product
// quantization, so IVF_PQ builds the same ivfflat index as IVF_FLAT.
func indexDDL(table, indexName string, opts IndexOptions) string {
	opclass := cosineOpClass

	if opts.Type == IndexHNSW {
		return fmt.Sprintf("CREATE INDEX %s ON %s USING hnsw (%s %s)",
			indexName, table, EmbeddingColumn, opclass)
	}

	return fmt.Sprintf("CREATE INDEX %s ON %s USING ivfflat (%s %s) WITH (lists = %d)",
		indexName, table, EmbeddingColumn, opclass, opts.Partitions)
}
