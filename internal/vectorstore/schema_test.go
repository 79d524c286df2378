package vectorstore

import (
	"strings"
	"testing"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinition(t *testing.T) {
	columns := Definition(1536)

	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}

	assert.Equal(t, []string{
		"id", "content_type", "title", "embedding", "searchable_text",
		"content_hash", "references", "created_at", "updated_at",
	}, names)
	assert.Equal(t, "vector(1536)", columns[3].Type)
	assert.False(t, columns[3].Nullable)
}

func TestVerifySchema(t *testing.T) {
	expected := Definition(4)

	withColumn := func(i int, change func(*Column)) []Column {
		cols := append([]Column(nil), expected...)
		change(&cols[i])
		return cols
	}

	tests := []struct {
		name   string
		actual []Column
		column string
	}{
		{name: "unsized vector", actual: withColumn(3, func(c *Column) { c.Type = "vector" }), column: "embedding"},
		{name: "float array", actual: withColumn(3, func(c *Column) { c.Type = "real[]" }), column: "embedding"},
		{name: "double array", actual: withColumn(3, func(c *Column) { c.Type = "double precision[]" }), column: "embedding"},
		{name: "wrong dimension", actual: withColumn(3, func(c *Column) { c.Type = "vector(8)" }), column: "embedding"},
		{name: "nullable embedding", actual: withColumn(3, func(c *Column) { c.Nullable = true }), column: "embedding"},
		{name: "renamed", actual: withColumn(2, func(c *Column) { c.Name = "name" }), column: "#3"},
		{name: "missing column", actual: expected[:8]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySchema("t", expected, tt.actual)

			var schemaErr *apperrors.SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tt.column, schemaErr.Column)
		})
	}

	assert.NoError(t, VerifySchema("t", expected, Definition(4)))
}

func TestRenderSchema(t *testing.T) {
	out := RenderSchema("content_embeddings", Definition(3))
	lines := strings.Split(strings.TrimSpace(out), "\n")

	require.Len(t, lines, 10)
	assert.Equal(t, "table content_embeddings", lines[0])
	assert.Contains(t, lines[4], "embedding")
	assert.Contains(t, lines[4], "vector(3), not null")
	assert.Contains(t, lines[3], "text, nullable")
}
