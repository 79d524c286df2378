package vectorstore

import (
	"fmt"
	"strings"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
)

const (
	typeText        = "text"
	typeTimestamptz = "timestamp with time zone"
)

func vectorType(dims int) string {
	return fmt.Sprintf("vector(%d)", dims)
}

// Definition returns the ordered column list every content table must have
func Definition(dims int) []Column {
	return []Column{
		{Name: "id", Type: typeText},
		{Name: "content_type", Type: typeText},
		{Name: "title", Type: typeText, Nullable: true},
		{Name: EmbeddingColumn, Type: vectorType(dims)},
		{Name: "searchable_text", Type: typeText, Nullable: true},
		{Name: "content_hash", Type: typeText, Nullable: true},
		{Name: "references", Type: typeText},
		{Name: "created_at", Type: typeTimestamptz},
		{Name: "updated_at", Type: typeTimestamptz},
	}
}

// VerifySchema compares a live schema against the expected definition,
// column by column and in order
func VerifySchema(table string, expected, actual []Column) error {
	if len(actual) != len(expected) {
		return &apperrors.SchemaError{
			Table:    table,
			Expected: fmt.Sprintf("%d columns", len(expected)),
			Actual:   fmt.Sprintf("%d columns", len(actual)),
		}
	}

	for i, want := range expected {
		got := actual[i]

		if got.Name != want.Name {
			return &apperrors.SchemaError{
				Table:    table,
				Column:   fmt.Sprintf("#%d", i+1),
				Expected: want.Name,
				Actual:   got.Name,
			}
		}

		if got.Type != want.Type {
			return &apperrors.SchemaError{Table: table, Column: want.Name, Expected: want.Type, Actual: got.Type}
		}

		if got.Nullable != want.Nullable {
			return &apperrors.SchemaError{
				Table:    table,
				Column:   want.Name,
				Expected: nullability(want.Nullable),
				Actual:   nullability(got.Nullable),
			}
		}
	}

	return nil
}

// RenderSchema formats a schema as plain text, one column per line
func RenderSchema(table string, columns []Column) string {
	var b strings.Builder

	fmt.Fprintf(&b, "table %s\n", table)

	width := 0
	for _, col := range columns {
		width = max(width, len(col.Name))
	}

	for _, col := range columns {
		fmt.Fprintf(&b, "  %-*s  %s, %s\n", width, col.Name, col.Type, nullability(col.Nullable))
	}

	return b.String()
}

func nullability(nullable bool) string {
	if nullable {
		return "nullable"
	}

	return "not null"
}
