package vectorstore

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

// "references" is a reserved word and must stay quoted
const recordColumns = `id, content_type, title, embedding, searchable_text, content_hash, "references", created_at, updated_at`

const (
	createExtensionQuery = `CREATE EXTENSION IF NOT EXISTS vector`

	tableExistsQuery = `SELECT to_regclass($1) IS NOT NULL`

	tableColumnsQuery = `
		SELECT
			a.attname,
			format_type(a.atttypid, a.atttypmod),
			NOT a.attnotnull
		FROM pg_attribute a
		WHERE a.attrelid = to_regclass($1)
			AND a.attnum > 0
			AND NOT a.attisdropped
		ORDER BY a.attnum
	`
)

// statements bound to one table name
type queries struct {
	table     string
	indexName string

	createTable   string
	createIDIndex string
	dropTable     string
	dropIndex     string
	insert        string
	getByID       string
	getForUpdate  string
	deleteByID    string
	search        string
	export        string
	count         string
}

func newQueries(table string, dims int) queries {
	t := pgx.Identifier{table}.Sanitize()
	idx := pgx.Identifier{table + "_embedding_idx"}.Sanitize()

	return queries{
		table:     t,
		indexName: idx,

		createTable: fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id text NOT NULL,
				content_type text NOT NULL,
				title text,
				embedding vector(%d) NOT NULL,
				searchable_text text,
				content_hash text,
				"references" text NOT NULL,
				created_at timestamptz NOT NULL,
				updated_at timestamptz NOT NULL
			)
		`, t, dims),

		createIDIndex: fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (id)`,
			pgx.Identifier{table + "_id_idx"}.Sanitize(), t),

		dropTable: fmt.Sprintf(`DROP TABLE IF EXISTS %s`, t),

		dropIndex: fmt.Sprintf(`DROP INDEX IF EXISTS %s`, idx),

		insert: fmt.Sprintf(`
			INSERT INTO %s (%s)
			VALUES ($1, $2, $3, $4::vector, $5, $6, $7, $8, $9)
		`, t, recordColumns),

		getByID: fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 LIMIT 1`, recordColumns, t),

		getForUpdate: fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 LIMIT 1 FOR UPDATE`, recordColumns, t),

		deleteByID: fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t),

		search: fmt.Sprintf(`
			SELECT %s, embedding <=> $1::vector AS distance
			FROM %s
			ORDER BY embedding <=> $1::vector
			LIMIT $2
		`, recordColumns, t),

		export: fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at, id LIMIT $1`, recordColumns, t),

		count: fmt.Sprintf(`SELECT COUNT(*) FROM %s`, t),
	}
}
