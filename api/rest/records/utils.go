package records

import (
	"bytes"
	"encoding/json"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
	"codeberg.org/hhbot/vectorstore/internal/references"
	"codeberg.org/hhbot/vectorstore/internal/vectorstore"
)

// accepts references as a JSON object or as a string holding serialized JSON.
// Absent or null references become an empty object
func normalizeReferences(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)

	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "{}", nil
	}

	switch trimmed[0] {
	case '{':
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err != nil {
			return "", apperrors.Validation("references", "invalid JSON: %v", err)
		}

		return compact.String(), nil

	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", apperrors.Validation("references", "invalid JSON string: %v", err)
		}

		return s, nil
	}

	return "", apperrors.Validation("references", "must be an object or a JSON string")
}

func toResponse(rec vectorstore.Record, withEmbedding bool) RecordResponse {
	resp := RecordResponse{
		ID:             rec.ID,
		ContentType:    rec.ContentType,
		Title:          rec.Title,
		SearchableText: rec.SearchableText,
		ContentHash:    rec.ContentHash,
		References:     references.DecodeLoose(rec.References),
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}

	if withEmbedding {
		resp.Embedding = rec.Embedding
	}

	return resp
}
