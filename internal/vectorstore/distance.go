package vectorstore

import (
	"math"
	"time"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
)

// cosine distance (1 - cosine similarity); false when either vector has zero norm
func cosineDistance(a, b []float32) (float64, bool) {
	if len(a) != len(b) {
		return 0, false
	}

	var dot, normA, normB float64

	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, false
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)), true
}

// ScoreFromDistance converts a cosine distance into a similarity score.
// A missing distance scores neutral.
func ScoreFromDistance(distance *float64) float64 {
	if distance == nil || math.IsNaN(*distance) {
		return neutralScore
	}

	return 1 - *distance
}

func validateRecord(rec Record, dims int) error {
	if rec.ID == "" {
		return apperrors.Validation("id", "is required")
	}

	if rec.ContentType == "" {
		return apperrors.Validation("content_type", "is required")
	}

	if len(rec.Embedding) != dims {
		return apperrors.DimensionMismatch("embedding", dims, len(rec.Embedding))
	}

	return nil
}

// fills missing timestamps before a write; everything else is stored as given
func prepareRecord(rec Record, now time.Time) Record {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}

	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}

	return rec
}

// applies the non-nil fields of an update
func mergeUpdate(rec Record, update RecordUpdate, now time.Time) Record {
	if update.ContentType != nil {
		rec.ContentType = *update.ContentType
	}

	if update.Title != nil {
		rec.Title = update.Title
	}

	if update.Embedding != nil {
		rec.Embedding = update.Embedding
	}

	if update.SearchableText != nil {
		rec.SearchableText = update.SearchableText
	}

	if update.ContentHash != nil {
		rec.ContentHash = update.ContentHash
	}

	if update.References != nil {
		rec.References = *update.References
	}

	rec.UpdatedAt = now

	return rec
}

// postgres stores microseconds; both backends truncate the same way
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
