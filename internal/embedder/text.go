package embedder

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
)

// trims, collapses whitespace runs (newlines included) to single spaces and
// truncates to the provider-safe character budget
func Preprocess(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")

	runes := []rune(collapsed)
	if len(runes) > maxTextChars {
		collapsed = string(runes[:maxTextChars])
	}

	return collapsed
}

// derives the cache key for a model and preprocessed text
func CacheKey(model, preprocessed string) string {
	sum := sha256.Sum256([]byte(model + ":" + preprocessed))
	return hex.EncodeToString(sum[:])
}

func preprocessInput(field, text string) (string, error) {
	processed := Preprocess(text)
	if processed == "" {
		return "", apperrors.Validation(field, "text must be a non-empty string")
	}

	return processed, nil
}
