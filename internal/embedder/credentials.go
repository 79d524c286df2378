package embedder

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
)

// keys probed, in order, when the credential arrives as a JSON secret blob
var credentialKeys = []string{"OPENAI_API_KEY", "openai_api_key", "apiKey", "api_key", "key", "value"}

// returns the raw API key. Secret managers sometimes hand the key over as a
// JSON object ({"OPENAI_API_KEY":"sk-..."}) or a JSON string; one layer of
// either is unwrapped.
func ResolveAPIKey(raw string) (string, error) {
	key := strings.TrimSpace(raw)
	if key == "" {
		return "", &apperrors.ProviderError{Err: fmt.Errorf("api key is empty")}
	}

	switch {
	case strings.HasPrefix(key, "{"):
		var blob map[string]any
		if err := json.Unmarshal([]byte(key), &blob); err != nil {
			return "", &apperrors.ProviderError{Err: fmt.Errorf("api key looks like JSON but does not parse: %w", err)}
		}

		for _, name := range credentialKeys {
			if val, ok := blob[name].(string); ok && strings.TrimSpace(val) != "" {
				return strings.TrimSpace(val), nil
			}
		}

		return "", &apperrors.ProviderError{Err: fmt.Errorf("api key JSON blob has no recognised key field")}

	case strings.HasPrefix(key, `"`):
		var unquoted string
		if err := json.Unmarshal([]byte(key), &unquoted); err != nil {
			return "", &apperrors.ProviderError{Err: fmt.Errorf("api key is a malformed JSON string: %w", err)}
		}

		if unquoted = strings.TrimSpace(unquoted); unquoted == "" {
			return "", &apperrors.ProviderError{Err: fmt.Errorf("api key is empty")}
		}

		return unquoted, nil
	}

	return key, nil
}
