package ingest

type Response struct {
	Success     bool   `json:"success"`
	ID          string `json:"id"`
	ContentHash string `json:"content_hash"`
	Skipped     bool   `json:"skipped,omitempty"`
	Keyframes   int    `json:"keyframes,omitempty"`
}
