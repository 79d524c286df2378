package records

import (
	"encoding/json"
	"time"

	"codeberg.org/hhbot/vectorstore/api/rest/pagination"
)

type AddRequest struct {
	ID             string          `json:"id" binding:"required"`
	ContentType    string          `json:"content_type" binding:"required"`
	Title          *string         `json:"title"`
	Embedding      []float32       `json:"embedding" binding:"required"`
	SearchableText *string         `json:"searchable_text"`
	ContentHash    *string         `json:"content_hash"`
	References     json.RawMessage `json:"references"`
}

type AddResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// UpdateRequest replaces only the fields that are present
type UpdateRequest struct {
	ContentType    *string         `json:"content_type"`
	Title          *string         `json:"title"`
	Embedding      []float32       `json:"embedding"`
	SearchableText *string         `json:"searchable_text"`
	ContentHash    *string         `json:"content_hash"`
	References     json.RawMessage `json:"references"`
}

type RecordResponse struct {
	ID             string         `json:"id"`
	ContentType    string         `json:"content_type"`
	Title          *string        `json:"title"`
	Embedding      []float32      `json:"embedding,omitempty"`
	SearchableText *string        `json:"searchable_text"`
	ContentHash    *string        `json:"content_hash"`
	References     map[string]any `json:"references"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type ListResponse struct {
	Records    []RecordResponse `json:"records"`
	Pagination pagination.Meta  `json:"pagination"`
}

type CountResponse struct {
	Count int `json:"count"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
