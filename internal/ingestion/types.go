package ingestion

import (
	"context"

	"codeberg.org/hhbot/vectorstore/internal/vectorstore"
)

// content types the pipeline accepts
const (
	TypeText     = "text"
	TypeTimeline = "timeline"
	TypeImage    = "image"
	TypeVideo    = "video"
	TypeAudio    = "audio"
	TypeKeyframe = "keyframe"
)

// Embedder turns composed text into vectors
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddingsBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Writer is the part of the store the pipeline writes through
type Writer interface {
	GetRecord(ctx context.Context, id string) (*vectorstore.Record, error)
	// writes all records or none of them
	UpsertBatch(ctx context.Context, recs []vectorstore.Record) error
}

type Options struct {
	// also write one keyframe record per described video keyframe
	IngestKeyframes bool
	// leave records whose id already exists untouched, without embedding
	SkipExisting bool
}

// Asset is one item to ingest. Which fields matter depends on Type.
type Asset struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	// text and timeline
	Slug        string `json:"slug,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Body        string `json:"body,omitempty"`
	Author      string `json:"author,omitempty"`
	Date        string `json:"date,omitempty"`

	// media location
	URL           string  `json:"url,omitempty"`
	S3URL         string  `json:"s3_url,omitempty"`
	CloudflareURL string  `json:"cloudflare_url,omitempty"`
	Width         int     `json:"width,omitempty"`
	Height        int     `json:"height,omitempty"`
	Duration      float64 `json:"duration,omitempty"`

	// labels
	Prompt  string   `json:"prompt,omitempty"`
	Scenes  []string `json:"scenes,omitempty"`
	Objects []string `json:"objects,omitempty"`
	Style   []string `json:"style,omitempty"`
	Mood    []string `json:"mood,omitempty"`
	Themes  []string `json:"themes,omitempty"`

	// audio
	Lyrics        string   `json:"lyrics,omitempty"`
	Artist        string   `json:"artist,omitempty"`
	Genre         []string `json:"genre,omitempty"`
	BPM           float64  `json:"bpm,omitempty"`
	TempoCategory string   `json:"tempo_category,omitempty"`

	// video
	Keyframes []Keyframe `json:"keyframes,omitempty"`
}

type Keyframe struct {
	Index       int     `json:"index"`
	Timestamp   float64 `json:"timestamp"`
	URL         string  `json:"url,omitempty"`
	Description string  `json:"description"`
}

// Result describes what one Ingest call wrote
type Result struct {
	ID          string `json:"id"`
	ContentType string `json:"content_type"`
	ContentHash string `json:"content_hash"`
	Skipped     bool   `json:"skipped,omitempty"`
	Keyframes   int    `json:"keyframes,omitempty"`
}

type ItemError struct {
	Index int
	ID    string
	Err   error
}

func (e ItemError) Error() string {
	return e.Err.Error()
}

// Report summarises an IngestMany run
type Report struct {
	Results []Result
	Failed  []ItemError
}

func (r Report) Ingested() int {
	n := 0

	for _, res := range r.Results {
		if !res.Skipped {
			n++
		}
	}

	return n
}

func (r Report) Skipped() int {
	return len(r.Results) - r.Ingested()
}
