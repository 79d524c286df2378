package ingestion

import (
	"context"
	"fmt"
	"strings"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
	"codeberg.org/hhbot/vectorstore/internal/logger"
	"codeberg.org/hhbot/vectorstore/internal/references"
	"codeberg.org/hhbot/vectorstore/internal/vectorstore"
	"github.com/google/uuid"
)

// Pipeline composes searchable text for assets, embeds it and writes the
// resulting records. Re-ingesting an id replaces the stored record.
type Pipeline struct {
	embedder Embedder
	store    Writer
	opts     Options
}

func New(e Embedder, store Writer, opts Options) *Pipeline {
	return &Pipeline{embedder: e, store: store, opts: opts}
}

// an asset ready to embed: the main record first, then any keyframes.
// Records have no embedding yet
type item struct {
	result Result
	drafts []vectorstore.Record
}

// ingests a single asset
func (p *Pipeline) Ingest(ctx context.Context, asset Asset) (Result, error) {
	it, err := p.prepare(ctx, asset)
	if err != nil {
		return Result{}, err
	}

	if it.result.Skipped {
		return it.result, nil
	}

	vectors, err := p.embedder.GenerateEmbeddingsBatch(ctx, it.texts())
	if err != nil {
		return Result{}, fmt.Errorf("failed to embed %s %s: %w", it.result.ContentType, it.result.ID, err)
	}

	if err := p.write(ctx, it, vectors); err != nil {
		return Result{}, err
	}

	return it.result, nil
}

// ingests every asset, continuing past failures. All texts go to the embedder
// in one batch call; if that fails each item is embedded on its own so one
// bad item cannot sink the rest.
func (p *Pipeline) IngestMany(ctx context.Context, assets []Asset) Report {
	var report Report
	var pending []*item
	var pendingIndex []int

	for i, asset := range assets {
		it, err := p.prepare(ctx, asset)
		if err != nil {
			report.Failed = append(report.Failed, ItemError{Index: i, ID: asset.ID, Err: err})
			continue
		}

		if it.result.Skipped {
			report.Results = append(report.Results, it.result)
			continue
		}

		pending = append(pending, it)
		pendingIndex = append(pendingIndex, i)
	}

	var texts []string
	for _, it := range pending {
		texts = append(texts, it.texts()...)
	}

	var vectors [][]float32

	if len(texts) > 0 {
		var err error

		vectors, err = p.embedder.GenerateEmbeddingsBatch(ctx, texts)
		if err != nil {
			logger.Warn("batch embedding failed, embedding items individually",
				"items", len(pending),
				"error", err,
			)

			vectors = nil
		}
	}

	offset := 0

	for k, it := range pending {
		n := len(it.drafts)

		var itemVectors [][]float32

		if vectors != nil {
			itemVectors = vectors[offset : offset+n]
		} else {
			var err error

			itemVectors, err = p.embedder.GenerateEmbeddingsBatch(ctx, it.texts())
			if err != nil {
				report.Failed = append(report.Failed, ItemError{Index: pendingIndex[k], ID: it.result.ID, Err: err})
				offset += n
				continue
			}
		}

		offset += n

		if err := p.write(ctx, it, itemVectors); err != nil {
			report.Failed = append(report.Failed, ItemError{Index: pendingIndex[k], ID: it.result.ID, Err: err})
			continue
		}

		report.Results = append(report.Results, it.result)
	}

	logger.Info("ingestion finished",
		"total", len(assets),
		"ingested", report.Ingested(),
		"skipped", report.Skipped(),
		"failed", len(report.Failed),
	)

	return report
}

func (p *Pipeline) prepare(ctx context.Context, asset Asset) (*item, error) {
	asset.Type = strings.ToLower(strings.TrimSpace(asset.Type))

	switch asset.Type {
	case TypeText, TypeTimeline:
		if strings.TrimSpace(asset.Slug) == "" {
			return nil, apperrors.Validation("slug", "is required for %s content", asset.Type)
		}

		if asset.ID == "" {
			asset.ID = ContentHash(asset)
		}

	case TypeImage, TypeVideo, TypeAudio:
		if asset.ID == "" {
			asset.ID = uuid.NewString()
		}

	default:
		return nil, apperrors.Validation("type", "unsupported content type %q", asset.Type)
	}

	result := Result{ID: asset.ID, ContentType: asset.Type, ContentHash: ContentHash(asset)}

	if p.opts.SkipExisting {
		existing, err := p.store.GetRecord(ctx, asset.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing record %s: %w", asset.ID, err)
		}

		if existing != nil {
			result.Skipped = true
			return &item{result: result}, nil
		}
	}

	text, err := composeText(asset)
	if err != nil {
		return nil, err
	}

	refs, err := references.Encode(referenceFor(asset))
	if err != nil {
		return nil, err
	}

	it := &item{result: result}
	it.drafts = append(it.drafts, vectorstore.Record{
		ID:             asset.ID,
		ContentType:    asset.Type,
		Title:          optional(asset.Title),
		SearchableText: &text,
		ContentHash:    &result.ContentHash,
		References:     refs,
	})

	if asset.Type == TypeVideo && p.opts.IngestKeyframes {
		if err := p.addKeyframes(it, asset); err != nil {
			return nil, err
		}
	}

	return it, nil
}

func (p *Pipeline) addKeyframes(it *item, asset Asset) error {
	for _, kf := range asset.Keyframes {
		description := strings.TrimSpace(kf.Description)
		if description == "" {
			continue
		}

		refs, err := references.Encode(references.Keyframe{
			ParentID:  asset.ID,
			Index:     kf.Index,
			Timestamp: kf.Timestamp,
			URL:       kf.URL,
		})
		if err != nil {
			return fmt.Errorf("keyframe %d: %w", kf.Index, err)
		}

		id := keyframeID(asset.ID, kf.Index)
		hash := it.result.ContentHash + fmt.Sprintf("#kf%d", kf.Index)

		it.drafts = append(it.drafts, vectorstore.Record{
			ID:             id,
			ContentType:    TypeKeyframe,
			Title:          optional(asset.Title),
			SearchableText: &description,
			ContentHash:    &hash,
			References:     refs,
		})
		it.result.Keyframes++
	}

	return nil
}

func (p *Pipeline) write(ctx context.Context, it *item, vectors [][]float32) error {
	if len(vectors) != len(it.drafts) {
		return fmt.Errorf("got %d embeddings for %d records", len(vectors), len(it.drafts))
	}

	recs := make([]vectorstore.Record, len(it.drafts))

	for i, rec := range it.drafts {
		rec.Embedding = vectors[i]
		recs[i] = rec
	}

	// parent and keyframes land together or not at all
	if err := p.store.UpsertBatch(ctx, recs); err != nil {
		return fmt.Errorf("failed to write %s: %w", it.result.ID, err)
	}

	logger.Debug("ingested asset",
		"id", it.result.ID,
		"content_type", it.result.ContentType,
		"keyframes", it.result.Keyframes,
	)

	return nil
}

func (it *item) texts() []string {
	texts := make([]string, len(it.drafts))

	for i, rec := range it.drafts {
		texts[i] = *rec.SearchableText
	}

	return texts
}

func referenceFor(asset Asset) references.Reference {
	switch asset.Type {
	case TypeText:
		return references.Text{Slug: asset.Slug, URL: asset.URL, Author: asset.Author}
	case TypeTimeline:
		return references.Timeline{Slug: asset.Slug, Date: asset.Date}
	case TypeAudio:
		return references.Audio{
			AssetID:  asset.ID,
			URL:      asset.URL,
			Artist:   asset.Artist,
			BPM:      asset.BPM,
			Duration: asset.Duration,
			Labels:   flatLabels(asset),
		}
	}

	return references.Media{
		AssetID:       asset.ID,
		MediaType:     asset.Type,
		URL:           asset.URL,
		S3URL:         asset.S3URL,
		CloudflareURL: asset.CloudflareURL,
		Width:         asset.Width,
		Height:        asset.Height,
		Duration:      asset.Duration,
		Labels:        flatLabels(asset),
	}
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}

	return &s
}
