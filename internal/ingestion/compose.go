package ingestion

import (
	"fmt"
	"strings"

	"codeberg.org/hhbot/vectorstore/internal/embedder"
	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
)

// TempoCategory buckets a BPM value; empty for unknown tempo
func TempoCategory(bpm float64) string {
	switch {
	case bpm <= 0:
		return ""
	case bpm < 90:
		return "slow"
	case bpm < 120:
		return "medium"
	default:
		return "fast"
	}
}

// ContentHash is the advisory dedup key written with each record
func ContentHash(asset Asset) string {
	switch asset.Type {
	case TypeText, TypeTimeline:
		return asset.Type + "-" + asset.Slug
	default:
		return asset.Type + "-" + asset.ID
	}
}

func keyframeID(videoID string, index int) string {
	return fmt.Sprintf("%s#kf%d", videoID, index)
}

// title, description, body
func composeDocument(asset Asset) (string, error) {
	var parts []string

	for _, part := range []string{asset.Title, asset.Description, asset.Body} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}

	if len(parts) == 0 {
		return "", apperrors.Validation("labels", "no text content found")
	}

	return strings.Join(parts, ". "), nil
}

func imageLabels(asset Asset) embedder.ImageLabels {
	return embedder.ImageLabels{
		Title:   asset.Title,
		Prompt:  asset.Prompt,
		Scenes:  asset.Scenes,
		Objects: asset.Objects,
		Style:   asset.Style,
		Mood:    asset.Mood,
		Themes:  asset.Themes,
	}
}

func videoLabels(asset Asset) embedder.VideoLabels {
	labels := embedder.VideoLabels{ImageLabels: imageLabels(asset)}

	for _, kf := range asset.Keyframes {
		labels.Keyframes = append(labels.Keyframes, kf.Description)
	}

	return labels
}

func audioLabels(asset Asset) embedder.AudioLabels {
	tempo := asset.TempoCategory
	if tempo == "" {
		tempo = TempoCategory(asset.BPM)
	}

	return embedder.AudioLabels{
		Title:         asset.Title,
		Prompt:        asset.Prompt,
		Lyrics:        asset.Lyrics,
		Mood:          asset.Mood,
		Themes:        asset.Themes,
		Genre:         asset.Genre,
		TempoCategory: tempo,
	}
}

// searchable text for an asset of any supported type
func composeText(asset Asset) (string, error) {
	switch asset.Type {
	case TypeText, TypeTimeline:
		return composeDocument(asset)
	case TypeImage:
		return embedder.ComposeImageText(imageLabels(asset))
	case TypeVideo:
		return embedder.ComposeVideoText(videoLabels(asset))
	case TypeAudio:
		return embedder.ComposeAudioText(audioLabels(asset))
	}

	return "", apperrors.Validation("type", "unsupported content type %q", asset.Type)
}

// all label values, flattened for the references payload
func flatLabels(asset Asset) []string {
	var labels []string

	for _, group := range [][]string{asset.Scenes, asset.Objects, asset.Style, asset.Mood, asset.Themes, asset.Genre} {
		for _, v := range group {
			if v = strings.TrimSpace(v); v != "" {
				labels = append(labels, v)
			}
		}
	}

	return labels
}
