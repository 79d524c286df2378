package embedder

import (
	"context"
	"strings"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
)

// accumulates labelled fragments into one embeddable string
type textBuilder struct {
	parts []string
}

func (b *textBuilder) text(value string) {
	if value = strings.TrimSpace(value); value != "" {
		b.parts = append(b.parts, value)
	}
}

func (b *textBuilder) labels(category string, values []string) {
	kept := make([]string, 0, len(values))

	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}

	if len(kept) > 0 {
		b.parts = append(b.parts, category+": "+strings.Join(kept, ", "))
	}
}

func (b *textBuilder) build() (string, error) {
	if len(b.parts) == 0 {
		return "", apperrors.Validation("labels", "no text content found")
	}

	return strings.Join(b.parts, ". "), nil
}

// title, prompt, scenes, objects, style, mood, themes
func ComposeImageText(labels ImageLabels) (string, error) {
	var b textBuilder
	writeImageLabels(&b, labels)

	return b.build()
}

// image label order followed by keyframe descriptions
func ComposeVideoText(labels VideoLabels) (string, error) {
	var b textBuilder
	writeImageLabels(&b, labels.ImageLabels)
	b.labels("keyframes", labels.Keyframes)

	return b.build()
}

// title, prompt, lyrics, mood, themes, genre, tempo
func ComposeAudioText(labels AudioLabels) (string, error) {
	var b textBuilder
	b.text(labels.Title)
	b.text(labels.Prompt)
	b.text(labels.Lyrics)
	b.labels("mood", labels.Mood)
	b.labels("themes", labels.Themes)
	b.labels("style", labels.Genre)

	if labels.TempoCategory != "" {
		b.labels("tempo", []string{labels.TempoCategory})
	}

	return b.build()
}

func writeImageLabels(b *textBuilder, labels ImageLabels) {
	b.text(labels.Title)
	b.text(labels.Prompt)
	b.labels("scenes", labels.Scenes)
	b.labels("objects", labels.Objects)
	b.labels("style", labels.Style)
	b.labels("mood", labels.Mood)
	b.labels("themes", labels.Themes)
}

func (c *Client) EmbedImage(ctx context.Context, labels ImageLabels) ([]float32, string, error) {
	text, err := ComposeImageText(labels)
	if err != nil {
		return nil, "", err
	}

	return c.embedComposed(ctx, text)
}

func (c *Client) EmbedVideo(ctx context.Context, labels VideoLabels) ([]float32, string, error) {
	text, err := ComposeVideoText(labels)
	if err != nil {
		return nil, "", err
	}

	return c.embedComposed(ctx, text)
}

func (c *Client) EmbedAudio(ctx context.Context, labels AudioLabels) ([]float32, string, error) {
	text, err := ComposeAudioText(labels)
	if err != nil {
		return nil, "", err
	}

	return c.embedComposed(ctx, text)
}

func (c *Client) embedComposed(ctx context.Context, text string) ([]float32, string, error) {
	vector, err := c.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, "", err
	}

	return vector, text, nil
}
