// Package references models the per-content-type metadata stored alongside
// each record. On disk it is a JSON object carrying a "type" discriminator.
package references

import (
	"encoding/json"
	"fmt"
	"strconv"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
)

// Reference is implemented by every typed reference payload
type Reference interface {
	// discriminator written to the "type" field
	Kind() string
	validate() error
}

type Text struct {
	Slug   string `json:"slug"`
	URL    string `json:"url,omitempty"`
	Author string `json:"author,omitempty"`
}

type Timeline struct {
	Slug string `json:"slug"`
	Date string `json:"date,omitempty"`
}

// Media covers image and video assets
type Media struct {
	AssetID       string   `json:"asset_id"`
	MediaType     string   `json:"media_type"`
	URL           string   `json:"url,omitempty"`
	S3URL         string   `json:"s3_url,omitempty"`
	CloudflareURL string   `json:"cloudflare_url,omitempty"`
	Width         int      `json:"width,omitempty"`
	Height        int      `json:"height,omitempty"`
	Duration      float64  `json:"duration,omitempty"`
	Labels        []string `json:"labels,omitempty"`
}

type Keyframe struct {
	ParentID  string  `json:"parent_id"`
	Index     int     `json:"index"`
	Timestamp float64 `json:"timestamp"`
	URL       string  `json:"url,omitempty"`
}

type Audio struct {
	AssetID  string   `json:"asset_id"`
	URL      string   `json:"url,omitempty"`
	Artist   string   `json:"artist,omitempty"`
	BPM      float64  `json:"bpm,omitempty"`
	Duration float64  `json:"duration,omitempty"`
	Labels   []string `json:"labels,omitempty"`
}

func (Text) Kind() string     { return "text" }
func (Timeline) Kind() string { return "timeline" }
func (Keyframe) Kind() string { return "keyframe" }
func (Audio) Kind() string    { return "audio" }

func (m Media) Kind() string {
	if m.MediaType != "" {
		return m.MediaType
	}

	return "media"
}

func (t Text) validate() error     { return required("slug", t.Slug) }
func (t Timeline) validate() error { return required("slug", t.Slug) }
func (m Media) validate() error    { return required("asset_id", m.AssetID) }
func (a Audio) validate() error    { return required("asset_id", a.AssetID) }

func (k Keyframe) validate() error {
	if err := required("parent_id", k.ParentID); err != nil {
		return err
	}

	if k.Index < 0 {
		return apperrors.Validation("references.index", "must not be negative, got %d", k.Index)
	}

	return nil
}

func required(field, value string) error {
	if value == "" {
		return apperrors.Validation("references."+field, "is required")
	}

	return nil
}

// Encode serializes a reference with its "type" discriminator
func Encode(ref Reference) (string, error) {
	if err := ref.validate(); err != nil {
		return "", err
	}

	body, err := json.Marshal(ref)
	if err != nil {
		return "", fmt.Errorf("failed to marshal references: %w", err)
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", fmt.Errorf("failed to marshal references: %w", err)
	}

	fields["type"] = json.RawMessage(strconv.Quote(ref.Kind()))

	out, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to marshal references: %w", err)
	}

	return string(out), nil
}

// Decode parses raw references for a record of the given content type.
// A "type" field, when present, must agree with the content type.
func Decode(contentType, raw string) (Reference, error) {
	var ref Reference

	switch contentType {
	case "text":
		ref = &Text{}
	case "timeline":
		ref = &Timeline{}
	case "image", "video", "media":
		ref = &Media{}
	case "keyframe":
		ref = &Keyframe{}
	case "audio":
		ref = &Audio{}
	default:
		return nil, apperrors.Validation("content_type", "no reference type for %q", contentType)
	}

	if err := json.Unmarshal([]byte(raw), ref); err != nil {
		return nil, apperrors.Validation("references", "invalid JSON: %v", err)
	}

	var envelope struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal([]byte(raw), &envelope); err == nil && envelope.Type != "" && envelope.Type != contentType {
		return nil, apperrors.Validation("references.type", "%q does not match content type %q", envelope.Type, contentType)
	}

	// return the value, not the pointer used for decoding
	switch r := ref.(type) {
	case *Text:
		ref = *r
	case *Timeline:
		ref = *r
	case *Media:
		if r.MediaType == "" && contentType != "media" {
			r.MediaType = contentType
		}
		ref = *r
	case *Keyframe:
		ref = *r
	case *Audio:
		ref = *r
	}

	if err := ref.validate(); err != nil {
		return nil, err
	}

	return ref, nil
}

// DecodeLoose parses raw references into a generic object. Anything that is
// not a JSON object yields an empty map.
func DecodeLoose(raw string) map[string]any {
	out := make(map[string]any)

	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return map[string]any{}
	}

	return out
}
