package embedder

import (
	"context"
	"testing"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeImageText(t *testing.T) {
	text, err := ComposeImageText(ImageLabels{
		Title:   "Harbour at dusk",
		Scenes:  []string{"harbour", " "},
		Objects: []string{"boat", "crane"},
		Mood:    []string{"calm"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Harbour at dusk. scenes: harbour. objects: boat, crane. mood: calm", text)
}

func TestComposeVideoText(t *testing.T) {
	text, err := ComposeVideoText(VideoLabels{
		ImageLabels: ImageLabels{Prompt: "drone flight", Style: []string{"cinematic"}},
		Keyframes:   []string{"coastline", "lighthouse"},
	})

	require.NoError(t, err)
	assert.Equal(t, "drone flight. style: cinematic. keyframes: coastline, lighthouse", text)
}

func TestComposeAudioText(t *testing.T) {
	text, err := ComposeAudioText(AudioLabels{
		Title:         "Night Walk",
		Lyrics:        "walking alone at night",
		Mood:          []string{"melancholy"},
		Genre:         []string{"lofi"},
		TempoCategory: "slow",
	})

	require.NoError(t, err)
	assert.Contains(t, text, "walking alone at night")
	assert.Contains(t, text, "melancholy")
	assert.Equal(t, "Night Walk. walking alone at night. mood: melancholy. style: lofi. tempo: slow", text)
}

func TestCompose_Empty(t *testing.T) {
	_, err := ComposeImageText(ImageLabels{Scenes: []string{" "}})
	assert.True(t, apperrors.IsValidation(err))

	_, err = ComposeVideoText(VideoLabels{})
	assert.True(t, apperrors.IsValidation(err))

	_, err = ComposeAudioText(AudioLabels{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestEmbedAudio(t *testing.T) {
	provider := newFakeProvider(testDims)
	client := testClient(provider)

	vector, text, err := client.EmbedAudio(context.Background(), AudioLabels{
		Lyrics: "walking alone at night",
		Mood:   []string{"melancholy"},
	})

	require.NoError(t, err)
	assert.Len(t, vector, testDims)
	assert.Equal(t, "walking alone at night. mood: melancholy", text)
}
