package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresOpenAIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAIChatModel)
	assert.Equal(t, "whisper-1", cfg.OpenAITranscriptionModel)
	assert.Equal(t, 10, cfg.FrameCount)
	assert.Equal(t, 2, cfg.FrameQuality)
	assert.Equal(t, 3, cfg.DownloadConcurrency)
	assert.Equal(t, "https://graph.facebook.com/v21.0", cfg.MetaGraphURL)
	assert.Equal(t, "analysis.request", cfg.RabbitMQRequestQueue)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("FRAME_COUNT", "6")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("EMBED_TRANSCRIPTS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.FrameCount)
	assert.Equal(t, "http://localhost:11434/v1", cfg.OpenAIBaseURL)
	assert.False(t, cfg.EmbedTranscripts)
}
