package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/IsaiahDupree/MetaCoach/internal/domain/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{
		APIKey:   "sk-test",
		BaseURL:  srv.URL + "/v1",
		Language: "en",
	}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func writeAPIError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": msg, "type": "insufficient_quota"},
	})
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(ClientConfig{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestTranscribe(t *testing.T) {
	var gotModel, gotFormat, gotLanguage, gotFilename string
	var gotBody []byte

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		assert.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model")
		gotFormat = r.FormValue("response_format")
		gotLanguage = r.FormValue("language")
		if f, hdr, err := r.FormFile("file"); assert.NoError(t, err) {
			gotFilename = hdr.Filename
			gotBody, _ = io.ReadAll(f)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"task":"transcribe","language":"english","duration":12.5,"text":"Stop scrolling, this changes everything."}`))
	})

	tr, err := c.Transcribe(context.Background(), []byte("fake mp4 bytes"))
	require.NoError(t, err)

	assert.Equal(t, "whisper-1", gotModel)
	assert.Equal(t, "verbose_json", gotFormat)
	assert.Equal(t, "en", gotLanguage)
	assert.Equal(t, "video.mp4", gotFilename)
	assert.Equal(t, []byte("fake mp4 bytes"), gotBody)

	assert.Equal(t, "Stop scrolling, this changes everything.", tr.Text)
	assert.Equal(t, "english", tr.Language)
	assert.GreaterOrEqual(t, tr.DurationMs, int64(0))
}

func TestTranscribeLanguageFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"hi"}`))
	})

	tr, err := c.Transcribe(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "en", tr.Language)
}

func TestTranscribeProviderFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusTooManyRequests, "You exceeded your current quota")
	})

	_, err := c.Transcribe(context.Background(), []byte("x"))

	var trErr *entity.TranscriptionError
	require.ErrorAs(t, err, &trErr)
	assert.Contains(t, err.Error(), "You exceeded your current quota")
}

func TestComplete(t *testing.T) {
	var req struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Score: 81"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 900, "completion_tokens": 120, "total_tokens": 1020}
		}`))
	})

	reply, err := c.Complete(context.Background(), port.VisionRequest{
		System:    "rubric",
		Text:      "analyze",
		MaxTokens: 800,
		Images: []port.ImageInput{
			{Data: []byte{0xFF, 0xD8}, MIMEType: "image/jpeg", Detail: port.ImageDetailHigh},
			{Data: []byte{0xFF, 0xD8}, Detail: port.ImageDetailLow},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Score: 81", reply)

	assert.Equal(t, "gpt-4o", req.Model)
	assert.Equal(t, 800, req.MaxTokens)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "user", req.Messages[1].Role)

	var parts []struct {
		Type     string `json:"type"`
		Text     string `json:"text"`
		ImageURL struct {
			URL    string `json:"url"`
			Detail string `json:"detail"`
		} `json:"image_url"`
	}
	require.NoError(t, json.Unmarshal(req.Messages[1].Content, &parts))
	require.Len(t, parts, 3)
	assert.Equal(t, "text", parts[0].Type)
	assert.Equal(t, "analyze", parts[0].Text)
	assert.Equal(t, "image_url", parts[1].Type)
	assert.True(t, strings.HasPrefix(parts[1].ImageURL.URL, "data:image/jpeg;base64,"))
	assert.Equal(t, "high", parts[1].ImageURL.Detail)
	assert.Equal(t, "low", parts[2].ImageURL.Detail)
}

func TestCompleteProviderFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusTooManyRequests, "Rate limit reached")
	})

	_, err := c.Complete(context.Background(), port.VisionRequest{Text: "x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rate limit reached")
}

func TestEmbed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		var body struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "text-embedding-3-small", body.Model)
		assert.Equal(t, []string{"hello"}, body.Input)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}],"usage":{"prompt_tokens":1,"total_tokens":1}}`))
	})

	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestEstimateCost(t *testing.T) {
	assert.InDelta(t, 0.0025+0.01, EstimateChatCost("gpt-4o", 1000, 1000), 1e-12)
	assert.InDelta(t, 0.00015*2, EstimateChatCost("gpt-4o-mini", 2000, 0), 1e-12)
	assert.Zero(t, EstimateChatCost("llava", 1000, 1000))

	assert.InDelta(t, 0.006*2.5, EstimateTranscriptionCost("whisper-1", 2.5), 1e-12)
	assert.Zero(t, EstimateTranscriptionCost("whisper-1", 0))
}
