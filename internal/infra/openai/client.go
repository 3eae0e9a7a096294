package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/IsaiahDupree/MetaCoach/internal/domain/port"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/metrics"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	DefaultChatModel          = "gpt-4o"
	DefaultTranscriptionModel = goopenai.Whisper1
	DefaultEmbeddingModel     = string(goopenai.SmallEmbedding3)
	DefaultLanguage           = "en"

	uploadName = "video.mp4"
)

var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

type ClientConfig struct {
	APIKey string
	// BaseURL points the client at any OpenAI-compatible endpoint.
	BaseURL            string
	ChatModel          string
	TranscriptionModel string
	EmbeddingModel     string
	Language           string
}

// Client is the single handle to the hosted model API. It is constructed once
// and injected into the transcriber and scorers.
type Client struct {
	api    *goopenai.Client
	cfg    ClientConfig
	logger *zap.Logger
}

func NewClient(cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = DefaultTranscriptionModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}

	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:    goopenai.NewClientWithConfig(apiCfg),
		cfg:    cfg,
		logger: logger.With(zap.String("chat_model", cfg.ChatModel)),
	}, nil
}

// Transcribe uploads the whole video and asks for a verbose transcript.
func (c *Client) Transcribe(ctx context.Context, video []byte) (*entity.Transcript, error) {
	start := time.Now()

	resp, err := c.api.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    c.cfg.TranscriptionModel,
		FilePath: uploadName,
		Reader:   bytes.NewReader(video),
		Format:   goopenai.AudioResponseFormatVerboseJSON,
		Language: c.cfg.Language,
	})
	if err != nil {
		return nil, &entity.TranscriptionError{Err: describe(err)}
	}

	elapsed := time.Since(start)
	language := resp.Language
	if language == "" {
		language = c.cfg.Language
	}
	if language == "" {
		language = DefaultLanguage
	}

	minutes := resp.Duration / 60
	metrics.ModelCostDollarsTotal.WithLabelValues(c.cfg.TranscriptionModel).Add(EstimateTranscriptionCost(c.cfg.TranscriptionModel, minutes))

	c.logger.Info("transcript generated",
		zap.Duration("elapsed", elapsed),
		zap.Int("text_length", len(resp.Text)),
		zap.String("language", language),
	)

	return &entity.Transcript{
		Text:       resp.Text,
		Language:   language,
		DurationMs: elapsed.Milliseconds(),
	}, nil
}

// Complete sends one rubric plus a multimodal user turn and returns the reply
// text.
func (c *Client) Complete(ctx context.Context, req port.VisionRequest) (string, error) {
	parts := make([]goopenai.ChatMessagePart, 0, len(req.Images)+1)
	parts = append(parts, goopenai.ChatMessagePart{
		Type: goopenai.ChatMessagePartTypeText,
		Text: req.Text,
	})
	for _, img := range req.Images {
		parts = append(parts, goopenai.ChatMessagePart{
			Type: goopenai.ChatMessagePartTypeImageURL,
			ImageURL: &goopenai.ChatMessageImageURL{
				URL:    dataURL(img),
				Detail: imageDetail(img.Detail),
			},
		})
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:         goopenai.ChatMessageRoleUser,
		MultiContent: parts,
	})

	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:     c.cfg.ChatModel,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return "", describe(err)
	}

	c.recordUsage(resp.Usage)
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input: []string{text},
		Model: goopenai.EmbeddingModel(c.cfg.EmbeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", describe(err))
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("create embedding: empty response")
	}

	metrics.ModelTokensTotal.WithLabelValues(c.cfg.EmbeddingModel, "input").Add(float64(resp.Usage.PromptTokens))
	return resp.Data[0].Embedding, nil
}

func (c *Client) recordUsage(usage goopenai.Usage) {
	metrics.ModelTokensTotal.WithLabelValues(c.cfg.ChatModel, "input").Add(float64(usage.PromptTokens))
	metrics.ModelTokensTotal.WithLabelValues(c.cfg.ChatModel, "output").Add(float64(usage.CompletionTokens))

	cost := EstimateChatCost(c.cfg.ChatModel, usage.PromptTokens, usage.CompletionTokens)
	metrics.ModelCostDollarsTotal.WithLabelValues(c.cfg.ChatModel).Add(cost)

	c.logger.Debug("chat completion usage",
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens),
		zap.Float64("estimated_cost_usd", cost),
	)
}

func dataURL(img port.ImageInput) string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func imageDetail(d port.ImageDetail) goopenai.ImageURLDetail {
	switch d {
	case port.ImageDetailLow:
		return goopenai.ImageURLDetailLow
	case port.ImageDetailHigh:
		return goopenai.ImageURLDetailHigh
	}
	return goopenai.ImageURLDetailAuto
}

// describe keeps the provider's own message for API errors.
func describe(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s (status %d): %w", apiErr.Message, apiErr.HTTPStatusCode, err)
	}
	return err
}
