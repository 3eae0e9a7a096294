package app

import (
	"fmt"
	"os"

	"github.com/IsaiahDupree/MetaCoach/internal/infra/config"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/ffmpeg"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/openai"
	"github.com/IsaiahDupree/MetaCoach/internal/scoring"
	"github.com/IsaiahDupree/MetaCoach/internal/usecase"
	"go.uber.org/zap"
)

// Pipeline holds the analysis components shared by the worker and the CLI.
type Pipeline struct {
	Model     *openai.Client
	Extractor *ffmpeg.Extractor
	Decoder   *ffmpeg.Decoder
	Analyzer  *usecase.AnalyzeContentUseCase
}

// NewPipeline builds the model client, the ffmpeg extractor and the analysis
// orchestrator from cfg. A missing API key fails here, before any work starts.
func NewPipeline(cfg *config.Config, log *zap.Logger) (*Pipeline, error) {
	model, err := openai.NewClient(openai.ClientConfig{
		APIKey:             cfg.OpenAIAPIKey,
		BaseURL:            cfg.OpenAIBaseURL,
		ChatModel:          cfg.OpenAIChatModel,
		TranscriptionModel: cfg.OpenAITranscriptionModel,
		EmbeddingModel:     cfg.OpenAIEmbeddingModel,
		Language:           cfg.TranscriptionLanguage,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("create model client: %w", err)
	}

	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	decoder := ffmpeg.NewDecoder(cfg.FFmpegBin, cfg.FFprobeBin, log)
	extractor := ffmpeg.NewExtractor(decoder, cfg.TempDir, log)
	scorer := scoring.NewScorer(model, log)

	analyzer := usecase.NewAnalyzeContentUseCase(
		model, extractor, scorer, scorer, scorer,
		log,
		usecase.AnalyzeContentConfig{
			FrameCount:   cfg.FrameCount,
			FrameQuality: cfg.FrameQuality,
		},
	)

	return &Pipeline{Model: model, Extractor: extractor, Decoder: decoder, Analyzer: analyzer}, nil
}
