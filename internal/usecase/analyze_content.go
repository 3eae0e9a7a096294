package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/IsaiahDupree/MetaCoach/internal/domain/port"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const hookFrameCount = 5

type AnalyzeContentUseCase struct {
	transcriber port.Transcriber
	extractor   port.FrameExtractor
	hook        port.HookScorer
	thumbnail   port.ThumbnailScorer
	content     port.ContentScorer
	logger      *zap.Logger
	frames      port.ExtractOptions
}

type AnalyzeContentConfig struct {
	FrameCount   int
	FrameQuality int
}

func NewAnalyzeContentUseCase(
	transcriber port.Transcriber,
	extractor port.FrameExtractor,
	hook port.HookScorer,
	thumbnail port.ThumbnailScorer,
	content port.ContentScorer,
	logger *zap.Logger,
	cfg AnalyzeContentConfig,
) *AnalyzeContentUseCase {
	if cfg.FrameCount <= 0 {
		cfg.FrameCount = 10
	}
	return &AnalyzeContentUseCase{
		transcriber: transcriber,
		extractor:   extractor,
		hook:        hook,
		thumbnail:   thumbnail,
		content:     content,
		logger:      logger,
		frames:      port.ExtractOptions{Count: cfg.FrameCount, Quality: cfg.FrameQuality},
	}
}

// Analyze runs the pipeline for one media item. Video stages depend on each
// other and any failure aborts the call. Image stages are independent: a
// failed stage is recorded in the result and only the failure of every stage
// is returned as an error.
func (uc *AnalyzeContentUseCase) Analyze(ctx context.Context, media []byte, rec entity.MediaRecord) (*entity.AnalysisResult, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "AnalyzeContentUseCase.Analyze")
	defer span.End()

	start := time.Now()
	span.SetAttributes(
		attribute.String("media.id", rec.ID),
		attribute.String("media.type", string(rec.Type)),
		attribute.Int("media.bytes", len(media)),
	)
	log := uc.logger.With(zap.String("media_id", rec.ID), zap.String("media_type", string(rec.Type)))

	if len(media) == 0 {
		return nil, errors.New("empty media payload")
	}

	result := &entity.AnalysisResult{
		MediaID:   rec.ID,
		MediaType: rec.Type,
		Timestamp: rec.Timestamp,
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = start.UTC()
	}

	log.Info("starting analysis", zap.Int("bytes", len(media)))

	var err error
	switch rec.Type {
	case entity.MediaTypeVideo:
		err = uc.analyzeVideo(ctx, media, rec, result, log)
	case entity.MediaTypeImage:
		err = uc.analyzeImage(ctx, media, rec, result, log)
	case entity.MediaTypeCarouselAlbum:
		err = uc.analyzeCarousel(ctx, media, rec, result, log)
	default:
		err = fmt.Errorf("%w: %q", entity.ErrUnsupportedMediaType, rec.Type)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("analysis failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	result.AnalyzedAt = time.Now().UTC()
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	metrics.AnalysisStageDuration.WithLabelValues("total").Observe(time.Since(start).Seconds())

	log.Info("analysis complete",
		zap.Int64("processing_time_ms", result.ProcessingTimeMs),
		zap.Int("tolerated_failures", len(result.Failures)),
	)
	return result, nil
}

func (uc *AnalyzeContentUseCase) analyzeVideo(ctx context.Context, video []byte, rec entity.MediaRecord, result *entity.AnalysisResult, log *zap.Logger) error {
	var transcript *entity.Transcript
	err := uc.stage(ctx, entity.StageTranscribe, func(ctx context.Context) error {
		t, err := uc.transcriber.Transcribe(ctx, video)
		transcript = t
		return err
	})
	if err != nil {
		return uc.abort(entity.StageTranscribe, err)
	}
	result.Transcript = transcript

	var frames []entity.Frame
	err = uc.stage(ctx, entity.StageExtractFrames, func(ctx context.Context) error {
		f, err := uc.extractor.ExtractFrames(ctx, video, uc.frames)
		frames = f
		return err
	})
	if err != nil {
		return uc.abort(entity.StageExtractFrames, err)
	}
	metrics.FramesExtractedTotal.Add(float64(len(frames)))
	log.Debug("frames ready", zap.Int("count", len(frames)))

	hookFrames := frames[:min(len(frames), hookFrameCount)]
	err = uc.stage(ctx, entity.StageHook, func(ctx context.Context) error {
		h, err := uc.hook.ScoreHook(ctx, hookFrames, transcript.Text)
		result.Hook = h
		return err
	})
	if err != nil {
		return uc.abort(entity.StageHook, err)
	}

	err = uc.stage(ctx, entity.StageContentQuality, func(ctx context.Context) error {
		q, err := uc.content.ScoreVideoContent(ctx, frames, transcript.Text, rec.Caption)
		result.ContentQuality = q
		return err
	})
	if err != nil {
		return uc.abort(entity.StageContentQuality, err)
	}
	return nil
}

func (uc *AnalyzeContentUseCase) analyzeImage(ctx context.Context, image []byte, rec entity.MediaRecord, result *entity.AnalysisResult, log *zap.Logger) error {
	var errs []error

	err := uc.stage(ctx, entity.StageThumbnail, func(ctx context.Context) error {
		t, err := uc.thumbnail.ScoreThumbnail(ctx, image, rec.Caption)
		result.Thumbnail = t
		return err
	})
	if err != nil {
		errs = append(errs, err)
		uc.tolerate(ctx, result, entity.StageThumbnail, err, log)
	}

	err = uc.stage(ctx, entity.StageContentQuality, func(ctx context.Context) error {
		q, err := uc.content.ScoreImageContent(ctx, image, rec.Caption)
		result.ContentQuality = q
		return err
	})
	if err != nil {
		errs = append(errs, err)
		uc.tolerate(ctx, result, entity.StageContentQuality, err, log)
	}

	if len(errs) == 2 {
		return errors.Join(errs...)
	}
	return nil
}

// analyzeCarousel treats the album's lead image as representative.
func (uc *AnalyzeContentUseCase) analyzeCarousel(ctx context.Context, lead []byte, rec entity.MediaRecord, result *entity.AnalysisResult, _ *zap.Logger) error {
	err := uc.stage(ctx, entity.StageThumbnail, func(ctx context.Context) error {
		t, err := uc.thumbnail.ScoreThumbnail(ctx, lead, rec.Caption)
		result.Thumbnail = t
		return err
	})
	if err != nil {
		return uc.abort(entity.StageThumbnail, err)
	}
	return nil
}

func (uc *AnalyzeContentUseCase) stage(ctx context.Context, stage entity.AnalysisStage, fn func(context.Context) error) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, string(stage))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	metrics.AnalysisStageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (uc *AnalyzeContentUseCase) abort(stage entity.AnalysisStage, err error) error {
	metrics.StageFailuresTotal.WithLabelValues(string(stage), "false").Inc()
	return err
}

func (uc *AnalyzeContentUseCase) tolerate(ctx context.Context, result *entity.AnalysisResult, stage entity.AnalysisStage, err error, log *zap.Logger) {
	metrics.StageFailuresTotal.WithLabelValues(string(stage), "true").Inc()
	trace.SpanFromContext(ctx).AddEvent("stage_tolerated", trace.WithAttributes(
		attribute.String("stage", string(stage)),
		attribute.String("error", err.Error()),
	))
	result.Failures = append(result.Failures, entity.StageFailure{Stage: stage, Message: err.Error()})
	log.Warn("stage failed, continuing", zap.String("stage", string(stage)), zap.Error(err))
}
