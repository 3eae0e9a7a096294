package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/IsaiahDupree/MetaCoach/internal/domain/port"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ContentAnalyzer is satisfied by AnalyzeContentUseCase.
type ContentAnalyzer interface {
	Analyze(ctx context.Context, media []byte, rec entity.MediaRecord) (*entity.AnalysisResult, error)
}

type ProcessAnalysisUseCase struct {
	repo      port.AnalysisJobRepository
	storage   port.MediaStorage
	source    port.MediaSource
	analyzer  ContentAnalyzer
	embedder  port.Embedder
	archiver  port.Archiver
	publisher port.StatusPublisher
	dlq       port.DLQPublisher
	notifier  port.FailureNotifier
	logger    *zap.Logger
	maxRetry  int
}

type ProcessAnalysisConfig struct {
	MaxRetries int
}

// NewProcessAnalysisUseCase wires the worker pipeline. embedder may be nil to
// skip transcript embeddings.
func NewProcessAnalysisUseCase(
	repo port.AnalysisJobRepository,
	storage port.MediaStorage,
	source port.MediaSource,
	analyzer ContentAnalyzer,
	embedder port.Embedder,
	archiver port.Archiver,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg ProcessAnalysisConfig,
) *ProcessAnalysisUseCase {
	return &ProcessAnalysisUseCase{
		repo:      repo,
		storage:   storage,
		source:    source,
		analyzer:  analyzer,
		embedder:  embedder,
		archiver:  archiver,
		publisher: publisher,
		dlq:       dlq,
		notifier:  notifier,
		logger:    logger,
		maxRetry:  cfg.MaxRetries,
	}
}

func (uc *ProcessAnalysisUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ProcessAnalysisUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.AnalysisRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("media.id", msg.Media.ID),
		attribute.String("media.type", string(msg.Media.Type)),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.String("media_id", msg.Media.ID))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewAnalysisJob(msg.TenantID, msg.Media, uc.maxRetry)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
		return nil
	}

	job.MarkRunning()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to running", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.runPipeline(ctx, job, msg, rawMsg, log); err != nil {
		return err
	}

	metrics.AnalysesTotal.WithLabelValues(string(entity.JobStatusDone)).Inc()
	metrics.AnalysisStageDuration.WithLabelValues("job").Observe(time.Since(totalTimer).Seconds())
	return nil
}

func (uc *ProcessAnalysisUseCase) runPipeline(
	ctx context.Context,
	job *entity.AnalysisJob,
	msg entity.AnalysisRequestMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	// Fetch media bytes
	dlStart := time.Now()
	ctxDl, spanDl := tracer.Start(ctx, "fetch_media")
	media, err := uc.fetchMedia(ctxDl, msg)
	spanDl.End()
	if err != nil {
		log.Error("failed to fetch media", zap.Error(err))
		return uc.handleFailure(ctx, job, msg, rawMsg, "fetch_media: "+err.Error(), err, log)
	}
	metrics.AnalysisStageDuration.WithLabelValues("fetch").Observe(time.Since(dlStart).Seconds())

	result, err := uc.analyzer.Analyze(ctx, media, msg.Media)
	if err != nil {
		return uc.handleFailure(ctx, job, msg, rawMsg, "analyze: "+err.Error(), err, log)
	}

	if uc.embedder != nil && result.Transcript != nil && result.Transcript.Text != "" {
		uc.embedTranscript(ctx, job, result.Transcript.Text, log)
	}

	// Upload report
	upStart := time.Now()
	ctxUp, spanUp := tracer.Start(ctx, "upload_report")
	reportKey := fmt.Sprintf("%s/%s/report.json", msg.TenantID, job.ID.String())
	report, err := json.Marshal(result)
	if err != nil {
		spanUp.End()
		return uc.handleFailure(ctx, job, msg, rawMsg, "encode_report: "+err.Error(), err, log)
	}
	if err := uc.storage.UploadReport(ctxUp, reportKey, report); err != nil {
		spanUp.End()
		log.Error("report upload failed", zap.Error(err))
		return uc.handleFailure(ctx, job, msg, rawMsg, "upload_report: "+err.Error(), err, log)
	}

	archiveKey := ""
	if result.Hook != nil && len(result.Hook.KeyFrames) > 0 {
		archiveKey = fmt.Sprintf("%s/%s/key-frames.zip", msg.TenantID, job.ID.String())
		if err := uc.uploadKeyFrames(ctxUp, archiveKey, result.Hook.KeyFrames); err != nil {
			spanUp.End()
			log.Error("key frame upload failed", zap.Error(err))
			return uc.handleFailure(ctx, job, msg, rawMsg, "upload_key_frames: "+err.Error(), err, log)
		}
	}
	spanUp.End()
	metrics.AnalysisStageDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())

	job.MarkDone(result, reportKey, archiveKey)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to done", zap.Error(err))
		return fmt.Errorf("update job done: %w", err)
	}

	uc.publishStatus(ctx, job, log)

	log.Info("analysis job completed",
		zap.Int64("processing_time_ms", result.ProcessingTimeMs),
		zap.String("report_key", reportKey),
		zap.String("archive_key", archiveKey),
		zap.Int("tolerated_failures", len(result.Failures)),
	)
	return nil
}

func (uc *ProcessAnalysisUseCase) fetchMedia(ctx context.Context, msg entity.AnalysisRequestMessage) ([]byte, error) {
	if msg.ObjectKey != "" {
		return uc.storage.DownloadMedia(ctx, msg.ObjectKey)
	}
	if !msg.Media.Downloadable() {
		return nil, entity.ErrMediaNotDownloadable
	}
	return uc.source.Download(ctx, msg.Media.MediaURL)
}

func (uc *ProcessAnalysisUseCase) uploadKeyFrames(ctx context.Context, key string, frames []entity.Frame) error {
	entries := make([]port.ArchiveEntry, 0, len(frames))
	for _, f := range frames {
		entries = append(entries, port.ArchiveEntry{Name: fmt.Sprintf("frame-%04d.jpg", f.Index), Data: f.Data})
	}

	var buf bytes.Buffer
	if err := uc.archiver.CreateZip(ctx, entries, &buf); err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	return uc.storage.UploadArchive(ctx, key, &buf, int64(buf.Len()))
}

func (uc *ProcessAnalysisUseCase) embedTranscript(ctx context.Context, job *entity.AnalysisJob, text string, log *zap.Logger) {
	vec, err := uc.embedder.Embed(ctx, text)
	if err != nil {
		log.Warn("transcript embedding failed", zap.Error(err))
		return
	}
	if err := uc.repo.SaveEmbedding(ctx, job.ID, vec); err != nil {
		log.Warn("failed to store transcript embedding", zap.Error(err))
	}
}

// isPermanent reports failures that another attempt cannot fix.
func isPermanent(err error) bool {
	var missing *entity.ExternalToolMissingError
	return errors.As(err, &missing) ||
		errors.Is(err, entity.ErrUnsupportedMediaType) ||
		errors.Is(err, entity.ErrMediaNotDownloadable)
}

func (uc *ProcessAnalysisUseCase) handleFailure(
	ctx context.Context,
	job *entity.AnalysisJob,
	msg entity.AnalysisRequestMessage,
	rawMsg []byte,
	errMsg string,
	cause error,
	log *zap.Logger,
) error {
	if isPermanent(cause) {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}
	return uc.handleRetryableFailure(ctx, job, msg, rawMsg, errMsg, log)
}

func (uc *ProcessAnalysisUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.AnalysisJob,
	msg entity.AnalysisRequestMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *ProcessAnalysisUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.AnalysisJob,
	msg entity.AnalysisRequestMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.AnalysesTotal.WithLabelValues("dlq").Inc()

	if msg.NotifyEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.NotifyEmail, job.ID.String(), msg.Media.ID, errMsg)
	}

	return nil
}

func (uc *ProcessAnalysisUseCase) publishStatus(ctx context.Context, job *entity.AnalysisJob, log *zap.Logger) {
	statusMsg := entity.AnalysisStatusMessage{
		JobID:        job.ID,
		TenantID:     job.TenantID,
		MediaID:      job.MediaID,
		Status:       job.Status,
		HookScore:    job.HookScore,
		ThumbQuality: job.ThumbQuality,
		ContentScore: job.ContentScore,
		ReportKey:    job.ReportKey,
		ArchiveKey:   job.ArchiveKey,
		ErrorMessage: job.ErrorMessage,
		Attempt:      job.Attempt,
		MaxAttempts:  job.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
