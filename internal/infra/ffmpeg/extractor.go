package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/IsaiahDupree/MetaCoach/internal/domain/port"
	"go.uber.org/zap"
)

const (
	DefaultFrameCount = 10
	DefaultQuality    = 2
	HookFrameCount    = 5

	// FallbackDuration is assumed when the duration probe fails.
	FallbackDuration = 30.0

	workspacePrefix = "metacoach-"
	inputName       = "input.mp4"
)

var defaultPreview = port.PreviewSpec{Seconds: 3, FPS: 10, Width: 320}

// Extractor turns in-memory video bytes into frames. Every call works in its
// own Workspace which is removed before the call returns.
type Extractor struct {
	decoder  port.FrameDecoder
	tempRoot string
	logger   *zap.Logger
}

func NewExtractor(decoder port.FrameDecoder, tempRoot string, logger *zap.Logger) *Extractor {
	return &Extractor{decoder: decoder, tempRoot: tempRoot, logger: logger}
}

func (e *Extractor) ExtractFrames(ctx context.Context, video []byte, opts port.ExtractOptions) ([]entity.Frame, error) {
	opts = normalizeOptions(opts)
	if err := e.decoder.Available(); err != nil {
		return nil, err
	}

	var frames []entity.Frame
	err := e.withWorkspace(video, func(ws *Workspace, videoPath string) error {
		spec := port.SamplingSpec{Quality: opts.Quality}
		limit := 0
		if opts.IntervalSeconds > 0 {
			spec.FPS = 1 / opts.IntervalSeconds
		} else {
			spec.FPS = float64(opts.Count) / e.duration(ctx, videoPath)
			limit = opts.Count
		}

		paths, err := e.decoder.ExtractFrames(ctx, videoPath, ws.Dir(), spec)
		if err != nil {
			return asExtractionError("extract", err)
		}
		sort.Strings(paths)
		if limit > 0 && len(paths) > limit {
			paths = paths[:limit]
		}
		if len(paths) == 0 {
			return &entity.FrameExtractionError{Op: "extract", Err: errors.New("no frames extracted from video")}
		}

		frames = make([]entity.Frame, 0, len(paths))
		for i, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				return &entity.FrameExtractionError{Op: "read_frame", Err: err}
			}
			frames = append(frames, entity.Frame{Index: i, Offset: float64(i) / spec.FPS, Data: data})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("frames extracted",
		zap.Int("count", len(frames)),
		zap.Int("requested", opts.Count),
		zap.Float64("interval_seconds", opts.IntervalSeconds),
	)
	return frames, nil
}

func (e *Extractor) ExtractSingleFrame(ctx context.Context, video []byte, atSeconds float64, quality int) (entity.Frame, error) {
	quality = normalizeQuality(quality)
	if err := e.decoder.Available(); err != nil {
		return entity.Frame{}, err
	}

	var frame entity.Frame
	err := e.withWorkspace(video, func(ws *Workspace, videoPath string) error {
		out := ws.Path("frame.jpg")
		if err := e.decoder.ExtractFrameAt(ctx, videoPath, out, atSeconds, quality); err != nil {
			return asExtractionError("single_frame", err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			return &entity.FrameExtractionError{Op: "read_frame", Err: fmt.Errorf("frame at %.2fs: %w", atSeconds, err)}
		}
		frame = entity.Frame{Index: 0, Offset: atSeconds, Data: data}
		return nil
	})
	return frame, err
}

// ExtractThumbnail returns the opening frame.
func (e *Extractor) ExtractThumbnail(ctx context.Context, video []byte) (entity.Frame, error) {
	return e.ExtractSingleFrame(ctx, video, 0, DefaultQuality)
}

func (e *Extractor) ExtractHookFrames(ctx context.Context, video []byte) ([]entity.Frame, error) {
	return e.ExtractFrames(ctx, video, port.ExtractOptions{Count: HookFrameCount, Quality: DefaultQuality})
}

func (e *Extractor) Metadata(ctx context.Context, video []byte) (*entity.VideoMetadata, error) {
	var meta *entity.VideoMetadata
	err := e.withWorkspace(video, func(_ *Workspace, videoPath string) error {
		m, err := e.decoder.ProbeMetadata(ctx, videoPath)
		if err != nil {
			return fmt.Errorf("get video metadata: %w", err)
		}
		meta = m
		return nil
	})
	return meta, err
}

func (e *Extractor) PreviewGIF(ctx context.Context, video []byte, spec port.PreviewSpec) ([]byte, error) {
	if spec.Seconds <= 0 {
		spec.Seconds = defaultPreview.Seconds
	}
	if spec.FPS <= 0 {
		spec.FPS = defaultPreview.FPS
	}
	if spec.Width <= 0 {
		spec.Width = defaultPreview.Width
	}
	if err := e.decoder.Available(); err != nil {
		return nil, err
	}

	var gif []byte
	err := e.withWorkspace(video, func(ws *Workspace, videoPath string) error {
		out := ws.Path("preview.gif")
		if err := e.decoder.RenderPreviewGIF(ctx, videoPath, out, spec); err != nil {
			return asExtractionError("preview_gif", err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			return &entity.FrameExtractionError{Op: "read_preview", Err: err}
		}
		gif = data
		return nil
	})
	return gif, err
}

func (e *Extractor) withWorkspace(video []byte, fn func(ws *Workspace, videoPath string) error) error {
	ws, err := AcquireWorkspace(e.tempRoot, workspacePrefix)
	if err != nil {
		return &entity.FrameExtractionError{Op: "workspace", Err: err}
	}
	defer func() {
		if err := ws.Release(); err != nil {
			e.logger.Warn("failed to remove workspace", zap.String("dir", ws.Dir()), zap.Error(err))
		}
	}()

	videoPath, err := ws.WriteFile(inputName, video)
	if err != nil {
		return &entity.FrameExtractionError{Op: "workspace", Err: err}
	}
	return fn(ws, videoPath)
}

func (e *Extractor) duration(ctx context.Context, videoPath string) float64 {
	d, err := e.decoder.ProbeDuration(ctx, videoPath)
	if err != nil || d <= 0 {
		e.logger.Warn("could not get video duration, assuming default",
			zap.Float64("assumed_seconds", FallbackDuration),
			zap.Error(err),
		)
		return FallbackDuration
	}
	return d
}

func normalizeOptions(opts port.ExtractOptions) port.ExtractOptions {
	if opts.Count <= 0 {
		opts.Count = DefaultFrameCount
	}
	if opts.IntervalSeconds < 0 {
		opts.IntervalSeconds = 0
	}
	opts.Quality = normalizeQuality(opts.Quality)
	return opts
}

// normalizeQuality keeps the value on ffmpeg's -q:v scale (1 best, 31 worst).
func normalizeQuality(q int) int {
	switch {
	case q <= 0:
		return DefaultQuality
	case q > 31:
		return 31
	}
	return q
}

func asExtractionError(op string, err error) error {
	var missing *entity.ExternalToolMissingError
	var extraction *entity.FrameExtractionError
	if errors.As(err, &missing) || errors.As(err, &extraction) {
		return err
	}
	return &entity.FrameExtractionError{Op: op, Err: err}
}
