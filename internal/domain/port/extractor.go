package port

import (
	"context"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
)

// SamplingSpec tells the decoder how densely to sample a video.
type SamplingSpec struct {
	FPS     float64
	Quality int
}

type PreviewSpec struct {
	Seconds int
	FPS     int
	Width   int
}

// FrameDecoder wraps the external decode/probe toolchain.
type FrameDecoder interface {
	Available() error
	ProbeDuration(ctx context.Context, videoPath string) (float64, error)
	ProbeMetadata(ctx context.Context, videoPath string) (*entity.VideoMetadata, error)
	ExtractFrames(ctx context.Context, videoPath, outputDir string, spec SamplingSpec) ([]string, error)
	ExtractFrameAt(ctx context.Context, videoPath, outputPath string, atSeconds float64, quality int) error
	RenderPreviewGIF(ctx context.Context, videoPath, outputPath string, spec PreviewSpec) error
}

// ExtractOptions selects frames either evenly across the video (Count) or at a
// fixed cadence (IntervalSeconds). Zero values take the extractor defaults.
type ExtractOptions struct {
	Count           int
	IntervalSeconds float64
	Quality         int
}

type FrameExtractor interface {
	ExtractFrames(ctx context.Context, video []byte, opts ExtractOptions) ([]entity.Frame, error)
}
