package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/IsaiahDupree/MetaCoach/internal/domain/port"
	"go.uber.org/zap"
)

const framePrefix = "frame-"

// Decoder shells out to ffmpeg and ffprobe.
type Decoder struct {
	ffmpegBin  string
	ffprobeBin string
	logger     *zap.Logger
}

func NewDecoder(ffmpegBin, ffprobeBin string, logger *zap.Logger) *Decoder {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	return &Decoder{ffmpegBin: ffmpegBin, ffprobeBin: ffprobeBin, logger: logger}
}

// Available fails fast when ffmpeg cannot be resolved. ffprobe is optional:
// extraction degrades to an assumed duration without it.
func (d *Decoder) Available() error {
	if _, err := exec.LookPath(d.ffmpegBin); err != nil {
		return &entity.ExternalToolMissingError{Tool: d.ffmpegBin, Err: err}
	}
	return nil
}

func (d *Decoder) ExtractFrames(ctx context.Context, videoPath, outputDir string, spec port.SamplingSpec) ([]string, error) {
	framePattern := filepath.Join(outputDir, framePrefix+"%04d.jpg")
	cmd := exec.CommandContext(ctx, d.ffmpegBin,
		"-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-vf", "fps="+formatRate(spec.FPS),
		"-q:v", strconv.Itoa(spec.Quality),
		"-y",
		framePattern,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, d.toolError("extract", err, output)
	}

	frames, err := filepath.Glob(filepath.Join(outputDir, framePrefix+"*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("glob frames: %w", err)
	}
	sort.Strings(frames)

	d.logger.Debug("frames decoded",
		zap.Int("count", len(frames)),
		zap.Float64("fps", spec.FPS),
		zap.Int("quality", spec.Quality),
	)
	return frames, nil
}

func (d *Decoder) ExtractFrameAt(ctx context.Context, videoPath, outputPath string, atSeconds float64, quality int) error {
	cmd := exec.CommandContext(ctx, d.ffmpegBin,
		"-hide_banner", "-loglevel", "error",
		"-ss", strconv.FormatFloat(atSeconds, 'f', 3, 64),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", strconv.Itoa(quality),
		"-y",
		outputPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return d.toolError("single_frame", err, output)
	}
	return nil
}

func (d *Decoder) RenderPreviewGIF(ctx context.Context, videoPath, outputPath string, spec port.PreviewSpec) error {
	cmd := exec.CommandContext(ctx, d.ffmpegBin,
		"-hide_banner", "-loglevel", "error",
		"-t", strconv.Itoa(spec.Seconds),
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%d,scale=%d:-1:flags=lanczos", spec.FPS, spec.Width),
		"-gifflags", "+transdiff",
		"-y",
		outputPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return d.toolError("preview_gif", err, output)
	}
	return nil
}

func (d *Decoder) ProbeDuration(ctx context.Context, videoPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, d.ffprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return duration, nil
}

type probeOutput struct {
	Streams []struct {
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (d *Decoder) ProbeMetadata(ctx context.Context, videoPath string) (*entity.VideoMetadata, error) {
	cmd := exec.CommandContext(ctx, d.ffprobeBin,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_name,width,height,r_frame_rate",
		"-show_entries", "format=duration",
		"-of", "json",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, &entity.ExternalToolMissingError{Tool: d.ffprobeBin, Err: err}
		}
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbeOutput(output)
}

func parseProbeOutput(raw []byte) (*entity.VideoMetadata, error) {
	var probe probeOutput
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("decode ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return nil, errors.New("no video stream found")
	}

	stream := probe.Streams[0]
	meta := &entity.VideoMetadata{
		Width:  stream.Width,
		Height: stream.Height,
		FPS:    parseFrameRate(stream.RFrameRate),
		Codec:  stream.CodecName,
	}
	if meta.Codec == "" {
		meta.Codec = "unknown"
	}
	if duration, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		meta.Duration = duration
	}
	return meta, nil
}

// parseFrameRate turns "30000/1001" into 29.97. Unparseable rates become 30.
func parseFrameRate(rate string) float64 {
	num, den, found := strings.Cut(rate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil || n <= 0 {
		return 30
	}
	if !found {
		return n
	}
	dv, err := strconv.ParseFloat(den, 64)
	if err != nil || dv == 0 {
		return n
	}
	return n / dv
}

func formatRate(fps float64) string {
	return strconv.FormatFloat(fps, 'f', -1, 64)
}

func (d *Decoder) toolError(op string, err error, output []byte) error {
	if errors.Is(err, exec.ErrNotFound) {
		return &entity.ExternalToolMissingError{Tool: d.ffmpegBin, Err: err}
	}
	return &entity.FrameExtractionError{Op: op, Diagnostic: string(output), Err: err}
}
