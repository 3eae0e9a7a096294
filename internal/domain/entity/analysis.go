package entity

import "time"

// Frame is one decoded still image. Offset is the position in seconds of the
// frame within the source video and grows with Index.
type Frame struct {
	Index  int
	Offset float64
	Data   []byte
}

type Transcript struct {
	Text       string `json:"text"`
	Language   string `json:"language"`
	DurationMs int64  `json:"duration_ms"`
}

type HookAnalysis struct {
	Score           int      `json:"score"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`

	// KeyFrames are archived separately from the report.
	KeyFrames []Frame `json:"-"`
}

type ThumbnailAnalysis struct {
	Score           int      `json:"score"`
	Clarity         int      `json:"clarity"`
	Composition     int      `json:"composition"`
	Attention       int      `json:"attention"`
	Recommendations []string `json:"recommendations"`
}

type ContentQuality struct {
	OverallScore int      `json:"overall_score"`
	VisualAppeal int      `json:"visual_appeal"`
	Engagement   int      `json:"engagement"`
	Relevance    int      `json:"relevance"`
	Suggestions  []string `json:"suggestions"`
}

type AnalysisStage string

const (
	StageTranscribe     AnalysisStage = "transcribe"
	StageExtractFrames  AnalysisStage = "extract_frames"
	StageHook           AnalysisStage = "hook"
	StageThumbnail      AnalysisStage = "thumbnail"
	StageContentQuality AnalysisStage = "content_quality"
)

// StageFailure records a stage that failed without aborting the analysis.
type StageFailure struct {
	Stage   AnalysisStage `json:"stage"`
	Message string        `json:"message"`
}

type AnalysisResult struct {
	MediaID          string             `json:"media_id"`
	MediaType        MediaType          `json:"media_type"`
	Timestamp        time.Time          `json:"timestamp"`
	Transcript       *Transcript        `json:"transcript,omitempty"`
	Hook             *HookAnalysis      `json:"hook_analysis,omitempty"`
	Thumbnail        *ThumbnailAnalysis `json:"thumbnail_analysis,omitempty"`
	ContentQuality   *ContentQuality    `json:"content_quality,omitempty"`
	Failures         []StageFailure     `json:"failures,omitempty"`
	AnalyzedAt       time.Time          `json:"analyzed_at"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
}

// SimilarAnalysis is a past analysis ranked by transcript similarity.
type SimilarAnalysis struct {
	JobID      string  `json:"job_id"`
	MediaID    string  `json:"media_id"`
	Transcript string  `json:"transcript"`
	Similarity float64 `json:"similarity"`
}
