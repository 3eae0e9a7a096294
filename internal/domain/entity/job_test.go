package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisJobLifecycle(t *testing.T) {
	job := NewAnalysisJob("tenant-1", MediaRecord{ID: "179", Type: MediaTypeVideo}, 2)

	assert.Equal(t, JobStatusQueued, job.Status)
	assert.Equal(t, "179", job.MediaID)
	assert.Equal(t, MediaTypeVideo, job.MediaType)
	assert.True(t, job.CanRetry())

	job.MarkRunning()
	assert.Equal(t, JobStatusRunning, job.Status)
	assert.Equal(t, 1, job.Attempt)

	job.MarkFailed("model timeout")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "model timeout", job.ErrorMessage)
	assert.True(t, job.CanRetry())

	job.MarkRunning()
	assert.False(t, job.CanRetry())

	job.MarkDone(&AnalysisResult{
		Transcript:     &Transcript{Text: "hi"},
		Hook:           &HookAnalysis{Score: 81},
		Thumbnail:      &ThumbnailAnalysis{Score: 60},
		ContentQuality: &ContentQuality{OverallScore: 70},
	}, "r.json", "k.zip")

	assert.Equal(t, JobStatusDone, job.Status)
	assert.Empty(t, job.ErrorMessage)
	assert.Equal(t, "hi", job.Transcript)
	require.NotNil(t, job.HookScore)
	assert.Equal(t, 81, *job.HookScore)
	require.NotNil(t, job.ThumbQuality)
	assert.Equal(t, 60, *job.ThumbQuality)
	require.NotNil(t, job.ContentScore)
	assert.Equal(t, 70, *job.ContentScore)
	assert.Equal(t, "k.zip", job.ArchiveKey)
	assert.NotNil(t, job.CompletedAt)
}

func TestMarkDoneWithPartialResult(t *testing.T) {
	job := NewAnalysisJob("t", MediaRecord{ID: "1", Type: MediaTypeImage}, 3)

	job.MarkDone(&AnalysisResult{Thumbnail: &ThumbnailAnalysis{Score: 40}}, "r.json", "")

	assert.Nil(t, job.HookScore)
	assert.Nil(t, job.ContentScore)
	require.NotNil(t, job.ThumbQuality)
	assert.Equal(t, 40, *job.ThumbQuality)
	assert.Empty(t, job.Transcript)
}

func TestMediaRecord(t *testing.T) {
	video := MediaRecord{Type: MediaTypeVideo, MediaURL: "https://cdn/v.mp4", ThumbnailURL: "https://cdn/v.jpg"}
	assert.True(t, video.Downloadable())
	assert.Equal(t, "https://cdn/v.jpg", video.PreviewURL())

	image := MediaRecord{Type: MediaTypeImage, MediaURL: "https://cdn/i.jpg", ThumbnailURL: "ignored"}
	assert.Equal(t, "https://cdn/i.jpg", image.PreviewURL())

	assert.False(t, MediaRecord{Type: MediaTypeVideo}.Downloadable())

	assert.True(t, MediaTypeCarouselAlbum.Valid())
	assert.False(t, MediaType("REEL").Valid())
}

func TestFrameExtractionErrorKeepsTail(t *testing.T) {
	diag := "banner 1\nbanner 2\nbanner 3\nline a\nline b\nline c\nline d\nInvalid data found"
	err := &FrameExtractionError{Op: "extract", Diagnostic: diag, Err: assert.AnError}

	msg := err.Error()
	assert.Contains(t, msg, "Invalid data found")
	assert.NotContains(t, msg, "banner 2")
	assert.ErrorIs(t, err, assert.AnError)
}
