package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusQueued  JobStatus = "queued"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

// AnalysisJob tracks one analysis request through the worker.
type AnalysisJob struct {
	ID           uuid.UUID
	TenantID     string
	MediaID      string
	MediaType    MediaType
	Status       JobStatus
	Attempt      int
	MaxAttempts  int
	Transcript   string
	HookScore    *int
	ThumbQuality *int
	ContentScore *int
	Result       *AnalysisResult
	ReportKey    string
	ArchiveKey   string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

func NewAnalysisJob(tenantID string, media MediaRecord, maxAttempts int) *AnalysisJob {
	now := time.Now().UTC()
	return &AnalysisJob{
		ID:          uuid.New(),
		TenantID:    tenantID,
		MediaID:     media.ID,
		MediaType:   media.Type,
		Status:      JobStatusQueued,
		MaxAttempts: maxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (j *AnalysisJob) MarkRunning() {
	j.Status = JobStatusRunning
	j.Attempt++
	j.UpdatedAt = time.Now().UTC()
}

// MarkDone copies the headline scores out of the result so they can be
// queried without decoding the findings document.
func (j *AnalysisJob) MarkDone(result *AnalysisResult, reportKey, archiveKey string) {
	now := time.Now().UTC()
	j.Status = JobStatusDone
	j.Result = result
	j.ReportKey = reportKey
	j.ArchiveKey = archiveKey
	j.ErrorMessage = ""
	if result != nil {
		if result.Transcript != nil {
			j.Transcript = result.Transcript.Text
		}
		if result.Hook != nil {
			j.HookScore = intPtr(result.Hook.Score)
		}
		if result.Thumbnail != nil {
			j.ThumbQuality = intPtr(result.Thumbnail.Score)
		}
		if result.ContentQuality != nil {
			j.ContentScore = intPtr(result.ContentQuality.OverallScore)
		}
	}
	j.UpdatedAt = now
	j.CompletedAt = &now
}

func (j *AnalysisJob) MarkFailed(errMsg string) {
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.UpdatedAt = time.Now().UTC()
}

func (j *AnalysisJob) CanRetry() bool {
	return j.Attempt < j.MaxAttempts
}

func intPtr(v int) *int { return &v }
