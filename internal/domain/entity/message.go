package entity

import "github.com/google/uuid"

// AnalysisRequestMessage is the inbound message from the analysis.request queue.
// ObjectKey points at media already uploaded to object storage; when empty the
// worker downloads Media.MediaURL instead.
type AnalysisRequestMessage struct {
	JobID       uuid.UUID   `json:"job_id"`
	TenantID    string      `json:"tenant_id"`
	Media       MediaRecord `json:"media"`
	ObjectKey   string      `json:"object_key,omitempty"`
	NotifyEmail string      `json:"notify_email,omitempty"`
}

// AnalysisStatusMessage is the outbound message published to the analysis.status queue.
type AnalysisStatusMessage struct {
	JobID        uuid.UUID `json:"job_id"`
	TenantID     string    `json:"tenant_id"`
	MediaID      string    `json:"media_id"`
	Status       JobStatus `json:"status"`
	HookScore    *int      `json:"hook_score,omitempty"`
	ThumbQuality *int      `json:"thumb_quality,omitempty"`
	ContentScore *int      `json:"content_score,omitempty"`
	ReportKey    string    `json:"report_key,omitempty"`
	ArchiveKey   string    `json:"archive_key,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Attempt      int       `json:"attempt"`
	MaxAttempts  int       `json:"max_attempts"`
}
