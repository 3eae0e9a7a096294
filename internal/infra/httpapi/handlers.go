package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type createAnalysisRequest struct {
	TenantID    string             `json:"tenant_id"`
	Media       entity.MediaRecord `json:"media"`
	ObjectKey   string             `json:"object_key,omitempty"`
	NotifyEmail string             `json:"notify_email,omitempty"`
}

type jobView struct {
	ID           uuid.UUID              `json:"id"`
	TenantID     string                 `json:"tenant_id"`
	MediaID      string                 `json:"media_id"`
	MediaType    entity.MediaType       `json:"media_type"`
	Status       entity.JobStatus       `json:"status"`
	Attempt      int                    `json:"attempt"`
	MaxAttempts  int                    `json:"max_attempts"`
	HookScore    *int                   `json:"hook_score,omitempty"`
	ThumbQuality *int                   `json:"thumb_quality,omitempty"`
	ContentScore *int                   `json:"content_score,omitempty"`
	ReportKey    string                 `json:"report_key,omitempty"`
	ArchiveKey   string                 `json:"archive_key,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Result       *entity.AnalysisResult `json:"result,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
}

func viewOf(job *entity.AnalysisJob) jobView {
	return jobView{
		ID:           job.ID,
		TenantID:     job.TenantID,
		MediaID:      job.MediaID,
		MediaType:    job.MediaType,
		Status:       job.Status,
		Attempt:      job.Attempt,
		MaxAttempts:  job.MaxAttempts,
		HookScore:    job.HookScore,
		ThumbQuality: job.ThumbQuality,
		ContentScore: job.ContentScore,
		ReportKey:    job.ReportKey,
		ArchiveKey:   job.ArchiveKey,
		ErrorMessage: job.ErrorMessage,
		Result:       job.Result,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
		CompletedAt:  job.CompletedAt,
	}
}

// CreateAnalysis records a queued job and publishes the request for the worker.
func (h *Handlers) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req createAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := entity.NewAnalysisJob(req.TenantID, req.Media, h.maxRetry)
	if err := h.repo.Create(r.Context(), job); err != nil {
		h.logger.Error("failed to create analysis job", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create analysis job")
		return
	}

	body, err := json.Marshal(entity.AnalysisRequestMessage{
		JobID:       job.ID,
		TenantID:    req.TenantID,
		Media:       req.Media,
		ObjectKey:   req.ObjectKey,
		NotifyEmail: req.NotifyEmail,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode request")
		return
	}
	if err := h.requests.PublishRequest(r.Context(), body); err != nil {
		h.logger.Error("failed to publish analysis request", zap.String("job_id", job.ID.String()), zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "failed to enqueue analysis")
		return
	}

	h.logger.Info("analysis queued", zap.String("job_id", job.ID.String()), zap.String("media_id", job.MediaID))
	respondJSON(w, http.StatusAccepted, viewOf(job))
}

func (h *Handlers) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid analysis id")
		return
	}

	job, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "analysis not found")
		return
	}

	respondJSON(w, http.StatusOK, viewOf(job))
}

func validate(req createAnalysisRequest) error {
	switch {
	case req.TenantID == "":
		return errors.New("tenant_id is required")
	case req.Media.ID == "":
		return errors.New("media.id is required")
	case !req.Media.Type.Valid():
		return errors.New("media.media_type must be IMAGE, VIDEO or CAROUSEL_ALBUM")
	case req.ObjectKey == "" && !req.Media.Downloadable():
		return errors.New("media has no media_url and no object_key was given")
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
