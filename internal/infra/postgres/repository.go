package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

var ErrJobNotFound = errors.New("analysis job not found")

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) Create(ctx context.Context, job *entity.AnalysisJob) error {
	result, err := encodeResult(job.Result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO analysis_jobs (
			id, tenant_id, media_id, media_type, status, attempt, max_attempts,
			transcript, hook_score, thumb_quality, content_score, result,
			report_key, archive_key, error_message, created_at, updated_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`

	_, err = r.pool.Exec(ctx, query,
		job.ID, job.TenantID, job.MediaID, string(job.MediaType), string(job.Status),
		job.Attempt, job.MaxAttempts, job.Transcript,
		job.HookScore, job.ThumbQuality, job.ContentScore, result,
		job.ReportKey, job.ArchiveKey, job.ErrorMessage,
		job.CreatedAt, job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepository) Update(ctx context.Context, job *entity.AnalysisJob) error {
	result, err := encodeResult(job.Result)
	if err != nil {
		return err
	}

	query := `
		UPDATE analysis_jobs SET
			status=$2, attempt=$3, transcript=$4, hook_score=$5, thumb_quality=$6,
			content_score=$7, result=$8, report_key=$9, archive_key=$10,
			error_message=$11, updated_at=$12, completed_at=$13
		WHERE id=$1`

	tag, err := r.pool.Exec(ctx, query,
		job.ID, string(job.Status), job.Attempt, job.Transcript,
		job.HookScore, job.ThumbQuality, job.ContentScore, result,
		job.ReportKey, job.ArchiveKey, job.ErrorMessage,
		job.UpdatedAt, job.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update job %s: %w", job.ID, ErrJobNotFound)
	}
	return nil
}

func (r *JobRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisJob, error) {
	query := `
		SELECT id, tenant_id, media_id, media_type, status, attempt, max_attempts,
			transcript, hook_score, thumb_quality, content_score, result,
			report_key, archive_key, error_message, created_at, updated_at, completed_at
		FROM analysis_jobs WHERE id=$1`

	job := &entity.AnalysisJob{}
	var mediaType, status string
	var result []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.TenantID, &job.MediaID, &mediaType, &status,
		&job.Attempt, &job.MaxAttempts, &job.Transcript,
		&job.HookScore, &job.ThumbQuality, &job.ContentScore, &result,
		&job.ReportKey, &job.ArchiveKey, &job.ErrorMessage,
		&job.CreatedAt, &job.UpdatedAt, &job.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("find job %s: %w", id, ErrJobNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find job by id: %w", err)
	}
	job.MediaType = entity.MediaType(mediaType)
	job.Status = entity.JobStatus(status)

	if len(result) > 0 {
		job.Result = &entity.AnalysisResult{}
		if err := json.Unmarshal(result, job.Result); err != nil {
			return nil, fmt.Errorf("decode job result: %w", err)
		}
	}
	return job, nil
}

func (r *JobRepository) SaveEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE analysis_jobs SET embedding=$2 WHERE id=$1`,
		id, pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("save embedding: %w", err)
	}
	return nil
}

// SearchSimilar ranks finished analyses by cosine similarity of their
// transcript embedding.
func (r *JobRepository) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]entity.SimilarAnalysis, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, media_id, transcript, 1 - (embedding <=> $1) AS similarity
		FROM analysis_jobs
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search similar: %w", err)
	}
	defer rows.Close()

	var out []entity.SimilarAnalysis
	for rows.Next() {
		var id uuid.UUID
		var s entity.SimilarAnalysis
		if err := rows.Scan(&id, &s.MediaID, &s.Transcript, &s.Similarity); err != nil {
			return nil, fmt.Errorf("scan similar: %w", err)
		}
		s.JobID = id.String()
		out = append(out, s)
	}
	return out, rows.Err()
}

func encodeResult(result *entity.AnalysisResult) ([]byte, error) {
	if result == nil {
		return nil, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode job result: %w", err)
	}
	return data, nil
}
