package port

import (
	"context"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/google/uuid"
)

type AnalysisJobRepository interface {
	Create(ctx context.Context, job *entity.AnalysisJob) error
	Update(ctx context.Context, job *entity.AnalysisJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisJob, error)
	SaveEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]entity.SimilarAnalysis, error)
}
