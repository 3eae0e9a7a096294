package port

import (
	"context"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
)

type HookScorer interface {
	ScoreHook(ctx context.Context, frames []entity.Frame, transcript string) (*entity.HookAnalysis, error)
}

type ThumbnailScorer interface {
	ScoreThumbnail(ctx context.Context, image []byte, caption string) (*entity.ThumbnailAnalysis, error)
}

type ContentScorer interface {
	ScoreVideoContent(ctx context.Context, frames []entity.Frame, transcript, caption string) (*entity.ContentQuality, error)
	ScoreImageContent(ctx context.Context, image []byte, caption string) (*entity.ContentQuality, error)
}
