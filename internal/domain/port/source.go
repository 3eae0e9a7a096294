package port

import (
	"context"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
)

// MediaSource downloads media bytes from the social platform's CDN.
type MediaSource interface {
	Download(ctx context.Context, mediaURL string) ([]byte, error)
}

type MediaCatalog interface {
	ListMedia(ctx context.Context, igUserID string, limit int) ([]entity.MediaRecord, error)
}
