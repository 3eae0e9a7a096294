package usecase

import (
	"context"
	"time"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/IsaiahDupree/MetaCoach/internal/domain/port"
	"golang.org/x/sync/errgroup"
)

const DefaultDownloadConcurrency = 3

type DownloadOutcome struct {
	Media entity.MediaRecord
	Data  []byte
	Err   error
}

func (o DownloadOutcome) OK() bool { return o.Err == nil }

// DownloadBatch fetches items in chunks of concurrency. Each chunk finishes
// before the next starts, outcomes keep the input order, and one failed item
// never stops the rest.
func DownloadBatch(ctx context.Context, source port.MediaSource, items []entity.MediaRecord, concurrency int) []DownloadOutcome {
	if concurrency <= 0 {
		concurrency = DefaultDownloadConcurrency
	}

	outcomes := make([]DownloadOutcome, len(items))
	for i := 0; i < len(items); i += concurrency {
		end := min(i+concurrency, len(items))

		var g errgroup.Group
		for j := i; j < end; j++ {
			j := j
			g.Go(func() error {
				outcomes[j] = downloadOne(ctx, source, items[j])
				return nil
			})
		}
		_ = g.Wait()
	}
	return outcomes
}

func downloadOne(ctx context.Context, source port.MediaSource, media entity.MediaRecord) DownloadOutcome {
	out := DownloadOutcome{Media: media}
	if !media.Downloadable() {
		out.Err = entity.ErrMediaNotDownloadable
		return out
	}
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}
	out.Data, out.Err = source.Download(ctx, media.MediaURL)
	return out
}

// MediaFilter selects which media are worth downloading. Zero values disable
// the corresponding check.
type MediaFilter struct {
	OnlyVideos   bool
	OnlyImages   bool
	MinTimestamp time.Time
	MaxTimestamp time.Time
}

func (f MediaFilter) Allows(media entity.MediaRecord) bool {
	if !media.Downloadable() {
		return false
	}
	if f.OnlyVideos && media.Type != entity.MediaTypeVideo {
		return false
	}
	if f.OnlyImages && media.Type != entity.MediaTypeImage {
		return false
	}
	if !media.Timestamp.IsZero() {
		if !f.MinTimestamp.IsZero() && media.Timestamp.Before(f.MinTimestamp) {
			return false
		}
		if !f.MaxTimestamp.IsZero() && media.Timestamp.After(f.MaxTimestamp) {
			return false
		}
	}
	return true
}

func (f MediaFilter) Apply(items []entity.MediaRecord) []entity.MediaRecord {
	kept := make([]entity.MediaRecord, 0, len(items))
	for _, m := range items {
		if f.Allows(m) {
			kept = append(kept, m)
		}
	}
	return kept
}
