package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/x?sslmode=disable", migrateURL("postgres://u:p@db:5432/x?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/x", migrateURL("postgresql://u@db/x"))
	assert.Equal(t, "pgx5://db/x", migrateURL("pgx5://db/x"))
}

func setupRepository(t *testing.T) (*JobRepository, context.Context) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	container, err := tcpostgres.Run(ctx,
		"pgvector/pgvector:pg16",
		tcpostgres.WithDatabase("metacoach"),
		tcpostgres.WithUsername("metacoach"),
		tcpostgres.WithPassword("metacoach"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, RunMigrations(connStr))
	// already applied
	require.NoError(t, RunMigrations(connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewJobRepository(pool), ctx
}

func embedding(hot int) []float32 {
	v := make([]float32, 1536)
	v[hot] = 1
	return v
}

func TestJobRepositoryLifecycle(t *testing.T) {
	repo, ctx := setupRepository(t)

	job := entity.NewAnalysisJob("tenant-1", entity.MediaRecord{ID: "179", Type: entity.MediaTypeVideo}, 3)
	require.NoError(t, repo.Create(ctx, job))

	got, err := repo.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusQueued, got.Status)
	assert.Equal(t, entity.MediaTypeVideo, got.MediaType)
	assert.Nil(t, got.Result)
	assert.Nil(t, got.HookScore)

	job.MarkRunning()
	job.MarkDone(&entity.AnalysisResult{
		MediaID:        "179",
		MediaType:      entity.MediaTypeVideo,
		Transcript:     &entity.Transcript{Text: "stop scrolling", Language: "en"},
		Hook:           &entity.HookAnalysis{Score: 81, Strengths: []string{"fast open"}},
		ContentQuality: &entity.ContentQuality{OverallScore: 70},
	}, "tenant-1/r.json", "tenant-1/k.zip")
	require.NoError(t, repo.Update(ctx, job))

	got, err = repo.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusDone, got.Status)
	assert.Equal(t, 1, got.Attempt)
	assert.Equal(t, "stop scrolling", got.Transcript)
	require.NotNil(t, got.HookScore)
	assert.Equal(t, 81, *got.HookScore)
	require.NotNil(t, got.ContentScore)
	assert.Equal(t, 70, *got.ContentScore)
	assert.Nil(t, got.ThumbQuality)
	assert.Equal(t, "tenant-1/k.zip", got.ArchiveKey)
	require.NotNil(t, got.CompletedAt)
	require.NotNil(t, got.Result)
	assert.Equal(t, []string{"fast open"}, got.Result.Hook.Strengths)
}

func TestJobRepositoryNotFound(t *testing.T) {
	repo, ctx := setupRepository(t)

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrJobNotFound)

	err = repo.Update(ctx, &entity.AnalysisJob{ID: uuid.New(), Status: entity.JobStatusRunning})
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestJobRepositorySearchSimilar(t *testing.T) {
	repo, ctx := setupRepository(t)

	texts := []string{"morning routine", "gym tips", "recipe"}
	ids := make([]uuid.UUID, len(texts))
	for i, text := range texts {
		job := entity.NewAnalysisJob("tenant-1", entity.MediaRecord{ID: text, Type: entity.MediaTypeVideo}, 3)
		job.Transcript = text
		require.NoError(t, repo.Create(ctx, job))
		require.NoError(t, repo.SaveEmbedding(ctx, job.ID, embedding(i)))
		ids[i] = job.ID
	}
	unembedded := entity.NewAnalysisJob("tenant-1", entity.MediaRecord{ID: "no-embedding", Type: entity.MediaTypeImage}, 3)
	require.NoError(t, repo.Create(ctx, unembedded))

	query := embedding(1)
	query[0] = 0.5

	results, err := repo.SearchSimilar(ctx, query, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, ids[1].String(), results[0].JobID)
	assert.Equal(t, "gym tips", results[0].Transcript)
	assert.Equal(t, ids[0].String(), results[1].JobID)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)

	all, err := repo.SearchSimilar(ctx, query, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
