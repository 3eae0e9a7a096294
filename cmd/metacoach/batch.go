package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/graph"
	"github.com/IsaiahDupree/MetaCoach/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	batchUser        string
	batchLimit       int
	batchOnlyVideos  bool
	batchOnlyImages  bool
	batchSince       string
	batchUntil       string
	batchConcurrency int
	batchAnalyze     bool
	batchOut         string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "List, filter and download an account's media, optionally analysing each item",
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchUser, "user", "u", "", "Instagram business account ID (required)")
	batchCmd.Flags().IntVarP(&batchLimit, "limit", "l", 25, "Number of posts to list")
	batchCmd.Flags().BoolVar(&batchOnlyVideos, "only-videos", false, "Keep only VIDEO posts")
	batchCmd.Flags().BoolVar(&batchOnlyImages, "only-images", false, "Keep only IMAGE posts")
	batchCmd.Flags().StringVar(&batchSince, "since", "", "Keep posts published at or after this date (YYYY-MM-DD)")
	batchCmd.Flags().StringVar(&batchUntil, "until", "", "Keep posts published at or before this date (YYYY-MM-DD)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", defaultConcurrency(), "Parallel downloads")
	batchCmd.Flags().BoolVar(&batchAnalyze, "analyze", false, "Run the analysis on every downloaded item")
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "Directory for downloaded media and result JSON")
	batchCmd.MarkFlagsMutuallyExclusive("only-videos", "only-images")
	_ = batchCmd.MarkFlagRequired("user")
}

type batchItem struct {
	MediaID string                 `json:"media_id"`
	Type    entity.MediaType       `json:"media_type"`
	Bytes   int                    `json:"bytes,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Result  *entity.AnalysisResult `json:"result,omitempty"`
}

func runBatch(cmd *cobra.Command, _ []string) error {
	filter, err := batchFilter()
	if err != nil {
		return err
	}

	timeout, _ := strconv.Atoi(getEnvOrDefault("DOWNLOAD_TIMEOUT_SECONDS", "60"))
	client := graph.NewClient(graph.ClientConfig{
		BaseURL:         getEnvOrDefault("META_GRAPH_URL", graph.DefaultBaseURL),
		AccessToken:     os.Getenv("META_ACCESS_TOKEN"),
		DownloadTimeout: time.Duration(timeout) * time.Second,
	}, log)

	ctx := cmd.Context()
	media, err := client.ListMedia(ctx, batchUser, batchLimit)
	if err != nil {
		return err
	}
	selected := filter.Apply(media)
	log.Info("media selected", zap.Int("listed", len(media)), zap.Int("selected", len(selected)))

	var analyzer usecase.ContentAnalyzer
	if batchAnalyze {
		_, pipeline, err := loadPipeline()
		if err != nil {
			return err
		}
		analyzer = pipeline.Analyzer
	}

	if batchOut != "" {
		if err := os.MkdirAll(batchOut, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	outcomes := usecase.DownloadBatch(ctx, client, selected, batchConcurrency)
	items := make([]batchItem, 0, len(outcomes))
	for _, out := range outcomes {
		item := batchItem{MediaID: out.Media.ID, Type: out.Media.Type}
		if !out.OK() {
			item.Error = out.Err.Error()
			items = append(items, item)
			continue
		}
		item.Bytes = len(out.Data)

		if batchOut != "" {
			name := filepath.Join(batchOut, out.Media.ID+mediaExtension(out.Media.Type))
			if err := os.WriteFile(name, out.Data, 0o644); err != nil {
				return fmt.Errorf("write media: %w", err)
			}
		}

		if analyzer != nil {
			result, err := analyzer.Analyze(ctx, out.Data, out.Media)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				item.Error = err.Error()
			}
			item.Result = result
		}
		items = append(items, item)
	}

	if batchOut != "" {
		f, err := os.Create(filepath.Join(batchOut, "results.json"))
		if err != nil {
			return fmt.Errorf("create results file: %w", err)
		}
		defer f.Close()
		if err := printJSON(f, items); err != nil {
			return err
		}
	}
	return printJSON(cmd.OutOrStdout(), items)
}

func batchFilter() (usecase.MediaFilter, error) {
	f := usecase.MediaFilter{OnlyVideos: batchOnlyVideos, OnlyImages: batchOnlyImages}
	if batchSince != "" {
		t, err := time.Parse(time.DateOnly, batchSince)
		if err != nil {
			return f, fmt.Errorf("parse --since: %w", err)
		}
		f.MinTimestamp = t
	}
	if batchUntil != "" {
		t, err := time.Parse(time.DateOnly, batchUntil)
		if err != nil {
			return f, fmt.Errorf("parse --until: %w", err)
		}
		// inclusive of the whole day
		f.MaxTimestamp = t.Add(24*time.Hour - time.Nanosecond)
	}
	return f, nil
}

func mediaExtension(t entity.MediaType) string {
	if t == entity.MediaTypeVideo {
		return ".mp4"
	}
	return ".jpg"
}

func defaultConcurrency() int {
	n, err := strconv.Atoi(os.Getenv("DOWNLOAD_CONCURRENCY"))
	if err != nil || n <= 0 {
		return usecase.DefaultDownloadConcurrency
	}
	return n
}
