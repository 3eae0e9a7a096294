package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/spf13/cobra"
)

var (
	analyzeType    string
	analyzeCaption string
	analyzeID      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run the full analysis on a local media file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeType, "type", "t", "", "Media type: VIDEO, IMAGE or CAROUSEL_ALBUM (default: from extension)")
	analyzeCmd.Flags().StringVarP(&analyzeCaption, "caption", "c", "", "Post caption")
	analyzeCmd.Flags().StringVar(&analyzeID, "id", "", "Media ID to record in the result (default: file name)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read media: %w", err)
	}

	mediaType := entity.MediaType(strings.ToUpper(analyzeType))
	if mediaType == "" {
		mediaType = typeFromExtension(path)
	}

	id := analyzeID
	if id == "" {
		id = filepath.Base(path)
	}

	_, pipeline, err := loadPipeline()
	if err != nil {
		return err
	}

	result, err := pipeline.Analyzer.Analyze(cmd.Context(), data, entity.MediaRecord{
		ID:        id,
		Type:      mediaType,
		Caption:   analyzeCaption,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func typeFromExtension(path string) entity.MediaType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return entity.MediaTypeImage
	default:
		return entity.MediaTypeVideo
	}
}
