package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/IsaiahDupree/MetaCoach/internal/app"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/config"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/ffmpeg"
	"github.com/IsaiahDupree/MetaCoach/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logLevel   string
	ffmpegBin  string
	ffprobeBin string
	tempDir    string

	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "metacoach",
	Short: "MetaCoach - analyse Instagram posts for hook, thumbnail and content quality",
	Long: `metacoach runs the content analysis pipeline locally, without the queue.

Examples:
  # Full analysis of a local video
  metacoach analyze reel.mp4 --type VIDEO --caption "3 tips for better sleep"

  # Extract 10 evenly spaced frames into a zip
  metacoach frames reel.mp4 --zip frames.zip

  # Fetch, filter and analyse the latest videos of an account
  metacoach batch --user 17841400000000000 --only-videos --analyze --out results/
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		l, err := logger.NewConsole(logLevel)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", getEnvOrDefault("LOG_LEVEL", "warn"), "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&ffmpegBin, "ffmpeg", getEnvOrDefault("FFMPEG_BIN", "ffmpeg"), "ffmpeg binary")
	rootCmd.PersistentFlags().StringVar(&ffprobeBin, "ffprobe", getEnvOrDefault("FFPROBE_BIN", "ffprobe"), "ffprobe binary")
	rootCmd.PersistentFlags().StringVar(&tempDir, "temp-dir", getEnvOrDefault("TEMP_DIR", os.TempDir()), "Root for scratch workspaces")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(framesCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(similarCmd)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newExtractor builds the ffmpeg adapter from flags only, so frame commands
// run without model credentials.
func newExtractor() (*ffmpeg.Extractor, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	decoder := ffmpeg.NewDecoder(ffmpegBin, ffprobeBin, log)
	return ffmpeg.NewExtractor(decoder, tempDir, log), nil
}

// loadPipeline reads the full environment config. Flags override the
// toolchain and scratch settings.
func loadPipeline() (*config.Config, *app.Pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	cfg.FFmpegBin = ffmpegBin
	cfg.FFprobeBin = ffprobeBin
	cfg.TempDir = tempDir

	p, err := app.NewPipeline(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, p, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
