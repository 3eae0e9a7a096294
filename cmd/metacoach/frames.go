package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/IsaiahDupree/MetaCoach/internal/domain/port"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/ffmpeg"
	"github.com/spf13/cobra"
)

var (
	framesCount     int
	framesInterval  float64
	framesQuality   int
	framesOutDir    string
	framesZip       string
	framesThumbnail bool
	framesHook      bool
)

var framesCmd = &cobra.Command{
	Use:   "frames <video>",
	Short: "Extract JPEG frames from a video",
	Long: `Extract frames evenly across a video (--count), at a fixed cadence
(--interval), the first frame only (--thumbnail) or the hook window (--hook).
Frames are written to --out or packed into --zip.`,
	Args: cobra.ExactArgs(1),
	RunE: runFrames,
}

func init() {
	framesCmd.Flags().IntVarP(&framesCount, "count", "n", ffmpeg.DefaultFrameCount, "Number of evenly spaced frames")
	framesCmd.Flags().Float64Var(&framesInterval, "interval", 0, "Seconds between frames (overrides --count)")
	framesCmd.Flags().IntVarP(&framesQuality, "quality", "q", ffmpeg.DefaultQuality, "JPEG quality, 2 (best) to 31")
	framesCmd.Flags().StringVarP(&framesOutDir, "out", "o", "frames", "Output directory")
	framesCmd.Flags().StringVar(&framesZip, "zip", "", "Write a zip archive instead of loose files")
	framesCmd.Flags().BoolVar(&framesThumbnail, "thumbnail", false, "Extract only the first frame")
	framesCmd.Flags().BoolVar(&framesHook, "hook", false, "Extract the hook window frames")
	framesCmd.MarkFlagsMutuallyExclusive("thumbnail", "hook", "interval")
}

func runFrames(cmd *cobra.Command, args []string) error {
	video, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read video: %w", err)
	}

	extractor, err := newExtractor()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var frames []entity.Frame
	switch {
	case framesThumbnail:
		f, err := extractor.ExtractThumbnail(ctx, video)
		if err != nil {
			return err
		}
		frames = []entity.Frame{f}
	case framesHook:
		frames, err = extractor.ExtractHookFrames(ctx, video)
	default:
		frames, err = extractor.ExtractFrames(ctx, video, port.ExtractOptions{
			Count:           framesCount,
			IntervalSeconds: framesInterval,
			Quality:         framesQuality,
		})
	}
	if err != nil {
		return err
	}

	entries := ffmpeg.FrameEntries(frames)
	if framesZip != "" {
		var buf bytes.Buffer
		if err := ffmpeg.NewZipCreator().CreateZip(ctx, entries, &buf); err != nil {
			return err
		}
		if err := os.WriteFile(framesZip, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write zip: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d frames written to %s\n", len(entries), framesZip)
		return nil
	}

	if err := os.MkdirAll(framesOutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, e := range entries {
		if err := os.WriteFile(filepath.Join(framesOutDir, e.Name), e.Data, 0o644); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d frames written to %s\n", len(entries), framesOutDir)
	return nil
}
