package main

import (
	"fmt"
	"os"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/port"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <video>",
	Short: "Print duration, resolution, frame rate and codec",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		video, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read video: %w", err)
		}
		extractor, err := newExtractor()
		if err != nil {
			return err
		}
		meta, err := extractor.Metadata(cmd.Context(), video)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), meta)
	},
}

var (
	previewOut     string
	previewSeconds int
	previewFPS     int
	previewWidth   int
)

var previewCmd = &cobra.Command{
	Use:   "preview <video>",
	Short: "Render an animated GIF of the opening seconds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		video, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read video: %w", err)
		}
		extractor, err := newExtractor()
		if err != nil {
			return err
		}
		gif, err := extractor.PreviewGIF(cmd.Context(), video, port.PreviewSpec{
			Seconds: previewSeconds,
			FPS:     previewFPS,
			Width:   previewWidth,
		})
		if err != nil {
			return err
		}
		if err := os.WriteFile(previewOut, gif, 0o644); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "preview written to %s (%d bytes)\n", previewOut, len(gif))
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "preview.gif", "Output file")
	previewCmd.Flags().IntVar(&previewSeconds, "seconds", 3, "Length of the preview")
	previewCmd.Flags().IntVar(&previewFPS, "fps", 10, "Frames per second")
	previewCmd.Flags().IntVar(&previewWidth, "width", 320, "Width in pixels, height keeps the aspect ratio")
}
