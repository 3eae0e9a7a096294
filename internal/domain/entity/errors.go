package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMediaNotDownloadable = errors.New("media not downloadable (copyrighted or no URL)")
)

// ExternalToolMissingError is returned when a required binary cannot be
// resolved on PATH.
type ExternalToolMissingError struct {
	Tool string
	Err  error
}

func (e *ExternalToolMissingError) Error() string {
	return fmt.Sprintf("%s is not installed or not on PATH", e.Tool)
}

func (e *ExternalToolMissingError) Unwrap() error { return e.Err }

// FrameExtractionError carries the decoder's diagnostic output.
type FrameExtractionError struct {
	Op         string
	Diagnostic string
	Err        error
}

func (e *FrameExtractionError) Error() string {
	msg := fmt.Sprintf("frame extraction (%s): %v", e.Op, e.Err)
	if d := strings.TrimSpace(e.Diagnostic); d != "" {
		msg += ", output: " + lastLines(d, 5)
	}
	return msg
}

func (e *FrameExtractionError) Unwrap() error { return e.Err }

type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("generate transcript: %v", e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

type ScoringError struct {
	Scorer string
	Err    error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("%s scoring: %v", e.Scorer, e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }

// ffmpeg prints a long banner before the actual failure.
func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
