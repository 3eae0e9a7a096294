package port

import (
	"context"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
)

type ImageDetail string

const (
	ImageDetailLow  ImageDetail = "low"
	ImageDetailHigh ImageDetail = "high"
)

type ImageInput struct {
	Data     []byte
	MIMEType string
	Detail   ImageDetail
}

// VisionRequest is a single chat turn: a system rubric plus a user turn made
// of text and inline images.
type VisionRequest struct {
	System    string
	Text      string
	Images    []ImageInput
	MaxTokens int
}

type VisionModel interface {
	Complete(ctx context.Context, req VisionRequest) (string, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, video []byte) (*entity.Transcript, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
