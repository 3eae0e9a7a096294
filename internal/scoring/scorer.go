package scoring

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/IsaiahDupree/MetaCoach/internal/domain/port"
	"go.uber.org/zap"
)

const (
	hookFrameWindow = 5
	hookFramesSent  = 3

	hookTranscriptRunes    = 200
	contentTranscriptRunes = 500

	hookMaxTokens         = 1000
	thumbnailMaxTokens    = 800
	videoContentMaxTokens = 1000
	imageContentMaxTokens = 800
)

const (
	fieldScore        = "score"
	fieldClarity      = "clarity"
	fieldComposition  = "composition"
	fieldAttention    = "attention"
	fieldVisualAppeal = "visual_appeal"
	fieldEngagement   = "engagement"
	fieldRelevance    = "relevance"
)

var (
	hookFields = []FieldSpec{ScoreField(fieldScore, "score")}

	thumbnailFields = []FieldSpec{
		ScoreField(fieldClarity, "clarity"),
		ScoreField(fieldComposition, "composition"),
		ScoreField(fieldAttention, "attention"),
	}

	contentFields = []FieldSpec{
		ScoreField(fieldVisualAppeal, "visual appeal"),
		ScoreField(fieldEngagement, "engagement"),
		ScoreField(fieldRelevance, "relevance"),
	}

	overallPattern   = regexp.MustCompile(`(?i)overall(?:\s+score)?[:\s*]+(\d+)`)
	bareScorePattern = regexp.MustCompile(`(?im)^[^a-z0-9]*score[:\s*]+(\d+)`)
)

var errNoImages = errors.New("no image data supplied")

// Scorer asks a vision model to rate frames and images and turns the free
// text reply into score records. Unparseable replies are never an error.
type Scorer struct {
	model  port.VisionModel
	logger *zap.Logger
}

func NewScorer(model port.VisionModel, logger *zap.Logger) *Scorer {
	return &Scorer{model: model, logger: logger}
}

// ScoreHook rates the opening of a video from its first frames.
func (s *Scorer) ScoreHook(ctx context.Context, frames []entity.Frame, transcript string) (*entity.HookAnalysis, error) {
	if len(frames) == 0 {
		return nil, &entity.ScoringError{Scorer: "hook", Err: errNoImages}
	}
	window := frames[:min(len(frames), hookFrameWindow)]
	sent := window[:min(len(window), hookFramesSent)]

	reply, err := s.model.Complete(ctx, port.VisionRequest{
		System:    hookSystemPrompt,
		Text:      fmt.Sprintf(hookUserPrompt, excerpt(transcript, hookTranscriptRunes)),
		Images:    frameImages(sent, port.ImageDetailHigh),
		MaxTokens: hookMaxTokens,
	})
	if err != nil {
		return nil, &entity.ScoringError{Scorer: "hook", Err: err}
	}

	scores := ParseScoreFields(reply, hookFields)
	analysis := &entity.HookAnalysis{
		Score:           scores[fieldScore],
		Strengths:       ExtractListItems(reply, "strength"),
		Weaknesses:      ExtractListItems(reply, "weakness"),
		Recommendations: ExtractListItems(reply, "recommendation"),
		KeyFrames:       append([]entity.Frame(nil), window...),
	}

	s.logger.Info("hook scored", zap.Int("score", analysis.Score), zap.Int("frames", len(sent)))
	return analysis, nil
}

func (s *Scorer) ScoreThumbnail(ctx context.Context, image []byte, caption string) (*entity.ThumbnailAnalysis, error) {
	if len(image) == 0 {
		return nil, &entity.ScoringError{Scorer: "thumbnail", Err: errNoImages}
	}

	text := thumbnailUserPrompt
	if strings.TrimSpace(caption) != "" {
		text = fmt.Sprintf(thumbnailCaptionPrompt, caption)
	}
	reply, err := s.model.Complete(ctx, port.VisionRequest{
		System:    thumbnailSystemPrompt,
		Text:      text,
		Images:    []port.ImageInput{imageInput(image, port.ImageDetailHigh)},
		MaxTokens: thumbnailMaxTokens,
	})
	if err != nil {
		return nil, &entity.ScoringError{Scorer: "thumbnail", Err: err}
	}

	scores := ParseScoreFields(reply, thumbnailFields)
	analysis := &entity.ThumbnailAnalysis{
		Clarity:         scores[fieldClarity],
		Composition:     scores[fieldComposition],
		Attention:       scores[fieldAttention],
		Recommendations: ExtractListItems(reply, "recommendation"),
	}
	analysis.Score = overallScore(reply, bareScorePattern, analysis.Clarity, analysis.Composition, analysis.Attention)

	s.logger.Info("thumbnail scored", zap.Int("score", analysis.Score))
	return analysis, nil
}

// ScoreVideoContent rates the whole video from its first, middle and last
// frames, whatever the number of frames extracted.
func (s *Scorer) ScoreVideoContent(ctx context.Context, frames []entity.Frame, transcript, caption string) (*entity.ContentQuality, error) {
	if len(frames) == 0 {
		return nil, &entity.ScoringError{Scorer: "content_quality", Err: errNoImages}
	}

	sample := SampleFrames(frames)
	reply, err := s.model.Complete(ctx, port.VisionRequest{
		System: videoContentSystemPrompt,
		Text: fmt.Sprintf(videoContentUserPrompt,
			captionOrDefault(caption),
			excerpt(transcript, contentTranscriptRunes),
			len(frames),
		),
		Images:    frameImages(sample, port.ImageDetailLow),
		MaxTokens: videoContentMaxTokens,
	})
	if err != nil {
		return nil, &entity.ScoringError{Scorer: "content_quality", Err: err}
	}

	quality := parseContentQuality(reply)
	s.logger.Info("video content scored", zap.Int("overall_score", quality.OverallScore))
	return quality, nil
}

func (s *Scorer) ScoreImageContent(ctx context.Context, image []byte, caption string) (*entity.ContentQuality, error) {
	if len(image) == 0 {
		return nil, &entity.ScoringError{Scorer: "content_quality", Err: errNoImages}
	}

	reply, err := s.model.Complete(ctx, port.VisionRequest{
		System:    imageContentSystemPrompt,
		Text:      fmt.Sprintf(imageContentUserPrompt, captionOrDefault(caption)),
		Images:    []port.ImageInput{imageInput(image, port.ImageDetailHigh)},
		MaxTokens: imageContentMaxTokens,
	})
	if err != nil {
		return nil, &entity.ScoringError{Scorer: "content_quality", Err: err}
	}

	quality := parseContentQuality(reply)
	s.logger.Info("image content scored", zap.Int("overall_score", quality.OverallScore))
	return quality, nil
}

func parseContentQuality(reply string) *entity.ContentQuality {
	scores := ParseScoreFields(reply, contentFields)
	q := &entity.ContentQuality{
		VisualAppeal: scores[fieldVisualAppeal],
		Engagement:   scores[fieldEngagement],
		Relevance:    scores[fieldRelevance],
		Suggestions:  ExtractListItems(reply, "suggestion"),
	}
	q.OverallScore = overallScore(reply, nil, q.VisualAppeal, q.Engagement, q.Relevance)
	return q
}

// overallScore prefers an explicit "overall" figure, then the optional
// fallback pattern, then the rounded mean of the sub-scores.
func overallScore(reply string, fallback *regexp.Regexp, subScores ...int) int {
	if v, ok := ParseOptionalScore(reply, overallPattern); ok {
		return v
	}
	if fallback != nil {
		if v, ok := ParseOptionalScore(reply, fallback); ok {
			return v
		}
	}
	return MeanScore(subScores...)
}

// SampleFrames picks the first, middle and last frame. Short sequences repeat
// frames so the model always sees three.
func SampleFrames(frames []entity.Frame) []entity.Frame {
	if len(frames) == 0 {
		return nil
	}
	return []entity.Frame{
		frames[0],
		frames[len(frames)/2],
		frames[len(frames)-1],
	}
}

func frameImages(frames []entity.Frame, detail port.ImageDetail) []port.ImageInput {
	images := make([]port.ImageInput, 0, len(frames))
	for _, f := range frames {
		images = append(images, imageInput(f.Data, detail))
	}
	return images
}

func imageInput(data []byte, detail port.ImageDetail) port.ImageInput {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return port.ImageInput{Data: data, MIMEType: mime, Detail: detail}
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func captionOrDefault(caption string) string {
	if strings.TrimSpace(caption) == "" {
		return noCaption
	}
	return caption
}
