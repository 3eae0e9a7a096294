package entity

import "time"

type MediaType string

const (
	MediaTypeImage         MediaType = "IMAGE"
	MediaTypeVideo         MediaType = "VIDEO"
	MediaTypeCarouselAlbum MediaType = "CAROUSEL_ALBUM"
)

func (t MediaType) Valid() bool {
	switch t {
	case MediaTypeImage, MediaTypeVideo, MediaTypeCarouselAlbum:
		return true
	}
	return false
}

// MediaRecord describes one published post as returned by the Graph API.
// It is owned by the caller and never mutated by the analysis pipeline.
type MediaRecord struct {
	ID           string    `json:"id"`
	Type         MediaType `json:"media_type"`
	Caption      string    `json:"caption,omitempty"`
	MediaURL     string    `json:"media_url,omitempty"`
	Permalink    string    `json:"permalink,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Timestamp    time.Time `json:"timestamp,omitempty"`
}

// Downloadable reports whether the platform exposed a media URL. Copyrighted
// or flagged media comes back without one.
func (m MediaRecord) Downloadable() bool {
	return m.MediaURL != ""
}

// PreviewURL prefers the video thumbnail and falls back to the media URL.
func (m MediaRecord) PreviewURL() string {
	if m.Type == MediaTypeVideo && m.ThumbnailURL != "" {
		return m.ThumbnailURL
	}
	return m.MediaURL
}

type VideoMetadata struct {
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	FPS      float64 `json:"fps"`
	Codec    string  `json:"codec"`
}
