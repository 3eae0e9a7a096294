package graph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestListMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/17841400000000000/media", r.URL.Path)
		assert.Equal(t, mediaFields, r.URL.Query().Get("fields"))
		assert.Equal(t, "token", r.URL.Query().Get("access_token"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [
			{"id": "1", "media_type": "VIDEO", "caption": "Day one", "media_url": "https://cdn/1.mp4",
			 "thumbnail_url": "https://cdn/1.jpg", "permalink": "https://instagram.com/p/1", "timestamp": "2024-05-01T12:30:00+0000"},
			{"id": "2", "media_type": "IMAGE", "timestamp": "garbage"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, AccessToken: "token"}, zap.NewNop())

	media, err := c.ListMedia(context.Background(), "17841400000000000", 2)
	require.NoError(t, err)
	require.Len(t, media, 2)

	assert.Equal(t, "1", media[0].ID)
	assert.Equal(t, entity.MediaTypeVideo, media[0].Type)
	assert.Equal(t, "Day one", media[0].Caption)
	assert.True(t, media[0].Downloadable())
	assert.Equal(t, "https://cdn/1.jpg", media[0].PreviewURL())
	assert.True(t, media[0].Timestamp.Equal(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)))

	assert.Equal(t, entity.MediaTypeImage, media[1].Type)
	assert.False(t, media[1].Downloadable())
	assert.True(t, media[1].Timestamp.IsZero())
}

func TestListMediaAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Error validating access token", "type": "OAuthException", "code": 190}}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, AccessToken: "expired"}, zap.NewNop())

	_, err := c.ListMedia(context.Background(), "42", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error validating access token")
	assert.Contains(t, err.Error(), "code 190")
}

func TestListMediaRequiresToken(t *testing.T) {
	c := NewClient(ClientConfig{}, zap.NewNop())
	_, err := c.ListMedia(context.Background(), "42", 10)
	assert.Error(t, err)
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.mp4" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("video-bytes"))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{}, zap.NewNop())

	data, err := c.Download(context.Background(), srv.URL+"/ok.mp4")
	require.NoError(t, err)
	assert.Equal(t, []byte("video-bytes"), data)

	_, err = c.Download(context.Background(), srv.URL+"/missing.mp4")
	assert.ErrorContains(t, err, "404")

	_, err = c.Download(context.Background(), "")
	assert.ErrorIs(t, err, entity.ErrMediaNotDownloadable)
}

func TestDownloadTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(ClientConfig{DownloadTimeout: 50 * time.Millisecond}, zap.NewNop())

	_, err := c.Download(context.Background(), srv.URL+"/slow.mp4")
	assert.Error(t, err)
}
