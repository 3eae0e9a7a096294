package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/IsaiahDupree/MetaCoach/internal/infra/metrics"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL         = "https://graph.facebook.com/v21.0"
	DefaultDownloadTimeout = 60 * time.Second

	mediaFields      = "id,caption,media_type,media_url,permalink,thumbnail_url,timestamp"
	timestampLayout  = "2006-01-02T15:04:05-0700"
	maxErrorBodySize = 4 << 10
)

// Client talks to the Graph API for media listings and fetches media bytes
// from the CDN URLs it returns.
type Client struct {
	baseURL     string
	accessToken string
	apiClient   *http.Client
	cdnClient   *http.Client
	logger      *zap.Logger
}

type ClientConfig struct {
	BaseURL         string
	AccessToken     string
	DownloadTimeout time.Duration
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = DefaultDownloadTimeout
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		apiClient:   &http.Client{Timeout: 30 * time.Second},
		cdnClient:   &http.Client{Timeout: cfg.DownloadTimeout},
		logger:      logger,
	}
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type mediaItem struct {
	ID           string `json:"id"`
	Caption      string `json:"caption"`
	MediaType    string `json:"media_type"`
	MediaURL     string `json:"media_url"`
	Permalink    string `json:"permalink"`
	ThumbnailURL string `json:"thumbnail_url"`
	Timestamp    string `json:"timestamp"`
}

type mediaPage struct {
	Data []mediaItem `json:"data"`
}

// ListMedia returns the most recent media of an Instagram business account.
func (c *Client) ListMedia(ctx context.Context, igUserID string, limit int) ([]entity.MediaRecord, error) {
	if igUserID == "" {
		return nil, errors.New("instagram user id is required")
	}
	if c.accessToken == "" {
		return nil, errors.New("graph access token is not configured")
	}

	q := url.Values{}
	q.Set("fields", mediaFields)
	q.Set("access_token", c.accessToken)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	endpoint := fmt.Sprintf("%s/%s/media?%s", c.baseURL, url.PathEscape(igUserID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.apiClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call graph api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var page mediaPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode media list: %w", err)
	}

	records := make([]entity.MediaRecord, 0, len(page.Data))
	for _, item := range page.Data {
		records = append(records, item.toRecord(c.logger))
	}

	c.logger.Info("media listed", zap.String("ig_user_id", igUserID), zap.Int("count", len(records)))
	return records, nil
}

// Download fetches the whole media file into memory.
func (c *Client) Download(ctx context.Context, mediaURL string) ([]byte, error) {
	if mediaURL == "" {
		return nil, entity.ErrMediaNotDownloadable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.cdnClient.Do(req)
	if err != nil {
		metrics.MediaDownloadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.MediaDownloadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("download media: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.MediaDownloadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("read media body: %w", err)
	}

	metrics.MediaDownloadsTotal.WithLabelValues("ok").Inc()
	c.logger.Debug("media downloaded", zap.Int("bytes", len(data)))
	return data, nil
}

func (m mediaItem) toRecord(logger *zap.Logger) entity.MediaRecord {
	rec := entity.MediaRecord{
		ID:           m.ID,
		Type:         entity.MediaType(m.MediaType),
		Caption:      m.Caption,
		MediaURL:     m.MediaURL,
		Permalink:    m.Permalink,
		ThumbnailURL: m.ThumbnailURL,
	}
	if m.Timestamp != "" {
		ts, err := parseTimestamp(m.Timestamp)
		if err != nil {
			logger.Warn("unparseable media timestamp", zap.String("media_id", m.ID), zap.String("timestamp", m.Timestamp))
		} else {
			rec.Timestamp = ts
		}
	}
	return rec
}

// Graph timestamps use a colon-less offset ("+0000").
func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(timestampLayout, s); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, s)
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("graph api error (status %d, code %d): %s", resp.StatusCode, apiErr.Error.Code, apiErr.Error.Message)
	}
	return fmt.Errorf("graph api error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
