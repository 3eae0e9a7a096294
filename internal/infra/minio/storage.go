package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage keeps uploaded media in one bucket and generated reports and
// key-frame archives in another.
type Storage struct {
	client       *miniogo.Client
	mediaBucket  string
	reportBucket string
}

type StorageConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	MediaBucket  string
	ReportBucket string
}

func NewStorage(cfg StorageConfig) (*Storage, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Storage{
		client:       client,
		mediaBucket:  cfg.MediaBucket,
		reportBucket: cfg.ReportBucket,
	}, nil
}

func (s *Storage) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{s.mediaBucket, s.reportBucket} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, miniogo.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
	}
	return nil
}

func (s *Storage) DownloadMedia(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.mediaBucket, objectKey, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get media %s: %w", objectKey, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read media %s: %w", objectKey, err)
	}
	return data, nil
}

// UploadMedia stores raw media under objectKey so a request can reference it
// instead of a platform URL.
func (s *Storage) UploadMedia(ctx context.Context, objectKey string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.mediaBucket, objectKey, bytes.NewReader(data), int64(len(data)), miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload media: %w", err)
	}
	return nil
}

func (s *Storage) UploadReport(ctx context.Context, objectKey string, report []byte) error {
	_, err := s.client.PutObject(ctx, s.reportBucket, objectKey, bytes.NewReader(report), int64(len(report)), miniogo.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("upload report: %w", err)
	}
	return nil
}

func (s *Storage) DownloadReport(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.reportBucket, objectKey, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", objectKey, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", objectKey, err)
	}
	return data, nil
}

func (s *Storage) UploadArchive(ctx context.Context, objectKey string, reader io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.reportBucket, objectKey, reader, size, miniogo.PutObjectOptions{
		ContentType: "application/zip",
	})
	if err != nil {
		return fmt.Errorf("upload archive: %w", err)
	}
	return nil
}
