package port

import (
	"context"
	"io"
)

type MediaStorage interface {
	DownloadMedia(ctx context.Context, objectKey string) ([]byte, error)
	UploadReport(ctx context.Context, objectKey string, report []byte) error
	UploadArchive(ctx context.Context, objectKey string, reader io.Reader, size int64) error
}
