package ffmpeg

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/IsaiahDupree/MetaCoach/internal/domain/entity"
	"github.com/IsaiahDupree/MetaCoach/internal/domain/port"
)

type ZipCreator struct{}

func NewZipCreator() *ZipCreator {
	return &ZipCreator{}
}

func (z *ZipCreator) CreateZip(ctx context.Context, entries []port.ArchiveEntry, w io.Writer) error {
	zipWriter := zip.NewWriter(w)

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			zipWriter.Close()
			return ctx.Err()
		default:
		}

		if err := addEntryToZip(zipWriter, entry); err != nil {
			zipWriter.Close()
			return fmt.Errorf("add %s to zip: %w", entry.Name, err)
		}
	}

	return zipWriter.Close()
}

func addEntryToZip(zw *zip.Writer, entry port.ArchiveEntry) error {
	header := &zip.FileHeader{
		Name:     entry.Name,
		Method:   zip.Deflate,
		Modified: time.Now().UTC(),
	}

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = writer.Write(entry.Data)
	return err
}

// FrameEntries names frames frame-0000.jpg, frame-0001.jpg, ... in sequence order.
func FrameEntries(frames []entity.Frame) []port.ArchiveEntry {
	entries := make([]port.ArchiveEntry, 0, len(frames))
	for _, f := range frames {
		entries = append(entries, port.ArchiveEntry{
			Name: fmt.Sprintf("%s%04d.jpg", framePrefix, f.Index),
			Data: f.Data,
		})
	}
	return entries
}
