package port

import (
	"context"
	"io"
)

type ArchiveEntry struct {
	Name string
	Data []byte
}

type Archiver interface {
	CreateZip(ctx context.Context, entries []ArchiveEntry, w io.Writer) error
}
