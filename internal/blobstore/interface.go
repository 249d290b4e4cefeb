package blobstore

import (
	"context"
	"io"
)

// PathPrefix is the URL prefix under which saved blobs are addressed and served.
const PathPrefix = "/uploads/"

// SaveResult describes one persisted upload.
type SaveResult struct {
	Name      string
	Path      string
	SizeBytes int64
}

// BlobStore is the byte-storage abstraction used by PostService.
type BlobStore interface {
	Save(ctx context.Context, r io.Reader, originalFilename string) (SaveResult, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	Root() string
}
