package domain

import (
	"context"
	"io"
)

// BlobWriter uploads objects to blob storage. Used by the catalog sync to
// archive per-run snapshots of the two venue catalogs.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
