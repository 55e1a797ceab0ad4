package storage

import (
	"context"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
)

// AssetStorage is the external object store for listing images. Upload
// reads the file at localPath and never removes it; local cleanup is
// the caller's responsibility on every path.
type AssetStorage interface {
	Upload(ctx context.Context, localPath, ownerTag string) (domain.ImageRef, error)
	Destroy(ctx context.Context, objectID string) error
}
