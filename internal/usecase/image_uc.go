package usecase

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
	"github.com/srijonashraf/sellswipe-server/internal/platform/logger"
	"github.com/srijonashraf/sellswipe-server/internal/port/storage"
)

// RequiredImageCount is the fixed number of files on every create and
// replace: one main image plus four detail slots.
const RequiredImageCount = 5

// ImageLifecycleManager keeps local temp files and remote objects
// consistent. Local files are removed on every path through UploadNew
// and ReplaceAll, success included.
type ImageLifecycleManager struct {
	store  storage.AssetStorage
	logger *logger.Logger
}

func NewImageLifecycleManager(store storage.AssetStorage, log *logger.Logger) *ImageLifecycleManager {
	return &ImageLifecycleManager{
		store:  store,
		logger: log.Named("ImageLifecycle"),
	}
}

// CleanupLocal removes the given temp files. Missing files are fine;
// anything else is logged and skipped.
func (m *ImageLifecycleManager) CleanupLocal(paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			m.logger.Warn("Failed to remove local temp file", zap.String("path", p), zap.Error(err))
		}
	}
}

// UploadNew validates the file count and pushes all five files to the
// asset store concurrently. No remote call is issued when the count is
// wrong. Local files are always removed before returning.
func (m *ImageLifecycleManager) UploadNew(ctx context.Context, paths []string, ownerTag string) ([]domain.ImageRef, error) {
	defer m.CleanupLocal(paths)

	if len(paths) != RequiredImageCount {
		return nil, domain.ErrWrongImageCount
	}

	refs := make([]domain.ImageRef, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			refs[i], errs[i] = m.store.Upload(ctx, p, ownerTag)
		}(i, p)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			// Sibling uploads may have succeeded already; those remote
			// objects are orphaned and the caller must know.
			return nil, fmt.Errorf("image batch upload failed, remote objects may be orphaned: %w", err)
		}
	}
	return refs, nil
}

// ReplaceAll destroys every populated slot of the existing pair and
// uploads the five replacement files, all concurrently. The slots on
// post and details are reassigned only when the whole batch succeeded;
// a partial failure leaves the records untouched and surfaces as an
// error, orphaned remote objects included.
func (m *ImageLifecycleManager) ReplaceAll(ctx context.Context, post *domain.Post, details *domain.PostDetails, paths []string, ownerTag string) error {
	defer m.CleanupLocal(paths)

	if len(paths) != RequiredImageCount {
		return domain.ErrWrongImageCount
	}

	oldObjects := domain.PopulatedObjectIDs(post, details)

	refs := make([]domain.ImageRef, len(paths))
	uploadErrs := make([]error, len(paths))
	destroyErrs := make([]error, len(oldObjects))

	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			refs[i], uploadErrs[i] = m.store.Upload(ctx, p, ownerTag)
		}(i, p)
	}
	for i, objectID := range oldObjects {
		wg.Add(1)
		go func(i int, objectID string) {
			defer wg.Done()
			destroyErrs[i] = m.store.Destroy(ctx, objectID)
		}(i, objectID)
	}
	wg.Wait()

	for _, err := range uploadErrs {
		if err != nil {
			return fmt.Errorf("image replace upload failed, remote objects may be orphaned: %w", err)
		}
	}
	for _, err := range destroyErrs {
		if err != nil {
			return fmt.Errorf("image replace destroy failed, remote objects may be orphaned: %w", err)
		}
	}

	post.MainImage = refs[0]
	details.SetDetailSlots([4]domain.ImageRef{refs[1], refs[2], refs[3], refs[4]})
	return nil
}

// DestroyRemote removes one remote object. Used by single-slot
// deletion after the record unset, where a failure is non-fatal.
func (m *ImageLifecycleManager) DestroyRemote(ctx context.Context, objectID string) error {
	return m.store.Destroy(ctx, objectID)
}
