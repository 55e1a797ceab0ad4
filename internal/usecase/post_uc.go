package usecase

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
	"github.com/srijonashraf/sellswipe-server/internal/platform/logger"
	"github.com/srijonashraf/sellswipe-server/internal/platform/metrics"
	"github.com/srijonashraf/sellswipe-server/internal/port/cache"
	"github.com/srijonashraf/sellswipe-server/internal/port/repository"
)

// EventPublisher pushes domain events to the message broker. Event
// delivery is best effort everywhere; a publish failure never rolls
// back the operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Moderation and account lifecycle subjects. Downstream consumers
// (notification workers, analytics) subscribe to these.
const (
	SubjectPostApproved      = "post.approved"
	SubjectPostDeclined      = "post.declined"
	SubjectPostReported      = "post.reported"
	SubjectPostDeleted       = "post.deleted"
	SubjectAccountWarned     = "account.warned"
	SubjectAccountRestricted = "account.restricted"
)

// PostUsecase owns the listing lifecycle on the owner side: create,
// edit, delete, own-post listings and single-slot image removal.
type PostUsecase struct {
	posts     repository.PostRepository
	images    *ImageLifecycleManager
	publisher EventPublisher
	cacheRepo cache.CacheRepository
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

func NewPostUsecase(
	posts repository.PostRepository,
	images *ImageLifecycleManager,
	publisher EventPublisher,
	cacheRepo cache.CacheRepository,
	mm *metrics.MetricsManager,
	log *logger.Logger,
) *PostUsecase {
	return &PostUsecase{
		posts:     posts,
		images:    images,
		publisher: publisher,
		cacheRepo: cacheRepo,
		metrics:   mm,
		logger:    log.Named("PostUsecase"),
	}
}

type CreatePostInput struct {
	OwnerID       primitive.ObjectID
	Title         string
	Price         int64
	Discount      bool
	DiscountPrice int64
	Stock         int64
	DivisionID    primitive.ObjectID
	DistrictID    primitive.ObjectID
	AreaID        primitive.ObjectID
	Address       string

	BrandID     primitive.ObjectID
	CategoryID  primitive.ObjectID
	ModelID     primitive.ObjectID
	Description string
	Keyword     string

	// Local temp file paths, main image first, then the four detail
	// images in slot order.
	ImagePaths []string
}

// Create uploads the five images, then inserts the Post/PostDetails
// pair. Record creation is not transactional: a failed details insert
// is compensated by removing the already-inserted post.
func (uc *PostUsecase) Create(ctx context.Context, input CreatePostInput) (*domain.Post, error) {
	refs, err := uc.images.UploadNew(ctx, input.ImagePaths, input.OwnerID.Hex())
	if err != nil {
		return nil, fmt.Errorf("PostUsecase.Create: %w", err)
	}

	post := &domain.Post{
		OwnerID:       input.OwnerID,
		Title:         input.Title,
		Price:         input.Price,
		Discount:      input.Discount,
		DiscountPrice: input.DiscountPrice,
		Stock:         input.Stock,
		MainImage:     refs[0],
		DivisionID:    input.DivisionID,
		DistrictID:    input.DistrictID,
		AreaID:        input.AreaID,
		Address:       input.Address,
	}
	if err := post.Submit(); err != nil {
		return nil, fmt.Errorf("PostUsecase.Create: %w", err)
	}

	postID, err := uc.posts.CreatePost(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("PostUsecase.Create: failed to create post: %w", err)
	}

	details := &domain.PostDetails{
		PostID:      postID,
		BrandID:     input.BrandID,
		CategoryID:  input.CategoryID,
		ModelID:     input.ModelID,
		Description: input.Description,
		Keyword:     input.Keyword,
	}
	details.SetDetailSlots([4]domain.ImageRef{refs[1], refs[2], refs[3], refs[4]})

	if _, err := uc.posts.CreateDetails(ctx, details); err != nil {
		uc.logger.Error("Details insert failed, compensating post insert",
			zap.String("post_id", postID.Hex()), zap.Error(err))
		if compErr := uc.posts.HardDeletePost(ctx, postID); compErr != nil {
			uc.logger.Error("Compensating post delete failed, orphaned post record",
				zap.String("post_id", postID.Hex()), zap.Error(compErr))
		}
		return nil, fmt.Errorf("PostUsecase.Create: failed to create post details: %w", err)
	}

	invalidateFeedCache(ctx, uc.cacheRepo, uc.logger)
	if uc.metrics != nil {
		uc.metrics.PostsCreatedTotal.Inc()
	}
	return post, nil
}

type UpdatePostInput struct {
	Title         string
	Price         int64
	Discount      bool
	DiscountPrice int64
	Stock         int64
	DivisionID    primitive.ObjectID
	DistrictID    primitive.ObjectID
	AreaID        primitive.ObjectID
	Address       string

	BrandID     primitive.ObjectID
	CategoryID  primitive.ObjectID
	ModelID     primitive.ObjectID
	Description string
	Keyword     string

	ImagePaths []string
}

// Update replaces every field and all five images, then forces the
// pair back into review with the edit counter bumped.
func (uc *PostUsecase) Update(ctx context.Context, ownerID, postID primitive.ObjectID, input UpdatePostInput) (*domain.Post, error) {
	post, details, err := uc.loadOwnedPair(ctx, ownerID, postID)
	if err != nil {
		uc.images.CleanupLocal(input.ImagePaths)
		return nil, fmt.Errorf("PostUsecase.Update: %w", err)
	}

	if err := uc.images.ReplaceAll(ctx, post, details, input.ImagePaths, ownerID.Hex()); err != nil {
		return nil, fmt.Errorf("PostUsecase.Update: %w", err)
	}

	post.Title = input.Title
	post.Price = input.Price
	post.Discount = input.Discount
	post.DiscountPrice = input.DiscountPrice
	post.Stock = input.Stock
	post.DivisionID = input.DivisionID
	post.DistrictID = input.DistrictID
	post.AreaID = input.AreaID
	post.Address = input.Address

	details.BrandID = input.BrandID
	details.CategoryID = input.CategoryID
	details.ModelID = input.ModelID
	details.Description = input.Description
	details.Keyword = input.Keyword

	if err := uc.posts.UpdatePair(ctx, post, details); err != nil {
		return nil, fmt.Errorf("PostUsecase.Update: failed to update pair: %w", err)
	}

	invalidateFeedCache(ctx, uc.cacheRepo, uc.logger)
	if uc.metrics != nil {
		uc.metrics.PostsUpdatedTotal.Inc()
	}
	return post, nil
}

// Delete removes the pair transactionally, then best-effort destroys
// the remote images and publishes the deletion event.
func (uc *PostUsecase) Delete(ctx context.Context, ownerID, postID primitive.ObjectID) error {
	post, details, err := uc.loadOwnedPair(ctx, ownerID, postID)
	if err != nil {
		return fmt.Errorf("PostUsecase.Delete: %w", err)
	}
	// The in-memory post reaches its terminal state before the
	// records go away; the deletion event carries it.
	if err := post.MarkDeleted(); err != nil {
		return fmt.Errorf("PostUsecase.Delete: %w", err)
	}

	if err := uc.posts.DeleteWithDetails(ctx, postID, &ownerID); err != nil {
		return fmt.Errorf("PostUsecase.Delete: %w", err)
	}

	for _, objectID := range domain.PopulatedObjectIDs(post, details) {
		if err := uc.images.DestroyRemote(ctx, objectID); err != nil {
			uc.logger.Warn("Failed to destroy remote image after delete",
				zap.String("post_id", postID.Hex()), zap.String("object_id", objectID), zap.Error(err))
		}
	}

	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, SubjectPostDeleted, map[string]string{
			"postId": postID.Hex(),
			"state":  string(post.State()),
		}); err != nil {
			uc.logger.Warn("Failed to publish post.deleted event", zap.Error(err))
		}
	}
	invalidateFeedCache(ctx, uc.cacheRepo, uc.logger)
	if uc.metrics != nil {
		uc.metrics.PostsDeletedTotal.Inc()
	}
	return nil
}

// MyPosts lists the caller's approved listings.
func (uc *PostUsecase) MyPosts(ctx context.Context, ownerID primitive.ObjectID) ([]*domain.Post, error) {
	posts, err := uc.posts.FindOwned(ctx, ownerID, repository.OwnedApproved)
	if err != nil {
		return nil, fmt.Errorf("PostUsecase.MyPosts: %w", err)
	}
	return posts, nil
}

// MyPendingPosts lists the caller's listings still waiting for review.
func (uc *PostUsecase) MyPendingPosts(ctx context.Context, ownerID primitive.ObjectID) ([]*domain.Post, error) {
	posts, err := uc.posts.FindOwned(ctx, ownerID, repository.OwnedPending)
	if err != nil {
		return nil, fmt.Errorf("PostUsecase.MyPendingPosts: %w", err)
	}
	return posts, nil
}

// DeleteImage unsets exactly the slot holding objectID, then issues
// the remote destroy. An unknown objectID mutates nothing.
func (uc *PostUsecase) DeleteImage(ctx context.Context, ownerID, postID primitive.ObjectID, objectID string) error {
	post, details, err := uc.loadOwnedPair(ctx, ownerID, postID)
	if err != nil {
		return fmt.Errorf("PostUsecase.DeleteImage: %w", err)
	}

	slot, ok := domain.FindSlotByObjectID(post, details, objectID)
	if !ok {
		return domain.ErrImageNotFound
	}

	if err := uc.posts.UnsetImageSlot(ctx, postID, slot); err != nil {
		return fmt.Errorf("PostUsecase.DeleteImage: %w", err)
	}

	// The record no longer references the object; a failed destroy
	// only orphans the blob.
	if err := uc.images.DestroyRemote(ctx, objectID); err != nil {
		uc.logger.Warn("Failed to destroy remote image after slot unset",
			zap.String("post_id", postID.Hex()), zap.String("object_id", objectID), zap.Error(err))
	}
	return nil
}

func (uc *PostUsecase) loadOwnedPair(ctx context.Context, ownerID, postID primitive.ObjectID) (*domain.Post, *domain.PostDetails, error) {
	post, err := uc.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	if post.OwnerID != ownerID {
		return nil, nil, domain.ErrNotOwner
	}
	details, err := uc.posts.FindDetailsByPostID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	return post, details, nil
}
