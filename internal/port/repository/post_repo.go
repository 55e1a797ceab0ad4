package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
)

// OwnedFilter selects which of a user's own posts to list.
type OwnedFilter string

const (
	OwnedApproved OwnedFilter = "approved"
	OwnedPending  OwnedFilter = "pending"
)

// ModerationQueue selects one of the admin listing queues.
type ModerationQueue string

const (
	QueueReview   ModerationQueue = "review"
	QueueApproved ModerationQueue = "approved"
	QueueDeclined ModerationQueue = "declined"
	QueueReported ModerationQueue = "reported"
)

// PostRepository is the persistence port for the Post/PostDetails
// pair. Creation is not transactional: CreatePost and CreateDetails
// are separate calls and the caller compensates with HardDeletePost
// when the second insert fails. Deletion IS transactional, through
// DeleteWithDetails.
type PostRepository interface {
	CreatePost(ctx context.Context, post *domain.Post) (primitive.ObjectID, error)
	CreateDetails(ctx context.Context, details *domain.PostDetails) (primitive.ObjectID, error)
	// HardDeletePost removes the post record outright. Only used to
	// compensate a failed CreateDetails; lifecycle deletion goes
	// through DeleteWithDetails.
	HardDeletePost(ctx context.Context, id primitive.ObjectID) error

	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Post, error)
	FindDetailsByPostID(ctx context.Context, postID primitive.ObjectID) (*domain.PostDetails, error)
	FindOwned(ctx context.Context, ownerID primitive.ObjectID, filter OwnedFilter) ([]*domain.Post, error)

	// UpdatePair rewrites the mutable fields of both records, forces
	// re-review (onReview=true, isApproved=false) and increments
	// editCount by exactly one, always.
	UpdatePair(ctx context.Context, post *domain.Post, details *domain.PostDetails) error

	// SetModerationState persists the post's moderation flags, report
	// set and feedback after a domain transition.
	SetModerationState(ctx context.Context, post *domain.Post) error

	UnsetImageSlot(ctx context.Context, postID primitive.ObjectID, slot domain.SlotID) error
	IncrementViews(ctx context.Context, postID primitive.ObjectID) error

	ListByQueue(ctx context.Context, queue ModerationQueue, page, limit int) ([]*domain.Post, int64, error)

	// DeleteWithDetails removes the post and its details inside one
	// multi-document transaction, or neither. A nil owner skips the
	// ownership filter (moderator path).
	DeleteWithDetails(ctx context.Context, postID primitive.ObjectID, owner *primitive.ObjectID) error
}
