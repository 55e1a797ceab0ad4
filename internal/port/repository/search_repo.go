package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
)

// SearchRepository runs the cross-collection aggregations producing
// redacted public views. All operations only surface posts passing
// the public-visibility predicate and whose owner account status is
// Validate or Warning.
type SearchRepository interface {
	Feed(ctx context.Context) ([]domain.FeedItem, error)
	FilteredList(ctx context.Context, filter domain.ListingFilter) ([]domain.FeedItem, error)
	Search(ctx context.Context, keyword string, filter domain.ListingFilter) ([]domain.FeedItem, error)
	// PublicDetail returns domain.ErrPostNotFound when the id exists
	// but is excluded by the visibility predicate.
	PublicDetail(ctx context.Context, id primitive.ObjectID) (*domain.PostView, error)
}
