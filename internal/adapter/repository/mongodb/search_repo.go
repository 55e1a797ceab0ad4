package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
	"github.com/srijonashraf/sellswipe-server/internal/platform/logger"
)

// SearchRepository runs the public read-side aggregations. It never
// mutates anything; the pipelines join posts with their details,
// owner and geo references and project the redacted view shapes.
type SearchRepository struct {
	posts  *mongo.Collection
	logger *logger.Logger
}

func NewSearchRepository(client *mongo.Client, dbName string, log *logger.Logger) *SearchRepository {
	return &SearchRepository{
		posts:  client.Database(dbName).Collection(postCollectionName),
		logger: log.Named("SearchRepository"),
	}
}

func (r *SearchRepository) runFeedPipeline(ctx context.Context, pipeline mongo.Pipeline) ([]domain.FeedItem, error) {
	cursor, err := r.posts.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Feed aggregation failed", zap.Error(err))
		return nil, fmt.Errorf("db feed aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	items := []domain.FeedItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("db decode feed rows failed: %w", err)
	}
	return items, nil
}

// Feed returns every publicly visible listing, newest first.
func (r *SearchRepository) Feed(ctx context.Context) ([]domain.FeedItem, error) {
	pipeline := mongo.Pipeline{matchStage(publicVisibilityFilter())}
	pipeline = append(pipeline, joinStages()...)
	pipeline = append(pipeline,
		matchStage(ownerAccountFilter()),
		feedProjection(),
		sortStage("createdAt", -1),
	)
	return r.runFeedPipeline(ctx, pipeline)
}

// FilteredList narrows the feed by location, taxonomy and price.
func (r *SearchRepository) FilteredList(ctx context.Context, filter domain.ListingFilter) ([]domain.FeedItem, error) {
	match := publicVisibilityFilter()
	for k, v := range locationFilter(&filter) {
		match[k] = v
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		for k, v := range priceRangeFilter(filter.MinPrice, filter.MaxPrice) {
			match[k] = v
		}
	}

	pipeline := mongo.Pipeline{matchStage(match)}
	pipeline = append(pipeline, joinStages()...)
	pipeline = append(pipeline, matchStage(ownerAccountFilter()))
	if refs := detailRefsFilter(&filter); len(refs) > 0 {
		pipeline = append(pipeline, matchStage(refs))
	}
	pipeline = append(pipeline,
		feedProjection(),
		sortStage("createdAt", -1),
	)
	return r.runFeedPipeline(ctx, pipeline)
}

// Search combines a case-insensitive keyword match with the optional
// narrowing filter. The keyword stage runs after the joins so the
// description and keyword fields of the details document participate.
func (r *SearchRepository) Search(ctx context.Context, keyword string, filter domain.ListingFilter) ([]domain.FeedItem, error) {
	match := publicVisibilityFilter()
	for k, v := range locationFilter(&filter) {
		match[k] = v
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		for k, v := range priceRangeFilter(filter.MinPrice, filter.MaxPrice) {
			match[k] = v
		}
	}

	pipeline := mongo.Pipeline{matchStage(match)}
	pipeline = append(pipeline, joinStages()...)
	pipeline = append(pipeline,
		matchStage(ownerAccountFilter()),
		matchStage(keywordFilter(keyword)),
	)
	if refs := detailRefsFilter(&filter); len(refs) > 0 {
		pipeline = append(pipeline, matchStage(refs))
	}
	pipeline = append(pipeline,
		feedProjection(),
		sortStage("createdAt", -1),
	)
	return r.runFeedPipeline(ctx, pipeline)
}

// PublicDetail returns the fully joined single-listing view. A post
// that exists but fails the visibility predicate is indistinguishable
// from a missing one.
func (r *SearchRepository) PublicDetail(ctx context.Context, id primitive.ObjectID) (*domain.PostView, error) {
	match := publicVisibilityFilter()
	match["_id"] = id

	pipeline := mongo.Pipeline{matchStage(match)}
	pipeline = append(pipeline, detailJoinStages()...)
	pipeline = append(pipeline,
		matchStage(ownerAccountFilter()),
		detailProjection(),
	)

	cursor, err := r.posts.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Detail aggregation failed", zap.Error(err), zap.String("post_id", id.Hex()))
		return nil, fmt.Errorf("db detail aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var views []domain.PostView
	if err := cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("db decode detail view failed: %w", err)
	}
	if len(views) == 0 {
		return nil, domain.ErrPostNotFound
	}
	return &views[0], nil
}
