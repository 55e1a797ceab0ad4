package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
	"github.com/srijonashraf/sellswipe-server/internal/platform/logger"
	"github.com/srijonashraf/sellswipe-server/internal/port/cache"
	"github.com/srijonashraf/sellswipe-server/internal/port/repository"
)

var tracer = otel.Tracer("sellswipe-server/usecase")

const feedCacheKey = "feed:public"
const feedCacheTTL = 1 * time.Minute

// invalidateFeedCache drops the cached public feed. Mutating usecases
// call it after any write that changes what a visitor may see, so a
// stale feed never outlives the mutation by more than one request.
func invalidateFeedCache(ctx context.Context, cacheRepo cache.CacheRepository, log *logger.Logger) {
	if cacheRepo == nil {
		return
	}
	if err := cacheRepo.Delete(ctx, feedCacheKey); err != nil && !errors.Is(err, cache.ErrNotFound) {
		log.Warn("Failed to invalidate feed cache", zap.Error(err))
	}
}

// SearchUsecase serves the public read side: the feed, the narrowed
// list, keyword search and the single-listing detail. The feed is the
// only cached operation; everything else hits the aggregation engine
// directly.
type SearchUsecase struct {
	search    repository.SearchRepository
	posts     repository.PostRepository
	cacheRepo cache.CacheRepository
	logger    *logger.Logger
}

func NewSearchUsecase(
	search repository.SearchRepository,
	posts repository.PostRepository,
	cacheRepo cache.CacheRepository,
	log *logger.Logger,
) *SearchUsecase {
	return &SearchUsecase{
		search:    search,
		posts:     posts,
		cacheRepo: cacheRepo,
		logger:    log.Named("SearchUsecase"),
	}
}

// Feed returns every publicly visible listing, newest first.
func (uc *SearchUsecase) Feed(ctx context.Context) ([]domain.FeedItem, error) {
	ctx, span := tracer.Start(ctx, "SearchUsecase.Feed")
	defer span.End()

	if uc.cacheRepo != nil {
		cached, err := uc.cacheRepo.Get(ctx, feedCacheKey)
		if err == nil {
			var items []domain.FeedItem
			if unmarshalErr := json.Unmarshal(cached, &items); unmarshalErr == nil {
				return items, nil
			}
			uc.logger.Warn("Failed to unmarshal cached feed, dropping key", zap.Error(err))
			if delErr := uc.cacheRepo.Delete(ctx, feedCacheKey); delErr != nil {
				uc.logger.Warn("Failed to delete corrupted feed cache key", zap.Error(delErr))
			}
		} else if !errors.Is(err, cache.ErrNotFound) {
			uc.logger.Warn("Failed to read feed cache", zap.Error(err))
		}
	}

	items, err := uc.search.Feed(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("SearchUsecase.Feed: %w", err)
	}

	if uc.cacheRepo != nil {
		if payload, marshalErr := json.Marshal(items); marshalErr == nil {
			if setErr := uc.cacheRepo.Set(ctx, feedCacheKey, payload, feedCacheTTL); setErr != nil {
				uc.logger.Warn("Failed to cache feed", zap.Error(setErr))
			}
		}
	}
	return items, nil
}

// FilteredList narrows the feed by location, taxonomy and price range.
func (uc *SearchUsecase) FilteredList(ctx context.Context, filter domain.ListingFilter) ([]domain.FeedItem, error) {
	ctx, span := tracer.Start(ctx, "SearchUsecase.FilteredList")
	defer span.End()

	items, err := uc.search.FilteredList(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("SearchUsecase.FilteredList: %w", err)
	}
	return items, nil
}

// Search runs a case-insensitive keyword match combined with the
// filter. An empty result is ErrNoData, distinct from a query error.
func (uc *SearchUsecase) Search(ctx context.Context, keyword string, filter domain.ListingFilter) ([]domain.FeedItem, error) {
	ctx, span := tracer.Start(ctx, "SearchUsecase.Search")
	defer span.End()

	items, err := uc.search.Search(ctx, keyword, filter)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("SearchUsecase.Search: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrNoData
	}
	return items, nil
}

// Detail returns the fully joined public view of one listing. The view
// counter bumps before the lookup runs, so even a lookup that ends in
// not-found has counted the visit.
func (uc *SearchUsecase) Detail(ctx context.Context, id primitive.ObjectID) (*domain.PostView, error) {
	ctx, span := tracer.Start(ctx, "SearchUsecase.Detail")
	defer span.End()

	if err := uc.posts.IncrementViews(ctx, id); err != nil {
		uc.logger.Warn("Failed to increment view counter", zap.String("post_id", id.Hex()), zap.Error(err))
	}

	view, err := uc.search.PublicDetail(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrPostNotFound) {
			span.RecordError(err)
		}
		return nil, fmt.Errorf("SearchUsecase.Detail: %w", err)
	}
	return view, nil
}
