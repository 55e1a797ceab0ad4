package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
	"github.com/srijonashraf/sellswipe-server/internal/port/repository"
)

type MockPostRepository struct{ mock.Mock }

func (m *MockPostRepository) CreatePost(ctx context.Context, post *domain.Post) (primitive.ObjectID, error) {
	args := m.Called(ctx, post)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}
func (m *MockPostRepository) CreateDetails(ctx context.Context, details *domain.PostDetails) (primitive.ObjectID, error) {
	args := m.Called(ctx, details)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}
func (m *MockPostRepository) HardDeletePost(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockPostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}
func (m *MockPostRepository) FindDetailsByPostID(ctx context.Context, postID primitive.ObjectID) (*domain.PostDetails, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostDetails), args.Error(1)
}
func (m *MockPostRepository) FindOwned(ctx context.Context, ownerID primitive.ObjectID, filter repository.OwnedFilter) ([]*domain.Post, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Post), args.Error(1)
}
func (m *MockPostRepository) UpdatePair(ctx context.Context, post *domain.Post, details *domain.PostDetails) error {
	args := m.Called(ctx, post, details)
	return args.Error(0)
}
func (m *MockPostRepository) SetModerationState(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}
func (m *MockPostRepository) UnsetImageSlot(ctx context.Context, postID primitive.ObjectID, slot domain.SlotID) error {
	args := m.Called(ctx, postID, slot)
	return args.Error(0)
}
func (m *MockPostRepository) IncrementViews(ctx context.Context, postID primitive.ObjectID) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}
func (m *MockPostRepository) ListByQueue(ctx context.Context, queue repository.ModerationQueue, page, limit int) ([]*domain.Post, int64, error) {
	args := m.Called(ctx, queue, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Post), args.Get(1).(int64), args.Error(2)
}
func (m *MockPostRepository) DeleteWithDetails(ctx context.Context, postID primitive.ObjectID, owner *primitive.ObjectID) error {
	args := m.Called(ctx, postID, owner)
	return args.Error(0)
}

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepository) List(ctx context.Context, status *domain.AccountStatus, page, limit int) ([]*domain.User, int64, error) {
	args := m.Called(ctx, status, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.User), args.Get(1).(int64), args.Error(2)
}
func (m *MockUserRepository) SetAccountStatus(ctx context.Context, id primitive.ObjectID, status domain.AccountStatus) (*domain.User, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockSearchRepository struct{ mock.Mock }

func (m *MockSearchRepository) Feed(ctx context.Context) ([]domain.FeedItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FeedItem), args.Error(1)
}
func (m *MockSearchRepository) FilteredList(ctx context.Context, filter domain.ListingFilter) ([]domain.FeedItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FeedItem), args.Error(1)
}
func (m *MockSearchRepository) Search(ctx context.Context, keyword string, filter domain.ListingFilter) ([]domain.FeedItem, error) {
	args := m.Called(ctx, keyword, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FeedItem), args.Error(1)
}
func (m *MockSearchRepository) PublicDetail(ctx context.Context, id primitive.ObjectID) (*domain.PostView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostView), args.Error(1)
}

type MockCacheRepository struct{ mock.Mock }

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}
func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockMailSender struct{ mock.Mock }

func (m *MockMailSender) Send(ctx context.Context, to, subject, bodyText string) error {
	args := m.Called(ctx, to, subject, bodyText)
	return args.Error(0)
}

type MockAssetStorage struct{ mock.Mock }

func (m *MockAssetStorage) Upload(ctx context.Context, localPath, ownerTag string) (domain.ImageRef, error) {
	args := m.Called(ctx, localPath, ownerTag)
	return args.Get(0).(domain.ImageRef), args.Error(1)
}
func (m *MockAssetStorage) Destroy(ctx context.Context, objectID string) error {
	args := m.Called(ctx, objectID)
	return args.Error(0)
}
