package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
	"github.com/srijonashraf/sellswipe-server/internal/mailer"
	"github.com/srijonashraf/sellswipe-server/internal/platform/logger"
	"github.com/srijonashraf/sellswipe-server/internal/port/repository"
)

func newModerationUsecase(posts *MockPostRepository, users *MockUserRepository, publisher *MockEventPublisher, mail *MockMailSender) *ModerationUsecase {
	log := logger.NewLogger()
	var pub EventPublisher
	if publisher != nil {
		pub = publisher
	}
	var sender mailer.Sender
	if mail != nil {
		sender = mail
	}
	return NewModerationUsecase(posts, users, pub, sender, nil, nil, log)
}

func moderator() domain.Actor {
	return domain.Actor{ID: primitive.NewObjectID(), Role: domain.RoleAdmin}
}

func regularUser() domain.Actor {
	return domain.Actor{ID: primitive.NewObjectID(), Role: domain.RoleUser}
}

func reviewPost(owner primitive.ObjectID) *domain.Post {
	return &domain.Post{
		ID:       primitive.NewObjectID(),
		OwnerID:  owner,
		Title:    "Espresso machine",
		OnReview: true,
	}
}

func TestApproveRequiresModeratorRole(t *testing.T) {
	uc := newModerationUsecase(new(MockPostRepository), new(MockUserRepository), nil, nil)

	_, err := uc.Approve(context.Background(), regularUser(), primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrModeratorRoleNeeded)
}

func TestApprovePersistsStateAndNotifiesOwner(t *testing.T) {
	posts := new(MockPostRepository)
	users := new(MockUserRepository)
	publisher := new(MockEventPublisher)
	mail := new(MockMailSender)
	uc := newModerationUsecase(posts, users, publisher, mail)

	owner := primitive.NewObjectID()
	post := reviewPost(owner)

	posts.On("FindByID", mock.Anything, post.ID).Return(post, nil)
	posts.On("SetModerationState", mock.Anything, mock.MatchedBy(func(p *domain.Post) bool {
		return p.IsApproved && !p.OnReview && p.IsActive
	})).Return(nil)
	users.On("FindByID", mock.Anything, owner).Return(&domain.User{ID: owner, Email: "owner@example.com"}, nil)
	publisher.On("Publish", mock.Anything, "post.approved", mock.Anything).Return(nil)
	mail.On("Send", mock.Anything, "owner@example.com", mock.Anything, mock.Anything).Return(nil)

	approved, err := uc.Approve(context.Background(), moderator(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateApproved, approved.State())

	posts.AssertExpectations(t)
	publisher.AssertExpectations(t)
	mail.AssertExpectations(t)
}

func TestApproveOutsideReviewIsIllegal(t *testing.T) {
	posts := new(MockPostRepository)
	uc := newModerationUsecase(posts, new(MockUserRepository), nil, nil)

	post := &domain.Post{ID: primitive.NewObjectID(), IsApproved: true}
	posts.On("FindByID", mock.Anything, post.ID).Return(post, nil)

	_, err := uc.Approve(context.Background(), moderator(), post.ID)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	posts.AssertNotCalled(t, "SetModerationState", mock.Anything, mock.Anything)
}

func TestDeclineRequiresFeedback(t *testing.T) {
	posts := new(MockPostRepository)
	uc := newModerationUsecase(posts, new(MockUserRepository), nil, nil)

	post := reviewPost(primitive.NewObjectID())
	posts.On("FindByID", mock.Anything, post.ID).Return(post, nil)

	_, err := uc.Decline(context.Background(), moderator(), post.ID, "")
	assert.ErrorIs(t, err, domain.ErrFeedbackRequired)
	posts.AssertNotCalled(t, "SetModerationState", mock.Anything, mock.Anything)
}

func TestDeclineStoresFeedback(t *testing.T) {
	posts := new(MockPostRepository)
	users := new(MockUserRepository)
	uc := newModerationUsecase(posts, users, nil, nil)

	post := reviewPost(primitive.NewObjectID())
	posts.On("FindByID", mock.Anything, post.ID).Return(post, nil)
	posts.On("SetModerationState", mock.Anything, mock.MatchedBy(func(p *domain.Post) bool {
		return p.IsDeclined && p.Feedback == "blurry photos"
	})).Return(nil)

	declined, err := uc.Decline(context.Background(), moderator(), post.ID, "blurry photos")
	require.NoError(t, err)
	assert.Equal(t, domain.StateDeclined, declined.State())
}

func TestNotificationFailureDoesNotFailTransition(t *testing.T) {
	posts := new(MockPostRepository)
	users := new(MockUserRepository)
	publisher := new(MockEventPublisher)
	mail := new(MockMailSender)
	uc := newModerationUsecase(posts, users, publisher, mail)

	owner := primitive.NewObjectID()
	post := reviewPost(owner)

	posts.On("FindByID", mock.Anything, post.ID).Return(post, nil)
	posts.On("SetModerationState", mock.Anything, mock.Anything).Return(nil)
	users.On("FindByID", mock.Anything, owner).Return(&domain.User{ID: owner, Email: "owner@example.com"}, nil)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("nats down"))
	mail.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	_, err := uc.Approve(context.Background(), moderator(), post.ID)
	assert.NoError(t, err)
}

func TestReportByAnyUserIsIdempotentPerReporter(t *testing.T) {
	posts := new(MockPostRepository)
	publisher := new(MockEventPublisher)
	uc := newModerationUsecase(posts, new(MockUserRepository), publisher, nil)

	reporter := primitive.NewObjectID()
	post := reviewPost(primitive.NewObjectID())
	post.ReportedBy = []primitive.ObjectID{reporter}
	post.ReportCount = 1

	posts.On("FindByID", mock.Anything, post.ID).Return(post, nil)

	reported, err := uc.Report(context.Background(), reporter, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reported.ReportCount)
	posts.AssertNotCalled(t, "SetModerationState", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestWithdrawReportRequiresModerator(t *testing.T) {
	uc := newModerationUsecase(new(MockPostRepository), new(MockUserRepository), nil, nil)

	_, err := uc.WithdrawReport(context.Background(), regularUser(), primitive.NewObjectID(), primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrModeratorRoleNeeded)
}

func TestWithdrawReportFloorsAtZero(t *testing.T) {
	posts := new(MockPostRepository)
	uc := newModerationUsecase(posts, new(MockUserRepository), nil, nil)

	reporter := primitive.NewObjectID()
	post := reviewPost(primitive.NewObjectID())
	post.ReportedBy = []primitive.ObjectID{reporter}
	post.ReportCount = 1

	posts.On("FindByID", mock.Anything, post.ID).Return(post, nil)
	posts.On("SetModerationState", mock.Anything, mock.Anything).Return(nil)

	withdrawn, err := uc.WithdrawReport(context.Background(), moderator(), reporter, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, withdrawn.ReportCount)
	assert.Empty(t, withdrawn.ReportedBy)
}

func TestApproveInvalidatesCachedFeed(t *testing.T) {
	posts := new(MockPostRepository)
	cacheRepo := new(MockCacheRepository)
	log := logger.NewLogger()
	uc := NewModerationUsecase(posts, new(MockUserRepository), nil, nil, cacheRepo, nil, log)

	post := reviewPost(primitive.NewObjectID())
	posts.On("FindByID", mock.Anything, post.ID).Return(post, nil)
	posts.On("SetModerationState", mock.Anything, mock.Anything).Return(nil)
	cacheRepo.On("Delete", mock.Anything, "feed:public").Return(nil)

	_, err := uc.Approve(context.Background(), moderator(), post.ID)
	require.NoError(t, err)
	cacheRepo.AssertExpectations(t)
}

func TestAdminDeleteSkipsOwnerFilter(t *testing.T) {
	posts := new(MockPostRepository)
	publisher := new(MockEventPublisher)
	uc := newModerationUsecase(posts, new(MockUserRepository), publisher, nil)

	postID := primitive.NewObjectID()
	posts.On("FindByID", mock.Anything, postID).Return(&domain.Post{ID: postID, OwnerID: primitive.NewObjectID()}, nil)
	posts.On("DeleteWithDetails", mock.Anything, postID, (*primitive.ObjectID)(nil)).Return(nil)
	publisher.On("Publish", mock.Anything, SubjectPostDeleted, mock.Anything).Return(nil)

	require.NoError(t, uc.AdminDelete(context.Background(), moderator(), postID))
	posts.AssertExpectations(t)
}

func TestQueueAppliesPagingDefaults(t *testing.T) {
	posts := new(MockPostRepository)
	uc := newModerationUsecase(posts, new(MockUserRepository), nil, nil)

	posts.On("ListByQueue", mock.Anything, repository.QueueReview, 1, 10).Return([]*domain.Post{}, int64(0), nil)

	out, err := uc.Queue(context.Background(), moderator(), repository.QueueReview, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.Total)
	posts.AssertExpectations(t)
}

func TestWarnAccountSetsWarningStatus(t *testing.T) {
	posts := new(MockPostRepository)
	users := new(MockUserRepository)
	publisher := new(MockEventPublisher)
	mail := new(MockMailSender)
	uc := newModerationUsecase(posts, users, publisher, mail)

	userID := primitive.NewObjectID()
	users.On("SetAccountStatus", mock.Anything, userID, domain.AccountWarning).Return(&domain.User{
		ID: userID, Email: "seller@example.com", AccountStatus: domain.AccountWarning, WarningCount: 1,
	}, nil)
	publisher.On("Publish", mock.Anything, "account.warned", mock.Anything).Return(nil)
	mail.On("Send", mock.Anything, "seller@example.com", mock.Anything, mock.Anything).Return(nil)

	user, err := uc.WarnAccount(context.Background(), moderator(), userID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountWarning, user.AccountStatus)
	users.AssertExpectations(t)
	mail.AssertExpectations(t)
}

func TestRestrictAccountRequiresModerator(t *testing.T) {
	uc := newModerationUsecase(new(MockPostRepository), new(MockUserRepository), nil, nil)

	_, err := uc.RestrictAccount(context.Background(), regularUser(), primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrModeratorRoleNeeded)
}
