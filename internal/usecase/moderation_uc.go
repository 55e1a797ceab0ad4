package usecase

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
	"github.com/srijonashraf/sellswipe-server/internal/mailer"
	"github.com/srijonashraf/sellswipe-server/internal/platform/logger"
	"github.com/srijonashraf/sellswipe-server/internal/platform/metrics"
	"github.com/srijonashraf/sellswipe-server/internal/port/cache"
	"github.com/srijonashraf/sellswipe-server/internal/port/repository"
)

// ModerationUsecase owns the admin side: approve/decline, the report
// workflow, moderation queues, admin deletion and account status.
// NATS events and owner emails are best effort; the state transition
// is committed first and never rolled back by a notification failure.
type ModerationUsecase struct {
	posts     repository.PostRepository
	users     repository.UserRepository
	publisher EventPublisher
	mail      mailer.Sender
	cacheRepo cache.CacheRepository
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

func NewModerationUsecase(
	posts repository.PostRepository,
	users repository.UserRepository,
	publisher EventPublisher,
	mail mailer.Sender,
	cacheRepo cache.CacheRepository,
	mm *metrics.MetricsManager,
	log *logger.Logger,
) *ModerationUsecase {
	return &ModerationUsecase{
		posts:     posts,
		users:     users,
		publisher: publisher,
		mail:      mail,
		cacheRepo: cacheRepo,
		metrics:   mm,
		logger:    log.Named("ModerationUsecase"),
	}
}

func (uc *ModerationUsecase) requireModerator(actor domain.Actor) error {
	if !actor.Role.IsModerator() {
		return domain.ErrModeratorRoleNeeded
	}
	return nil
}

// Approve moves a post out of review into public visibility.
func (uc *ModerationUsecase) Approve(ctx context.Context, actor domain.Actor, postID primitive.ObjectID) (*domain.Post, error) {
	if err := uc.requireModerator(actor); err != nil {
		return nil, err
	}

	post, err := uc.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("ModerationUsecase.Approve: %w", err)
	}
	if err := post.Approve(); err != nil {
		return nil, fmt.Errorf("ModerationUsecase.Approve: %w", err)
	}
	if err := uc.posts.SetModerationState(ctx, post); err != nil {
		return nil, fmt.Errorf("ModerationUsecase.Approve: %w", err)
	}

	uc.recordAction("approve")
	invalidateFeedCache(ctx, uc.cacheRepo, uc.logger)
	uc.notifyOwner(ctx, post, SubjectPostApproved, "Your listing was approved",
		fmt.Sprintf("Your listing %q is now live.", post.Title))
	return post, nil
}

// Decline rejects a post under review. Feedback is mandatory and is
// stored on the record for the owner to read.
func (uc *ModerationUsecase) Decline(ctx context.Context, actor domain.Actor, postID primitive.ObjectID, feedback string) (*domain.Post, error) {
	if err := uc.requireModerator(actor); err != nil {
		return nil, err
	}

	post, err := uc.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("ModerationUsecase.Decline: %w", err)
	}
	if err := post.Decline(feedback); err != nil {
		return nil, fmt.Errorf("ModerationUsecase.Decline: %w", err)
	}
	if err := uc.posts.SetModerationState(ctx, post); err != nil {
		return nil, fmt.Errorf("ModerationUsecase.Decline: %w", err)
	}

	uc.recordAction("decline")
	invalidateFeedCache(ctx, uc.cacheRepo, uc.logger)
	uc.notifyOwner(ctx, post, SubjectPostDeclined, "Your listing was declined",
		fmt.Sprintf("Your listing %q was declined: %s", post.Title, feedback))
	return post, nil
}

// Report records a report by any authenticated user. Reporting twice
// from the same account is a no-op, not an error.
func (uc *ModerationUsecase) Report(ctx context.Context, reporterID, postID primitive.ObjectID) (*domain.Post, error) {
	post, err := uc.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("ModerationUsecase.Report: %w", err)
	}

	if !post.Report(reporterID) {
		return post, nil
	}
	if err := uc.posts.SetModerationState(ctx, post); err != nil {
		return nil, fmt.Errorf("ModerationUsecase.Report: %w", err)
	}

	uc.recordAction("report")
	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, SubjectPostReported, map[string]interface{}{
			"postId":      post.ID.Hex(),
			"reportCount": post.ReportCount,
		}); err != nil {
			uc.logger.Warn("Failed to publish post.reported event", zap.Error(err))
		}
	}
	return post, nil
}

// WithdrawReport removes one reporter's report, moderator only.
func (uc *ModerationUsecase) WithdrawReport(ctx context.Context, actor domain.Actor, reporterID, postID primitive.ObjectID) (*domain.Post, error) {
	if err := uc.requireModerator(actor); err != nil {
		return nil, err
	}

	post, err := uc.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("ModerationUsecase.WithdrawReport: %w", err)
	}

	if !post.WithdrawReport(reporterID) {
		return post, nil
	}
	if err := uc.posts.SetModerationState(ctx, post); err != nil {
		return nil, fmt.Errorf("ModerationUsecase.WithdrawReport: %w", err)
	}

	uc.recordAction("withdraw_report")
	return post, nil
}

// AdminDelete removes a listing regardless of ownership.
func (uc *ModerationUsecase) AdminDelete(ctx context.Context, actor domain.Actor, postID primitive.ObjectID) error {
	if err := uc.requireModerator(actor); err != nil {
		return err
	}

	post, err := uc.posts.FindByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("ModerationUsecase.AdminDelete: %w", err)
	}
	if err := post.MarkDeleted(); err != nil {
		return fmt.Errorf("ModerationUsecase.AdminDelete: %w", err)
	}

	if err := uc.posts.DeleteWithDetails(ctx, postID, nil); err != nil {
		return fmt.Errorf("ModerationUsecase.AdminDelete: %w", err)
	}

	uc.recordAction("admin_delete")
	invalidateFeedCache(ctx, uc.cacheRepo, uc.logger)
	if uc.metrics != nil {
		uc.metrics.PostsDeletedTotal.Inc()
	}
	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, SubjectPostDeleted, map[string]string{
			"postId": postID.Hex(),
			"state":  string(post.State()),
		}); err != nil {
			uc.logger.Warn("Failed to publish post.deleted event", zap.Error(err))
		}
	}
	return nil
}

type QueueOutput struct {
	Posts []*domain.Post
	Total int64
}

// Queue lists one of the moderation queues, newest first.
func (uc *ModerationUsecase) Queue(ctx context.Context, actor domain.Actor, queue repository.ModerationQueue, page, limit int) (*QueueOutput, error) {
	if err := uc.requireModerator(actor); err != nil {
		return nil, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	posts, total, err := uc.posts.ListByQueue(ctx, queue, page, limit)
	if err != nil {
		return nil, fmt.Errorf("ModerationUsecase.Queue: %w", err)
	}
	return &QueueOutput{Posts: posts, Total: total}, nil
}

// WarnAccount puts an owner account into Warning status.
func (uc *ModerationUsecase) WarnAccount(ctx context.Context, actor domain.Actor, userID primitive.ObjectID) (*domain.User, error) {
	return uc.setAccountStatus(ctx, actor, userID, domain.AccountWarning, "warn_account",
		SubjectAccountWarned, "Account warning",
		"Your account received a warning from the moderation team. Repeated violations lead to restriction.")
}

// RestrictAccount hides all of an owner's listings from public views.
func (uc *ModerationUsecase) RestrictAccount(ctx context.Context, actor domain.Actor, userID primitive.ObjectID) (*domain.User, error) {
	return uc.setAccountStatus(ctx, actor, userID, domain.AccountRestricted, "restrict_account",
		SubjectAccountRestricted, "Account restricted",
		"Your account has been restricted. Your listings are no longer publicly visible.")
}

// WithdrawRestrictions returns an account to good standing.
func (uc *ModerationUsecase) WithdrawRestrictions(ctx context.Context, actor domain.Actor, userID primitive.ObjectID) (*domain.User, error) {
	return uc.setAccountStatus(ctx, actor, userID, domain.AccountValidate, "withdraw_restrictions",
		"", "Account restored",
		"Your account is back in good standing.")
}

func (uc *ModerationUsecase) setAccountStatus(ctx context.Context, actor domain.Actor, userID primitive.ObjectID, status domain.AccountStatus, action, subject, mailSubject, mailBody string) (*domain.User, error) {
	if err := uc.requireModerator(actor); err != nil {
		return nil, err
	}

	user, err := uc.users.SetAccountStatus(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("ModerationUsecase.setAccountStatus: %w", err)
	}

	uc.recordAction(action)
	// Restriction and its withdrawal change which listings the public
	// feed may show.
	invalidateFeedCache(ctx, uc.cacheRepo, uc.logger)
	if uc.publisher != nil && subject != "" {
		if err := uc.publisher.Publish(ctx, subject, map[string]string{"userId": userID.Hex()}); err != nil {
			uc.logger.Warn("Failed to publish account event", zap.String("subject", subject), zap.Error(err))
		}
	}
	if uc.mail != nil && user.Email != "" {
		if err := uc.mail.Send(ctx, user.Email, mailSubject, mailBody); err != nil {
			uc.logger.Warn("Failed to send account status email",
				zap.String("user_id", userID.Hex()), zap.Error(err))
		}
	}
	return user, nil
}

type UserListOutput struct {
	Users []*domain.User
	Total int64
}

// UserList pages through accounts, optionally by status.
func (uc *ModerationUsecase) UserList(ctx context.Context, actor domain.Actor, status *domain.AccountStatus, page, limit int) (*UserListOutput, error) {
	if err := uc.requireModerator(actor); err != nil {
		return nil, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	users, total, err := uc.users.List(ctx, status, page, limit)
	if err != nil {
		return nil, fmt.Errorf("ModerationUsecase.UserList: %w", err)
	}
	return &UserListOutput{Users: users, Total: total}, nil
}

func (uc *ModerationUsecase) recordAction(action string) {
	if uc.metrics != nil {
		uc.metrics.ModerationActionsTotal.WithLabelValues(action).Inc()
	}
}

// notifyOwner publishes the event and emails the listing owner.
func (uc *ModerationUsecase) notifyOwner(ctx context.Context, post *domain.Post, subject, mailSubject, mailBody string) {
	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, subject, map[string]string{
			"postId":  post.ID.Hex(),
			"ownerId": post.OwnerID.Hex(),
		}); err != nil {
			uc.logger.Warn("Failed to publish moderation event", zap.String("subject", subject), zap.Error(err))
		}
	}

	if uc.mail == nil {
		return
	}
	owner, err := uc.users.FindByID(ctx, post.OwnerID)
	if err != nil {
		uc.logger.Warn("Failed to load owner for notification",
			zap.String("owner_id", post.OwnerID.Hex()), zap.Error(err))
		return
	}
	if owner.Email == "" {
		return
	}
	if err := uc.mail.Send(ctx, owner.Email, mailSubject, mailBody); err != nil {
		uc.logger.Warn("Failed to send moderation email",
			zap.String("owner_id", post.OwnerID.Hex()), zap.Error(err))
	}
}
