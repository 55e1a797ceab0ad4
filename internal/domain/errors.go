package domain

import "errors"

var (
	ErrPostNotFound         = errors.New("post not found")
	ErrDetailsNotFound      = errors.New("post details not found")
	ErrOwnerNotFound        = errors.New("post owner not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrImageNotFound        = errors.New("image not found")
	ErrNoData               = errors.New("no data found")
	ErrWrongImageCount      = errors.New("exactly five image files must be uploaded")
	ErrIllegalTransition    = errors.New("illegal moderation state transition")
	ErrFeedbackRequired     = errors.New("feedback message is required to decline a post")
	ErrNotOwner             = errors.New("user does not own this post")
	ErrModeratorRoleNeeded  = errors.New("moderator role required for this action")
	ErrDetailsDeleteInvalid = errors.New("post details deletion failed")
)
