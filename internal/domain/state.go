package domain

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ModerationState is the lifecycle dimension of a post. Reports are an
// orthogonal dimension (ReportCount/ReportedBy) and do not appear here.
type ModerationState string

const (
	StateReview   ModerationState = "review"
	StateApproved ModerationState = "approved"
	StateDeclined ModerationState = "declined"
	StateDeleted  ModerationState = "deleted"
)

// State derives the tagged state from the stored flag combination.
// Deleted wins over everything else.
func (p *Post) State() ModerationState {
	switch {
	case p.IsDeleted:
		return StateDeleted
	case p.IsDeclined:
		return StateDeclined
	case p.IsApproved && !p.OnReview:
		return StateApproved
	default:
		return StateReview
	}
}

// Submit puts the post (back) into review. Called on create and on
// every edit; legal from any non-deleted state.
func (p *Post) Submit() error {
	if p.State() == StateDeleted {
		return fmt.Errorf("submit from %s: %w", p.State(), ErrIllegalTransition)
	}
	p.OnReview = true
	p.IsApproved = false
	p.IsDeclined = false
	return nil
}

// Approve makes the post publicly visible. Legal only from review.
func (p *Post) Approve() error {
	if p.State() != StateReview {
		return fmt.Errorf("approve from %s: %w", p.State(), ErrIllegalTransition)
	}
	p.OnReview = false
	p.IsApproved = true
	p.IsDeclined = false
	p.IsActive = true
	return nil
}

// Decline rejects the post with a mandatory feedback message.
func (p *Post) Decline(feedback string) error {
	if feedback == "" {
		return ErrFeedbackRequired
	}
	if p.State() != StateReview {
		return fmt.Errorf("decline from %s: %w", p.State(), ErrIllegalTransition)
	}
	p.OnReview = false
	p.IsApproved = false
	p.IsDeclined = true
	p.Feedback = feedback
	return nil
}

// MarkDeleted moves the post to its terminal state. Legal from any
// non-deleted state.
func (p *Post) MarkDeleted() error {
	if p.IsDeleted {
		return fmt.Errorf("delete from %s: %w", StateDeleted, ErrIllegalTransition)
	}
	p.IsDeleted = true
	p.IsActive = false
	return nil
}

// Report records a report by reporterID. Idempotent per reporter:
// returns false without mutation when the reporter already reported.
func (p *Post) Report(reporterID primitive.ObjectID) bool {
	for _, id := range p.ReportedBy {
		if id == reporterID {
			return false
		}
	}
	p.ReportedBy = append(p.ReportedBy, reporterID)
	p.ReportCount++
	return true
}

// WithdrawReport removes reporterID from the report set. The count
// never goes below zero.
func (p *Post) WithdrawReport(reporterID primitive.ObjectID) bool {
	for i, id := range p.ReportedBy {
		if id == reporterID {
			p.ReportedBy = append(p.ReportedBy[:i], p.ReportedBy[i+1:]...)
			if p.ReportCount > 0 {
				p.ReportCount--
			}
			return true
		}
	}
	return false
}
