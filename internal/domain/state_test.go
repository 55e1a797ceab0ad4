package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newReviewPost() *Post {
	return &Post{
		ID:       primitive.NewObjectID(),
		OwnerID:  primitive.NewObjectID(),
		OnReview: true,
	}
}

func TestStateDerivation(t *testing.T) {
	p := newReviewPost()
	assert.Equal(t, StateReview, p.State())

	require.NoError(t, p.Approve())
	assert.Equal(t, StateApproved, p.State())

	p.IsDeleted = true
	assert.Equal(t, StateDeleted, p.State(), "deleted must win over approved")
}

func TestApproveOnlyFromReview(t *testing.T) {
	p := newReviewPost()
	require.NoError(t, p.Approve())
	assert.False(t, p.OnReview)
	assert.True(t, p.IsApproved)
	assert.True(t, p.IsActive)

	err := p.Approve()
	assert.ErrorIs(t, err, ErrIllegalTransition)

	declined := newReviewPost()
	require.NoError(t, declined.Decline("blurry images"))
	assert.ErrorIs(t, declined.Approve(), ErrIllegalTransition)
}

func TestDeclineRequiresFeedback(t *testing.T) {
	p := newReviewPost()
	assert.ErrorIs(t, p.Decline(""), ErrFeedbackRequired)
	assert.Equal(t, StateReview, p.State(), "failed decline must not mutate")

	require.NoError(t, p.Decline("price looks fraudulent"))
	assert.Equal(t, StateDeclined, p.State())
	assert.Equal(t, "price looks fraudulent", p.Feedback)

	assert.ErrorIs(t, p.Decline("again"), ErrIllegalTransition)
}

func TestSubmitResetsModerationFlags(t *testing.T) {
	p := newReviewPost()
	require.NoError(t, p.Approve())

	require.NoError(t, p.Submit())
	assert.Equal(t, StateReview, p.State())
	assert.True(t, p.OnReview)
	assert.False(t, p.IsApproved)

	require.NoError(t, p.MarkDeleted())
	assert.ErrorIs(t, p.Submit(), ErrIllegalTransition)
}

func TestMarkDeletedIsTerminal(t *testing.T) {
	p := newReviewPost()
	require.NoError(t, p.MarkDeleted())
	assert.True(t, p.IsDeleted)
	assert.False(t, p.IsActive)
	assert.ErrorIs(t, p.MarkDeleted(), ErrIllegalTransition)
}

func TestReportIsIdempotentPerReporter(t *testing.T) {
	p := newReviewPost()
	reporter := primitive.NewObjectID()

	assert.True(t, p.Report(reporter))
	assert.False(t, p.Report(reporter), "same reporter must not count twice")
	assert.Equal(t, 1, p.ReportCount)
	assert.Len(t, p.ReportedBy, 1)

	other := primitive.NewObjectID()
	assert.True(t, p.Report(other))
	assert.Equal(t, 2, p.ReportCount)
}

func TestWithdrawReportFloorsAtZero(t *testing.T) {
	p := newReviewPost()
	reporter := primitive.NewObjectID()

	assert.False(t, p.WithdrawReport(reporter), "nothing to withdraw")
	assert.Equal(t, 0, p.ReportCount)

	p.Report(reporter)
	assert.True(t, p.WithdrawReport(reporter))
	assert.Equal(t, 0, p.ReportCount)
	assert.Empty(t, p.ReportedBy)

	// A stale reporter entry with a zero count must not go negative.
	p.ReportedBy = []primitive.ObjectID{reporter}
	p.ReportCount = 0
	assert.True(t, p.WithdrawReport(reporter))
	assert.Equal(t, 0, p.ReportCount)
}

func TestFindSlotByObjectID(t *testing.T) {
	post := newReviewPost()
	post.MainImage = ImageRef{URL: "https://cdn/x/main.jpg", ObjectID: "posts/main-1"}
	details := &PostDetails{
		PostID: post.ID,
		Img1:   ImageRef{URL: "https://cdn/x/1.jpg", ObjectID: "posts/d-1"},
		Img3:   ImageRef{URL: "https://cdn/x/3.jpg", ObjectID: "posts/d-3"},
	}

	slot, ok := FindSlotByObjectID(post, details, "posts/main-1")
	require.True(t, ok)
	assert.Equal(t, SlotMain, slot)

	slot, ok = FindSlotByObjectID(post, details, "posts/d-3")
	require.True(t, ok)
	assert.Equal(t, SlotImg3, slot)

	_, ok = FindSlotByObjectID(post, details, "posts/unknown")
	assert.False(t, ok)

	// Empty object ids must never match an empty slot.
	_, ok = FindSlotByObjectID(post, details, "")
	assert.False(t, ok)
}

func TestPopulatedObjectIDs(t *testing.T) {
	post := newReviewPost()
	post.MainImage = ImageRef{URL: "u", ObjectID: "main"}
	details := &PostDetails{
		Img2: ImageRef{URL: "u2", ObjectID: "d2"},
		Img4: ImageRef{URL: "u4", ObjectID: "d4"},
	}

	ids := PopulatedObjectIDs(post, details)
	assert.Equal(t, []string{"main", "d2", "d4"}, ids)

	post.MainImage = ImageRef{}
	assert.Equal(t, []string{"d2", "d4"}, PopulatedObjectIDs(post, details))
}
