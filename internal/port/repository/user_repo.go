package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
)

// UserRepository is the narrow slice of the users collection this
// service needs: owner lookups for joins and account moderation.
type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	List(ctx context.Context, status *domain.AccountStatus, page, limit int) ([]*domain.User, int64, error)
	// SetAccountStatus updates the account status and, when warning,
	// bumps the warning counter. Returns the updated user.
	SetAccountStatus(ctx context.Context, id primitive.ObjectID, status domain.AccountStatus) (*domain.User, error)
}
