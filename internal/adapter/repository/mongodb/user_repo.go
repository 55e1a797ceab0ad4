package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
	"github.com/srijonashraf/sellswipe-server/internal/platform/logger"
)

// UserRepository implements repository.UserRepository on MongoDB.
// Account creation and authentication live elsewhere; this repository
// only reads accounts and flips their moderation status.
type UserRepository struct {
	users  *mongo.Collection
	logger *logger.Logger
}

func NewUserRepository(client *mongo.Client, dbName string, log *logger.Logger) (*UserRepository, error) {
	users := client.Database(dbName).Collection(userCollectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "accountStatus", Value: 1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := users.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for users collection", zap.Error(err))
	}

	return &UserRepository{
		users:  users,
		logger: log.Named("UserRepository"),
	}, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var doc userDocument
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("db findone user failed: %w", err)
	}
	return doc.toDomainUser(), nil
}

func (r *UserRepository) List(ctx context.Context, status *domain.AccountStatus, page, limit int) ([]*domain.User, int64, error) {
	filter := bson.M{}
	if status != nil {
		filter["accountStatus"] = *status
	}

	total, err := r.users.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("db count users failed: %w", err)
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.users.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("db find users failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("db decode users failed: %w", err)
	}

	result := make([]*domain.User, len(docs))
	for i := range docs {
		result[i] = docs[i].toDomainUser()
	}
	return result, total, nil
}

// SetAccountStatus moves an account into the given status. Entering
// Warning also bumps the warning counter so repeat offenders are
// visible to moderators.
func (r *UserRepository) SetAccountStatus(ctx context.Context, id primitive.ObjectID, status domain.AccountStatus) (*domain.User, error) {
	update := bson.M{
		"$set": bson.M{
			"accountStatus": status,
			"updatedAt":     time.Now().UTC(),
		},
	}
	if status == domain.AccountWarning {
		update["$inc"] = bson.M{"warningCount": 1}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		r.logger.Error("Failed to update account status", zap.Error(err), zap.String("user_id", id.Hex()))
		return nil, fmt.Errorf("db account status update failed: %w", err)
	}
	return doc.toDomainUser(), nil
}
