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
	"github.com/srijonashraf/sellswipe-server/internal/port/repository"
)

// PostRepository implements repository.PostRepository on MongoDB. It
// owns both the posts and postdetails collections because deletion
// spans the two inside one transaction.
type PostRepository struct {
	client  *mongo.Client
	posts   *mongo.Collection
	details *mongo.Collection
	logger  *logger.Logger
}

func NewPostRepository(client *mongo.Client, dbName string, log *logger.Logger) (*PostRepository, error) {
	db := client.Database(dbName)
	posts := db.Collection(postCollectionName)
	details := db.Collection(detailsCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userID", Value: 1}, {Key: "onReview", Value: 1}, {Key: "isDeleted", Value: 1}}},
		{Keys: bson.D{{Key: "isApproved", Value: 1}, {Key: "isActive", Value: 1}, {Key: "isDeleted", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "reportCount", Value: 1}}},
	}
	detailIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "postID", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "brandID", Value: 1}, {Key: "categoryID", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := posts.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for posts collection", zap.Error(err))
		// Indexes may already exist; startup continues.
	}
	if _, err := details.Indexes().CreateMany(ctx, detailIndexes); err != nil {
		log.Error("Failed to create indexes for postdetails collection", zap.Error(err))
	}

	return &PostRepository{
		client:  client,
		posts:   posts,
		details: details,
		logger:  log.Named("PostRepository"),
	}, nil
}

func (r *PostRepository) CreatePost(ctx context.Context, post *domain.Post) (primitive.ObjectID, error) {
	doc := fromDomainPost(post)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	post.ID = doc.ID
	post.CreatedAt = now
	post.UpdatedAt = now

	if _, err := r.posts.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert post", zap.Error(err))
		return primitive.NilObjectID, fmt.Errorf("db insert post failed: %w", err)
	}
	return doc.ID, nil
}

func (r *PostRepository) CreateDetails(ctx context.Context, details *domain.PostDetails) (primitive.ObjectID, error) {
	doc := fromDomainDetails(details)
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	details.ID = doc.ID

	if _, err := r.details.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert post details", zap.Error(err), zap.String("post_id", details.PostID.Hex()))
		return primitive.NilObjectID, fmt.Errorf("db insert post details failed: %w", err)
	}
	return doc.ID, nil
}

func (r *PostRepository) HardDeletePost(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.posts.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("db compensating post delete failed: %w", err)
	}
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Post, error) {
	var doc postDocument
	err := r.posts.FindOne(ctx, bson.M{"_id": id, "isDeleted": false}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("db findone post failed: %w", err)
	}
	return doc.toDomainPost(), nil
}

func (r *PostRepository) FindDetailsByPostID(ctx context.Context, postID primitive.ObjectID) (*domain.PostDetails, error) {
	var doc detailsDocument
	err := r.details.FindOne(ctx, bson.M{"postID": postID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDetailsNotFound
		}
		return nil, fmt.Errorf("db findone post details failed: %w", err)
	}
	return doc.toDomainDetails(), nil
}

func (r *PostRepository) FindOwned(ctx context.Context, ownerID primitive.ObjectID, filter repository.OwnedFilter) ([]*domain.Post, error) {
	query := bson.M{"userID": ownerID, "isDeleted": false}
	switch filter {
	case repository.OwnedPending:
		query["onReview"] = true
		query["isApproved"] = false
	default:
		query["onReview"] = false
		query["isApproved"] = true
	}

	cursor, err := r.posts.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("db find owned posts failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db decode owned posts failed: %w", err)
	}

	result := make([]*domain.Post, len(docs))
	for i := range docs {
		result[i] = docs[i].toDomainPost()
	}
	return result, nil
}

// UpdatePair rewrites the editable fields of the pair. Re-review is
// forced and editCount bumps by one in the same atomic post update.
func (r *PostRepository) UpdatePair(ctx context.Context, post *domain.Post, details *domain.PostDetails) error {
	now := time.Now().UTC()

	postUpdate := bson.M{
		"$set": bson.M{
			"title":         post.Title,
			"price":         post.Price,
			"discount":      post.Discount,
			"discountPrice": post.DiscountPrice,
			"stock":         post.Stock,
			"mainImg":       post.MainImage,
			"divisionID":    post.DivisionID,
			"districtID":    post.DistrictID,
			"areaID":        post.AreaID,
			"address":       post.Address,
			"onReview":      true,
			"isApproved":    false,
			"updatedAt":     now,
		},
		"$inc": bson.M{"editCount": 1},
	}

	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": post.ID, "isDeleted": false}, postUpdate)
	if err != nil {
		r.logger.Error("Failed to update post", zap.Error(err), zap.String("post_id", post.ID.Hex()))
		return fmt.Errorf("db update post failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPostNotFound
	}

	detailsUpdate := bson.M{
		"$set": bson.M{
			"brandID":     details.BrandID,
			"categoryID":  details.CategoryID,
			"modelID":     details.ModelID,
			"description": details.Description,
			"keyword":     details.Keyword,
			"img1":        details.Img1,
			"img2":        details.Img2,
			"img3":        details.Img3,
			"img4":        details.Img4,
		},
	}

	dres, err := r.details.UpdateOne(ctx, bson.M{"postID": post.ID}, detailsUpdate)
	if err != nil {
		r.logger.Error("Failed to update post details", zap.Error(err), zap.String("post_id", post.ID.Hex()))
		return fmt.Errorf("db update post details failed: %w", err)
	}
	if dres.MatchedCount == 0 {
		return domain.ErrDetailsNotFound
	}

	post.OnReview = true
	post.IsApproved = false
	post.EditCount++
	post.UpdatedAt = now
	return nil
}

func (r *PostRepository) SetModerationState(ctx context.Context, post *domain.Post) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"onReview":    post.OnReview,
			"isApproved":  post.IsApproved,
			"isDeclined":  post.IsDeclined,
			"isActive":    post.IsActive,
			"isDeleted":   post.IsDeleted,
			"reportCount": post.ReportCount,
			"reportedBy":  post.ReportedBy,
			"feedback":    post.Feedback,
			"updatedAt":   now,
		},
	}

	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		r.logger.Error("Failed to persist moderation state", zap.Error(err), zap.String("post_id", post.ID.Hex()))
		return fmt.Errorf("db moderation update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPostNotFound
	}
	post.UpdatedAt = now
	return nil
}

func (r *PostRepository) UnsetImageSlot(ctx context.Context, postID primitive.ObjectID, slot domain.SlotID) error {
	if slot == domain.SlotMain {
		res, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$unset": bson.M{"mainImg": ""}})
		if err != nil {
			return fmt.Errorf("db unset main image failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return domain.ErrPostNotFound
		}
		return nil
	}

	res, err := r.details.UpdateOne(ctx, bson.M{"postID": postID}, bson.M{"$unset": bson.M{string(slot): ""}})
	if err != nil {
		return fmt.Errorf("db unset image slot %s failed: %w", slot, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrDetailsNotFound
	}
	return nil
}

func (r *PostRepository) IncrementViews(ctx context.Context, postID primitive.ObjectID) error {
	_, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$inc": bson.M{"viewsCount": 1}})
	if err != nil {
		return fmt.Errorf("db increment views failed: %w", err)
	}
	return nil
}

func queueFilter(queue repository.ModerationQueue) bson.M {
	switch queue {
	case repository.QueueApproved:
		return bson.M{"onReview": false, "isApproved": true, "isDeleted": false}
	case repository.QueueDeclined:
		return bson.M{"isDeclined": true, "isDeleted": false}
	case repository.QueueReported:
		return bson.M{"reportCount": bson.M{"$gt": 0}, "isDeleted": false}
	default:
		return bson.M{"onReview": true, "isApproved": false, "isDeleted": false}
	}
}

func (r *PostRepository) ListByQueue(ctx context.Context, queue repository.ModerationQueue, page, limit int) ([]*domain.Post, int64, error) {
	filter := queueFilter(queue)

	total, err := r.posts.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("db count queue %s failed: %w", queue, err)
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.posts.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("db find queue %s failed: %w", queue, err)
	}
	defer cursor.Close(ctx)

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("db decode queue %s failed: %w", queue, err)
	}

	result := make([]*domain.Post, len(docs))
	for i := range docs {
		result[i] = docs[i].toDomainPost()
	}
	return result, total, nil
}

// DeleteWithDetails removes the pair inside one transaction. Either
// both records go or the transaction aborts and neither does. The
// session is ended on every exit path.
func (r *PostRepository) DeleteWithDetails(ctx context.Context, postID primitive.ObjectID, owner *primitive.ObjectID) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		filter := bson.M{"_id": postID}
		if owner != nil {
			filter["userID"] = *owner
		}

		res, err := r.posts.DeleteOne(sc, filter)
		if err != nil {
			return nil, fmt.Errorf("db delete post failed: %w", err)
		}
		if res.DeletedCount != 1 {
			return nil, domain.ErrPostNotFound
		}

		dres, err := r.details.DeleteOne(sc, bson.M{"postID": postID})
		if err != nil {
			return nil, fmt.Errorf("db delete post details failed: %w", err)
		}
		if dres.DeletedCount != 1 {
			return nil, domain.ErrDetailsDeleteInvalid
		}

		return nil, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) || errors.Is(err, domain.ErrDetailsDeleteInvalid) {
			return err
		}
		r.logger.Error("Delete transaction failed", zap.Error(err), zap.String("post_id", postID.Hex()))
		return fmt.Errorf("delete transaction failed: %w", err)
	}
	return nil
}
