package mongodb

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/srijonashraf/sellswipe-server/internal/domain"
	"github.com/srijonashraf/sellswipe-server/internal/platform/logger"
	"github.com/srijonashraf/sellswipe-server/internal/port/repository"
)

const testDBName = "test_sellswipe_db"

var (
	testClient   *mongo.Client
	testPostRepo *PostRepository
	testUserRepo *UserRepository
	testSearch   *SearchRepository
)

// TestMain spins up a single-node MongoDB replica set. Transactions
// require a replica set, a plain standalone container will not do.
// Set INTEGRATION_TEST=1 to run; without it the package only runs the
// pipeline unit tests.
func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION_TEST") != "1" {
		os.Exit(m.Run())
	}

	testLogger := logger.NewLogger()

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	mongoResource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "5.0",
		Cmd:        []string{"--replSet", "rs0", "--bind_ip_all"},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start MongoDB resource: %s", err)
	}

	hostPort := mongoResource.GetHostPort("27017/tcp")
	mongoURI := fmt.Sprintf("mongodb://%s/?directConnection=true", hostPort)

	if err := pool.Retry(func() error {
		var errRetry error
		testClient, errRetry = mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
		if errRetry != nil {
			return errRetry
		}
		return testClient.Ping(context.Background(), nil)
	}); err != nil {
		log.Fatalf("Could not connect to MongoDB: %s", err)
	}

	// Initiate the replica set, then wait for a primary.
	initCmd := bson.D{{Key: "replSetInitiate", Value: bson.M{
		"_id":     "rs0",
		"members": bson.A{bson.M{"_id": 0, "host": hostPort}},
	}}}
	if err := testClient.Database("admin").RunCommand(context.Background(), initCmd).Err(); err != nil {
		log.Fatalf("Could not initiate replica set: %s", err)
	}
	if err := pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, err := testClient.Database(testDBName).Collection("probe").InsertOne(ctx, bson.M{"ok": true})
		return err
	}); err != nil {
		log.Fatalf("Replica set never elected a primary: %s", err)
	}

	testPostRepo, err = NewPostRepository(testClient, testDBName, testLogger)
	if err != nil {
		log.Fatalf("Could not create test post repository: %s", err)
	}
	testUserRepo, err = NewUserRepository(testClient, testDBName, testLogger)
	if err != nil {
		log.Fatalf("Could not create test user repository: %s", err)
	}
	testSearch = NewSearchRepository(testClient, testDBName, testLogger)

	code := m.Run()

	if err := pool.Purge(mongoResource); err != nil {
		log.Fatalf("Could not purge MongoDB resource: %s", err)
	}
	os.Exit(code)
}

func requireIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "1" {
		t.Skip("set INTEGRATION_TEST=1 to run MongoDB integration tests")
	}
}

func clearCollections(t *testing.T) {
	t.Helper()
	db := testClient.Database(testDBName)
	for _, name := range []string{postCollectionName, detailsCollectionName, userCollectionName} {
		_, err := db.Collection(name).DeleteMany(context.Background(), bson.M{})
		require.NoError(t, err)
	}
}

func seedPair(t *testing.T, owner primitive.ObjectID) (*domain.Post, *domain.PostDetails) {
	t.Helper()
	ctx := context.Background()

	post := &domain.Post{
		OwnerID:   owner,
		Title:     "Used mountain bike",
		Price:     25000,
		Stock:     1,
		MainImage: domain.ImageRef{URL: "https://cdn.example.com/a.jpg", ObjectID: "posts/x/a.jpg"},
		OnReview:  true,
	}
	_, err := testPostRepo.CreatePost(ctx, post)
	require.NoError(t, err)

	details := &domain.PostDetails{
		PostID:      post.ID,
		Description: "Barely ridden, new tires",
		Keyword:     "bike bicycle mountain",
	}
	_, err = testPostRepo.CreateDetails(ctx, details)
	require.NoError(t, err)

	return post, details
}

func TestCreateAndFindPair(t *testing.T) {
	requireIntegration(t)
	clearCollections(t)
	ctx := context.Background()

	owner := primitive.NewObjectID()
	post, _ := seedPair(t, owner)

	found, err := testPostRepo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, found.Title)
	assert.Equal(t, owner, found.OwnerID)
	assert.True(t, found.OnReview)

	details, err := testPostRepo.FindDetailsByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, details.PostID)

	_, err = testPostRepo.FindByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestUpdatePairForcesReReview(t *testing.T) {
	requireIntegration(t)
	clearCollections(t)
	ctx := context.Background()

	post, details := seedPair(t, primitive.NewObjectID())

	// Approve it first so the edit demonstrably resets moderation.
	require.NoError(t, post.Approve())
	require.NoError(t, testPostRepo.SetModerationState(ctx, post))

	post.Title = "Used mountain bike, price drop"
	post.Price = 20000
	details.Description = "Now with a luggage rack"
	require.NoError(t, testPostRepo.UpdatePair(ctx, post, details))

	found, err := testPostRepo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Used mountain bike, price drop", found.Title)
	assert.True(t, found.OnReview)
	assert.False(t, found.IsApproved)
	assert.Equal(t, 1, found.EditCount)
}

func TestDeleteWithDetailsIsAtomic(t *testing.T) {
	requireIntegration(t)
	clearCollections(t)
	ctx := context.Background()

	owner := primitive.NewObjectID()
	post, _ := seedPair(t, owner)

	// Wrong owner: the transaction aborts and both records survive.
	stranger := primitive.NewObjectID()
	err := testPostRepo.DeleteWithDetails(ctx, post.ID, &stranger)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	_, err = testPostRepo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	_, err = testPostRepo.FindDetailsByPostID(ctx, post.ID)
	require.NoError(t, err)

	// Right owner: both records go.
	require.NoError(t, testPostRepo.DeleteWithDetails(ctx, post.ID, &owner))

	_, err = testPostRepo.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	_, err = testPostRepo.FindDetailsByPostID(ctx, post.ID)
	assert.ErrorIs(t, err, domain.ErrDetailsNotFound)
}

func TestDeleteWithDetailsModeratorPath(t *testing.T) {
	requireIntegration(t)
	clearCollections(t)
	ctx := context.Background()

	post, _ := seedPair(t, primitive.NewObjectID())

	// nil owner skips the ownership filter.
	require.NoError(t, testPostRepo.DeleteWithDetails(ctx, post.ID, nil))

	_, err := testPostRepo.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestListByQueue(t *testing.T) {
	requireIntegration(t)
	clearCollections(t)
	ctx := context.Background()

	owner := primitive.NewObjectID()
	pending, _ := seedPair(t, owner)

	approved, _ := seedPair(t, owner)
	require.NoError(t, approved.Approve())
	require.NoError(t, testPostRepo.SetModerationState(ctx, approved))

	declined, _ := seedPair(t, owner)
	require.NoError(t, declined.Decline("blurry photos"))
	require.NoError(t, testPostRepo.SetModerationState(ctx, declined))

	posts, total, err := testPostRepo.ListByQueue(ctx, repository.QueueReview, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, posts, 1)
	assert.Equal(t, pending.ID, posts[0].ID)

	posts, total, err = testPostRepo.ListByQueue(ctx, repository.QueueDeclined, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "blurry photos", posts[0].Feedback)
}

func TestSearchVisibilityAndOwnerStatus(t *testing.T) {
	requireIntegration(t)
	clearCollections(t)
	ctx := context.Background()

	db := testClient.Database(testDBName)

	goodOwner := primitive.NewObjectID()
	badOwner := primitive.NewObjectID()
	_, err := db.Collection(userCollectionName).InsertMany(ctx, []interface{}{
		bson.M{"_id": goodOwner, "name": "Alice", "accountStatus": "Validate"},
		bson.M{"_id": badOwner, "name": "Mallory", "accountStatus": "Restricted"},
	})
	require.NoError(t, err)

	visible, _ := seedPair(t, goodOwner)
	require.NoError(t, visible.Approve())
	require.NoError(t, testPostRepo.SetModerationState(ctx, visible))

	hiddenPending, _ := seedPair(t, goodOwner)
	_ = hiddenPending

	hiddenRestricted, _ := seedPair(t, badOwner)
	require.NoError(t, hiddenRestricted.Approve())
	require.NoError(t, testPostRepo.SetModerationState(ctx, hiddenRestricted))

	feed, err := testSearch.Feed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, visible.ID, feed[0].ID)
	assert.Equal(t, "Alice", feed[0].Owner.Name)

	// Detail of the restricted owner's post reads as not found.
	_, err = testSearch.PublicDetail(ctx, hiddenRestricted.ID)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	view, err := testSearch.PublicDetail(ctx, visible.ID)
	require.NoError(t, err)
	assert.Equal(t, visible.ID, view.ID)
	assert.Equal(t, "Barely ridden, new tires", view.Details.Description)
}

func TestSetAccountStatusBumpsWarningCount(t *testing.T) {
	requireIntegration(t)
	clearCollections(t)
	ctx := context.Background()

	id := primitive.NewObjectID()
	_, err := testClient.Database(testDBName).Collection(userCollectionName).InsertOne(ctx, bson.M{
		"_id": id, "name": "Bob", "email": "bob@example.com", "accountStatus": "Validate", "warningCount": 0,
	})
	require.NoError(t, err)

	user, err := testUserRepo.SetAccountStatus(ctx, id, domain.AccountWarning)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountWarning, user.AccountStatus)
	assert.Equal(t, 1, user.WarningCount)

	user, err = testUserRepo.SetAccountStatus(ctx, id, domain.AccountRestricted)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountRestricted, user.AccountStatus)
	assert.Equal(t, 1, user.WarningCount)

	_, err = testUserRepo.SetAccountStatus(ctx, primitive.NewObjectID(), domain.AccountWarning)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
