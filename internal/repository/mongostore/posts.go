package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/mrJackie7/coderdev-hub/internal/models"
	"github.com/mrJackie7/coderdev-hub/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostStore keeps posts with their likes and comments embedded.
type PostStore struct {
	coll *mongo.Collection
}

var _ repository.PostRepository = (*PostStore)(nil)

func NewPostStore(db *mongo.Database) *PostStore {
	return &PostStore{coll: db.Collection(PostsCollection)}
}

func errPostNotFound() *models.AppError {
	return models.NewNotFoundMessage("Post not found")
}

func (s *PostStore) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = models.NewID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.Likes == nil {
		post.Likes = []models.Like{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	if _, err := s.coll.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (s *PostStore) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if isNoDocuments(err) {
		return nil, errPostNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

func (s *PostStore) List(ctx context.Context) ([]*models.Post, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	posts := []*models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *PostStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return errPostNotFound()
	}
	return nil
}

func (s *PostStore) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, fmt.Errorf("delete posts by user: %w", err)
	}
	return res.DeletedCount, nil
}

// modify applies a guarded update. When the guard rejects it, the post is
// checked for existence so callers can tell NotFound from conflict.
func (s *PostStore) modify(ctx context.Context, postID string, guard, update bson.M, conflict *models.AppError) (*models.Post, error) {
	filter := bson.M{"_id": postID}
	for k, v := range guard {
		filter[k] = v
	}

	var post models.Post
	err := s.coll.FindOneAndUpdate(ctx, filter, update, afterUpdate).Decode(&post)
	if isNoDocuments(err) {
		found, cerr := exists(ctx, s.coll, bson.M{"_id": postID})
		if cerr != nil {
			return nil, fmt.Errorf("update post: %w", cerr)
		}
		if !found {
			return nil, errPostNotFound()
		}
		return nil, conflict
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return &post, nil
}

func (s *PostStore) AddLike(ctx context.Context, postID, userID string) ([]models.Like, error) {
	like := models.Like{ID: models.NewID(), UserID: userID, CreatedAt: time.Now().UTC()}
	post, err := s.modify(ctx, postID,
		bson.M{"likes.user": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"likes": bson.M{"$each": bson.A{like}, "$position": 0}}},
		models.NewAlreadyLikedError())
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

func (s *PostStore) RemoveLike(ctx context.Context, postID, userID string) ([]models.Like, error) {
	post, err := s.modify(ctx, postID,
		bson.M{"likes.user": userID},
		bson.M{"$pull": bson.M{"likes": bson.M{"user": userID}}},
		models.NewNotLikedError())
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

func (s *PostStore) AddComment(ctx context.Context, postID string, comment *models.Comment) ([]models.Comment, error) {
	comment.ID = models.NewID()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	post, err := s.modify(ctx, postID, nil,
		bson.M{"$push": bson.M{"comments": comment}},
		errPostNotFound())
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

func (s *PostStore) RemoveComment(ctx context.Context, postID, commentID string) ([]models.Comment, error) {
	post, err := s.modify(ctx, postID,
		bson.M{"comments._id": commentID},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}},
		models.NewNotFoundMessage("Comment does not exist"))
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}
