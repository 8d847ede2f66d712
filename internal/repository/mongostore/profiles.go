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

// ProfileStore keeps one document per user with experience and education embedded.
type ProfileStore struct {
	coll  *mongo.Collection
	users *UserStore
}

var _ repository.ProfileRepository = (*ProfileStore)(nil)

func NewProfileStore(db *mongo.Database) *ProfileStore {
	return &ProfileStore{coll: db.Collection(ProfilesCollection), users: NewUserStore(db)}
}

func errNoProfile() *models.AppError {
	return models.NewNotFoundMessage("There is no profile for this user")
}

func (s *ProfileStore) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := s.coll.FindOne(ctx, bson.M{"user": userID}).Decode(&profile)
	if isNoDocuments(err) {
		return nil, errNoProfile()
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if err := s.attachUsers(ctx, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileStore) List(ctx context.Context) ([]*models.Profile, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	profiles := []*models.Profile{}
	if err := cur.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	if err := s.attachUsers(ctx, profiles...); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Upsert replaces the scalar fields in place; the embedded lists are only
// initialized when the document is created.
func (s *ProfileStore) Upsert(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"company":        profile.Company,
			"website":        profile.Website,
			"location":       profile.Location,
			"status":         profile.Status,
			"skills":         profile.Skills,
			"bio":            profile.Bio,
			"githubusername": profile.GithubUsername,
			"social":         profile.Social,
			"updated_at":     now,
		},
		"$setOnInsert": bson.M{
			"_id":        models.NewID(),
			"date":       now,
			"experience": bson.A{},
			"education":  bson.A{},
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.Profile
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"user": profile.UserID}, update, opts).Decode(&saved); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	if err := s.attachUsers(ctx, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// pushFront prepends entry to the named list with a single $push.
func (s *ProfileStore) pushFront(ctx context.Context, userID, list string, entry any) (*models.Profile, error) {
	update := bson.M{"$push": bson.M{list: bson.M{"$each": bson.A{entry}, "$position": 0}}}

	var saved models.Profile
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"user": userID}, update, afterUpdate).Decode(&saved)
	if isNoDocuments(err) {
		return nil, errNoProfile()
	}
	if err != nil {
		return nil, fmt.Errorf("add %s: %w", list, err)
	}
	if err := s.attachUsers(ctx, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// pull removes the entry with entryID from the named list with a single $pull.
func (s *ProfileStore) pull(ctx context.Context, userID, list, entryID string, missing *models.AppError) (*models.Profile, error) {
	filter := bson.M{"user": userID, list + "._id": entryID}
	update := bson.M{"$pull": bson.M{list: bson.M{"_id": entryID}}}

	var saved models.Profile
	err := s.coll.FindOneAndUpdate(ctx, filter, update, afterUpdate).Decode(&saved)
	if isNoDocuments(err) {
		found, cerr := exists(ctx, s.coll, bson.M{"user": userID})
		if cerr != nil {
			return nil, fmt.Errorf("remove %s: %w", list, cerr)
		}
		if !found {
			return nil, errNoProfile()
		}
		return nil, missing
	}
	if err != nil {
		return nil, fmt.Errorf("remove %s: %w", list, err)
	}
	if err := s.attachUsers(ctx, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *ProfileStore) AddExperience(ctx context.Context, userID string, exp *models.Experience) (*models.Profile, error) {
	exp.ID = models.NewID()
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = time.Now().UTC()
	}
	return s.pushFront(ctx, userID, "experience", exp)
}

func (s *ProfileStore) RemoveExperience(ctx context.Context, userID, expID string) (*models.Profile, error) {
	return s.pull(ctx, userID, "experience", expID, models.NewNotFoundMessage("Experience not found"))
}

func (s *ProfileStore) AddEducation(ctx context.Context, userID string, edu *models.Education) (*models.Profile, error) {
	edu.ID = models.NewID()
	if edu.CreatedAt.IsZero() {
		edu.CreatedAt = time.Now().UTC()
	}
	return s.pushFront(ctx, userID, "education", edu)
}

func (s *ProfileStore) RemoveEducation(ctx context.Context, userID, eduID string) (*models.Profile, error) {
	return s.pull(ctx, userID, "education", eduID, models.NewNotFoundMessage("Education not found"))
}

func (s *ProfileStore) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"user": userID}); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// attachUsers joins each profile with its owner's name and avatar.
func (s *ProfileStore) attachUsers(ctx context.Context, profiles ...*models.Profile) error {
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	users, err := s.users.summaries(ctx, ids)
	if err != nil {
		return fmt.Errorf("join profile owners: %w", err)
	}
	for _, p := range profiles {
		p.User = users[p.UserID]
	}
	return nil
}
