package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrJackie7/coderdev-hub/internal/middleware"
	"github.com/mrJackie7/coderdev-hub/internal/models"
	"github.com/mrJackie7/coderdev-hub/internal/repository"
	"github.com/mrJackie7/coderdev-hub/internal/service"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is shared by every seeded account.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	Users        int
	PostsPerUser int
	Password     string
	// Seed fixes the generated data; zero picks a random seed.
	Seed int64
	// BcryptCost defaults to bcrypt.MinCost; seeded accounts are throwaway.
	BcryptCost int
	// LikePercent and CommentPercent are the chances that a given user
	// likes or comments on a given post.
	LikePercent    int
	CommentPercent int
}

// Result counts what a run created.
type Result struct {
	Users       int
	Experiences int
	Posts       int
	Likes       int
	Comments    int
}

// Seeder creates demo data through the service layer, so every seeded
// record passes the same validation and normalization as API input.
type Seeder struct {
	stores   *repository.Stores
	auth     *service.AuthService
	profiles *service.ProfileService
	posts    *service.PostService
	factory  *Factory
	opts     Options
}

func NewSeeder(stores *repository.Stores, tokens service.TokenIssuer, opts Options) *Seeder {
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}
	if opts.LikePercent == 0 {
		opts.LikePercent = 30
	}
	if opts.CommentPercent == 0 {
		opts.CommentPercent = 15
	}

	return &Seeder{
		stores:   stores,
		auth:     service.NewAuthService(stores.Users, tokens).WithBcryptCost(opts.BcryptCost),
		profiles: service.NewProfileService(stores.Profiles, stores.Posts, stores.Users),
		posts:    service.NewPostService(stores.Posts, stores.Users),
		factory:  NewFactory(opts.Seed),
		opts:     opts,
	}
}

// Clean deletes every account that has a profile, with its posts.
func (s *Seeder) Clean(ctx context.Context) (int, error) {
	profiles, err := s.profiles.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list profiles: %w", err)
	}
	for _, p := range profiles {
		if err := s.profiles.DeleteCascade(ctx, p.UserID); err != nil {
			return 0, fmt.Errorf("delete account %s: %w", p.UserID, err)
		}
	}
	middleware.Logger.InfoContext(ctx, "seed: removed accounts", "count", len(profiles))
	return len(profiles), nil
}

// Run creates the configured developers, then their posts, then likes and
// comments between them.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result

	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		user, experiences, err := s.seedDeveloper(ctx)
		if err != nil {
			return res, err
		}
		if user == nil {
			continue
		}
		users = append(users, user)
		res.Experiences += experiences
	}
	res.Users = len(users)
	middleware.Logger.InfoContext(ctx, "seed: developers created", "count", res.Users)

	var posts []*models.Post
	for _, user := range users {
		for i := 0; i < s.opts.PostsPerUser; i++ {
			post, err := s.posts.Create(ctx, service.CreatePostInput{UserID: user.ID, Text: s.factory.PostText()})
			if err != nil {
				return res, fmt.Errorf("create post: %w", err)
			}
			posts = append(posts, post)
		}
	}
	res.Posts = len(posts)
	middleware.Logger.InfoContext(ctx, "seed: posts created", "count", res.Posts)

	for _, post := range posts {
		for _, user := range users {
			if user.ID == post.UserID {
				continue
			}
			if s.factory.Chance(s.opts.LikePercent) {
				if _, err := s.posts.Like(ctx, post.ID, user.ID); err != nil {
					return res, fmt.Errorf("like post: %w", err)
				}
				res.Likes++
			}
			if s.factory.Chance(s.opts.CommentPercent) {
				_, err := s.posts.AddComment(ctx, service.AddCommentInput{
					PostID: post.ID,
					UserID: user.ID,
					Text:   s.factory.CommentText(),
				})
				if err != nil {
					return res, fmt.Errorf("comment on post: %w", err)
				}
				res.Comments++
			}
		}
	}
	middleware.Logger.InfoContext(ctx, "seed: engagement created", "likes", res.Likes, "comments", res.Comments)

	return res, nil
}

// seedDeveloper registers one account with a full profile. It returns a nil
// user when the generated email is already taken.
func (s *Seeder) seedDeveloper(ctx context.Context) (*models.User, int, error) {
	account := s.factory.Account(s.opts.Password)
	if _, err := s.auth.Register(ctx, account); err != nil {
		if models.HasCode(err, models.CodeDuplicateEmail) {
			middleware.Logger.WarnContext(ctx, "seed: email taken, skipping", "email", account.Email)
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("register %s: %w", account.Email, err)
	}

	user, err := s.stores.Users.GetByEmail(ctx, strings.ToLower(account.Email))
	if err != nil {
		return nil, 0, err
	}
	if user == nil {
		return nil, 0, fmt.Errorf("registered user %s not found", account.Email)
	}

	if _, err := s.profiles.Upsert(ctx, user.ID, s.factory.Profile()); err != nil {
		return nil, 0, fmt.Errorf("create profile: %w", err)
	}

	// oldest first, so the current job ends up on top
	experiences := s.factory.faker.Number(1, 3)
	for i := 0; i < experiences; i++ {
		if _, err := s.profiles.AddExperience(ctx, user.ID, s.factory.Experience(i == experiences-1)); err != nil {
			return nil, 0, fmt.Errorf("add experience: %w", err)
		}
	}
	if _, err := s.profiles.AddEducation(ctx, user.ID, s.factory.Education()); err != nil {
		return nil, 0, fmt.Errorf("add education: %w", err)
	}

	return user, experiences, nil
}
