package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mrJackie7/coderdev-hub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const concurrentWriters = 16

// runConcurrently starts n calls of fn at once and returns their errors by index.
func runConcurrently(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func TestProfileRepository_ConcurrentAddExperienceKeepsEveryEntry(t *testing.T) {
	db := newTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	ana := seedUser(t, db, "Ana", "ana@x.com")
	_, err := repo.Upsert(ctx, &models.Profile{UserID: ana.ID, Status: "Dev", Skills: []string{"go"}})
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour)
	errs := runConcurrently(concurrentWriters, func(i int) error {
		_, err := repo.AddExperience(ctx, ana.ID, &models.Experience{
			Title:     fmt.Sprintf("job-%02d", i),
			Company:   "Acme",
			From:      "2020-01-01",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		return err
	})
	for i, err := range errs {
		require.NoError(t, err, "writer %d", i)
	}

	profile, err := repo.GetByUserID(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, profile.Experience, concurrentWriters)
	for i, exp := range profile.Experience {
		assert.Equal(t, fmt.Sprintf("job-%02d", concurrentWriters-1-i), exp.Title)
	}
}

func TestProfileRepository_ConcurrentRemoveExperience(t *testing.T) {
	db := newTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	ana := seedUser(t, db, "Ana", "ana@x.com")
	_, err := repo.Upsert(ctx, &models.Profile{UserID: ana.ID, Status: "Dev", Skills: []string{"go"}})
	require.NoError(t, err)

	var profile *models.Profile
	for i := 0; i < 4; i++ {
		profile, err = repo.AddExperience(ctx, ana.ID, &models.Experience{Title: fmt.Sprintf("job-%d", i), Company: "Acme", From: "2020-01-01"})
		require.NoError(t, err)
	}
	ids := []string{profile.Experience[0].ID, profile.Experience[2].ID}
	keep := []string{profile.Experience[1].ID, profile.Experience[3].ID}

	errs := runConcurrently(len(ids), func(i int) error {
		_, err := repo.RemoveExperience(ctx, ana.ID, ids[i])
		return err
	})
	for _, err := range errs {
		require.NoError(t, err)
	}

	profile, err = repo.GetByUserID(ctx, ana.ID)
	require.NoError(t, err)
	got := []string{}
	for _, exp := range profile.Experience {
		got = append(got, exp.ID)
	}
	assert.ElementsMatch(t, keep, got)
}

func TestPostRepository_ConcurrentLikesFromDistinctUsers(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	ana := seedUser(t, db, "Ana", "ana@x.com")
	post := seedPost(t, db, ana, "hello", time.Now())

	likers := make([]*models.User, concurrentWriters)
	for i := range likers {
		likers[i] = seedUser(t, db, fmt.Sprintf("dev%02d", i), fmt.Sprintf("dev%02d@x.com", i))
	}

	errs := runConcurrently(concurrentWriters, func(i int) error {
		_, err := repo.AddLike(ctx, post.ID, likers[i].ID)
		return err
	})
	for i, err := range errs {
		require.NoError(t, err, "liker %d", i)
	}

	stored, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, stored.Likes, concurrentWriters)

	seen := map[string]bool{}
	for i, like := range stored.Likes {
		seen[like.UserID] = true
		if i > 0 {
			assert.False(t, like.CreatedAt.After(stored.Likes[i-1].CreatedAt), "likes must be newest first")
		}
	}
	for _, u := range likers {
		assert.True(t, seen[u.ID], "missing like from %s", u.Name)
	}
}

func TestPostRepository_ConcurrentLikesFromOneUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	ana := seedUser(t, db, "Ana", "ana@x.com")
	bob := seedUser(t, db, "Bob", "bob@x.com")
	post := seedPost(t, db, ana, "hello", time.Now())

	errs := runConcurrently(concurrentWriters, func(int) error {
		_, err := repo.AddLike(ctx, post.ID, bob.ID)
		return err
	})

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, models.HasCode(err, models.CodeAlreadyLiked), "got %v", err)
	}
	assert.Equal(t, 1, succeeded)

	stored, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, stored.Likes, 1)
	assert.Equal(t, bob.ID, stored.Likes[0].UserID)
}
