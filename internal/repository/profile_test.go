package repository

import (
	"context"
	"testing"
	"time"

	"github.com/mrJackie7/coderdev-hub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email, Password: "hash", Avatar: "https://avatar/" + name}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func TestProfileRepository_UpsertIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	ana := seedUser(t, db, "Ana", "ana@x.com")

	first, err := repo.Upsert(ctx, &models.Profile{
		UserID: ana.ID,
		Status: "Developer",
		Skills: []string{"go", "sql"},
		Social: models.Social{Twitter: "https://twitter.com/ana"},
	})
	require.NoError(t, err)
	require.NotNil(t, first.User)
	assert.Equal(t, "Ana", first.User.Name)
	assert.Equal(t, []string{"go", "sql"}, first.Skills)

	second, err := repo.Upsert(ctx, &models.Profile{
		UserID:  ana.ID,
		Status:  "Senior Developer",
		Company: "Acme",
		Skills:  []string{"go"},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "upsert must keep a single profile per user")
	assert.Equal(t, "Senior Developer", second.Status)
	assert.Equal(t, "Acme", second.Company)
	assert.Equal(t, []string{"go"}, second.Skills)
	assert.Empty(t, second.Social.Twitter)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProfileRepository_GetByUserID_Missing(t *testing.T) {
	repo := NewProfileRepository(newTestDB(t))

	_, err := repo.GetByUserID(context.Background(), models.NewID())
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.Equal(t, "There is no profile for this user", err.Error())
}

func TestProfileRepository_ExperienceNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	ana := seedUser(t, db, "Ana", "ana@x.com")

	_, err := repo.Upsert(ctx, &models.Profile{UserID: ana.ID, Status: "Dev", Skills: []string{"go"}})
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour)
	_, err = repo.AddExperience(ctx, ana.ID, &models.Experience{Title: "Junior", Company: "A", From: "2019-01-01", CreatedAt: base})
	require.NoError(t, err)
	profile, err := repo.AddExperience(ctx, ana.ID, &models.Experience{Title: "Senior", Company: "B", From: "2022-01-01", CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)

	require.Len(t, profile.Experience, 2)
	assert.Equal(t, "Senior", profile.Experience[0].Title)
	assert.Equal(t, "Junior", profile.Experience[1].Title)

	profile, err = repo.RemoveExperience(ctx, ana.ID, profile.Experience[0].ID)
	require.NoError(t, err)
	require.Len(t, profile.Experience, 1)
	assert.Equal(t, "Junior", profile.Experience[0].Title)

	_, err = repo.RemoveExperience(ctx, ana.ID, models.NewID())
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.Equal(t, "Experience not found", err.Error())
}

func TestProfileRepository_Education(t *testing.T) {
	db := newTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	ana := seedUser(t, db, "Ana", "ana@x.com")

	_, err := repo.AddEducation(ctx, ana.ID, &models.Education{School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: "2010-09-01"})
	assert.True(t, models.HasCode(err, models.CodeNotFound), "adding to a missing profile must fail")

	_, err = repo.Upsert(ctx, &models.Profile{UserID: ana.ID, Status: "Dev", Skills: []string{"go"}})
	require.NoError(t, err)

	profile, err := repo.AddEducation(ctx, ana.ID, &models.Education{School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: "2010-09-01"})
	require.NoError(t, err)
	require.Len(t, profile.Education, 1)
	assert.Equal(t, "CS", profile.Education[0].FieldOfStudy)

	profile, err = repo.RemoveEducation(ctx, ana.ID, profile.Education[0].ID)
	require.NoError(t, err)
	assert.Empty(t, profile.Education)

	_, err = repo.RemoveEducation(ctx, ana.ID, models.NewID())
	assert.Equal(t, "Education not found", err.Error())
}

func TestProfileRepository_RemoveEntryOfAnotherProfile(t *testing.T) {
	db := newTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	ana := seedUser(t, db, "Ana", "ana@x.com")
	bob := seedUser(t, db, "Bob", "bob@x.com")

	for _, u := range []*models.User{ana, bob} {
		_, err := repo.Upsert(ctx, &models.Profile{UserID: u.ID, Status: "Dev", Skills: []string{"go"}})
		require.NoError(t, err)
	}
	anaProfile, err := repo.AddExperience(ctx, ana.ID, &models.Experience{Title: "Dev", Company: "A", From: "2020-01-01"})
	require.NoError(t, err)

	_, err = repo.RemoveExperience(ctx, bob.ID, anaProfile.Experience[0].ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	still, err := repo.GetByUserID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Len(t, still.Experience, 1)
}

func TestProfileRepository_DeleteByUserID(t *testing.T) {
	db := newTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()
	ana := seedUser(t, db, "Ana", "ana@x.com")

	require.NoError(t, repo.DeleteByUserID(ctx, ana.ID), "deleting a missing profile is a no-op")

	_, err := repo.Upsert(ctx, &models.Profile{UserID: ana.ID, Status: "Dev", Skills: []string{"go"}})
	require.NoError(t, err)
	_, err = repo.AddExperience(ctx, ana.ID, &models.Experience{Title: "Dev", Company: "A", From: "2020-01-01"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByUserID(ctx, ana.ID))

	_, err = repo.GetByUserID(ctx, ana.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	var orphans int64
	require.NoError(t, db.Model(&models.Experience{}).Count(&orphans).Error)
	assert.Zero(t, orphans)
}
