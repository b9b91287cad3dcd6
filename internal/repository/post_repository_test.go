package repository

import (
	"context"
	"testing"
	"time"

	"github.com/maheshrc27/xpilot/internal/models"
	"github.com/stretchr/testify/require"
)

func TestPostCreateAndQuery(t *testing.T) {
	db := requireDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	userID := createUser(t, db, "1")
	now := time.Now().UTC().Truncate(time.Second)

	later := models.NewScheduledPost(userID, "later", now.Add(2*time.Hour))
	sooner := models.NewScheduledPost(userID, "sooner", now.Add(time.Hour))
	published := models.NewPublishedPost(userID, "live", "1850", now)
	require.NoError(t, published.SetMedia([]string{"https://cdn/a.png"}))

	for _, p := range []*models.Post{later, sooner, published} {
		id, err := repo.Create(ctx, p)
		require.NoError(t, err)
		require.NotZero(t, id)
		require.False(t, p.CreatedAt.IsZero())
	}

	got, err := repo.GetByID(ctx, published.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "1850", *got.TwitterID)
	require.Equal(t, []string{"https://cdn/a.png"}, got.Media())
	require.Nil(t, got.ScheduledAt)
	require.True(t, got.PostedAt.Equal(now))

	missing, err := repo.GetByID(ctx, 9999)
	require.NoError(t, err)
	require.Nil(t, missing)

	all, err := repo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, published.ID, all[0].ID)

	scheduled, err := repo.GetScheduled(ctx, userID)
	require.NoError(t, err)
	require.Len(t, scheduled, 2)
	require.Equal(t, "sooner", scheduled[0].Text)

	counts, err := repo.CountByStatus(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"draft": 0, "scheduled": 2, "posted": 1, "failed": 0}, counts)

	require.NoError(t, repo.Remove(ctx, published.ID))
	gone, err := repo.GetByID(ctx, published.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestPostStatusConstraints(t *testing.T) {
	db := requireDB(t)
	repo := NewPostRepository(db)
	userID := createUser(t, db, "1")

	_, err := repo.Create(context.Background(), &models.Post{UserID: userID, Text: "x", Status: models.PostStatusScheduled})
	require.Error(t, err)

	_, err = repo.Create(context.Background(), &models.Post{UserID: userID, Text: "x", Status: "archived"})
	require.Error(t, err)
}
