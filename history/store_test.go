package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andrewpaige1/roadmap-api/models"
	"github.com/andrewpaige1/roadmap-api/roadmap"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RoadmapHistory{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func createUser(t *testing.T, db *gorm.DB, subject string) models.User {
	t.Helper()
	u := models.User{Auth0ID: subject, Nickname: subject}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func sampleDocument(title string) *roadmap.Document {
	return &roadmap.Document{
		Title:       title,
		Description: "path",
		Stages: []roadmap.Stage{
			{ID: "s1", Label: "Basics", Level: 0, Skills: []string{"HTML"}, Resources: []string{"MDN"}, Children: []string{"s2"}},
			{ID: "s2", Label: "Next", Level: 1, Skills: []string{"CSS"}, Resources: []string{"web.dev"}, Children: []string{}},
		},
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db, zap.NewNop())
	ctx := context.Background()
	owner := createUser(t, db, "auth0|a")

	entry, err := store.Save(ctx, owner.ID, "Frontend Developer", sampleDocument("FE"))
	require.NoError(t, err)
	assert.NotEmpty(t, entry.PublicID)
	assert.False(t, entry.CreatedAt.IsZero())

	got, err := store.Get(ctx, owner.ID, entry.PublicID)
	require.NoError(t, err)
	assert.Equal(t, "Frontend Developer", got.CareerGoal)

	doc := got.RoadmapData.Data()
	assert.Equal(t, "FE", doc.Title)
	require.Len(t, doc.Stages, 2)
	assert.Equal(t, []string{"s2"}, doc.Stages[0].Children)
	s, ok := doc.Lookup("s2")
	require.True(t, ok)
	assert.Equal(t, 1, s.Level)
}

func TestStore_SaveAlwaysInserts(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db, zap.NewNop())
	ctx := context.Background()
	owner := createUser(t, db, "auth0|a")

	doc := sampleDocument("same")
	first, err := store.Save(ctx, owner.ID, "Data Scientist", doc)
	require.NoError(t, err)
	second, err := store.Save(ctx, owner.ID, "Data Scientist", doc)
	require.NoError(t, err)
	assert.NotEqual(t, first.PublicID, second.PublicID)

	entries, err := store.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStore_ListMostRecentFirst(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db, zap.NewNop())
	ctx := context.Background()
	owner := createUser(t, db, "auth0|a")

	var ids []string
	for i := 0; i < 3; i++ {
		e, err := store.Save(ctx, owner.ID, fmt.Sprintf("goal %d", i), sampleDocument("t"))
		require.NoError(t, err)
		ids = append(ids, e.PublicID)
	}
	// force distinct timestamps regardless of clock resolution
	base := time.Now().Add(-time.Hour)
	for i, id := range ids {
		require.NoError(t, db.Model(&models.RoadmapHistory{}).Where("public_id = ?", id).
			Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	entries, err := store.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, ids[2], entries[0].PublicID)
	assert.Equal(t, ids[1], entries[1].PublicID)
	assert.Equal(t, ids[0], entries[2].PublicID)
}

func TestStore_ListEmptyIsNotNil(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db, zap.NewNop())
	owner := createUser(t, db, "auth0|a")

	entries, err := store.List(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestStore_OwnerIsolation(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db, zap.NewNop())
	ctx := context.Background()
	alice := createUser(t, db, "auth0|alice")
	bob := createUser(t, db, "auth0|bob")

	aliceEntry, err := store.Save(ctx, alice.ID, "Cloud Architect", sampleDocument("a"))
	require.NoError(t, err)
	_, err = store.Save(ctx, bob.ID, "Product Manager", sampleDocument("b"))
	require.NoError(t, err)

	aliceList, err := store.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceList, 1)
	assert.Equal(t, alice.ID, aliceList[0].UserID)

	bobList, err := store.List(ctx, bob.ID)
	require.NoError(t, err)
	for _, e := range bobList {
		assert.Equal(t, bob.ID, e.UserID)
	}

	_, err = store.Get(ctx, bob.ID, aliceEntry.PublicID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.Delete(ctx, bob.ID, aliceEntry.PublicID)
	assert.ErrorIs(t, err, ErrNotFound)

	still, err := store.Get(ctx, alice.ID, aliceEntry.PublicID)
	require.NoError(t, err)
	assert.Equal(t, aliceEntry.PublicID, still.PublicID)
}

func TestStore_DeleteTwiceReportsNotFound(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db, zap.NewNop())
	ctx := context.Background()
	owner := createUser(t, db, "auth0|a")

	entry, err := store.Save(ctx, owner.ID, "AI Engineer", sampleDocument("t"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, owner.ID, entry.PublicID))
	assert.ErrorIs(t, store.Delete(ctx, owner.ID, entry.PublicID), ErrNotFound)

	var count int64
	require.NoError(t, db.Unscoped().Model(&models.RoadmapHistory{}).Count(&count).Error)
	assert.Zero(t, count, "delete is a hard delete")
}

func TestStore_ConcurrentDeleteOfSameEntry(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db, zap.NewNop())
	ctx := context.Background()
	owner := createUser(t, db, "auth0|a")

	entry, err := store.Save(ctx, owner.ID, "DevOps Engineer", sampleDocument("t"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Delete(ctx, owner.ID, entry.PublicID)
		}(i)
	}
	wg.Wait()

	var ok, notFound int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrNotFound):
			notFound++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, len(errs)-1, notFound)
}

func TestStore_RequiresOwner(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db, zap.NewNop())
	ctx := context.Background()

	_, err := store.Save(ctx, 0, "x", sampleDocument("t"))
	assert.ErrorIs(t, err, ErrNoOwner)
	_, err = store.List(ctx, 0)
	assert.ErrorIs(t, err, ErrNoOwner)
	_, err = store.Get(ctx, 0, "id")
	assert.ErrorIs(t, err, ErrNoOwner)
	assert.ErrorIs(t, store.Delete(ctx, 0, "id"), ErrNoOwner)
}

func TestStore_Count(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db, zap.NewNop())
	ctx := context.Background()
	owner := createUser(t, db, "auth0|a")

	for i := 0; i < 2; i++ {
		_, err := store.Save(ctx, owner.ID, "goal", sampleDocument("t"))
		require.NoError(t, err)
	}
	n, err := store.Count(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
