package repositories_test

import (
	"strings"
	"testing"
	"time"

	"gopress/internal/models"
	"gopress/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a per-test in-memory database with TranslateError enabled,
// so the unique indexes surface as gorm.ErrDuplicatedKey exactly as in
// production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}))
	return db
}

func testPost(slug, ownerID string) *models.Post {
	return &models.Post{
		Title:   "Title for " + slug,
		Slug:    slug,
		Content: "content",
		Date:    time.Now(),
		OwnerID: ownerID,
	}
}

// The slug pre-check in the service can race; the unique index must be the
// final arbiter and report the same domain error.
func TestGORMPostRepositoryDuplicateSlug(t *testing.T) {
	repo := repositories.NewGORMPostRepository(newTestDB(t))

	require.NoError(t, repo.Create(testPost("same-slug", "user-1")))

	err := repo.Create(testPost("same-slug", "user-2"))
	assert.ErrorIs(t, err, repositories.ErrDuplicateSlug)

	// Updating onto a taken slug hits the same index
	other := testPost("other-slug", "user-1")
	require.NoError(t, repo.Create(other))
	other.Slug = "same-slug"
	assert.ErrorIs(t, repo.Update(other), repositories.ErrDuplicateSlug)
}

func TestGORMPostRepositoryUpdate(t *testing.T) {
	repo := repositories.NewGORMPostRepository(newTestDB(t))

	post := testPost("update-me", "user-1")
	require.NoError(t, repo.Create(post))

	post.Title = "Updated Title"
	post.Content = "updated content"
	require.NoError(t, repo.Update(post))

	got, err := repo.GetByID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", got.Title)
	assert.Equal(t, "updated content", got.Content)
}

// Updating a post that no longer exists must report ErrNotFound without
// inserting a new row; an edit racing a delete must not resurrect the post.
func TestGORMPostRepositoryUpdateMissing(t *testing.T) {
	repo := repositories.NewGORMPostRepository(newTestDB(t))

	ghost := testPost("ghost", "user-1")
	ghost.ID = "ghost-id"
	assert.ErrorIs(t, repo.Update(ghost), repositories.ErrNotFound)

	_, err := repo.GetByID("ghost-id")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	// Same race via delete: the post vanishes between read and write
	post := testPost("doomed", "user-1")
	require.NoError(t, repo.Create(post))
	require.NoError(t, repo.Delete(post.ID))

	post.Title = "Edited after delete"
	assert.ErrorIs(t, repo.Update(post), repositories.ErrNotFound)
	_, err = repo.GetByID(post.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMUserRepositoryDuplicateEmail(t *testing.T) {
	repo := repositories.NewGORMUserRepository(newTestDB(t))

	require.NoError(t, repo.Create(&models.User{
		Name: "First", Email: "taken@example.com", Password: "hash",
	}))

	err := repo.Create(&models.User{
		Name: "Second", Email: "taken@example.com", Password: "hash",
	})
	assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)
}
