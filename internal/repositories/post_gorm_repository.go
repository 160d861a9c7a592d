package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gopress/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPostRepository is a GORM implementation of PostRepository.
type GORMPostRepository struct {
	db *gorm.DB
}

// NewGORMPostRepository creates a new instance of GORMPostRepository.
func NewGORMPostRepository(db *gorm.DB) *GORMPostRepository {
	return &GORMPostRepository{
		db: db,
	}
}

// Create creates a new post in the database. The unique index on slug is
// the final arbiter: even if the caller's pre-check raced with another
// request, the duplicate insert is rejected here.
func (r *GORMPostRepository) Create(post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if err := r.db.Create(post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// Update updates an existing post in the database. An explicit UPDATE rather
// than Save: Save falls back to INSERT when no row matches, which would
// resurrect a concurrently deleted post instead of reporting ErrNotFound.
func (r *GORMPostRepository) Update(post *models.Post) error {
	res := r.db.Model(&models.Post{}).Where("id = ?", post.ID).Select("*").Updates(post)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post by its ID. Hard delete, no tombstone.
func (r *GORMPostRepository) Delete(id string) error {
	res := r.db.Unscoped().Delete(&models.Post{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a single post by its ID.
func (r *GORMPostRepository) GetByID(id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post by ID %s: %w", id, err)
	}
	return &post, nil
}

// GetBySlug retrieves a single post by its slug.
func (r *GORMPostRepository) GetBySlug(slug string) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post by slug %s: %w", slug, err)
	}
	return &post, nil
}

// GetByOwner retrieves all posts of one owner, most recent first.
func (r *GORMPostRepository) GetByOwner(ownerID string) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.Where("owner_id = ?", ownerID).Order("date DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to get posts for owner %s: %w", ownerID, err)
	}
	return posts, nil
}

// ListByOwner returns one page of an owner's posts ordered by date
// descending, plus the owner's total post count.
func (r *GORMPostRepository) ListByOwner(ownerID string, offset, limit int) ([]models.Post, int64, error) {
	return r.list(r.db.Where("owner_id = ?", ownerID), offset, limit)
}

// ListAll returns one page of all posts ordered by date descending, plus
// the total post count. Used for the public feed.
func (r *GORMPostRepository) ListAll(offset, limit int) ([]models.Post, int64, error) {
	return r.list(r.db, offset, limit)
}

func (r *GORMPostRepository) list(tx *gorm.DB, offset, limit int) ([]models.Post, int64, error) {
	// New session so the count and the page query don't share one statement.
	tx = tx.Session(&gorm.Session{})

	var total int64
	if err := tx.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	var posts []models.Post
	if err := tx.Order("date DESC").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, total, nil
}

// SearchByTitle performs a case-insensitive substring match on post titles,
// most recent first. LOWER(...) LIKE keeps the query portable between
// postgres and sqlite.
func (r *GORMPostRepository) SearchByTitle(query string) ([]models.Post, error) {
	var posts []models.Post
	pattern := "%" + strings.ToLower(query) + "%"
	if err := r.db.Where("LOWER(title) LIKE ?", pattern).Order("date DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to search posts by title: %w", err)
	}
	return posts, nil
}
