package repositories

import (
	"gopress/internal/models"
)

// PostRepository defines the interface for post data access.
//
// ListByOwner and ListAll return the page of posts ordered by date
// descending together with the total number of matching posts, so callers
// can derive pagination state. A negative limit means "no limit".
type PostRepository interface {
	Create(post *models.Post) error
	Update(post *models.Post) error
	Delete(id string) error
	GetByID(id string) (*models.Post, error)
	GetBySlug(slug string) (*models.Post, error)
	GetByOwner(ownerID string) ([]models.Post, error)
	ListByOwner(ownerID string, offset, limit int) ([]models.Post, int64, error)
	ListAll(offset, limit int) ([]models.Post, int64, error)
	SearchByTitle(query string) ([]models.Post, error)
}
