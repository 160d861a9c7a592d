package repositories

import (
	"sort"
	"strings"
	"sync"

	"gopress/internal/models"

	"github.com/google/uuid"
)

// MockPostRepository is an in-memory implementation of PostRepository.
// It enforces the same slug-uniqueness contract as the database unique
// index, so it can stand in for the real store in tests and local runs.
type MockPostRepository struct {
	posts map[string]models.Post
	mu    sync.RWMutex
}

// NewMockPostRepository creates a new instance of MockPostRepository.
func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{
		posts: make(map[string]models.Post),
	}
}

// Create adds a new post, rejecting duplicate slugs.
func (r *MockPostRepository) Create(post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.posts {
		if p.Slug == post.Slug {
			return ErrDuplicateSlug
		}
	}
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	r.posts[post.ID] = *post
	return nil
}

// Update modifies an existing post, rejecting a slug held by another post.
func (r *MockPostRepository) Update(post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[post.ID]; !ok {
		return ErrNotFound
	}
	for id, p := range r.posts {
		if id != post.ID && p.Slug == post.Slug {
			return ErrDuplicateSlug
		}
	}
	r.posts[post.ID] = *post
	return nil
}

// Delete removes a post by its ID.
func (r *MockPostRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

// GetByID returns a post by its ID.
func (r *MockPostRepository) GetByID(id string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &post, nil
}

// GetBySlug returns a post by its slug.
func (r *MockPostRepository) GetBySlug(slug string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.posts {
		if p.Slug == slug {
			post := p
			return &post, nil
		}
	}
	return nil, ErrNotFound
}

// GetByOwner returns all posts of one owner, most recent first.
func (r *MockPostRepository) GetByOwner(ownerID string) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedWhere(func(p models.Post) bool { return p.OwnerID == ownerID }), nil
}

// ListByOwner returns one page of an owner's posts plus the total count.
func (r *MockPostRepository) ListByOwner(ownerID string, offset, limit int) ([]models.Post, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.sortedWhere(func(p models.Post) bool { return p.OwnerID == ownerID })
	return page(matched, offset, limit), int64(len(matched)), nil
}

// ListAll returns one page of all posts plus the total count.
func (r *MockPostRepository) ListAll(offset, limit int) ([]models.Post, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.sortedWhere(func(models.Post) bool { return true })
	return page(matched, offset, limit), int64(len(matched)), nil
}

// SearchByTitle performs a case-insensitive substring match on titles.
func (r *MockPostRepository) SearchByTitle(query string) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query)
	return r.sortedWhere(func(p models.Post) bool {
		return strings.Contains(strings.ToLower(p.Title), needle)
	}), nil
}

// sortedWhere collects matching posts ordered by date descending.
// Callers must hold at least a read lock.
func (r *MockPostRepository) sortedWhere(match func(models.Post) bool) []models.Post {
	posts := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if match(p) {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date)
	})
	return posts
}

func page(posts []models.Post, offset, limit int) []models.Post {
	if offset >= len(posts) {
		return []models.Post{}
	}
	if offset < 0 {
		offset = 0
	}
	end := len(posts)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return posts[offset:end]
}
