package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopress/internal/models"
	"gopress/internal/repositories"
	"gopress/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PostInput is the typed payload for creating or editing a post. ImageRef
// is the reference returned by the file store for an already-accepted
// upload, empty when no image was attached.
type PostInput struct {
	Title    string `validate:"required,max=200"`
	Slug     string `validate:"required,max=200"`
	Content  string `validate:"required"`
	ImageRef string
}

// PageResult is one page of posts plus the derived pagination state.
type PageResult struct {
	Items      []models.Post `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
	HasPrev    bool          `json:"has_prev"`
	HasNext    bool          `json:"has_next"`
}

// PostService handles the ownership-scoped post management workflow.
type PostService struct {
	repo     repositories.PostRepository
	validate *validator.Validate
}

// NewPostService creates a new PostService.
func NewPostService(repo repositories.PostRepository) *PostService {
	return &PostService{
		repo:     repo,
		validate: validation.New(),
	}
}

// canMutate is the single ownership predicate guarding every mutation:
// only the creating user may edit or delete a post.
func canMutate(userID string, post *models.Post) bool {
	return userID == post.OwnerID
}

// CreatePost validates the input, checks the slug against all existing
// posts and persists the new post owned by ownerID.
func (s *PostService) CreatePost(ownerID string, input PostInput) (*models.Post, error) {
	input = trimInput(input)
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.checkSlugAvailable(input.Slug, ""); err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:       uuid.New().String(),
		Title:    input.Title,
		Slug:     input.Slug,
		Content:  input.Content,
		Date:     time.Now(),
		ImageRef: input.ImageRef,
		OwnerID:  ownerID,
	}
	// The repository's unique constraint catches a slug race the check
	// above missed and reports it as the same ErrDuplicateSlug.
	if err := s.repo.Create(post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost edits an existing post on behalf of editorID. The slug check
// excludes the post itself, so keeping the current slug always succeeds.
// The display date is refreshed.
func (s *PostService) UpdatePost(id, editorID string, input PostInput) (*models.Post, error) {
	post, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !canMutate(editorID, post) {
		return nil, ErrForbidden
	}

	input = trimInput(input)
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.checkSlugAvailable(input.Slug, post.ID); err != nil {
		return nil, err
	}

	post.Title = input.Title
	post.Slug = input.Slug
	post.Content = input.Content
	post.Date = time.Now()
	if input.ImageRef != "" {
		post.ImageRef = input.ImageRef
	}

	if err := s.repo.Update(post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post on behalf of requesterID. All-or-nothing: a
// non-owned or unknown post leaves the store untouched.
func (s *PostService) DeletePost(id, requesterID string) error {
	post, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if !canMutate(requesterID, post) {
		return ErrForbidden
	}
	return s.repo.Delete(id)
}

// GetBySlug retrieves a single post by its slug.
func (s *PostService) GetBySlug(slug string) (*models.Post, error) {
	return s.repo.GetBySlug(slug)
}

// ListOwned returns all posts of one owner, most recent first.
func (s *PostService) ListOwned(ownerID string) ([]models.Post, error) {
	return s.repo.GetByOwner(ownerID)
}

// ListByOwner returns one page of an owner's posts.
func (s *PostService) ListByOwner(ownerID string, page, pageSize int) (*PageResult, error) {
	return s.paginate(page, pageSize, func(offset, limit int) ([]models.Post, int64, error) {
		return s.repo.ListByOwner(ownerID, offset, limit)
	})
}

// ListAll returns one page of the public feed.
func (s *PostService) ListAll(page, pageSize int) (*PageResult, error) {
	return s.paginate(page, pageSize, func(offset, limit int) ([]models.Post, int64, error) {
		return s.repo.ListAll(offset, limit)
	})
}

// paginate clamps page to a minimum of 1 and derives hasPrev/hasNext from
// the total count. An out-of-range page yields an empty item list, not an
// error.
func (s *PostService) paginate(page, pageSize int, list func(offset, limit int) ([]models.Post, int64, error)) (*PageResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("%w: page size must be positive", ErrValidation)
	}

	items, total, err := list((page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &PageResult{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}, nil
}

// SearchByTitle performs a case-insensitive substring search on titles.
// A blank query is rejected instead of returning every post.
func (s *PostService) SearchByTitle(query string) ([]models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query must not be empty", ErrValidation)
	}
	return s.repo.SearchByTitle(query)
}

// checkSlugAvailable rejects a slug already held by a post other than
// excludeID.
func (s *PostService) checkSlugAvailable(slug, excludeID string) error {
	existing, err := s.repo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != excludeID {
		return repositories.ErrDuplicateSlug
	}
	return nil
}

func trimInput(input PostInput) PostInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Slug = strings.TrimSpace(input.Slug)
	input.Content = strings.TrimSpace(input.Content)
	return input
}
