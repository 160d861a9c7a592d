package handlers

import (
	"errors"
	"io"
	"log"

	"gopress/internal/config"
	"gopress/internal/middleware"
	"gopress/internal/models"
	"gopress/internal/repositories"
	"gopress/internal/services"
	"gopress/pkg/storage"

	"github.com/gofiber/fiber/v2"
)

// PostHandler handles HTTP requests for the public feed and the
// owner-scoped post management routes.
type PostHandler struct {
	service *services.PostService
	files   storage.FileStore
	cfg     *config.Config
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service *services.PostService, files storage.FileStore, cfg *config.Config) *PostHandler {
	return &PostHandler{
		service: service,
		files:   files,
		cfg:     cfg,
	}
}

// RegisterPublicRoutes registers the routes that need no session.
func (h *PostHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/feed", h.HandleFeed)
	router.Get("/about", h.HandleAbout)
	router.Get("/search", h.HandleSearch)
	router.Get("/posts/:slug", h.HandleGetBySlug)
}

// RegisterProtectedRoutes registers the routes that require an
// authenticated session (enforced by the group's middleware).
func (h *PostHandler) RegisterProtectedRoutes(router fiber.Router) {
	router.Get("/me/posts", h.HandleMyPosts)
	router.Get("/dashboard", h.HandleDashboard)
	router.Post("/posts", h.HandleCreatePost)
	router.Put("/posts/:id", h.HandleUpdatePost)
	router.Delete("/posts/:id", h.HandleDeletePost)
}

// currentUser returns the identity resolved by the session middleware.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(middleware.CurrentUserKey).(*models.User)
	return user
}

// HandleFeed serves the paginated public feed, most recent posts first.
func (h *PostHandler) HandleFeed(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	result, err := h.service.ListAll(page, h.cfg.FeedPageSize)
	if err != nil {
		log.Printf("Error listing feed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve posts",
		})
	}
	return c.JSON(result)
}

// HandleAbout serves the configured blog metadata.
func (h *PostHandler) HandleAbout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"blog_name": h.cfg.BlogName,
		"about":     h.cfg.AboutTxt,
	})
}

// HandleGetBySlug serves a single post looked up by its slug.
func (h *PostHandler) HandleGetBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	post, err := h.service.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Post not found!",
			})
		}
		log.Printf("Error getting post by slug %s: %v", slug, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve post",
		})
	}
	return c.JSON(post)
}

// HandleSearch serves case-insensitive title search results.
func (h *PostHandler) HandleSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	results, err := h.service.SearchByTitle(query)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Search query must not be empty",
			})
		}
		log.Printf("Error searching posts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not search posts",
		})
	}
	return c.JSON(fiber.Map{
		"query":   query,
		"results": results,
	})
}

// HandleMyPosts serves the complete post list of the logged-in user.
func (h *PostHandler) HandleMyPosts(c *fiber.Ctx) error {
	user := currentUser(c)
	posts, err := h.service.ListOwned(user.ID)
	if err != nil {
		log.Printf("Error listing posts for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve posts",
		})
	}
	return c.JSON(posts)
}

// HandleDashboard serves one page of the logged-in user's posts.
func (h *PostHandler) HandleDashboard(c *fiber.Ctx) error {
	user := currentUser(c)
	page := c.QueryInt("page", 1)
	result, err := h.service.ListByOwner(user.ID, page, h.cfg.DashboardPageSize)
	if err != nil {
		log.Printf("Error listing dashboard for user %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve posts",
		})
	}
	return c.JSON(result)
}

// HandleCreatePost creates a new post owned by the logged-in user. The
// request is a form (multipart when an image is attached); the optional
// image goes through the file store's extension allow-list.
func (h *PostHandler) HandleCreatePost(c *fiber.Ctx) error {
	user := currentUser(c)

	input, err := h.postInputFromForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid image upload",
			"error":   err.Error(),
		})
	}

	post, err := h.service.CreatePost(user.ID, input)
	if err != nil {
		return h.postErrorResponse(c, err, "Could not create post")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "New post added!",
		"post":    post,
	})
}

// HandleUpdatePost edits a post owned by the logged-in user.
func (h *PostHandler) HandleUpdatePost(c *fiber.Ctx) error {
	user := currentUser(c)
	id := c.Params("id")

	input, err := h.postInputFromForm(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid image upload",
			"error":   err.Error(),
		})
	}

	post, err := h.service.UpdatePost(id, user.ID, input)
	if err != nil {
		return h.postErrorResponse(c, err, "Could not update post")
	}

	return c.JSON(fiber.Map{
		"message": "Post updated successfully",
		"post":    post,
	})
}

// HandleDeletePost removes a post owned by the logged-in user.
func (h *PostHandler) HandleDeletePost(c *fiber.Ctx) error {
	user := currentUser(c)
	id := c.Params("id")

	if err := h.service.DeletePost(id, user.ID); err != nil {
		return h.postErrorResponse(c, err, "Could not delete post")
	}

	return c.JSON(fiber.Map{
		"message": "Post deleted successfully!",
	})
}

// postInputFromForm reads the post fields and stores the optional image
// upload, returning its reference in the input.
func (h *PostHandler) postInputFromForm(c *fiber.Ctx) (services.PostInput, error) {
	input := services.PostInput{
		Title:   c.FormValue("title"),
		Slug:    c.FormValue("slug"),
		Content: c.FormValue("content"),
	}

	fileHeader, err := c.FormFile("img_file")
	if err != nil {
		// No image attached; that's fine, the field is optional.
		return input, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return input, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return input, err
	}

	ref, err := h.files.Save(fileHeader.Filename, data)
	if err != nil {
		return input, err
	}
	input.ImageRef = ref
	return input, nil
}

// postErrorResponse maps workflow errors onto HTTP responses.
func (h *PostHandler) postErrorResponse(c *fiber.Ctx, err error, genericMsg string) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "All fields are required!",
			"error":   err.Error(),
		})
	case errors.Is(err, repositories.ErrDuplicateSlug):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Slug already exists! Please choose a different one.",
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You are not authorized to modify this post!",
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Post not found!",
		})
	default:
		log.Printf("%s: %v", genericMsg, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": genericMsg,
		})
	}
}
