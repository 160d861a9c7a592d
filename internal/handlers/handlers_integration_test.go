package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gopress/internal/config"
	"gopress/internal/handlers"
	"gopress/internal/middleware"
	"gopress/internal/models"
	"gopress/internal/repositories"
	"gopress/internal/services"
	"gopress/pkg/mail"
	"gopress/pkg/sessions"
	"gopress/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// capturePublisher records published mail instead of touching a broker.
type capturePublisher struct {
	messages []mail.Message
}

func (p *capturePublisher) PublishMail(msg mail.Message) error {
	p.messages = append(p.messages, msg)
	return nil
}

// newTestApp assembles the full route tree on an in-memory sqlite database,
// an in-memory session store and a temp-dir file store. Each test gets its
// own named database so state never leaks between tests.
func newTestApp(t *testing.T) (*fiber.App, *capturePublisher) {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.ContactMessage{}))

	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		BlogName:          "Test Blog",
		AboutTxt:          "A blog used in tests.",
		JWTSecret:         "integration-test-secret",
		SessionTTL:        time.Hour,
		AdminEmail:        "admin@example.com",
		FeedPageSize:      3,
		DashboardPageSize: 3,
	}

	userRepo := repositories.NewGORMUserRepository(db)
	postRepo := repositories.NewGORMPostRepository(db)
	contactRepo := repositories.NewGORMContactRepository(db)

	authService := services.NewAuthService(userRepo, sessions.NewMemoryStore(), cfg.JWTSecret, cfg.SessionTTL)
	postService := services.NewPostService(postRepo)
	publisher := &capturePublisher{}
	contactService := services.NewContactService(contactRepo, publisher, cfg.AdminEmail)

	authHandler := handlers.NewAuthHandler(authService)
	postHandler := handlers.NewPostHandler(postService, files, cfg)
	contactHandler := handlers.NewContactHandler(contactService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	postHandler.RegisterPublicRoutes(apiV1)
	contactHandler.RegisterRoutes(apiV1)
	protected := apiV1.Group("", middleware.SessionRequired(authService))
	postHandler.RegisterProtectedRoutes(protected)

	return app, publisher
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any, token string) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func sendForm(t *testing.T, app *fiber.App, method, path string, form url.Values, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)
	return body
}

// signUpAndLogin registers a fresh account and returns its session token.
func signUpAndLogin(t *testing.T, app *fiber.App, name, email string) string {
	t.Helper()
	resp := postJSON(t, app, "/api/v1/auth/register", fiber.Map{
		"name": name, "email": email, "password": "Abcdefg1",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, app, "/api/v1/auth/login", fiber.Map{
		"email": email, "password": "Abcdefg1",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func createPost(t *testing.T, app *fiber.App, token, title, slug string) string {
	t.Helper()
	resp := sendForm(t, app, http.MethodPost, "/api/v1/posts", url.Values{
		"title":   {title},
		"slug":    {slug},
		"content": {"Some content for " + title},
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	post, _ := body["post"].(map[string]any)
	require.NotNil(t, post)
	id, _ := post["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestAuthEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	// Registration
	resp := postJSON(t, app, "/api/v1/auth/register", fiber.Map{
		"name": "Alice Writer", "email": "alice@example.com", "password": "Abcdefg1",
	}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	user, _ := body["user"].(map[string]any)
	require.NotNil(t, user)
	// The hash never leaves the server
	assert.NotContains(t, user, "password")

	// Same email again
	resp = postJSON(t, app, "/api/v1/auth/register", fiber.Map{
		"name": "Alice Again", "email": "alice@example.com", "password": "Abcdefg1",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Weak password
	resp = postJSON(t, app, "/api/v1/auth/register", fiber.Map{
		"name": "Bob Weak", "email": "bob@example.com", "password": "abc",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Login sets the session cookie and returns the token
	resp = postJSON(t, app, "/api/v1/auth/login", fiber.Map{
		"email": "alice@example.com", "password": "Abcdefg1",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cookieToken string
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			cookieToken = c.Value
			assert.True(t, c.HttpOnly)
		}
	}
	body = decodeBody(t, resp)
	assert.NotEmpty(t, cookieToken)
	assert.Equal(t, cookieToken, body["token"])

	// Wrong password
	resp = postJSON(t, app, "/api/v1/auth/login", fiber.Map{
		"email": "alice@example.com", "password": "WrongPass1",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Logout invalidates the session
	resp = postJSON(t, app, "/api/v1/auth/logout", fiber.Map{}, cookieToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = get(t, app, "/api/v1/dashboard", cookieToken)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Logging out again is still a success
	resp = postJSON(t, app, "/api/v1/auth/logout", fiber.Map{}, cookieToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestPostLifecycle(t *testing.T) {
	app, _ := newTestApp(t)
	alice := signUpAndLogin(t, app, "Alice Writer", "alice@example.com")
	mallory := signUpAndLogin(t, app, "Mallory Intruder", "mallory@example.com")

	postID := createPost(t, app, alice, "First Post", "first-post")
	createPost(t, app, alice, "Second Post", "second-post")

	// Anyone can read it by slug
	resp := get(t, app, "/api/v1/posts/first-post", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "First Post", body["title"])
	assert.Equal(t, "first-post", body["slug"])

	// A second post may not reuse the slug
	resp = sendForm(t, app, http.MethodPost, "/api/v1/posts", url.Values{
		"title": {"Copycat"}, "slug": {"first-post"}, "content": {"x"},
	}, mallory)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Only the owner may edit
	resp = sendForm(t, app, http.MethodPut, "/api/v1/posts/"+postID, url.Values{
		"title": {"Defaced"}, "slug": {"first-post"}, "content": {"x"},
	}, mallory)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = sendForm(t, app, http.MethodPut, "/api/v1/posts/"+postID, url.Values{
		"title": {"First Post, revised"}, "slug": {"first-post"}, "content": {"Updated."},
	}, alice)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Changing the slug onto another post's slug conflicts
	resp = sendForm(t, app, http.MethodPut, "/api/v1/posts/"+postID, url.Values{
		"title": {"First Post"}, "slug": {"second-post"}, "content": {"x"},
	}, alice)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Missing fields
	resp = sendForm(t, app, http.MethodPost, "/api/v1/posts", url.Values{
		"title": {""}, "slug": {"blank"}, "content": {"x"},
	}, alice)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Only the owner may delete
	resp = sendForm(t, app, http.MethodDelete, "/api/v1/posts/"+postID, url.Values{}, mallory)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = sendForm(t, app, http.MethodDelete, "/api/v1/posts/"+postID, url.Values{}, alice)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = get(t, app, "/api/v1/posts/first-post", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Deleting it twice is a 404, not a silent success
	resp = sendForm(t, app, http.MethodDelete, "/api/v1/posts/"+postID, url.Values{}, alice)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestFeedAndDashboardPagination(t *testing.T) {
	app, _ := newTestApp(t)
	alice := signUpAndLogin(t, app, "Alice Writer", "alice@example.com")
	bob := signUpAndLogin(t, app, "Bob Reader", "bob@example.com")

	for i := 0; i < 7; i++ {
		createPost(t, app, alice, "Alice Post "+string(rune('A'+i)), "alice-post-"+string(rune('a'+i)))
	}
	createPost(t, app, bob, "Bob Post", "bob-post")

	// Feed page 1: page size 3 over 8 posts
	resp := get(t, app, "/api/v1/feed", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Len(t, body["items"], 3)
	assert.EqualValues(t, 8, body["total"])
	assert.EqualValues(t, 3, body["total_pages"])
	assert.Equal(t, false, body["has_prev"])
	assert.Equal(t, true, body["has_next"])

	// Last page holds the remainder
	resp = get(t, app, "/api/v1/feed?page=3", "")
	body = decodeBody(t, resp)
	assert.Len(t, body["items"], 2)
	assert.Equal(t, true, body["has_prev"])
	assert.Equal(t, false, body["has_next"])

	// Out of range is empty, not an error
	resp = get(t, app, "/api/v1/feed?page=99", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Empty(t, body["items"])

	// Dashboard only shows the caller's posts
	resp = get(t, app, "/api/v1/dashboard", bob)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Len(t, body["items"], 1)
	assert.EqualValues(t, 1, body["total"])

	resp = get(t, app, "/api/v1/dashboard?page=2", alice)
	body = decodeBody(t, resp)
	assert.Len(t, body["items"], 3)
	assert.EqualValues(t, 7, body["total"])

	// /me/posts returns everything at once
	resp = get(t, app, "/api/v1/me/posts", alice)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	var mine []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&mine))
	assert.Len(t, mine, 7)
}

func TestSearchEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	alice := signUpAndLogin(t, app, "Alice Writer", "alice@example.com")
	createPost(t, app, alice, "Hello World", "hello-world")
	createPost(t, app, alice, "Something Else", "something-else")

	// Case-insensitive substring match
	resp := get(t, app, "/api/v1/search?q=HELLO", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	results, _ := body["results"].([]any)
	require.Len(t, results, 1)
	first, _ := results[0].(map[string]any)
	assert.Equal(t, "hello-world", first["slug"])

	resp = get(t, app, "/api/v1/search?q=zzz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Empty(t, body["results"])

	resp = get(t, app, "/api/v1/search?q=", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestContactEndpoint(t *testing.T) {
	app, publisher := newTestApp(t)

	resp := postJSON(t, app, "/api/v1/contact", fiber.Map{
		"name":    "Visitor",
		"email":   "visitor@example.com",
		"message": "I enjoyed the blog.",
	}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	require.Len(t, publisher.messages, 1)
	assert.Equal(t, []string{"admin@example.com"}, publisher.messages[0].Recipients)
	assert.Contains(t, publisher.messages[0].Body, "I enjoyed the blog.")

	// Missing message body
	resp = postJSON(t, app, "/api/v1/contact", fiber.Map{
		"name": "Visitor", "email": "visitor@example.com",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
	assert.Len(t, publisher.messages, 1)
}

func TestCreatePostWithImage(t *testing.T) {
	app, _ := newTestApp(t)
	alice := signUpAndLogin(t, app, "Alice Writer", "alice@example.com")

	buildUpload := func(filename string) (*bytes.Buffer, string) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		_ = w.WriteField("title", "Post With Image")
		_ = w.WriteField("slug", "post-with-image")
		_ = w.WriteField("content", "See attachment.")
		part, err := w.CreateFormFile("img_file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return &buf, w.FormDataContentType()
	}

	// A disallowed extension is rejected before anything is written
	buf, contentType := buildUpload("notes.txt")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", buf)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: alice})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	buf, contentType = buildUpload("photo.png")
	req = httptest.NewRequest(http.MethodPost, "/api/v1/posts", buf)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: alice})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	post, _ := body["post"].(map[string]any)
	require.NotNil(t, post)
	imageRef, _ := post["image_ref"].(string)
	assert.Contains(t, imageRef, "photo.png")
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app, _ := newTestApp(t)

	resp := sendForm(t, app, http.MethodPost, "/api/v1/posts", url.Values{
		"title": {"T"}, "slug": {"t"}, "content": {"c"},
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = get(t, app, "/api/v1/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// A Bearer header works as an alternative to the cookie
	alice := signUpAndLogin(t, app, "Alice Writer", "alice@example.com")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+alice)
	bearerResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, bearerResp.StatusCode)
	bearerResp.Body.Close()
}

func TestAboutEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	resp := get(t, app, "/api/v1/about", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Test Blog", body["blog_name"])
	assert.Equal(t, "A blog used in tests.", body["about"])
}
