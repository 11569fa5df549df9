package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tinyPNG is a decodable 1x1 PNG, encoded once for the upload tests.
var tinyPNG = func() []byte {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 0xc8, G: 0x64, B: 0x32, A: 0xff})
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}()

func newPostTestApp(s *Server, callerID uint) *fiber.App {
	app := fiber.New()
	app.Get("/posts", s.GetPublicPosts)
	app.Get("/posts/slug/:slug", s.GetPostBySlug)
	app.Get("/posts/my-posts", asUser(callerID), s.GetMyPosts)
	app.Get("/posts/:id", s.GetPost)
	app.Post("/posts", asUser(callerID), s.CreatePost)
	app.Post("/posts/upload-image", asUser(callerID), s.UploadPostImage)
	app.Patch("/posts/:id", asUser(callerID), s.UpdatePost)
	app.Delete("/posts/:id", asUser(callerID), s.DeletePost)
	return app
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func jsonRequest(method, path string, payload any) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func seedPublishedPosts(t *testing.T, s *Server, authorID uint, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := s.postService.CreatePost(context.Background(), service.CreatePostInput{
			AuthorID: authorID,
			Title:    fmt.Sprintf("Published %d", i),
			Content:  "body",
			Status:   models.PostStatusPublished,
		})
		require.NoError(t, err)
	}
}

func TestCreatePostEndpoint(t *testing.T) {
	s, db := setupTestServer(t)
	author := createServerTestUser(t, db, "author")
	app := newPostTestApp(s, author.ID)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/posts", map[string]string{
		"title":   "Hello World",
		"content": "first post",
		"status":  "PUBLISHED",
	}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	post := decodeJSON[models.Post](t, resp)
	assert.Equal(t, "hello-world", post.Slug)
	assert.Equal(t, author.ID, post.AuthorID)
	assert.NotNil(t, post.PublishedAt)
	assert.Equal(t, "author", post.Author.Username)
}

func TestCreatePostEndpointValidation(t *testing.T) {
	s, db := setupTestServer(t)
	author := createServerTestUser(t, db, "author")
	app := newPostTestApp(s, author.ID)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/posts", map[string]string{
		"content": "no title",
	}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdatePostEndpointPartial(t *testing.T) {
	s, db := setupTestServer(t)
	author := createServerTestUser(t, db, "author")
	app := newPostTestApp(s, author.ID)

	created, err := s.postService.CreatePost(context.Background(), service.CreatePostInput{
		AuthorID: author.ID,
		Title:    "Before",
		Content:  "original",
		Excerpt:  "keep me",
	})
	require.NoError(t, err)

	resp, err := app.Test(jsonRequest(http.MethodPatch, fmt.Sprintf("/posts/%d", created.ID), map[string]string{
		"title": "After",
	}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	post := decodeJSON[models.Post](t, resp)
	assert.Equal(t, "After", post.Title)
	assert.Equal(t, "original", post.Content)
	assert.Equal(t, "keep me", post.Excerpt)
}

func TestUpdatePostEndpointForbidden(t *testing.T) {
	s, db := setupTestServer(t)
	author := createServerTestUser(t, db, "author")
	stranger := createServerTestUser(t, db, "stranger")

	created, err := s.postService.CreatePost(context.Background(), service.CreatePostInput{
		AuthorID: author.ID,
		Title:    "Mine",
		Content:  "body",
	})
	require.NoError(t, err)

	app := newPostTestApp(s, stranger.ID)
	resp, err := app.Test(jsonRequest(http.MethodPatch, fmt.Sprintf("/posts/%d", created.ID), map[string]string{
		"title": "Stolen",
	}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDeletePostEndpoint(t *testing.T) {
	s, db := setupTestServer(t)
	author := createServerTestUser(t, db, "author")
	app := newPostTestApp(s, author.ID)

	created, err := s.postService.CreatePost(context.Background(), service.CreatePostInput{
		AuthorID: author.ID,
		Title:    "Doomed",
		Content:  "body",
	})
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/posts/%d", created.ID), nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Deleting again reports the post as gone.
	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/posts/%d", created.ID), nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestGetPostHidesDraftsFromStrangers(t *testing.T) {
	s, db := setupTestServer(t)
	author := createServerTestUser(t, db, "author")
	app := newPostTestApp(s, author.ID)

	draft, err := s.postService.CreatePost(context.Background(), service.CreatePostInput{
		AuthorID: author.ID,
		Title:    "Secret Draft",
		Content:  "body",
	})
	require.NoError(t, err)

	// Anonymous caller gets a 404, not a 403: the draft's existence leaks
	// nothing.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/posts/%d", draft.ID), nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// The author, carrying a valid token, sees their own draft.
	token, err := s.generateToken(author.ID, author.Username)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/posts/%d", draft.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetPostBySlugEndpoint(t *testing.T) {
	s, db := setupTestServer(t)
	author := createServerTestUser(t, db, "author")
	app := newPostTestApp(s, author.ID)

	_, err := s.postService.CreatePost(context.Background(), service.CreatePostInput{
		AuthorID: author.ID,
		Title:    "Findable By Slug",
		Content:  "body",
		Status:   models.PostStatusPublished,
	})
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/slug/findable-by-slug", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	post := decodeJSON[models.Post](t, resp)
	assert.Equal(t, "Findable By Slug", post.Title)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/posts/slug/no-such-slug", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetPublicPostsEndpoint(t *testing.T) {
	s, db := setupTestServer(t)
	author := createServerTestUser(t, db, "author")
	app := newPostTestApp(s, author.ID)

	seedPublishedPosts(t, s, author.ID, 12)
	_, err := s.postService.CreatePost(context.Background(), service.CreatePostInput{
		AuthorID: author.ID,
		Title:    "Hidden Draft",
		Content:  "body",
	})
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts?page=0&size=10", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := decodeJSON[models.Page[models.PostSummary]](t, resp)
	assert.Equal(t, int64(12), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Content, 10)
	for _, summary := range page.Content {
		assert.Equal(t, models.PostStatusPublished, summary.Status)
	}
}

func TestGetPublicPostsEndpointAuthorFilter(t *testing.T) {
	s, db := setupTestServer(t)
	alice := createServerTestUser(t, db, "alice")
	bob := createServerTestUser(t, db, "bob")
	app := newPostTestApp(s, alice.ID)

	seedPublishedPosts(t, s, alice.ID, 2)
	seedPublishedPosts(t, s, bob.ID, 3)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts?author=bob", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := decodeJSON[models.Page[models.PostSummary]](t, resp)
	assert.Equal(t, int64(3), page.TotalElements)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/posts?author=nobody", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetPublicPostsEndpointSort(t *testing.T) {
	s, db := setupTestServer(t)
	author := createServerTestUser(t, db, "author")
	app := newPostTestApp(s, author.ID)

	for _, title := range []string{"Banana", "Apple", "Cherry"} {
		_, err := s.postService.CreatePost(context.Background(), service.CreatePostInput{
			AuthorID: author.ID,
			Title:    title,
			Content:  "body",
			Status:   models.PostStatusPublished,
		})
		require.NoError(t, err)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts?sort=title,asc", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := decodeJSON[models.Page[models.PostSummary]](t, resp)
	require.Len(t, page.Content, 3)
	assert.Equal(t, "Apple", page.Content[0].Title)
	assert.Equal(t, "Cherry", page.Content[2].Title)
}

func TestGetMyPostsEndpoint(t *testing.T) {
	s, db := setupTestServer(t)
	author := createServerTestUser(t, db, "author")
	app := newPostTestApp(s, author.ID)

	seedPublishedPosts(t, s, author.ID, 1)
	_, err := s.postService.CreatePost(context.Background(), service.CreatePostInput{
		AuthorID: author.ID,
		Title:    "Still Cooking",
		Content:  "body",
	})
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/my-posts", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := decodeJSON[models.Page[models.PostSummary]](t, resp)
	assert.Equal(t, int64(2), page.TotalElements)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/posts/my-posts?status=DRAFT", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	drafts := decodeJSON[models.Page[models.PostSummary]](t, resp)
	require.Len(t, drafts.Content, 1)
	assert.Equal(t, "Still Cooking", drafts.Content[0].Title)
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = io.Copy(part, bytes.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestUploadPostImageEndpoint(t *testing.T) {
	s, db := setupTestServer(t)
	author := createServerTestUser(t, db, "author")
	app := newPostTestApp(s, author.ID)

	body, contentType := multipartUpload(t, "file", "cover.png", tinyPNG)
	req := httptest.NewRequest(http.MethodPost, "/posts/upload-image", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	result := decodeJSON[map[string]string](t, resp)
	assert.NotEmpty(t, result["fileName"])
	assert.Equal(t, "http://localhost:8080/uploads/posts/"+result["fileName"], result["fileUrl"])

	// The stored bytes match what was uploaded.
	root, err := s.fileService.Root(service.CategoryPostImage)
	require.NoError(t, err)
	stored, err := os.ReadFile(filepath.Join(root, result["fileName"]))
	require.NoError(t, err)
	assert.Equal(t, tinyPNG, stored)
}

func TestUploadPostImageEndpointRejectsNonImage(t *testing.T) {
	s, db := setupTestServer(t)
	author := createServerTestUser(t, db, "author")
	app := newPostTestApp(s, author.ID)

	body, contentType := multipartUpload(t, "file", "notes.txt", []byte("just some text"))
	req := httptest.NewRequest(http.MethodPost, "/posts/upload-image", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
