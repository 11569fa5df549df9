package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title         string `json:"title"`
		Content       string `json:"content"`
		Excerpt       string `json:"excerpt"`
		CoverImageURL string `json:"coverImageUrl"`
		Status        string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID:      userID,
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		CoverImageURL: req.CoverImageURL,
		Status:        models.PostStatus(req.Status),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PATCH /api/posts/:id. Absent fields are untouched.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postID, err := parsePostID(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	var req struct {
		Title         *string `json:"title"`
		Content       *string `json:"content"`
		Excerpt       *string `json:"excerpt"`
		CoverImageURL *string `json:"coverImageUrl"`
		Status        *string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	input := service.UpdatePostInput{
		PostID:        postID,
		CallerID:      userID,
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		CoverImageURL: req.CoverImageURL,
	}
	if req.Status != nil {
		status := models.PostStatus(*req.Status)
		input.Status = &status
	}

	post, err := s.postService.UpdatePost(c.Context(), input)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postID, err := parsePostID(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.postService.DeletePost(c.Context(), postID, userID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetPost handles GET /api/posts/:id. Unpublished posts are visible only
// to their author; everyone else sees a 404 rather than a hint that the
// post exists.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parsePostID(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	post, err := s.postService.GetPost(c.Context(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	if post.Status != models.PostStatusPublished {
		callerID, ok := s.optionalUserID(c)
		if !ok || callerID != post.AuthorID {
			return respondServiceError(c, models.NewNotFoundError("Post", postID))
		}
	}

	return c.JSON(post)
}

// GetPostBySlug handles GET /api/posts/slug/:slug
func (s *Server) GetPostBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	post, err := s.postService.GetPostBySlug(c.Context(), slug)
	if err != nil {
		return respondServiceError(c, err)
	}

	if post.Status != models.PostStatusPublished {
		callerID, ok := s.optionalUserID(c)
		if !ok || callerID != post.AuthorID {
			return respondServiceError(c, models.NewNotFoundError("Post", slug))
		}
	}

	return c.JSON(post)
}

// GetPublicPosts handles GET /api/posts. Only PUBLISHED posts surface; the
// optional author query parameter narrows the listing to one username.
func (s *Server) GetPublicPosts(c *fiber.Ctx) error {
	page := parsePageRequest(c, "publishedAt")

	var (
		result models.Page[models.PostSummary]
		err    error
	)
	if author := c.Query("author"); author != "" {
		result, err = s.postService.ListByAuthorUsername(c.Context(), author, models.PostStatusPublished, page)
	} else {
		result, err = s.postService.ListPublic(c.Context(), page)
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(result)
}

// GetMyPosts handles GET /api/posts/my-posts. The caller sees their own
// posts in every status, optionally narrowed by the status query parameter.
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	page := parsePageRequest(c, "createdAt")

	var status *models.PostStatus
	if raw := c.Query("status"); raw != "" {
		st := models.PostStatus(raw)
		status = &st
	}

	result, err := s.postService.ListMine(c.Context(), userID, status, page)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(result)
}

// UploadPostImage handles POST /api/posts/upload-image
func (s *Server) UploadPostImage(c *fiber.Ctx) error {
	content, filename, err := uploadedFileBytes(c, "file")
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.fileService.ValidateImage(content); err != nil {
		return respondServiceError(c, err)
	}

	handle, err := s.fileService.Store(service.CategoryPostImage, content, filename)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"fileName": handle,
		"fileUrl":  s.config.BaseURL + s.fileService.URLPath(service.CategoryPostImage, handle),
	})
}
