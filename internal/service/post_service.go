package service

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

const (
	maxTitleLen   = 300
	maxContentLen = 50000
	maxExcerptLen = 500
)

// PostService implements post authoring, ownership-gated mutation, and the
// public/author listing contracts.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	AuthorID      uint
	Title         string
	Content       string
	Excerpt       string
	CoverImageURL string
	Status        models.PostStatus
}

// UpdatePostInput carries a partial update: only non-nil fields are applied.
type UpdatePostInput struct {
	PostID        uint
	CallerID      uint
	Title         *string
	Content       *string
	Excerpt       *string
	CoverImageURL *string
	Status        *models.PostStatus
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}
	if len(in.Excerpt) > maxExcerptLen {
		return nil, models.NewValidationError("Excerpt too long (max 500 characters)")
	}

	status := in.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	if !status.Valid() {
		return nil, models.NewValidationError("Invalid status")
	}

	slug, err := s.uniqueSlug(ctx, in.Title)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Slug:          slug,
		Title:         in.Title,
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		CoverImageURL: in.CoverImageURL,
		Status:        status,
		AuthorID:      in.AuthorID,
	}
	if status == models.PostStatusPublished {
		now := time.Now().UTC()
		post.PublishedAt = &now
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// uniqueSlug derives a slug from the title and disambiguates collisions
// with a numeric suffix (-2, -3, ...).
func (s *PostService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slugify(title)
	if base == "" {
		base = "post"
	}

	candidate := base
	for i := 2; ; i++ {
		exists, err := s.postRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != in.CallerID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		if len(*in.Title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 300 characters)")
		}
		post.Title = *in.Title
	}
	if in.Content != nil {
		if *in.Content == "" {
			return nil, models.NewValidationError("Content cannot be empty")
		}
		if len(*in.Content) > maxContentLen {
			return nil, models.NewValidationError("Content too long (max 50000 characters)")
		}
		post.Content = *in.Content
	}
	if in.Excerpt != nil {
		if len(*in.Excerpt) > maxExcerptLen {
			return nil, models.NewValidationError("Excerpt too long (max 500 characters)")
		}
		post.Excerpt = *in.Excerpt
	}
	if in.CoverImageURL != nil {
		post.CoverImageURL = *in.CoverImageURL
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, models.NewValidationError("Invalid status")
		}
		// The first transition into PUBLISHED stamps publishedAt; it stays
		// stable on every later update.
		if *in.Status == models.PostStatusPublished && post.PublishedAt == nil {
			now := time.Now().UTC()
			post.PublishedAt = &now
		}
		post.Status = *in.Status
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, postID, callerID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != callerID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	return s.postRepo.Delete(ctx, post)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

func (s *PostService) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.postRepo.GetBySlug(ctx, slug)
}

// ListPublic returns the paginated public listing of PUBLISHED posts.
func (s *PostService) ListPublic(ctx context.Context, page models.PageRequest) (models.Page[models.PostSummary], error) {
	posts, total, err := s.postRepo.ListPublished(ctx, page)
	if err != nil {
		return models.Page[models.PostSummary]{}, err
	}
	return summaryPage(posts, page, total), nil
}

// ListByAuthorUsername returns one author's posts in a single status.
func (s *PostService) ListByAuthorUsername(ctx context.Context, username string, status models.PostStatus, page models.PageRequest) (models.Page[models.PostSummary], error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return models.Page[models.PostSummary]{}, err
	}

	posts, total, err := s.postRepo.ListByAuthor(ctx, author.ID, &status, page)
	if err != nil {
		return models.Page[models.PostSummary]{}, err
	}
	return summaryPage(posts, page, total), nil
}

// ListMine returns the caller's own posts across any status, optionally
// narrowed to one.
func (s *PostService) ListMine(ctx context.Context, callerID uint, status *models.PostStatus, page models.PageRequest) (models.Page[models.PostSummary], error) {
	if status != nil && !status.Valid() {
		return models.Page[models.PostSummary]{}, models.NewValidationError("Invalid status")
	}

	posts, total, err := s.postRepo.ListByAuthor(ctx, callerID, status, page)
	if err != nil {
		return models.Page[models.PostSummary]{}, err
	}
	return summaryPage(posts, page, total), nil
}

func summaryPage(posts []*models.Post, page models.PageRequest, total int64) models.Page[models.PostSummary] {
	summaries := make([]models.PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, p.Summary())
	}
	return models.NewPage(summaries, page, total)
}
