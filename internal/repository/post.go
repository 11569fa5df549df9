package repository

import (
	"context"
	"errors"
	"fmt"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListPublished(ctx context.Context, page models.PageRequest) ([]*models.Post, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, status *models.PostStatus, page models.PageRequest) ([]*models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	// Delete removes the post permanently. A missing post is a NotFound,
	// not a no-op.
	Delete(ctx context.Context, post *models.Post) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	key := cache.PostSlugKey(slug)

	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("Author").Where("slug = ?", slug).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", slug)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) ListPublished(ctx context.Context, page models.PageRequest) ([]*models.Post, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("status = ?", models.PostStatusPublished)
	return r.listPage(query, page)
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, status *models.PostStatus, page models.PageRequest) ([]*models.Post, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ?", authorID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	return r.listPage(query, page)
}

// listPage runs the shared count+window query for a filtered listing.
func (r *postRepository) listPage(query *gorm.DB, page models.PageRequest) ([]*models.Post, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var posts []*models.Post
	err := applySort(query, page).
		Preload("Author").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&posts).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

// applySort appends the ORDER BY clause for the requested sort. Field names
// are whitelisted; anything unrecognized falls back to created_at.
func applySort(db *gorm.DB, page models.PageRequest) *gorm.DB {
	var column string
	switch page.SortField {
	case "publishedAt":
		column = "published_at"
	case "updatedAt":
		column = "updated_at"
	case "title":
		column = "title"
	default: // "createdAt" and anything unrecognized
		column = "created_at"
	}

	dir := "DESC"
	if page.SortDir == models.SortAsc {
		dir = "ASC"
	}

	return db.Order(fmt.Sprintf("%s %s", column, dir))
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID, post.Slug)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, post *models.Post) error {
	result := r.db.WithContext(ctx).Delete(&models.Post{}, post.ID)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	cache.InvalidatePost(ctx, post.ID, post.Slug)
	return nil
}
