// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// PostStatus defines the visibility state of a post.
type PostStatus string

const (
	// PostStatusDraft indicates a post visible only to its author.
	PostStatusDraft PostStatus = "DRAFT"
	// PostStatusPublished indicates a post visible in public listings.
	PostStatusPublished PostStatus = "PUBLISHED"
	// PostStatusArchived indicates a post withdrawn from public listings.
	PostStatusArchived PostStatus = "ARCHIVED"
)

// Valid reports whether s is a known post status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// Post represents an authored article. Slug is unique across all posts and
// derived from the title at creation. PublishedAt is stamped on the first
// transition into PUBLISHED and stable afterwards.
type Post struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Slug          string     `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Title         string     `gorm:"size:300;not null" json:"title"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	Excerpt       string     `gorm:"size:500" json:"excerpt"`
	CoverImageURL string     `json:"cover_image_url"`
	Status        PostStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	AuthorID      uint       `gorm:"not null;index" json:"author_id"`
	Author        User       `gorm:"foreignKey:AuthorID" json:"author"`
	PublishedAt   *time.Time `json:"published_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// PostSummary is the reduced projection of a post used by list views.
// It carries no content body.
type PostSummary struct {
	ID            uint       `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Excerpt       string     `json:"excerpt"`
	CoverImageURL string     `json:"cover_image_url"`
	Status        PostStatus `json:"status"`
	AuthorID      uint       `json:"author_id"`
	AuthorName    string     `json:"author_name"`
	PublishedAt   *time.Time `json:"published_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Summary builds the list-view projection of p.
func (p *Post) Summary() PostSummary {
	name := p.Author.DisplayName
	if name == "" {
		name = p.Author.Username
	}
	return PostSummary{
		ID:            p.ID,
		Slug:          p.Slug,
		Title:         p.Title,
		Excerpt:       p.Excerpt,
		CoverImageURL: p.CoverImageURL,
		Status:        p.Status,
		AuthorID:      p.AuthorID,
		AuthorName:    name,
		PublishedAt:   p.PublishedAt,
		CreatedAt:     p.CreatedAt,
	}
}
