// Package seed provides database seeding utilities for development and
// testing.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the plaintext password shared by all seeded users.
const SeedPassword = "password123"

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder populates the database with generated users and posts. Posts are
// created through the post service so slugs and publication timestamps
// follow the same rules as production writes.
type Seeder struct {
	db    *gorm.DB
	posts *service.PostService
	rng   *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	return &Seeder{
		db:    db,
		posts: service.NewPostService(postRepo, userRepo),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run seeds the database per opts.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	users, err := s.createUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	created, err := s.createPosts(ctx, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", created)

	return nil
}

// ClearAll removes all seedable data. Posts go first so user deletion does
// not trip the author foreign key.
func (s *Seeder) ClearAll() error {
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Post{}).Error; err != nil {
		return err
	}
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&models.User{}).Error
}

func (s *Seeder) createUsers(n int) ([]models.User, error) {
	// Hash once; every seeded user shares the same password.
	hashed, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		first := gofakeit.FirstName()
		last := gofakeit.LastName()
		username := strings.ToLower(fmt.Sprintf("%s_%s", first, last))
		if seen[username] {
			username = fmt.Sprintf("%s%d", username, i)
		}
		seen[username] = true

		user := models.User{
			Username:    username,
			Email:       fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Password:    string(hashed),
			DisplayName: first + " " + last,
			Bio:         gofakeit.Sentence(8),
			About:       gofakeit.Paragraph(2, 3, 8, "\n\n"),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) createPosts(ctx context.Context, users []models.User, n int) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}

	created := 0
	for i := 0; i < n; i++ {
		author := users[s.rng.Intn(len(users))]

		input := service.CreatePostInput{
			AuthorID: author.ID,
			Title:    strings.TrimSuffix(gofakeit.Sentence(s.rng.Intn(6)+3), "."),
			Content:  gofakeit.Paragraph(3, 5, 12, "\n\n"),
			Excerpt:  gofakeit.Sentence(12),
			Status:   s.randomStatus(),
		}
		if s.rng.Intn(3) == 0 {
			input.CoverImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID())
		}

		if _, err := s.posts.CreatePost(ctx, input); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// randomStatus weights toward published posts so listings have content.
func (s *Seeder) randomStatus() models.PostStatus {
	switch s.rng.Intn(10) {
	case 0:
		return models.PostStatusArchived
	case 1, 2:
		return models.PostStatusDraft
	default:
		return models.PostStatusPublished
	}
}
