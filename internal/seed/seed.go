// Package seed populates a development database with plausible content.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"bloggazers/internal/middleware"
	"bloggazers/internal/models"
	"bloggazers/internal/repository"
	"bloggazers/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options controls the volume of generated content.
type Options struct {
	Users    int
	Posts    int
	Comments int
	Seed     int64
}

// DefaultOptions is a small but lively dataset.
func DefaultOptions() Options {
	return Options{Users: 12, Posts: 40, Comments: 120, Seed: 0}
}

// Run fills the database. It is additive and safe to call on a non-empty
// database; provider ids are randomized so reruns create fresh users.
func Run(ctx context.Context, db *gorm.DB, opts Options) error {
	faker := gofakeit.New(opts.Seed)

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u := userFactory(faker)
		if i == 0 {
			u.Role = models.RoleAdmin
		}
		if err := db.WithContext(ctx).Create(u).Error; err != nil {
			return fmt.Errorf("seeding user: %w", err)
		}
		users = append(users, u)
	}

	postRepo := repository.NewPostRepository(db)
	posts := make([]*models.Post, 0, opts.Posts)
	for i := 0; i < opts.Posts; i++ {
		author := users[faker.Number(0, len(users)-1)]
		p, tags := postFactory(faker, author.ID)
		if err := postRepo.Create(ctx, p, tags); err != nil {
			return fmt.Errorf("seeding post: %w", err)
		}
		posts = append(posts, p)
	}

	commentRepo := repository.NewCommentRepository(db)
	var created []*models.Comment
	for i := 0; i < opts.Comments; i++ {
		author := users[faker.Number(0, len(users)-1)]
		post := posts[faker.Number(0, len(posts)-1)]
		c := &models.Comment{
			PostID:   post.ID,
			AuthorID: author.ID,
			Content:  faker.Sentence(faker.Number(5, 18)),
		}
		// Roughly a third of comments are replies to an earlier comment on
		// the same post.
		if len(created) > 0 && faker.Number(0, 2) == 0 {
			parent := created[faker.Number(0, len(created)-1)]
			if parent.PostID == post.ID {
				c.ParentID = &parent.ID
			}
		}
		if err := commentRepo.Create(ctx, c); err != nil {
			return fmt.Errorf("seeding comment: %w", err)
		}
		created = append(created, c)
	}

	for _, post := range posts {
		for _, u := range users {
			if faker.Number(0, 3) == 0 {
				if err := postRepo.Like(ctx, u.ID, post.ID); err != nil {
					return fmt.Errorf("seeding like: %w", err)
				}
			}
			if faker.Number(0, 7) == 0 {
				if err := postRepo.AddBookmark(ctx, u.ID, post.ID); err != nil {
					return fmt.Errorf("seeding bookmark: %w", err)
				}
			}
		}
	}

	middleware.Logger.Info("seed complete",
		slog.Int("users", len(users)),
		slog.Int("posts", len(posts)),
		slog.Int("comments", len(created)))
	return nil
}

func userFactory(faker *gofakeit.Faker) *models.User {
	name := faker.Name()
	// The digit suffix keeps generated usernames clear of the unique index
	// across reruns.
	username := strings.ToLower(faker.Username()) + faker.DigitN(4)
	return &models.User{
		Provider:   "google",
		ProviderID: faker.UUID(),
		Email:      faker.Email(),
		FullName:   name,
		AvatarURL:  faker.ImageURL(200, 200),
		Bio:        faker.Sentence(12),
		Username:   username,
		Profession: faker.JobTitle(),
		Status:     models.StatusActive,
		Role:       models.RoleUser,
		Socials: models.SocialLinks{
			Website: faker.URL(),
		},
	}
}

func postFactory(faker *gofakeit.Faker, authorID uint) (*models.Post, []string) {
	title := strings.TrimSuffix(faker.Sentence(faker.Number(4, 8)), ".")
	paragraphs := make([]string, 0, 5)
	for i := 0; i < faker.Number(3, 6); i++ {
		paragraphs = append(paragraphs, faker.Paragraph(1, faker.Number(3, 6), faker.Number(8, 16), "\n"))
	}

	tagCount := faker.Number(1, 4)
	tags := make([]string, 0, tagCount)
	for i := 0; i < tagCount; i++ {
		tags = append(tags, strings.ToLower(faker.BuzzWord()))
	}

	slug := service.Slugify(title) + "-" + faker.DigitN(4)
	return &models.Post{
		AuthorID:   authorID,
		Title:      title,
		Slug:       slug,
		Content:    strings.Join(paragraphs, "\n\n"),
		Excerpt:    faker.Sentence(20),
		CoverImage: faker.ImageURL(1200, 630),
		Category:   models.Categories[faker.Number(0, len(models.Categories)-1)],
		Published:  faker.Number(0, 9) != 0,
	}, tags
}
