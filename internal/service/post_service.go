package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"bloggazers/internal/cache"
	"bloggazers/internal/middleware"
	"bloggazers/internal/models"
	"bloggazers/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"
	"gorm.io/gorm"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a title.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStrip.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 200 {
		slug = strings.Trim(slug[:200], "-")
	}
	return slug
}

const (
	// DefaultPageSize bounds listing pages when the client does not say.
	DefaultPageSize = 10
	// MaxPageSize bounds listing pages regardless of what the client says.
	MaxPageSize = 50

	excerptLength = 180
)

// PostService manages the post lifecycle and reader interactions.
type PostService struct {
	posts repository.PostRepository
	rdb   *redis.Client
}

// NewPostService creates a new post service.
func NewPostService(posts repository.PostRepository, rdb *redis.Client) *PostService {
	return &PostService{posts: posts, rdb: rdb}
}

// CreatePostInput carries the author-supplied fields of a new post.
type CreatePostInput struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	CoverImage string   `json:"cover_image"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	Published  *bool    `json:"published"`
}

func (in *CreatePostInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return models.NewValidationError("Title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return models.NewValidationError("Content is required")
	}
	if !models.ValidCategory(in.Category) {
		return models.NewValidationError("Unknown category: " + in.Category)
	}
	return nil
}

// Create publishes a new post. The slug derives from the title; a collision
// with an existing slug gets a short unique suffix.
func (s *PostService) Create(ctx context.Context, authorID uint, input CreatePostInput) (*models.Post, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	slug := Slugify(input.Title)
	if slug == "" {
		slug = xid.New().String()
	}
	exists, err := s.posts.SlugExists(ctx, slug)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if exists {
		slug = slug + "-" + xid.New().String()
	}

	excerpt := strings.TrimSpace(input.Excerpt)
	if excerpt == "" {
		excerpt = deriveExcerpt(input.Content)
	}

	published := true
	if input.Published != nil {
		published = *input.Published
	}

	post := &models.Post{
		AuthorID:   authorID,
		Title:      strings.TrimSpace(input.Title),
		Slug:       slug,
		Content:    input.Content,
		Excerpt:    excerpt,
		CoverImage: input.CoverImage,
		Category:   input.Category,
		Published:  published,
	}
	if err := s.posts.Create(ctx, post, input.Tags); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.get(ctx, post.ID, authorID)
}

// UpdatePostInput carries the editable fields of a post. Nil pointers leave
// the field untouched.
type UpdatePostInput struct {
	Title      *string  `json:"title"`
	Content    *string  `json:"content"`
	Excerpt    *string  `json:"excerpt"`
	CoverImage *string  `json:"cover_image"`
	Category   *string  `json:"category"`
	Tags       []string `json:"tags"`
	Published  *bool    `json:"published"`
}

// Update edits a post. Only the author or an admin may edit; the slug stays
// stable across title edits so shared links keep working.
func (s *PostService) Update(ctx context.Context, actor *models.User, postID uint, input UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}
	if post.AuthorID != actor.ID && !actor.IsAdmin() {
		return nil, models.NewForbiddenError("Only the author can edit this post")
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, models.NewValidationError("Title is required")
		}
		post.Title = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			return nil, models.NewValidationError("Content is required")
		}
		post.Content = *input.Content
	}
	if input.Excerpt != nil {
		post.Excerpt = *input.Excerpt
	}
	if input.CoverImage != nil {
		post.CoverImage = *input.CoverImage
	}
	if input.Category != nil {
		if !models.ValidCategory(*input.Category) {
			return nil, models.NewValidationError("Unknown category: " + *input.Category)
		}
		post.Category = *input.Category
	}
	if input.Published != nil {
		post.Published = *input.Published
	}

	if err := s.posts.Update(ctx, post, input.Tags); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.get(ctx, post.ID, actor.ID)
}

// Delete removes a post and everything attached to it. Only the author or an
// admin may delete.
func (s *PostService) Delete(ctx context.Context, actor *models.User, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID, 0)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", postID)
		}
		return models.NewInternalError(err)
	}
	if post.AuthorID != actor.ID && !actor.IsAdmin() {
		return models.NewForbiddenError("Only the author can delete this post")
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *PostService) get(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// GetBySlug fetches one post for reading. Anonymous reads of the post go
// through the cache; personalized reads (liked, bookmarked) always hit the
// database.
func (s *PostService) GetBySlug(ctx context.Context, slug string, viewerID uint) (*models.Post, error) {
	if viewerID == 0 {
		var post models.Post
		err := cache.Aside(ctx, cache.PostKey(slug), &post, cache.PostTTL, func() error {
			p, err := s.posts.GetBySlug(ctx, slug, 0)
			if err != nil {
				return err
			}
			post = *p
			return nil
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Post", slug)
			}
			return nil, models.NewInternalError(err)
		}
		return &post, nil
	}

	post, err := s.posts.GetBySlug(ctx, slug, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// ListInput narrows the post feed. Category and Tag are mutually exclusive.
type ListInput struct {
	Category string
	Tag      string
	Cursor   string
	Limit    int
}

// PostPage is one page of the feed plus the continuation token.
type PostPage struct {
	Posts      []*models.Post `json:"posts"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// List returns a feed page. The anonymous first page of the unfiltered feed
// is served from cache.
func (s *PostService) List(ctx context.Context, input ListInput, viewerID uint) (*PostPage, error) {
	if input.Category != "" && input.Tag != "" {
		return nil, models.NewValidationError("Filter by category or tag, not both")
	}
	if input.Category != "" && !models.ValidCategory(input.Category) {
		return nil, models.NewValidationError("Unknown category: " + input.Category)
	}

	limit := clampLimit(input.Limit)
	cursor, err := repository.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, err
	}

	filter := repository.PostFilter{
		Category: input.Category,
		Tag:      input.Tag,
		Cursor:   cursor,
		Limit:    limit,
	}

	cacheable := viewerID == 0 && cursor == nil &&
		input.Category == "" && input.Tag == "" && limit == DefaultPageSize
	if cacheable {
		var page PostPage
		err := cache.Aside(ctx, cache.PostsFirstPageKey(), &page, cache.ListTTL, func() error {
			return s.fillPage(ctx, filter, 0, &page)
		})
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		return &page, nil
	}

	var page PostPage
	if err := s.fillPage(ctx, filter, viewerID, &page); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &page, nil
}

func (s *PostService) fillPage(ctx context.Context, filter repository.PostFilter, viewerID uint, page *PostPage) error {
	posts, next, err := s.posts.List(ctx, filter, viewerID)
	if err != nil {
		return err
	}
	page.Posts = posts
	if next != nil {
		page.NextCursor = next.Encode()
	}
	return nil
}

// Search returns published posts matching the query.
func (s *PostService) Search(ctx context.Context, query string, viewerID uint) ([]*models.Post, error) {
	posts, err := s.posts.Search(ctx, query, MaxPageSize, viewerID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListByAuthor returns an author's posts.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	posts, err := s.posts.ListByAuthor(ctx, authorID, clampLimit(limit), offset, viewerID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Bookmarks returns the viewer's bookmarked posts.
func (s *PostService) Bookmarks(ctx context.Context, userID uint) ([]*models.Post, error) {
	posts, err := s.posts.ListBookmarked(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// RegisterView counts one view per session per post per day. Dedup state
// lives in Redis; without Redis every view counts.
func (s *PostService) RegisterView(ctx context.Context, sessionID string, postID uint) {
	if s.rdb != nil && sessionID != "" {
		ok, err := s.rdb.SetNX(ctx, cache.ViewMarkerKey(sessionID, postID), 1, cache.ViewMarkerTTL).Result()
		if err != nil {
			middleware.Logger.WarnContext(ctx, "view dedup unavailable", slog.String("error", err.Error()))
		} else if !ok {
			return
		}
	}

	if err := s.posts.IncrementViews(ctx, postID); err != nil {
		middleware.Logger.WarnContext(ctx, "view increment failed",
			slog.Any("post_id", postID), slog.String("error", err.Error()))
		return
	}
	middleware.ViewIncrements.Inc()
}

// Like records the viewer's like; repeats are no-ops.
func (s *PostService) Like(ctx context.Context, userID, postID uint) error {
	return s.touchReaction(ctx, postID, func() error {
		return s.posts.Like(ctx, userID, postID)
	})
}

// Unlike removes the viewer's like; repeats are no-ops.
func (s *PostService) Unlike(ctx context.Context, userID, postID uint) error {
	return s.touchReaction(ctx, postID, func() error {
		return s.posts.Unlike(ctx, userID, postID)
	})
}

// Bookmark adds the post to the viewer's reading list.
func (s *PostService) Bookmark(ctx context.Context, userID, postID uint) error {
	return s.touchReaction(ctx, postID, func() error {
		return s.posts.AddBookmark(ctx, userID, postID)
	})
}

// Unbookmark removes the post from the viewer's reading list.
func (s *PostService) Unbookmark(ctx context.Context, userID, postID uint) error {
	return s.touchReaction(ctx, postID, func() error {
		return s.posts.RemoveBookmark(ctx, userID, postID)
	})
}

// touchReaction verifies the post exists, applies the reaction, and drops the
// cached anonymous copy so its counters refresh.
func (s *PostService) touchReaction(ctx context.Context, postID uint, apply func() error) error {
	post, err := s.posts.GetByID(ctx, postID, 0)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", postID)
		}
		return models.NewInternalError(err)
	}
	if err := apply(); err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.Slug)
	return nil
}

// TagCounts returns the published tag histogram, cached.
func (s *PostService) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	var counts []models.TagCount
	err := cache.Aside(ctx, cache.TagCountsKey(), &counts, cache.AggregateTTL, func() error {
		c, err := s.posts.TagCounts(ctx)
		if err != nil {
			return err
		}
		counts = c
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return counts, nil
}

// CategoryCounts returns the published category histogram, cached.
func (s *PostService) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	var counts []models.CategoryCount
	err := cache.Aside(ctx, cache.CategoryCountsKey(), &counts, cache.AggregateTTL, func() error {
		c, err := s.posts.CategoryCounts(ctx)
		if err != nil {
			return err
		}
		counts = c
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return counts, nil
}

// ListAll returns every post for the admin panel, drafts included.
func (s *PostService) ListAll(ctx context.Context, limit, offset int) ([]*models.Post, int64, error) {
	posts, err := s.posts.ListAll(ctx, clampLimit(limit), offset)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	total, err := s.posts.Count(ctx)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

func deriveExcerpt(content string) string {
	text := strings.Join(strings.Fields(content), " ")
	if len(text) <= excerptLength {
		return text
	}
	cut := text[:excerptLength]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
