package repository

import (
	"context"
	"strings"

	"bloggazers/internal/cache"
	"bloggazers/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows the listing page. Category and Tag are mutually
// exclusive; callers validate that before reaching the repository.
type PostFilter struct {
	Category string
	Tag      string
	Cursor   *Cursor
	Limit    int
}

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, tags []string) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string, currentUserID uint) (*models.Post, error)
	List(ctx context.Context, f PostFilter, currentUserID uint) ([]*models.Post, *Cursor, error)
	Search(ctx context.Context, query string, limit int, currentUserID uint) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	ListBookmarked(ctx context.Context, userID uint) ([]*models.Post, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post, tags []string) error
	Delete(ctx context.Context, id uint) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	IncrementViews(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	AddBookmark(ctx context.Context, userID, postID uint) error
	RemoveBookmark(ctx context.Context, userID, postID uint) error
	TagCounts(ctx context.Context) ([]models.TagCount, error)
	CategoryCounts(ctx context.Context) ([]models.CategoryCount, error)
	Count(ctx context.Context) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyPostDetails selects posts.* plus the computed likes/comments counters
// and, when a viewer is known, whether they liked or bookmarked each post.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM post_likes WHERE post_likes.post_id = posts.id AND post_likes.user_id = ?) as liked"+
			", EXISTS(SELECT 1 FROM bookmarks WHERE bookmarks.post_id = posts.id AND bookmarks.user_id = ?) as bookmarked",
			currentUserID, currentUserID)
	}

	return db.Select(selectQuery)
}

func (r *postRepository) resolveTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var tag models.Tag
		if err := tx.Where("name = ?", name).FirstOrCreate(&tag, models.Tag{Name: name}).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post, tags []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resolved, err := r.resolveTags(tx, tags)
		if err != nil {
			return err
		}
		post.Tags = resolved
		return tx.Create(post).Error
	})
	if err == nil {
		cache.InvalidatePostsList(ctx)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Preload("Tags").
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string, currentUserID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Preload("Tags").
		Where("slug = ?", slug).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, f PostFilter, currentUserID uint) ([]*models.Post, *Cursor, error) {
	var posts []*models.Post

	q := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Preload("Tags").
		Where("published = ?", true)

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Tag != "" {
		q = q.Where("EXISTS (SELECT 1 FROM post_tags JOIN tags ON tags.id = post_tags.tag_id "+
			"WHERE post_tags.post_id = posts.id AND LOWER(tags.name) = LOWER(?))", f.Tag)
	}
	if f.Cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			f.Cursor.CreatedAt, f.Cursor.CreatedAt, f.Cursor.ID)
	}

	err := q.Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Find(&posts).Error
	if err != nil {
		return nil, nil, err
	}
	return posts, CursorFor(posts, f.Limit), nil
}

// Search matches when every term appears in the title, or every term appears
// in the excerpt, or any term exactly matches a tag. All comparisons are
// case-insensitive.
func (r *postRepository) Search(ctx context.Context, query string, limit int, currentUserID uint) ([]*models.Post, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return []*models.Post{}, nil
	}

	titleQ := r.db.WithContext(ctx)
	excerptQ := r.db.WithContext(ctx)
	for _, t := range terms {
		like := "%" + t + "%"
		titleQ = titleQ.Where("LOWER(title) LIKE ?", like)
		excerptQ = excerptQ.Where("LOWER(excerpt) LIKE ?", like)
	}
	tagQ := r.db.WithContext(ctx).Where(
		"EXISTS (SELECT 1 FROM post_tags JOIN tags ON tags.id = post_tags.tag_id "+
			"WHERE post_tags.post_id = posts.id AND LOWER(tags.name) IN ?)", terms)

	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Preload("Tags").
		Where("published = ?", true).
		Where(titleQ.Or(excerptQ).Or(tagQ)).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("Author").
		Preload("Tags").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListBookmarked(ctx context.Context, userID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), userID).
		Preload("Author").
		Preload("Tags").
		Where("EXISTS (SELECT 1 FROM bookmarks WHERE bookmarks.post_id = posts.id AND bookmarks.user_id = ?)", userID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

// ListAll is the admin view: drafts included, offset pagination.
func (r *postRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), 0).
		Preload("Author").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Update(ctx context.Context, post *models.Post, tags []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tags != nil {
			resolved, err := r.resolveTags(tx, tags)
			if err != nil {
				return err
			}
			if err := tx.Model(post).Association("Tags").Replace(resolved); err != nil {
				return err
			}
			post.Tags = resolved
		}
		return tx.Omit("Tags", "Author").Save(post).Error
	})
	if err == nil {
		cache.InvalidatePost(ctx, post.Slug)
		cache.InvalidatePostsList(ctx)
	}
	return err
}

// Delete removes the post together with all its comments, comment likes,
// post likes, bookmarks, and tag links in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	var slug string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "slug").First(&post, id).Error; err != nil {
			return err
		}
		slug = post.Slug

		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", id)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Bookmark{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err == nil {
		cache.InvalidatePost(ctx, slug)
		cache.InvalidatePostsList(ctx)
	}
	return err
}

func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IncrementViews applies an atomic relative update so concurrent viewers
// never lose counts to read-modify-write races.
func (r *postRepository) IncrementViews(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// Like inserts with ON CONFLICT DO NOTHING so concurrent toggles from the
// same user resolve to set semantics instead of duplicate-key errors.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PostLike{UserID: userID, PostID: postID}).Error
	return err
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.PostLike{}).Error
}

func (r *postRepository) AddBookmark(ctx context.Context, userID, postID uint) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Bookmark{UserID: userID, PostID: postID}).Error
}

func (r *postRepository) RemoveBookmark(ctx context.Context, userID, postID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Bookmark{}).Error
}

func (r *postRepository) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	var counts []models.TagCount
	err := r.db.WithContext(ctx).
		Table("tags").
		Select("tags.name as name, COUNT(post_tags.post_id) as count").
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Joins("JOIN posts ON posts.id = post_tags.post_id AND posts.deleted_at IS NULL AND posts.published = ?", true).
		Group("tags.name").
		Order("count DESC, name ASC").
		Scan(&counts).Error
	return counts, err
}

func (r *postRepository) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	var counts []models.CategoryCount
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("category, COUNT(*) as count").
		Where("published = ?", true).
		Group("category").
		Order("category ASC").
		Scan(&counts).Error
	return counts, err
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}
