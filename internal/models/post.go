package models

import (
	"time"

	"gorm.io/gorm"
)

// Categories is the fixed set of post categories.
var Categories = []string{"Technology", "Design", "Lifestyle", "Personal", "General"}

// ValidCategory reports whether name is one of the fixed categories.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Tag is a free-text label attached to posts.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:64;not null;uniqueIndex" json:"name"`
}

// Post represents a published Markdown article.
//
// Slug is derived from the title and unique in practice only: collisions are
// avoided by a best-effort pre-check plus suffixing, not a DB constraint.
type Post struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	AuthorID   uint   `gorm:"not null;index" json:"author_id"`
	Author     User   `gorm:"foreignKey:AuthorID" json:"author"`
	Title      string `gorm:"size:300;not null" json:"title"`
	Slug       string `gorm:"size:320;not null;index" json:"slug"`
	Content    string `gorm:"type:text;not null" json:"content"`
	Excerpt    string `gorm:"size:500" json:"excerpt"`
	CoverImage string `json:"cover_image"`
	Category   string `gorm:"size:32;not null;index" json:"category"`
	Tags       []Tag  `gorm:"many2many:post_tags" json:"tags"`
	Views int64 `gorm:"not null;default:0" json:"views"`
	// No column default: a zero value must insert as a draft.
	Published bool `gorm:"not null" json:"published"`

	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the requesting user liked this post (computed)
	Liked bool `gorm:"->" json:"liked"`
	// Bookmarked indicates whether the requesting user bookmarked this post (computed)
	Bookmarked bool `gorm:"->" json:"bookmarked"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AfterFind strips the author's private contact fields from every read, so a
// preloaded Author can never leak email or phone into post responses.
func (p *Post) AfterFind(tx *gorm.DB) error {
	p.Author = *p.Author.Public()
	return nil
}

// TagNames returns the post's tags as a plain string slice.
func (p *Post) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}

// PostLike records one user's like on a post. The (user, post) pair is
// unique so concurrent toggles resolve to set semantics.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_like" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_like" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Bookmark records one user's bookmark on a post, with the same set
// semantics as PostLike.
type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_bookmark" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_bookmark" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TagCount pairs a tag name with the number of posts carrying it.
type TagCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// CategoryCount pairs a category with the number of posts in it.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
