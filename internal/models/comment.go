package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. Comments form a forest per post
// via ParentID; a nil ParentID means top-level.
//
// EditedAt is nil until the author's single allowed edit; once set, further
// edits are rejected.
type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	AuthorID uint   `gorm:"not null" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author"`
	Content  string `gorm:"type:text;not null" json:"content"`
	ParentID *uint  `gorm:"index" json:"parent_id"`

	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// Liked indicates whether the requesting user liked this comment (computed)
	Liked bool `gorm:"->" json:"liked"`

	// Children is populated client-side of the store by the tree builder;
	// never persisted.
	Children []*Comment `gorm:"-" json:"children"`

	CreatedAt time.Time      `json:"created_at"`
	EditedAt  *time.Time     `json:"edited_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AfterFind strips the author's private contact fields, mirroring Post.
func (c *Comment) AfterFind(tx *gorm.DB) error {
	c.Author = *c.Author.Public()
	return nil
}

// CommentLike records one user's like on a comment with set semantics.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_like" json:"user_id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_like" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}
