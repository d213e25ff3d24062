package repository_test

import (
	"context"
	"testing"
	"time"

	"bloggazers/internal/models"
	"bloggazers/internal/repository"
	"bloggazers/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Provider:   "google",
		ProviderID: "pid-" + username,
		Email:      username + "@example.com",
		FullName:   username,
		Username:   username,
		Status:     models.StatusActive,
		Role:       models.RoleUser,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedPost(t *testing.T, db *gorm.DB, author *models.User, title string, createdAt time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		AuthorID:  author.ID,
		Title:     title,
		Slug:      title,
		Content:   "content of " + title,
		Excerpt:   "excerpt of " + title,
		Category:  "Technology",
		Published: true,
	}
	require.NoError(t, db.Create(p).Error)
	require.NoError(t, db.Model(p).UpdateColumn("created_at", createdAt).Error)
	p.CreatedAt = createdAt
	return p
}

func TestPostRepository_LikeIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewPostRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	post := seedPost(t, db, alice, "hello", time.Now())

	require.NoError(t, repo.Like(ctx, alice.ID, post.ID))
	require.NoError(t, repo.Like(ctx, alice.ID, post.ID))
	require.NoError(t, repo.Like(ctx, alice.ID, post.ID))

	got, err := repo.GetByID(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
	assert.True(t, got.Liked)

	require.NoError(t, repo.Unlike(ctx, alice.ID, post.ID))
	require.NoError(t, repo.Unlike(ctx, alice.ID, post.ID))

	got, err = repo.GetByID(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LikesCount)
	assert.False(t, got.Liked)
}

func TestPostRepository_BookmarkSetSemantics(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewPostRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, alice, "hello", time.Now())

	require.NoError(t, repo.AddBookmark(ctx, bob.ID, post.ID))
	require.NoError(t, repo.AddBookmark(ctx, bob.ID, post.ID))

	marked, err := repo.ListBookmarked(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, marked, 1)
	assert.Equal(t, post.ID, marked[0].ID)
	assert.True(t, marked[0].Bookmarked)

	require.NoError(t, repo.RemoveBookmark(ctx, bob.ID, post.ID))
	marked, err = repo.ListBookmarked(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, marked)
}

func TestPostRepository_ListKeysetPagination(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewPostRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedPost(t, db, alice, string(rune('a'+i)), base.Add(time.Duration(i)*time.Hour))
	}

	page1, cursor, err := repo.List(ctx, repository.PostFilter{Limit: 2}, 0)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, cursor)
	assert.Equal(t, "e", page1[0].Title)
	assert.Equal(t, "d", page1[1].Title)

	page2, cursor, err := repo.List(ctx, repository.PostFilter{Limit: 2, Cursor: cursor}, 0)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, "c", page2[0].Title)
	assert.Equal(t, "b", page2[1].Title)

	page3, cursor, err := repo.List(ctx, repository.PostFilter{Limit: 2, Cursor: cursor}, 0)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, "a", page3[0].Title)
	assert.Nil(t, cursor, "short page ends pagination")
}

func TestPostRepository_ListFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewPostRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	now := time.Now()

	design := &models.Post{
		AuthorID: alice.ID, Title: "on color", Slug: "on-color",
		Content: "c", Category: "Design", Published: true,
	}
	require.NoError(t, repo.Create(ctx, design, []string{"palettes", "ui"}))

	tech := seedPost(t, db, alice, "compilers", now)
	draft := &models.Post{
		AuthorID: alice.ID, Title: "wip", Slug: "wip",
		Content: "c", Category: "Design", Published: false,
	}
	require.NoError(t, db.Create(draft).Error)

	byCategory, _, err := repo.List(ctx, repository.PostFilter{Category: "Design", Limit: 10}, 0)
	require.NoError(t, err)
	require.Len(t, byCategory, 1, "drafts excluded")
	assert.Equal(t, "on color", byCategory[0].Title)

	byTag, _, err := repo.List(ctx, repository.PostFilter{Tag: "Palettes", Limit: 10}, 0)
	require.NoError(t, err)
	require.Len(t, byTag, 1, "tag filter is case-insensitive")
	assert.Equal(t, "on color", byTag[0].Title)
	assert.ElementsMatch(t, []string{"palettes", "ui"}, byTag[0].TagNames())

	all, _, err := repo.List(ctx, repository.PostFilter{Limit: 10}, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	_ = tech
}

func TestPostRepository_Search(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewPostRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	goPost := &models.Post{
		AuthorID: alice.ID, Title: "Go Concurrency Patterns", Slug: "go-concurrency",
		Content: "c", Excerpt: "channels and goroutines", Category: "Technology", Published: true,
	}
	require.NoError(t, repo.Create(ctx, goPost, []string{"golang"}))

	other := &models.Post{
		AuthorID: alice.ID, Title: "Gardening", Slug: "gardening",
		Content: "c", Excerpt: "soil and light", Category: "Lifestyle", Published: true,
	}
	require.NoError(t, repo.Create(ctx, other, nil))

	// Every term must match the title.
	hits, err := repo.Search(ctx, "go patterns", 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Go Concurrency Patterns", hits[0].Title)

	// A single term matching the excerpt.
	hits, err = repo.Search(ctx, "goroutines", 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	// Exact tag match, case-insensitive.
	hits, err = repo.Search(ctx, "GOLANG", 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	// Terms split across title and excerpt of different posts match nothing.
	hits, err = repo.Search(ctx, "concurrency soil", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = repo.Search(ctx, "   ", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewTestDB(t)
	posts := repository.NewPostRepository(db)
	comments := repository.NewCommentRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, alice, "doomed", time.Now())
	other := seedPost(t, db, alice, "survivor", time.Now())

	root := &models.Comment{PostID: post.ID, AuthorID: bob.ID, Content: "root"}
	require.NoError(t, comments.Create(ctx, root))
	reply := &models.Comment{PostID: post.ID, AuthorID: alice.ID, Content: "reply", ParentID: &root.ID}
	require.NoError(t, comments.Create(ctx, reply))
	keep := &models.Comment{PostID: other.ID, AuthorID: bob.ID, Content: "keep"}
	require.NoError(t, comments.Create(ctx, keep))

	require.NoError(t, posts.Like(ctx, bob.ID, post.ID))
	require.NoError(t, posts.AddBookmark(ctx, bob.ID, post.ID))
	require.NoError(t, comments.Like(ctx, alice.ID, root.ID))

	require.NoError(t, posts.Delete(ctx, post.ID))

	_, err := posts.GetByID(ctx, post.ID, 0)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	left, err := comments.ListByPost(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, left)

	var likeRows, bookmarkRows, commentLikeRows int64
	require.NoError(t, db.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likeRows).Error)
	require.NoError(t, db.Model(&models.Bookmark{}).Where("post_id = ?", post.ID).Count(&bookmarkRows).Error)
	require.NoError(t, db.Model(&models.CommentLike{}).Count(&commentLikeRows).Error)
	assert.Zero(t, likeRows)
	assert.Zero(t, bookmarkRows)
	assert.Zero(t, commentLikeRows)

	// Unrelated rows survive.
	survivors, err := comments.ListByPost(ctx, other.ID, 0)
	require.NoError(t, err)
	assert.Len(t, survivors, 1)
}

func TestPostRepository_IncrementViews(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewPostRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	post := seedPost(t, db, alice, "counted", time.Now())

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.IncrementViews(ctx, post.ID))
	}

	got, err := repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.Views)
}

func TestPostRepository_TagAndCategoryCounts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewPostRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	p1 := &models.Post{AuthorID: alice.ID, Title: "a", Slug: "a", Content: "c", Category: "Technology", Published: true}
	require.NoError(t, repo.Create(ctx, p1, []string{"go", "web"}))
	p2 := &models.Post{AuthorID: alice.ID, Title: "b", Slug: "b", Content: "c", Category: "Technology", Published: true}
	require.NoError(t, repo.Create(ctx, p2, []string{"go"}))
	draft := &models.Post{AuthorID: alice.ID, Title: "d", Slug: "d", Content: "c", Category: "Design", Published: false}
	require.NoError(t, repo.Create(ctx, draft, []string{"go"}))

	tags, err := repo.TagCounts(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, models.TagCount{Name: "go", Count: 2}, tags[0])
	assert.Equal(t, models.TagCount{Name: "web", Count: 1}, tags[1])

	cats, err := repo.CategoryCounts(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1, "drafts excluded")
	assert.Equal(t, models.CategoryCount{Category: "Technology", Count: 2}, cats[0])
}

func TestPostRepository_UpdateReplacesTags(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewPostRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	post := &models.Post{AuthorID: alice.ID, Title: "a", Slug: "a", Content: "c", Category: "Technology", Published: true}
	require.NoError(t, repo.Create(ctx, post, []string{"old", "stale"}))

	post.Title = "a2"
	require.NoError(t, repo.Update(ctx, post, []string{"fresh"}))

	got, err := repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "a2", got.Title)
	assert.Equal(t, []string{"fresh"}, got.TagNames())
}

func TestCommentRepository_ListByPostNewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewCommentRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	post := seedPost(t, db, alice, "p", time.Now())

	first := &models.Comment{PostID: post.ID, AuthorID: alice.ID, Content: "first"}
	require.NoError(t, repo.Create(ctx, first))
	second := &models.Comment{PostID: post.ID, AuthorID: alice.ID, Content: "second"}
	require.NoError(t, repo.Create(ctx, second))

	require.NoError(t, repo.Like(ctx, alice.ID, second.ID))

	got, err := repo.ListByPost(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Content)
	assert.Equal(t, 1, got[0].LikesCount)
	assert.True(t, got[0].Liked)
	assert.Equal(t, "alice", got[0].Author.Username)
	assert.False(t, got[1].Liked)
}

func TestCommentRepository_DeleteBatch(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewCommentRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	post := seedPost(t, db, alice, "p", time.Now())

	root := &models.Comment{PostID: post.ID, AuthorID: alice.ID, Content: "root"}
	require.NoError(t, repo.Create(ctx, root))
	child := &models.Comment{PostID: post.ID, AuthorID: alice.ID, Content: "child", ParentID: &root.ID}
	require.NoError(t, repo.Create(ctx, child))
	bystander := &models.Comment{PostID: post.ID, AuthorID: alice.ID, Content: "bystander"}
	require.NoError(t, repo.Create(ctx, bystander))
	require.NoError(t, repo.Like(ctx, alice.ID, child.ID))

	require.NoError(t, repo.DeleteBatch(ctx, []uint{root.ID, child.ID}))

	left, err := repo.ListByPost(ctx, post.ID, 0)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "bystander", left[0].Content)

	var likeRows int64
	require.NoError(t, db.Model(&models.CommentLike{}).Count(&likeRows).Error)
	assert.Zero(t, likeRows)

	require.NoError(t, repo.DeleteBatch(ctx, nil), "empty batch is a no-op")
}

func TestUserRepository_UsernameLookupIsCaseInsensitive(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "gazer")

	taken, err := repo.UsernameTaken(ctx, "GaZeR")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.UsernameTaken(ctx, "free")
	require.NoError(t, err)
	assert.False(t, taken)

	got, err := repo.GetByUsername(ctx, "GAZER")
	require.NoError(t, err)
	assert.Equal(t, "gazer", got.Username)
}

func TestUserRepository_ProviderPairLookup(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "gazer")

	got, err := repo.GetByProvider(ctx, "google", u.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetByProvider(ctx, "github", u.ProviderID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDecodeCursor(t *testing.T) {
	c := repository.Cursor{CreatedAt: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC), ID: 42}
	token := c.Encode()

	decoded, err := repository.DecodeCursor(token)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.True(t, c.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, uint(42), decoded.ID)

	decoded, err = repository.DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, decoded)

	_, err = repository.DecodeCursor("not!!base64")
	assert.Error(t, err)
}
