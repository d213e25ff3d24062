package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	userKeyPrefix       = "user:%d"
	postKeyPrefix       = "post:%s"
	postsFirstPageKey   = "posts:first"
	tagCountsKey        = "tags:counts"
	categoryCountsKey   = "categories:counts"
	viewMarkerPrefix    = "view:%s:%d"
	refreshTokenPrefix  = "refresh:%s"
	oauthStatePrefix    = "oauth_state:%s"
	principalsChannel   = "principals.updated"
)

const (
	UserTTL       = 5 * time.Minute
	PostTTL       = 30 * time.Minute
	ListTTL       = time.Minute
	AggregateTTL  = 5 * time.Minute
	ViewMarkerTTL = 24 * time.Hour
	StateTTL      = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

func PostKey(slug string) string {
	return fmt.Sprintf(postKeyPrefix, slug)
}

func PostsFirstPageKey() string {
	return postsFirstPageKey
}

func TagCountsKey() string {
	return tagCountsKey
}

func CategoryCountsKey() string {
	return categoryCountsKey
}

func ViewMarkerKey(sessionID string, postID uint) string {
	return fmt.Sprintf(viewMarkerPrefix, sessionID, postID)
}

func RefreshTokenKey(token string) string {
	return fmt.Sprintf(refreshTokenPrefix, token)
}

func OAuthStateKey(state string) string {
	return fmt.Sprintf(oauthStatePrefix, state)
}

// PrincipalsChannel is the pub/sub channel carrying principal-updated events.
func PrincipalsChannel() string {
	return principalsChannel
}

// Invalidate deletes a key, best-effort.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, slug string) {
	Invalidate(ctx, PostKey(slug))
}

func InvalidatePostsList(ctx context.Context) {
	Invalidate(ctx, postsFirstPageKey)
	Invalidate(ctx, tagCountsKey)
	Invalidate(ctx, categoryCountsKey)
}
