// Package session resolves bearer identities into principals, with a Redis
// read-through cache invalidated by principal-updated events.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"bloggazers/internal/cache"
	"bloggazers/internal/middleware"
	"bloggazers/internal/models"
	"bloggazers/internal/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNoSession is returned when the identified principal does not exist.
var ErrNoSession = errors.New("session: no such principal")

// ErrResolutionTimeout is returned when identity resolution exceeded the
// request's deadline; callers should answer with a retryable status rather
// than a terminal auth failure.
var ErrResolutionTimeout = errors.New("session: identity resolution timed out")

// Manager resolves authenticated user ids into principal records. Resolution
// reads through the user cache; a subscriber goroutine drops cached entries
// whenever a principal-updated event is published, so every open session
// observes profile and status changes without re-authentication.
type Manager struct {
	users  repository.UserRepository
	rdb    *redis.Client
	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager starts a manager. rdb may be nil, in which case resolution goes
// straight to the database and invalidation events are neither published nor
// consumed.
func NewManager(users repository.UserRepository, rdb *redis.Client) *Manager {
	m := &Manager{users: users, rdb: rdb, done: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	if rdb != nil {
		go m.subscribe(ctx)
	} else {
		close(m.done)
	}
	return m
}

// Resolve returns the principal for a user id, from cache when possible.
func (m *Manager) Resolve(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(userID), &user, cache.UserTTL, func() error {
		u, err := m.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		user = *u
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSession
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, ErrResolutionTimeout
		}
		return nil, err
	}
	return &user, nil
}

// PublishUpdate broadcasts that a principal changed. Every manager instance,
// local or on another node, drops its cached copy on receipt.
func (m *Manager) PublishUpdate(ctx context.Context, userID uint) {
	cache.InvalidateUser(ctx, userID)
	if m.rdb == nil {
		return
	}
	if err := m.rdb.Publish(ctx, cache.PrincipalsChannel(), strconv.FormatUint(uint64(userID), 10)).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "publishing principal update failed",
			slog.Any("user_id", userID), slog.String("error", err.Error()))
	}
}

func (m *Manager) subscribe(ctx context.Context) {
	defer close(m.done)

	sub := m.rdb.Subscribe(ctx, cache.PrincipalsChannel())
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			id, err := strconv.ParseUint(msg.Payload, 10, 64)
			if err != nil {
				middleware.Logger.Warn("ignoring malformed principal update",
					slog.String("payload", msg.Payload))
				continue
			}
			cache.InvalidateUser(ctx, uint(id))
		}
	}
}

// Close stops the subscriber goroutine and waits for it to exit.
func (m *Manager) Close() {
	m.cancel()
	<-m.done
}
