package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"bloggazers/internal/cache"
	"bloggazers/internal/config"
	"bloggazers/internal/middleware"
	"bloggazers/internal/models"
	"bloggazers/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"
	"gorm.io/gorm"
)

// TokenPair is the credential set handed to a client after sign-in: a short
// lived JWT plus an opaque refresh token stored server-side.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthService implements delegated sign-in. Identity verification belongs to
// the external provider; this service only maps verified provider profiles to
// principals and issues session credentials.
type AuthService struct {
	users     repository.UserRepository
	rdb       *redis.Client
	providers map[string]OAuthProvider

	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewAuthService wires the auth service from configuration. Providers without
// a configured client id are left unregistered.
func NewAuthService(cfg *config.Config, users repository.UserRepository, rdb *redis.Client) *AuthService {
	providers := make(map[string]OAuthProvider)
	if cfg.GoogleClientID != "" {
		p := NewGoogleProvider(cfg)
		providers[p.Name()] = p
	}
	if cfg.GitHubClientID != "" {
		p := NewGitHubProvider(cfg)
		providers[p.Name()] = p
	}

	return &AuthService{
		users:      users,
		rdb:        rdb,
		providers:  providers,
		jwtSecret:  []byte(cfg.JWTSecret),
		accessTTL:  time.Duration(cfg.AccessTTLMin) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
	}
}

// RegisterProvider adds or replaces a provider. Tests use this to install
// stubs.
func (s *AuthService) RegisterProvider(p OAuthProvider) {
	s.providers[p.Name()] = p
}

// BeginAuth returns the provider's consent URL with a fresh single-use state.
func (s *AuthService) BeginAuth(ctx context.Context, providerName string) (string, error) {
	p, ok := s.providers[providerName]
	if !ok {
		return "", models.NewNotFoundError("Provider", providerName)
	}

	state := xid.New().String()
	if s.rdb != nil {
		if err := s.rdb.Set(ctx, cache.OAuthStateKey(state), providerName, cache.StateTTL).Err(); err != nil {
			return "", models.NewInternalError(err)
		}
	}
	return p.AuthURL(state), nil
}

// HandleCallback completes the provider round-trip: it validates the state,
// exchanges the code, upserts the principal, and issues credentials. A first
// sign-in creates the principal in the pending state; completing registration
// is a separate step.
func (s *AuthService) HandleCallback(ctx context.Context, providerName, state, code string) (*models.User, *TokenPair, error) {
	p, ok := s.providers[providerName]
	if !ok {
		return nil, nil, models.NewNotFoundError("Provider", providerName)
	}

	if s.rdb != nil {
		stored, err := s.rdb.GetDel(ctx, cache.OAuthStateKey(state)).Result()
		if err == redis.Nil || (err == nil && stored != providerName) {
			return nil, nil, models.NewUnauthorizedError("Invalid or expired state")
		}
		if err != nil && err != redis.Nil {
			return nil, nil, models.NewInternalError(err)
		}
	}

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, nil, models.NewUnauthorizedError("Provider exchange failed")
	}

	user, err := s.users.GetByProvider(ctx, providerName, profile.ID)
	switch {
	case err == nil:
		// Known principal; nothing to upsert.
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = s.newPendingUser(providerName, profile)
		if err := s.users.Create(ctx, user); err != nil {
			return nil, nil, models.NewInternalError(err)
		}
		middleware.Logger.InfoContext(ctx, "principal created",
			slog.Any("user_id", user.ID), slog.String("provider", providerName))
	default:
		return nil, nil, models.NewInternalError(err)
	}

	tokens, err := s.IssueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

func (s *AuthService) newPendingUser(providerName string, profile *ProviderProfile) *models.User {
	avatar := profile.AvatarURL
	if avatar == "" {
		seed := profile.Name
		if seed == "" {
			seed = profile.ID
		}
		avatar = "https://api.dicebear.com/7.x/initials/svg?seed=" + url.QueryEscape(seed)
	}
	return &models.User{
		Provider:   providerName,
		ProviderID: profile.ID,
		Email:      profile.Email,
		FullName:   profile.Name,
		AvatarURL:  avatar,
		Status:     models.StatusPending,
		Role:       models.RoleUser,
	}
}

// IssueTokens mints a fresh access and refresh token pair for a principal.
func (s *AuthService) IssueTokens(ctx context.Context, userID uint) (*TokenPair, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iat": now.Unix(),
		"exp": now.Add(s.accessTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	refresh := uuid.NewString()
	if s.rdb != nil {
		err = s.rdb.Set(ctx, cache.RefreshTokenKey(refresh),
			strconv.FormatUint(uint64(userID), 10), s.refreshTTL).Err()
		if err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Refresh rotates a refresh token: the presented token is consumed and a new
// pair is issued, so a replayed token fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if s.rdb == nil {
		return nil, models.NewUnauthorizedError("Refresh unavailable")
	}

	stored, err := s.rdb.GetDel(ctx, cache.RefreshTokenKey(refreshToken)).Result()
	if err == redis.Nil {
		return nil, models.NewUnauthorizedError("Invalid refresh token")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	userID, err := strconv.ParseUint(stored, 10, 64)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid refresh token")
	}
	return s.IssueTokens(ctx, uint(userID))
}

// Logout revokes a refresh token. The access token expires on its own.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if s.rdb == nil || refreshToken == "" {
		return nil
	}
	return s.rdb.Del(ctx, cache.RefreshTokenKey(refreshToken)).Err()
}

// ParseAccessToken validates a bearer token and returns the principal id.
func (s *AuthService) ParseAccessToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, models.NewUnauthorizedError("Invalid token subject")
	}
	userID, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, models.NewUnauthorizedError("Invalid token subject")
	}
	return uint(userID), nil
}
