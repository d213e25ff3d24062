package service_test

import (
	"context"
	"net/url"
	"testing"

	"bloggazers/internal/config"
	"bloggazers/internal/models"
	"bloggazers/internal/repository"
	"bloggazers/internal/service"
	"bloggazers/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	profile service.ProviderProfile
	failed  bool
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) AuthURL(state string) string {
	return "https://provider.example/authorize?state=" + url.QueryEscape(state)
}

func (p *stubProvider) Exchange(ctx context.Context, code string) (*service.ProviderProfile, error) {
	if code != "good-code" {
		p.failed = true
		return nil, assert.AnError
	}
	profile := p.profile
	return &profile, nil
}

func newAuthFixture(t *testing.T) (*service.AuthService, *stubProvider) {
	t.Helper()
	db := testutil.NewTestDB(t)
	_, rdb := testutil.NewTestRedis(t)

	cfg := &config.Config{
		JWTSecret:      "test-secret-key-of-sufficient-length",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
	}
	svc := service.NewAuthService(cfg, repository.NewUserRepository(db), rdb)

	stub := &stubProvider{profile: service.ProviderProfile{
		ID:    "ext-123",
		Email: "new@example.com",
		Name:  "New Gazer",
	}}
	svc.RegisterProvider(stub)
	return svc, stub
}

func stateFrom(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestAuthService_FirstSignInCreatesPendingPrincipal(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	authURL, err := svc.BeginAuth(ctx, "stub")
	require.NoError(t, err)
	state := stateFrom(t, authURL)

	user, tokens, err := svc.HandleCallback(ctx, "stub", state, "good-code")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, user.Status)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Empty(t, user.Username)
	assert.NotEmpty(t, user.AvatarURL, "a fallback avatar is generated")
	require.NotNil(t, tokens)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	parsed, err := svc.ParseAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, parsed)
}

func TestAuthService_RepeatSignInReusesPrincipal(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	state1 := stateFrom(t, mustAuthURL(t, svc, ctx))
	first, _, err := svc.HandleCallback(ctx, "stub", state1, "good-code")
	require.NoError(t, err)

	state2 := stateFrom(t, mustAuthURL(t, svc, ctx))
	second, _, err := svc.HandleCallback(ctx, "stub", state2, "good-code")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestAuthService_StateIsSingleUse(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	state := stateFrom(t, mustAuthURL(t, svc, ctx))
	_, _, err := svc.HandleCallback(ctx, "stub", state, "good-code")
	require.NoError(t, err)

	_, _, err = svc.HandleCallback(ctx, "stub", state, "good-code")
	assert.Equal(t, "UNAUTHORIZED", appCode(t, err))

	_, _, err = svc.HandleCallback(ctx, "stub", "forged-state", "good-code")
	assert.Equal(t, "UNAUTHORIZED", appCode(t, err))
}

func TestAuthService_ExchangeFailure(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	state := stateFrom(t, mustAuthURL(t, svc, ctx))
	_, _, err := svc.HandleCallback(ctx, "stub", state, "bad-code")
	assert.Equal(t, "UNAUTHORIZED", appCode(t, err))
}

func TestAuthService_RefreshRotates(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	state := stateFrom(t, mustAuthURL(t, svc, ctx))
	user, tokens, err := svc.HandleCallback(ctx, "stub", state, "good-code")
	require.NoError(t, err)

	fresh, err := svc.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, fresh.RefreshToken)

	parsed, err := svc.ParseAccessToken(fresh.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, parsed)

	// The consumed token cannot be replayed.
	_, err = svc.Refresh(ctx, tokens.RefreshToken)
	assert.Equal(t, "UNAUTHORIZED", appCode(t, err))
}

func TestAuthService_LogoutRevokesRefresh(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	state := stateFrom(t, mustAuthURL(t, svc, ctx))
	_, tokens, err := svc.HandleCallback(ctx, "stub", state, "good-code")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, tokens.RefreshToken))

	_, err = svc.Refresh(ctx, tokens.RefreshToken)
	assert.Equal(t, "UNAUTHORIZED", appCode(t, err))
}

func TestAuthService_UnknownProvider(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.BeginAuth(context.Background(), "myspace")
	assert.Equal(t, "NOT_FOUND", appCode(t, err))
}

func TestAuthService_ParseAccessTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.ParseAccessToken("not-a-jwt")
	assert.Error(t, err)
}

func mustAuthURL(t *testing.T, svc *service.AuthService, ctx context.Context) string {
	t.Helper()
	authURL, err := svc.BeginAuth(ctx, "stub")
	require.NoError(t, err)
	return authURL
}
