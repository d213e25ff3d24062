package guard

import (
	"testing"

	"bloggazers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingUser() *models.User {
	return &models.User{ID: 7, Status: models.StatusPending, Role: models.RoleUser}
}

func activeUser() *models.User {
	return &models.User{ID: 7, Status: models.StatusActive, Role: models.RoleUser}
}

func adminUser() *models.User {
	return &models.User{ID: 1, Status: models.StatusActive, Role: models.RoleAdmin}
}

func TestEvaluate_ResolvingShowsLoading(t *testing.T) {
	t.Parallel()
	routes := DefaultRoutes()

	for _, path := range []string{"/", "/profile", "/admin", "/finish-profile"} {
		d := Evaluate(Snapshot{Resolving: true}, path, routes)
		assert.Equal(t, Loading, d.Action, "path %s", path)
		assert.Empty(t, d.Target)
	}
}

func TestEvaluate_SignInIsExempt(t *testing.T) {
	t.Parallel()
	routes := DefaultRoutes()

	// Even a resolving snapshot renders the sign-in page.
	d := Evaluate(Snapshot{Resolving: true}, "/login", routes)
	assert.Equal(t, Allow, d.Action)

	d = Evaluate(Snapshot{Principal: pendingUser()}, "/login", routes)
	assert.Equal(t, Allow, d.Action)
}

func TestEvaluate_PendingRedirectsToFinishRegistration(t *testing.T) {
	t.Parallel()
	routes := DefaultRoutes()
	snap := Snapshot{Principal: pendingUser()}

	for _, path := range []string{"/", "/blogs", "/profile", "/bookmarks", "/create-blog"} {
		d := Evaluate(snap, path, routes)
		require.Equal(t, Redirect, d.Action, "path %s", path)
		assert.Equal(t, "/finish-profile", d.Target, "path %s", path)
	}

	// Finish-registration itself passes through.
	d := Evaluate(snap, "/finish-profile", routes)
	assert.Equal(t, Allow, d.Action)
}

func TestEvaluate_ActiveCannotReenterRegistration(t *testing.T) {
	t.Parallel()
	routes := DefaultRoutes()

	d := Evaluate(Snapshot{Principal: activeUser()}, "/finish-profile", routes)
	require.Equal(t, Redirect, d.Action)
	assert.Equal(t, "/profile", d.Target)
}

func TestEvaluate_UnauthenticatedProtectedRedirectsToSignIn(t *testing.T) {
	t.Parallel()
	routes := DefaultRoutes()

	for _, path := range []string{"/create-blog", "/profile", "/profile/edit", "/edit-blog/my-post", "/bookmarks", "/finish-profile"} {
		d := Evaluate(Snapshot{}, path, routes)
		require.Equal(t, Redirect, d.Action, "path %s", path)
		assert.Equal(t, "/login", d.Target, "path %s", path)
	}
}

func TestEvaluate_UnauthenticatedPublicAllowed(t *testing.T) {
	t.Parallel()
	routes := DefaultRoutes()

	for _, path := range []string{"/", "/blogs", "/blog/some-post", "/tags", "/categories", "/about", "/contact", "/search"} {
		d := Evaluate(Snapshot{}, path, routes)
		assert.Equal(t, Allow, d.Action, "path %s", path)
	}
}

func TestEvaluate_AdminGateDeniesInPlace(t *testing.T) {
	t.Parallel()
	routes := DefaultRoutes()

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()
		d := Evaluate(Snapshot{}, "/admin", routes)
		assert.Equal(t, Deny, d.Action)
		assert.Empty(t, d.Target, "deny must not redirect")
		assert.Zero(t, d.PrincipalID)
	})

	t.Run("non-admin carries diagnostics", func(t *testing.T) {
		t.Parallel()
		d := Evaluate(Snapshot{Principal: activeUser()}, "/admin/users", routes)
		require.Equal(t, Deny, d.Action)
		assert.Equal(t, uint(7), d.PrincipalID)
		assert.Equal(t, models.RoleUser, d.Role)
	})

	t.Run("admin allowed", func(t *testing.T) {
		t.Parallel()
		d := Evaluate(Snapshot{Principal: adminUser()}, "/admin/blogs", routes)
		assert.Equal(t, Allow, d.Action)
	})
}

// Gates 2 and 3 compose: a pending user on a protected route is redirected to
// finish-registration by gate 2 before the authentication gate is consulted.
func TestEvaluate_GateOrderPendingBeforeAuth(t *testing.T) {
	t.Parallel()
	routes := DefaultRoutes()

	d := Evaluate(Snapshot{Principal: pendingUser()}, "/create-blog", routes)
	require.Equal(t, Redirect, d.Action)
	assert.Equal(t, "/finish-profile", d.Target)
}

// A pending admin is still bounced to finish-registration before the admin
// gate can allow them through.
func TestEvaluate_PendingAdminStillRedirected(t *testing.T) {
	t.Parallel()
	routes := DefaultRoutes()
	pendingAdmin := &models.User{ID: 2, Status: models.StatusPending, Role: models.RoleAdmin}

	d := Evaluate(Snapshot{Principal: pendingAdmin}, "/admin", routes)
	require.Equal(t, Redirect, d.Action)
	assert.Equal(t, "/finish-profile", d.Target)
}

// Scenario from the product flow: P (pending) requests /profile, completes
// registration, then requests /finish-profile again.
func TestEvaluate_RegistrationLifecycleScenario(t *testing.T) {
	t.Parallel()
	routes := DefaultRoutes()

	p := pendingUser()
	d := Evaluate(Snapshot{Principal: p}, "/profile", routes)
	require.Equal(t, Redirect, d.Action)
	require.Equal(t, "/finish-profile", d.Target)

	p.Status = models.StatusActive
	p.Username = "gazer"
	d = Evaluate(Snapshot{Principal: p}, "/finish-profile", routes)
	require.Equal(t, Redirect, d.Action)
	assert.Equal(t, "/profile", d.Target)

	d = Evaluate(Snapshot{Principal: p}, "/profile", routes)
	assert.Equal(t, Allow, d.Action)
}

func TestEvaluate_IsPureWithRespectToSnapshot(t *testing.T) {
	t.Parallel()
	routes := DefaultRoutes()
	snap := Snapshot{Principal: pendingUser()}

	first := Evaluate(snap, "/bookmarks", routes)
	second := Evaluate(snap, "/bookmarks", routes)
	assert.Equal(t, first, second)
	assert.Equal(t, models.StatusPending, snap.Principal.Status, "snapshot must not be mutated")
}
