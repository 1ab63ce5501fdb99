package services

import (
	"testing"
	"time"

	"github.com/crewple/user_service/internal/domain"
	"github.com/crewple/user_service/internal/dto"
	"github.com/crewple/user_service/internal/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture() (*memStore, UserService, OAuthService) {
	store := newMemStore()
	auth := helper.SetupAuth("test-secret")
	producer := &recordingProducer{}

	userSvc := NewUserService(
		&memUserRepo{s: store},
		&memSessionRepo{s: store},
		auth,
		nil,
		producer,
	)
	oauthSvc := NewOAuthService(
		&memUserRepo{s: store},
		&memIdentityRepo{s: store},
		&memSessionRepo{s: store},
		&memTxManager{s: store},
		auth,
		fakeCrypter{},
		producer,
	)
	return store, userSvc, oauthSvc
}

func registerUser(t *testing.T, svc UserService, email, password string) *domain.User {
	t.Helper()
	user, err := svc.Register(dto.RegisterRequest{
		Email:       email,
		Password:    password,
		DisplayName: "Test User",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	_, svc, _ := newUserFixture()

	user := registerUser(t, svc, "a@x.com", "hunter2hunter2")
	assert.Equal(t, domain.RoleInfluencer, user.Role)
	assert.Equal(t, domain.StatusActive, user.Status)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)

	loggedIn, err := svc.Login(dto.UserLogin{Email: "a@x.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	// emails are normalized on the way in
	loggedIn, err = svc.Login(dto.UserLogin{Email: "  A@X.COM ", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, svc, _ := newUserFixture()
	registerUser(t, svc, "a@x.com", "hunter2hunter2")

	_, err := svc.Register(dto.RegisterRequest{
		Email:       "a@x.com",
		Password:    "otherpassword",
		DisplayName: "Someone Else",
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestLoginFailures(t *testing.T) {
	store, svc, _ := newUserFixture()
	user := registerUser(t, svc, "a@x.com", "hunter2hunter2")

	_, err := svc.Login(dto.UserLogin{Email: "a@x.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(dto.UserLogin{Email: "nobody@x.com", Password: "hunter2hunter2"})
	require.ErrorIs(t, err, ErrUnauthorized)

	store.users[user.ID].Status = domain.StatusSuspended
	_, err = svc.Login(dto.UserLogin{Email: "a@x.com", Password: "hunter2hunter2"})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginSocialOnlyAccountRejected(t *testing.T) {
	store, svc, _ := newUserFixture()

	email := "social@x.com"
	(&memUserRepo{s: store}).CreateUser(&domain.User{
		Email:       &email,
		DisplayName: "Social Only",
		Role:        domain.RoleInfluencer,
		Status:      domain.StatusActive,
	})

	_, err := svc.Login(dto.UserLogin{Email: email, Password: "anything"})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshExchange(t *testing.T) {
	store, svc, oauthSvc := newUserFixture()
	user := registerUser(t, svc, "a@x.com", "hunter2hunter2")

	pair, err := oauthSvc.CompleteLogin(user, dto.DeviceContext{})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.ID)

	// rotation: the presented jti is gone, a second exchange fails
	_, ok := store.sessions[pair.JTI]
	assert.False(t, ok)
	_, err = svc.Refresh(pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshRevokedSessionRejected(t *testing.T) {
	_, svc, oauthSvc := newUserFixture()
	user := registerUser(t, svc, "a@x.com", "hunter2hunter2")

	pair, err := oauthSvc.CompleteLogin(user, dto.DeviceContext{})
	require.NoError(t, err)

	// server-side revocation beats a structurally valid token
	require.NoError(t, svc.Logout(pair.RefreshToken))
	_, err = svc.Refresh(pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshExpiredSessionRejected(t *testing.T) {
	store, svc, oauthSvc := newUserFixture()
	user := registerUser(t, svc, "a@x.com", "hunter2hunter2")

	pair, err := oauthSvc.CompleteLogin(user, dto.DeviceContext{})
	require.NoError(t, err)

	// a stale session row must never authorize a refresh
	store.sessions[pair.JTI].ExpiresAt = time.Now().Add(-time.Minute)
	_, err = svc.Refresh(pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshGarbageTokenRejected(t *testing.T) {
	_, svc, _ := newUserFixture()

	_, err := svc.Refresh("not-a-jwt")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogoutIsIdempotent(t *testing.T) {
	_, svc, oauthSvc := newUserFixture()
	user := registerUser(t, svc, "a@x.com", "hunter2hunter2")

	pair, err := oauthSvc.CompleteLogin(user, dto.DeviceContext{})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(pair.RefreshToken))
	require.NoError(t, svc.Logout(pair.RefreshToken))
	require.NoError(t, svc.Logout("garbage"))
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	store, svc, oauthSvc := newUserFixture()
	user := registerUser(t, svc, "a@x.com", "hunter2hunter2")

	for i := 0; i < 3; i++ {
		_, err := oauthSvc.CompleteLogin(user, dto.DeviceContext{})
		require.NoError(t, err)
	}
	require.Len(t, store.sessions, 3)

	require.NoError(t, svc.LogoutAll(user.ID))
	assert.Len(t, store.sessions, 0)
}

func TestSetStatusSuspendRevokesSessions(t *testing.T) {
	store, svc, oauthSvc := newUserFixture()
	user := registerUser(t, svc, "a@x.com", "hunter2hunter2")

	_, err := oauthSvc.CompleteLogin(user, dto.DeviceContext{})
	require.NoError(t, err)
	require.Len(t, store.sessions, 1)

	require.NoError(t, svc.SetStatus(user.ID, domain.StatusSuspended))
	assert.Len(t, store.sessions, 0)
	assert.Equal(t, domain.StatusSuspended, store.users[user.ID].Status)

	err = svc.SetStatus(user.ID, "banned")
	require.ErrorIs(t, err, ErrValidation)
}

func TestSetRole(t *testing.T) {
	store, svc, _ := newUserFixture()
	user := registerUser(t, svc, "a@x.com", "hunter2hunter2")

	require.NoError(t, svc.SetRole(user.ID, domain.RoleAdvertiser))
	assert.Equal(t, domain.RoleAdvertiser, store.users[user.ID].Role)

	err := svc.SetRole(user.ID, "SUPERUSER")
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateProfile(t *testing.T) {
	_, svc, _ := newUserFixture()
	user := registerUser(t, svc, "a@x.com", "hunter2hunter2")

	name := "Renamed"
	updated, err := svc.UpdateProfile(user.ID, dto.UpdateUserProfile{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.DisplayName)

	_, err = svc.GetProfile(9999)
	require.ErrorIs(t, err, ErrNotFound)
}
