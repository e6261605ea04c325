package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakubzimnol/internet-shop/internal/domains/users/adapters/memory"
	"github.com/jakubzimnol/internet-shop/internal/domains/users/adapters/token"
	"github.com/jakubzimnol/internet-shop/internal/domains/users/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/users/ports"
)

type failingSessionStore struct {
	*memory.SessionStore
	err error
}

func (f failingSessionStore) Save(context.Context, ports.Session) error { return f.err }

func newTestService(t *testing.T) (*Service, *memory.SessionStore) {
	t.Helper()
	issuer, err := token.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	sessions := memory.NewSessionStore()
	return NewService(memory.NewRepository(), sessions, issuer), sessions
}

func register(t *testing.T, svc *Service, username string, role domain.Role) *ports.LoginResult {
	t.Helper()
	result, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret",
		Role:     role,
	})
	require.NoError(t, err)
	return result
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered := register(t, svc, "alice", domain.RoleBuyer)
	require.NotEmpty(t, registered.Token)
	assert.Equal(t, domain.RoleBuyer, registered.User.Role)
	assert.NotEqual(t, "secret", registered.User.PasswordHash)

	login, err := svc.Login(ctx, "ALICE", "secret")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, login.User.ID)
	assert.NotEqual(t, registered.Token, login.Token)
}

func TestRegisterDefaultsToBuyer(t *testing.T) {
	svc, _ := newTestService(t)
	result := register(t, svc, "bob", "")
	assert.Equal(t, domain.RoleBuyer, result.User.Role)
}

func TestRegisterRejectsAdminAndDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, ports.RegisterInput{Username: "root", Password: "secret", Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, ErrInvalidInput)

	register(t, svc, "carol", domain.RoleSeller)
	_, err = svc.Register(ctx, ports.RegisterInput{Username: "Carol", Password: "secret"})
	assert.ErrorIs(t, err, ports.ErrDuplicateUsername)

	_, err = svc.Register(ctx, ports.RegisterInput{Username: "dave", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc, "alice", domain.RoleBuyer)

	_, err := svc.Login(ctx, "missing", "secret")
	assert.ErrorIs(t, err, ErrAuthentication)
	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrAuthentication)
	_, err = svc.Login(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestAuthenticateAndLogout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	result := register(t, svc, "alice", domain.RoleSeller)

	user, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, domain.RoleSeller, user.Role)

	require.NoError(t, svc.Logout(ctx, result.Token))
	_, err = svc.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestLogoutOnlyRevokesOneSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	first := register(t, svc, "alice", domain.RoleBuyer)
	second, err := svc.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, first.Token))
	_, err = svc.Authenticate(ctx, second.Token)
	assert.NoError(t, err)
}

func TestRefreshIssuesAccessToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	result := register(t, svc, "alice", domain.RoleSeller)
	require.NotEmpty(t, result.RefreshToken)
	assert.True(t, result.RefreshExpiresAt.After(result.ExpiresAt))

	_, err := svc.Authenticate(ctx, result.RefreshToken)
	assert.ErrorIs(t, err, ErrAuthentication)
	_, err = svc.Refresh(ctx, result.Token)
	assert.ErrorIs(t, err, ErrAuthentication)

	refreshed, err := svc.Refresh(ctx, result.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, refreshed.RefreshToken)
	assert.NotEqual(t, result.Token, refreshed.Token)
	user, err := svc.Authenticate(ctx, refreshed.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, user.ID)
}

func TestLogoutRefreshRevokesOnlyRefreshToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	result := register(t, svc, "alice", domain.RoleBuyer)

	assert.ErrorIs(t, svc.LogoutRefresh(ctx, result.Token), ErrAuthentication)
	require.NoError(t, svc.LogoutRefresh(ctx, result.RefreshToken))

	_, err := svc.Refresh(ctx, result.RefreshToken)
	assert.ErrorIs(t, err, ErrAuthentication)
	_, err = svc.Authenticate(ctx, result.Token)
	assert.NoError(t, err)
	assert.ErrorIs(t, svc.Logout(ctx, result.RefreshToken), ErrAuthentication)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Authenticate(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.ErrorIs(t, err, ports.ErrInvalidToken)
}

func TestAuthenticateRejectsExpiredSession(t *testing.T) {
	issuer, err := token.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	sessions := memory.NewSessionStore()
	clock := time.Now()
	svc := NewService(memory.NewRepository(), sessions, issuer, WithClock(func() time.Time { return clock }))
	result := register(t, svc, "alice", domain.RoleBuyer)

	require.NoError(t, sessions.Save(context.Background(), ports.Session{
		ID:        mustSessionID(t, issuer, result.Token),
		UserID:    result.User.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))
	_, err = svc.Authenticate(context.Background(), result.Token)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestLoginFailsWhenSessionCannotBeSaved(t *testing.T) {
	issuer, err := token.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	repo := memory.NewRepository()
	user, err := domain.NewUser("alice", "", "secret", domain.RoleBuyer)
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), user)
	require.NoError(t, err)

	boom := assert.AnError
	svc := NewService(repo, failingSessionStore{SessionStore: memory.NewSessionStore(), err: boom}, issuer)
	_, err = svc.Login(context.Background(), "alice", "secret")
	assert.ErrorIs(t, err, boom)
}

func TestListUsers(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "alice", domain.RoleBuyer)
	register(t, svc, "bob", domain.RoleSeller)

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}

func mustSessionID(t *testing.T, issuer *token.Issuer, raw string) string {
	t.Helper()
	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	return claims.SessionID
}
