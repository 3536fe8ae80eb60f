package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderdesk/api/internal/config"
	"tenderdesk/api/internal/models"
	"tenderdesk/api/internal/repository"
	"tenderdesk/api/internal/security"
)

// stubUserStore keeps accounts in memory and mirrors the repository's
// side effects: marking verified consumes the verification hash, and a
// password update clears reset and refresh tokens.
type stubUserStore struct {
	users map[string]*models.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[string]*models.User)}
}

func (s *stubUserStore) Create(_ context.Context, user models.User) error {
	u := user
	s.users[user.ID] = &u
	return nil
}

func (s *stubUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	if u, ok := s.users[id]; ok {
		return *u, nil
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *stubUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *stubUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return *u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *stubUserStore) FindByVerificationTokenHash(_ context.Context, hash []byte) (models.User, error) {
	for _, u := range s.users {
		if u.VerificationTokenHash != nil && bytes.Equal(u.VerificationTokenHash, hash) {
			return *u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *stubUserStore) FindByResetTokenHash(_ context.Context, hash []byte) (models.User, error) {
	for _, u := range s.users {
		if u.ResetTokenHash != nil && bytes.Equal(u.ResetTokenHash, hash) {
			return *u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *stubUserStore) FindByRefreshTokenHash(_ context.Context, hash []byte) (models.User, error) {
	for _, u := range s.users {
		if u.RefreshTokenHash != nil && bytes.Equal(u.RefreshTokenHash, hash) {
			return *u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *stubUserStore) MarkVerified(_ context.Context, id string) error {
	u, ok := s.users[id]
	if !ok || u.VerificationTokenHash == nil {
		return repository.ErrUserNotFound
	}
	u.IsVerified = true
	u.VerificationTokenHash = nil
	return nil
}

func (s *stubUserStore) SetResetToken(_ context.Context, id string, hash []byte, expiresAt time.Time) error {
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.ResetTokenHash = hash
	u.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (s *stubUserStore) UpdatePassword(_ context.Context, id string, passwordHash []byte) error {
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetTokenHash = nil
	u.ResetTokenExpiresAt = nil
	u.RefreshTokenHash = nil
	u.RefreshTokenExpiresAt = nil
	return nil
}

func (s *stubUserStore) SetRefreshToken(_ context.Context, id string, hash []byte, expiresAt time.Time) error {
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.RefreshTokenHash = hash
	u.RefreshTokenExpiresAt = &expiresAt
	return nil
}

func (s *stubUserStore) ClearRefreshToken(_ context.Context, id string) error {
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.RefreshTokenHash = nil
	u.RefreshTokenExpiresAt = nil
	return nil
}

type fakeMailer struct {
	verificationTokens map[string]string
	resetTokens        map[string]string
	failNext           bool
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{
		verificationTokens: make(map[string]string),
		resetTokens:        make(map[string]string),
	}
}

func (m *fakeMailer) SendVerificationEmail(to string, token string) error {
	if m.failNext {
		m.failNext = false
		return errors.New("smtp unavailable")
	}
	m.verificationTokens[to] = token
	return nil
}

func (m *fakeMailer) SendPasswordResetEmail(to string, token string) error {
	if m.failNext {
		m.failNext = false
		return errors.New("smtp unavailable")
	}
	m.resetTokens[to] = token
	return nil
}

func testSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		JWTSecret:       "unit-test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 168 * time.Hour,
		ResetTokenTTL:   time.Hour,
		MinPasswordLen:  6,
	}
}

func newTestAuthService() (*AuthService, *stubUserStore, *fakeMailer) {
	store := newStubUserStore()
	mailer := newFakeMailer()
	svc := NewAuthService(store, mailer, testSecurityConfig(), zerolog.Nop())
	return svc, store, mailer
}

func registerAndVerify(t *testing.T, svc *AuthService, mailer *fakeMailer, username, email, password string) models.User {
	t.Helper()

	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Username: username, Email: email, Password: password})
	require.NoError(t, err)

	token, ok := mailer.verificationTokens[email]
	require.True(t, ok, "verification email not sent")

	user, err := svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	return user
}

func TestRegisterCreatesUnverifiedAccount(t *testing.T) {
	svc, store, mailer := newTestAuthService()
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "Alice@Example.COM", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", created.Email)

	user, err := store.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err, "email should be stored lowercased")

	assert.False(t, user.IsVerified)
	assert.NotNil(t, user.VerificationTokenHash)
	assert.NotEqual(t, "secret123", string(user.PasswordHash))

	token := mailer.verificationTokens["alice@example.com"]
	require.NotEmpty(t, token)
	assert.Equal(t, security.HashToken(token), user.VerificationTokenHash)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	var fieldErr *FieldError

	_, err := svc.Register(ctx, RegisterInput{Username: "ab", Email: "a@b.com", Password: "secret123"})
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "username", fieldErr.Field)

	_, err = svc.Register(ctx, RegisterInput{Username: "has space", Email: "a@b.com", Password: "secret123"})
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "username", fieldErr.Field)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Email: "a@b.com", Password: "short"})
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "password", fieldErr.Field)
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	var fieldErr *FieldError

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret123"})
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "username", fieldErr.Field)

	_, err = svc.Register(ctx, RegisterInput{Username: "bob", Email: "alice@example.com", Password: "secret123"})
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "email", fieldErr.Field)
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	svc, store, mailer := newTestAuthService()
	ctx := context.Background()

	mailer.failNext = true
	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = store.FindByEmail(ctx, "alice@example.com")
	assert.NoError(t, err)
}

func TestVerifyEmailIsSingleUse(t *testing.T) {
	svc, _, mailer := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	token := mailer.verificationTokens["alice@example.com"]

	user, err := svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, user.IsVerified)

	_, err = svc.VerifyEmail(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.VerifyEmail(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "secret123")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	// A wrong password on an unverified account must not reveal that the
	// password was the problem.
	_, err = svc.Login(ctx, "alice@example.com", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginAntiEnumeration(t *testing.T) {
	svc, _, mailer := newTestAuthService()
	ctx := context.Background()
	registerAndVerify(t, svc, mailer, "alice", "alice@example.com", "secret123")

	_, unknownErr := svc.Login(ctx, "nobody@example.com", "secret123")
	_, wrongErr := svc.Login(ctx, "alice@example.com", "wrongpass")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, store, mailer := newTestAuthService()
	ctx := context.Background()
	user := registerAndVerify(t, svc, mailer, "alice", "alice@example.com", "secret123")

	result, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)
	require.NotEmpty(t, result.RefreshToken)

	claims, err := security.ParseAccessToken(result.AccessToken, "unit-test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user", claims.Role)

	stored, err := store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, security.HashToken(result.RefreshToken), stored.RefreshTokenHash)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, mailer := newTestAuthService()
	ctx := context.Background()
	registerAndVerify(t, svc, mailer, "alice", "alice@example.com", "secret123")

	first, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The presented token died with the rotation.
	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	_, err = svc.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshExpiredToken(t *testing.T) {
	svc, store, mailer := newTestAuthService()
	ctx := context.Background()
	user := registerAndVerify(t, svc, mailer, "alice", "alice@example.com", "secret123")

	result, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(200 * time.Hour) }

	_, err = svc.Refresh(ctx, result.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	stored, err := store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshTokenHash, "expired token should be cleared on use")
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, store, mailer := newTestAuthService()
	ctx := context.Background()
	user := registerAndVerify(t, svc, mailer, "alice", "alice@example.com", "secret123")

	result, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	userID, err := svc.Logout(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	stored, err := store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshTokenHash)

	_, err = svc.Refresh(ctx, result.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestLogoutWithGarbageTokenSucceeds(t *testing.T) {
	svc, _, _ := newTestAuthService()

	userID, err := svc.Logout(context.Background(), "not-a-jwt")
	assert.NoError(t, err)
	assert.Empty(t, userID)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	svc, _, mailer := newTestAuthService()

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Empty(t, mailer.resetTokens)
}

func TestResetPasswordFlow(t *testing.T) {
	svc, store, mailer := newTestAuthService()
	ctx := context.Background()
	user := registerAndVerify(t, svc, mailer, "alice", "alice@example.com", "secret123")

	login, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	token := mailer.resetTokens["alice@example.com"]
	require.NotEmpty(t, token)

	_, err = svc.ResetPassword(ctx, token, "newsecret456")
	require.NoError(t, err)

	// Token is single-use.
	_, err = svc.ResetPassword(ctx, token, "another789")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	// Old password is dead, old refresh token too.
	_, err = svc.Login(ctx, "alice@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)

	result, err := svc.Login(ctx, "alice@example.com", "newsecret456")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)

	stored, err := store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ResetTokenHash)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, _, mailer := newTestAuthService()
	ctx := context.Background()
	registerAndVerify(t, svc, mailer, "alice", "alice@example.com", "secret123")

	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	token := mailer.resetTokens["alice@example.com"]

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err := svc.ResetPassword(ctx, token, "newsecret456")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestResetPasswordTooShort(t *testing.T) {
	svc, _, _ := newTestAuthService()

	var fieldErr *FieldError
	_, err := svc.ResetPassword(context.Background(), "whatever", "short")
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "password", fieldErr.Field)
}

func TestChangePassword(t *testing.T) {
	svc, _, mailer := newTestAuthService()
	ctx := context.Background()
	user := registerAndVerify(t, svc, mailer, "alice", "alice@example.com", "secret123")

	err := svc.ChangePassword(ctx, user.ID, "secret123", "newsecret456", "different")
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	err = svc.ChangePassword(ctx, user.ID, "wrongpass", "newsecret456", "newsecret456")
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(ctx, user.ID, "secret123", "secret123", "secret123")
	assert.ErrorIs(t, err, ErrSamePassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "secret123", "newsecret456", "newsecret456"))

	_, err = svc.Login(ctx, "alice@example.com", "newsecret456")
	assert.NoError(t, err)
}

func TestChangePasswordRevokesRefreshToken(t *testing.T) {
	svc, _, mailer := newTestAuthService()
	ctx := context.Background()
	user := registerAndVerify(t, svc, mailer, "alice", "alice@example.com", "secret123")

	login, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "secret123", "newsecret456", "newsecret456"))

	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}
