package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tenderdesk/api/internal/config"
	"tenderdesk/api/internal/ids"
	"tenderdesk/api/internal/models"
	"tenderdesk/api/internal/repository"
	"tenderdesk/api/internal/security"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the login response cannot be used to probe which emails exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	// ErrInvalidOrExpiredToken covers consumed, unknown and expired
	// verification/reset/refresh tokens without saying which.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrPasswordMismatch      = errors.New("passwords do not match")
	ErrSamePassword          = errors.New("new password is same as current password")
	ErrWrongPassword         = errors.New("current password is incorrect")
)

// FieldError is a validation failure tied to a single request field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9]{3,50}$`)

// UserStore is the slice of the credential store the auth flows need.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByVerificationTokenHash(ctx context.Context, hash []byte) (models.User, error)
	FindByResetTokenHash(ctx context.Context, hash []byte) (models.User, error)
	FindByRefreshTokenHash(ctx context.Context, hash []byte) (models.User, error)
	MarkVerified(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id string, hash []byte, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
	SetRefreshToken(ctx context.Context, id string, hash []byte, expiresAt time.Time) error
	ClearRefreshToken(ctx context.Context, id string) error
}

// Mailer dispatches the emails that carry single-use tokens out of the
// system.
type Mailer interface {
	SendVerificationEmail(to string, token string) error
	SendPasswordResetEmail(to string, token string) error
}

type AuthService struct {
	users  UserStore
	mailer Mailer
	cfg    config.SecurityConfig
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(users UserStore, mailer Mailer, cfg config.SecurityConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		mailer: mailer,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates an unverified account and emails its verification link.
// The token itself never appears in the response.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if !usernameRe.MatchString(username) {
		return models.User{}, &FieldError{Field: "username", Message: "Username must be 3-50 alphanumeric characters."}
	}
	if len(input.Password) < s.cfg.MinPasswordLen {
		return models.User{}, &FieldError{Field: "password", Message: fmt.Sprintf("Password must be at least %d characters long.", s.cfg.MinPasswordLen)}
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return models.User{}, &FieldError{Field: "username", Message: "Username already exists."}
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, &FieldError{Field: "email", Message: "Email already exists."}
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	token, tokenHash, err := security.GenerateOpaqueToken(32)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:                    ids.New(),
		Username:              username,
		Email:                 email,
		PasswordHash:          passwordHash,
		Role:                  models.UserRoleUser,
		IsVerified:            false,
		VerificationTokenHash: tokenHash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, err
	}

	// Registration stands even when the mail bounces; the user can ask for
	// the link again through support.
	if err := s.mailer.SendVerificationEmail(email, token); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("verification email failed")
	}

	return user, nil
}

// VerifyEmail consumes a verification token. Verification tokens do not
// expire but are single-use: the lookup fails once the hash is nulled.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (models.User, error) {
	user, err := s.users.FindByVerificationTokenHash(ctx, security.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrInvalidOrExpiredToken
		}
		return models.User{}, err
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrInvalidOrExpiredToken
		}
		return models.User{}, err
	}

	user.IsVerified = true
	user.VerificationTokenHash = nil
	return user, nil
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	if !user.IsVerified {
		return AuthResult{}, ErrEmailNotVerified
	}

	return s.issueTokens(ctx, user)
}

// Refresh exchanges a live refresh token for a new access token. The
// refresh token rotates: the presented value is dead after this call.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	user, err := s.users.FindByRefreshTokenHash(ctx, security.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidOrExpiredToken
		}
		return AuthResult{}, err
	}

	if user.RefreshTokenExpiresAt == nil || user.RefreshTokenExpiresAt.Before(s.now()) {
		_ = s.users.ClearRefreshToken(ctx, user.ID)
		return AuthResult{}, ErrInvalidOrExpiredToken
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the account's refresh token. It is idempotent from the
// client's perspective: an unusable access token clears nothing and still
// counts as a successful logout.
func (s *AuthService) Logout(ctx context.Context, accessToken string) (string, error) {
	claims, err := security.ParseAccessToken(accessToken, s.cfg.JWTSecret)
	if err != nil {
		s.log.Debug().Err(err).Msg("logout with unusable access token")
		return "", nil
	}

	if err := s.users.ClearRefreshToken(ctx, claims.UserID); err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// ForgotPassword starts the reset flow. The caller gets the same nil answer
// whether or not the email names an account.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}

	token, tokenHash, err := security.GenerateOpaqueToken(32)
	if err != nil {
		return err
	}

	if err := s.users.SetResetToken(ctx, user.ID, tokenHash, s.now().Add(s.cfg.ResetTokenTTL)); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordResetEmail(email, token); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("password reset email failed")
	}

	return nil
}

// ResetPassword consumes a reset token and stores the new password. Unknown
// and expired tokens fail identically. The stored refresh token is cleared
// along with the password, so live sessions cannot outlast a reset.
func (s *AuthService) ResetPassword(ctx context.Context, token string, newPassword string) (models.User, error) {
	if len(newPassword) < s.cfg.MinPasswordLen {
		return models.User{}, &FieldError{Field: "password", Message: fmt.Sprintf("Password must be at least %d characters long.", s.cfg.MinPasswordLen)}
	}

	user, err := s.users.FindByResetTokenHash(ctx, security.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrInvalidOrExpiredToken
		}
		return models.User{}, err
	}

	if user.ResetTokenExpiresAt == nil || user.ResetTokenExpiresAt.Before(s.now()) {
		return models.User{}, ErrInvalidOrExpiredToken
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return models.User{}, err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, currentPassword, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if len(newPassword) < s.cfg.MinPasswordLen {
		return &FieldError{Field: "newPassword", Message: fmt.Sprintf("Password must be at least %d characters long.", s.cfg.MinPasswordLen)}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := security.VerifyPassword(currentPassword, user.PasswordHash)
	if err != nil || !ok {
		return ErrWrongPassword
	}

	same, err := security.VerifyPassword(newPassword, user.PasswordHash)
	if err == nil && same {
		return ErrSamePassword
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	// UpdatePassword also clears the refresh token, forcing other sessions
	// to re-authenticate with the new password.
	return s.users.UpdatePassword(ctx, userID, passwordHash)
}

func (s *AuthService) issueTokens(ctx context.Context, user models.User) (AuthResult, error) {
	accessToken, err := security.GenerateAccessToken(
		s.cfg.JWTSecret,
		user.ID,
		user.Username,
		string(user.Role),
		s.cfg.AccessTokenTTL,
	)
	if err != nil {
		return AuthResult{}, err
	}

	refreshToken, refreshHash, err := security.GenerateOpaqueToken(32)
	if err != nil {
		return AuthResult{}, err
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, refreshHash, s.now().Add(s.cfg.RefreshTokenTTL)); err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}
