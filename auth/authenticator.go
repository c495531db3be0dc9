package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserDTO is the user shape returned to clients.
type UserDTO struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
}

// NewUserDTO maps a user record to its client shape.
func NewUserDTO(user *User) UserDTO {
	return UserDTO{
		ID:              user.ID,
		FullName:        user.FullName,
		Email:           user.Email,
		Role:            user.Role,
		IsEmailVerified: user.EmailVerified,
	}
}

// AuthResponse is returned by sign up, login and refresh.
type AuthResponse struct {
	AccessToken        string    `json:"accessToken"`
	RefreshToken       string    `json:"refreshToken"`
	AccessTokenExpiry  time.Time `json:"accessTokenExpiry"`
	RefreshTokenExpiry time.Time `json:"refreshTokenExpiry"`
	User               UserDTO   `json:"user"`
}

// SignUpMessage carries a sign up request.
type SignUpMessage struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ResetPasswordMessage carries a password reset request.
type ResetPasswordMessage struct {
	Email           string `json:"email"`
	OTPCode         string `json:"otpCode"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Auther orchestrates the sign up, login, refresh, verification and
// reset flows over the repositories, token service and mailer.
type Auther struct {
	repo   RepositoryManager
	tokens TokenService
	mailer Mailer
	logger Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, tokens TokenService, mailer Mailer) *Auther {
	return &Auther{
		repo:   repo,
		tokens: tokens,
		mailer: mailer,
		logger: defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// SignUp registers a new unverified user, issues an OTP for email
// verification and returns a fresh token pair. Verification and welcome
// emails are best effort; their failure never fails the sign up.
func (s *Auther) SignUp(ctx context.Context, msg SignUpMessage) (*AuthResponse, error) {
	if msg.Password != msg.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	email := NormalizeEmail(msg.Email)

	hash, salt, err := HashPassword(msg.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		FullName:     msg.FullName,
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Role:         RoleUser,
	}

	var otpCode string
	var resp *AuthResponse

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.repo.Users().GetByEmailTx(ctx, tx, email); err == nil {
			return ErrEmailTaken
		} else if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing user")
		}

		if user, err = s.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		if otpCode, err = GenerateOTP(); err != nil {
			return err
		}

		if _, err = s.repo.EmailVerifications().IssueTx(ctx, tx, user.ID, otpCode); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create email verification")
		}

		resp, err = s.issueTokenPairTx(ctx, tx, user)
		return err
	})

	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, otpCode); err != nil {
		s.logger.Warn("SignUp verification email failed for %s: %v", user.Email, err)
	}
	if err := s.mailer.SendWelcomeEmail(ctx, user.Email, user.FullName); err != nil {
		s.logger.Warn("SignUp welcome email failed for %s: %v", user.Email, err)
	}

	return resp, nil
}

// Login verifies credentials and issues a new token pair. Every
// mismatch collapses to the same error so callers cannot probe for
// registered emails.
func (s *Auther) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	user, err := s.repo.Users().GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up user")
	}

	if !VerifyPassword(password, user.PasswordHash, user.PasswordSalt) {
		return nil, ErrInvalidCredentials
	}

	var resp *AuthResponse
	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		resp, err = s.issueTokenPairTx(ctx, tx, user)
		return err
	})

	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Refresh rotates a refresh token: the old token is revoked and a new
// pair is issued in one transaction. The consume guard makes sure only
// one of two concurrent rotations can win.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	var resp *AuthResponse

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := s.repo.RefreshTokens().ConsumeTx(ctx, tx, refreshToken)
		if err != nil {
			return err
		}

		if record.User == nil {
			return ErrInvalidRefreshToken
		}

		resp, err = s.issueTokenPairTx(ctx, tx, record.User)
		return err
	})

	if err != nil {
		return nil, err
	}

	return resp, nil
}

// ValidateRefreshToken reports whether a refresh token exists,
// unrevoked and unexpired.
func (s *Auther) ValidateRefreshToken(ctx context.Context, refreshToken string) bool {
	_, err := s.repo.RefreshTokens().FindActive(ctx, refreshToken)
	return err == nil
}

// RevokeToken marks a refresh token revoked. It returns false when the
// token is unknown or already revoked.
func (s *Auther) RevokeToken(ctx context.Context, refreshToken string) (bool, error) {
	return s.repo.RefreshTokens().Revoke(ctx, refreshToken)
}

// VerifyEmail consumes an OTP and flags the user verified. Any
// mismatch returns false with no detail.
func (s *Auther) VerifyEmail(ctx context.Context, email, otpCode string) (bool, error) {
	user, err := s.repo.Users().GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return false, nil
		}
		return false, err
	}

	ok := false
	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if ok, err = s.repo.EmailVerifications().ConsumeTx(ctx, tx, user.ID, otpCode); err != nil {
			return err
		}
		if !ok {
			return nil
		}
		return s.repo.Users().MarkEmailVerifiedTx(ctx, tx, user.ID)
	})

	if err != nil {
		return false, err
	}

	return ok, nil
}

// ResendVerification issues a fresh OTP and emails it. The send result
// is the operation result.
func (s *Auther) ResendVerification(ctx context.Context, email string) (bool, error) {
	return s.issueAndSend(ctx, email, s.mailer.SendVerificationEmail)
}

// ForgotPassword issues a fresh OTP and emails a reset message. The
// send result is the operation result.
func (s *Auther) ForgotPassword(ctx context.Context, email string) (bool, error) {
	return s.issueAndSend(ctx, email, s.mailer.SendPasswordResetEmail)
}

// ResetPassword consumes an OTP and rehashes the password. Any
// mismatch returns false with no detail.
func (s *Auther) ResetPassword(ctx context.Context, msg ResetPasswordMessage) (bool, error) {
	if msg.NewPassword != msg.ConfirmPassword {
		return false, nil
	}

	user, err := s.repo.Users().GetByEmail(ctx, NormalizeEmail(msg.Email))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return false, nil
		}
		return false, err
	}

	ok := false
	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if ok, err = s.repo.EmailVerifications().ConsumeTx(ctx, tx, user.ID, msg.OTPCode); err != nil {
			return err
		}
		if !ok {
			return nil
		}

		hash, salt, err := HashPassword(msg.NewPassword)
		if err != nil {
			ok = false
			return err
		}

		return s.repo.Users().UpdatePasswordTx(ctx, tx, user.ID, hash, salt)
	})

	if err != nil {
		return false, err
	}

	return ok, nil
}

// ResolveUserFromAccessToken verifies an access token and loads its
// user. Every failure mode collapses to ErrIdentityNotFound; callers
// only learn "unauthenticated".
func (s *Auther) ResolveUserFromAccessToken(ctx context.Context, raw string) (*User, error) {
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		return nil, ErrIdentityNotFound
	}

	return s.ResolveUserFromClaims(ctx, claims)
}

// ResolveUserFromClaims loads the user a set of already validated
// claims refers to.
func (s *Auther) ResolveUserFromClaims(ctx context.Context, claims AuthClaims) (*User, error) {
	if claims == nil {
		return nil, ErrIdentityNotFound
	}

	user, err := s.repo.Users().GetByID(ctx, claims.UserID())
	if err != nil {
		return nil, ErrIdentityNotFound
	}

	return user, nil
}

func (s *Auther) issueAndSend(ctx context.Context, email string, send func(ctx context.Context, to, otpCode string) error) (bool, error) {
	user, err := s.repo.Users().GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return false, nil
		}
		return false, err
	}

	otpCode, err := GenerateOTP()
	if err != nil {
		return false, err
	}

	if _, err := s.repo.EmailVerifications().Issue(ctx, user.ID, otpCode); err != nil {
		return false, err
	}

	if err := send(ctx, user.Email, otpCode); err != nil {
		s.logger.Warn("OTP email send failed for %s: %v", user.Email, err)
		return false, nil
	}

	return true, nil
}

// issueTokenPairTx mints an access token and persists a new refresh
// token for the user.
func (s *Auther) issueTokenPairTx(ctx context.Context, tx bun.IDB, user *User) (*AuthResponse, error) {
	accessToken, accessExpiry, err := s.tokens.GenerateAccessToken(NewIdentityFromUser(user))
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	refreshExpiry := s.tokens.RefreshTokenExpiry()

	record := &RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: refreshExpiry,
	}

	if _, err := s.repo.RefreshTokens().CreateTx(ctx, tx, record); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist refresh token")
	}

	return &AuthResponse{
		AccessToken:        accessToken,
		RefreshToken:       refreshToken,
		AccessTokenExpiry:  accessExpiry,
		RefreshTokenExpiry: refreshExpiry,
		User:               NewUserDTO(user),
	}, nil
}
