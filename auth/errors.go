package auth

import (
	"github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidCredentials covers every login mismatch
	TextCodeInvalidCredentials = "auth_invalid_credentials"
	// TextCodeEmailTaken signals a duplicate sign up
	TextCodeEmailTaken = "auth_email_taken"
	// TextCodePasswordMismatch signals password != confirm password
	TextCodePasswordMismatch = "auth_password_mismatch"
	// TextCodeInvalidRefreshToken covers absent, revoked and expired tokens
	TextCodeInvalidRefreshToken = "auth_invalid_refresh_token"
	// TextCodeTokenExpired marks an expired access token
	TextCodeTokenExpired = "auth_token_expired"
	// TextCodeTokenMalformed marks any other access token failure
	TextCodeTokenMalformed = "auth_token_malformed"
	// TextCodeNotPermitted is the uniform code for boolean flows; callers
	// must not be able to tell which predicate failed
	TextCodeNotPermitted = "auth_not_permitted"
)

// ErrInvalidCredentials is returned on any login mismatch. The message
// never reveals whether the account exists.
var ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeBadRequest)

// ErrEmailTaken is returned when the sign up email is already registered.
var ErrEmailTaken = errors.New("email already exists", errors.CategoryValidation).
	WithTextCode(TextCodeEmailTaken).
	WithCode(errors.CodeBadRequest)

// ErrPasswordMismatch is returned when password and confirmation differ.
var ErrPasswordMismatch = errors.New("passwords do not match", errors.CategoryValidation).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(errors.CodeBadRequest)

// ErrInvalidRefreshToken is returned when a refresh token is absent,
// revoked or expired; the three collapse deliberately.
var ErrInvalidRefreshToken = errors.New("invalid refresh token", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidRefreshToken).
	WithCode(errors.CodeBadRequest)

// ErrTokenExpired is returned for expired access tokens.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for any other access token validation
// failure: bad signature, wrong issuer or audience, garbage input.
var ErrTokenMalformed = errors.New("token is malformed or invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrNotPermitted is the uniform failure of the boolean flows
// (verify, resend, forgot, reset, revoke).
var ErrNotPermitted = errors.New("operation not permitted", errors.CategoryValidation).
	WithTextCode(TextCodeNotPermitted).
	WithCode(errors.CodeBadRequest)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// IsValidationError reports whether err maps to a client correctable 400.
func IsValidationError(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	switch richErr.Category {
	case errors.CategoryValidation, errors.CategoryBadInput, errors.CategoryConflict:
		return true
	default:
		return false
	}
}
