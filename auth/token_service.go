package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService mints and validates access tokens and mints opaque
// refresh tokens. Refresh token state lives in the store, owned by the
// authenticator.
type TokenService interface {
	GenerateAccessToken(identity Identity) (string, time.Time, error)
	GenerateRefreshToken() (string, error)
	Validate(tokenString string) (AuthClaims, error)
	RefreshTokenExpiry() time.Time
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg Config, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey: []byte(cfg.GetSigningKey()),
		accessTTL:  time.Duration(cfg.GetAccessTokenTTL()) * time.Hour,
		refreshTTL: time.Duration(cfg.GetRefreshTokenTTLDays()) * 24 * time.Hour,
		issuer:     cfg.GetIssuer(),
		audience:   cfg.GetAudience(),
		logger:     logger,
	}
}

// GenerateAccessToken creates a signed, time limited token carrying the
// identity's claims. It returns the token and its expiry.
func (ts *TokenServiceImpl) GenerateAccessToken(identity Identity) (string, time.Time, error) {
	if identity == nil {
		return "", time.Time{}, errors.New("identity is required", errors.CategoryBadInput)
	}

	now := time.Now()
	expiresAt := now.Add(ts.accessTTL)

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UID:           identity.ID(),
		UserEmail:     identity.Email(),
		FullName:      identity.Name(),
		UserRole:      identity.Role(),
		EmailVerified: identity.IsEmailVerified(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, expiresAt, nil
}

// GenerateRefreshToken returns a new opaque refresh token: 64 random
// bytes, base64 encoded. Persisting the store record is the caller's job.
func (ts *TokenServiceImpl) GenerateRefreshToken() (string, error) {
	raw := make([]byte, 64)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate refresh token")
	}

	return base64.StdEncoding.EncodeToString(raw), nil
}

// RefreshTokenExpiry returns the expiry timestamp for a refresh token
// issued now.
func (ts *TokenServiceImpl) RefreshTokenExpiry() time.Time {
	return time.Now().Add(ts.refreshTTL)
}

// Validate parses and validates a token string, returning structured
// claims. Signature, issuer, audience and expiry are all enforced with
// zero clock skew.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode claims")
	return nil, ErrTokenMalformed
}
