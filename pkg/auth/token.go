package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes.
const (
	AccessTokenTTL  = 30 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Token kinds carried in the "type" claim.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned for tokens that are malformed, expired,
// wrongly signed, or of the wrong kind.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims is the JWT payload. Subject holds the username.
type Claims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenPair is issued at login and on refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Tokens signs and verifies session tokens with an HS256 secret.
type Tokens struct {
	secret []byte
}

// NewTokens creates a token signer.
func NewTokens(secret []byte) *Tokens {
	return &Tokens{secret: secret}
}

func (t *Tokens) sign(user *User, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    user.ID,
		Role:      user.Role,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Issue creates an access/refresh pair for a user.
func (t *Tokens) Issue(user *User) (*TokenPair, error) {
	access, err := t.sign(user, tokenTypeAccess, AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := t.sign(user, tokenTypeRefresh, RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(AccessTokenTTL.Seconds()),
	}, nil
}

func (t *Tokens) parse(token, kind string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Subject == "" || claims.TokenType != kind {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Verify validates an access token and returns its claims.
func (t *Tokens) Verify(token string) (*Claims, error) {
	return t.parse(token, tokenTypeAccess)
}

// Refresh exchanges a valid refresh token for a fresh pair. Role changes
// since the refresh token was issued are not picked up until login.
func (t *Tokens) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := t.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return t.Issue(&User{
		ID:       claims.UserID,
		Username: claims.Subject,
		Role:     claims.Role,
	})
}
