package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer   = "staynest"
	tokenAudience = "staynest-api"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrEmptyUserID  = errors.New("user id is required to issue a token")
)

// Claims represents the JWT claims for StayNest authentication.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// TokenIssuer mints and verifies signed bearer tokens bound to a user id.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer. A non-positive expiry disables the exp claim.
func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// Issue creates a signed JWT token for the given user.
func (i *TokenIssuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", ErrEmptyUserID
	}

	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   tokenIssuer,
			Subject:  userID,
			Audience: jwt.ClaimStrings{tokenAudience},
			IssuedAt: jwt.NewNumericDate(now),
		},
		UserID: userID,
	}
	if i.expiry > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.expiry))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify parses and validates a token string, returning the claims if valid.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithAudience(tokenAudience), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
