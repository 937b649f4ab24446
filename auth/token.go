package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/profile-service/config"
)

// Token verification failures. Both deny access; they differ only in the
// message shown to the client.
var (
	ErrExpiredToken = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the payload of a session token.
// Subject carries the user id. ProfilePic is the value at issuance time and
// is informational only: handlers re-read the current value from the store.
type Claims struct {
	Username   string  `json:"username"`
	ProfilePic *string `json:"profile_pic"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// TokenVerifier is what the middleware needs from the token service.
type TokenVerifier interface {
	Verify(tokenString string) (*Claims, error)
}

// TokenService issues and verifies HMAC-signed, time-bound session tokens.
// It is stateless: there is no revocation list.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	expiry time.Duration
	now    func() time.Time
}

// NewTokenService builds a TokenService from the auth configuration.
// Only HMAC algorithms are accepted.
func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	method := jwt.GetSigningMethod(cfg.JWTAlgorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.JWTAlgorithm)
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("empty signing secret")
	}
	if cfg.TokenDuration <= 0 {
		return nil, errors.New("token duration must be positive")
	}
	return &TokenService{
		secret: []byte(cfg.JWTSecret),
		method: method,
		expiry: cfg.TokenDuration,
		now:    time.Now,
	}, nil
}

// Issue signs a token for the given user. The returned time is the expiry.
func (s *TokenService) Issue(userID int64, username string, profilePic *string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.expiry)

	claims := &Claims{
		Username:   username,
		ProfilePic: profilePic,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	tokenString, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// Verify checks signature, algorithm, exp and iat, and the identity claims.
// It returns an error wrapping ErrExpiredToken or ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing iat claim", ErrInvalidToken)
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("%w: missing username claim", ErrInvalidToken)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: bad sub claim", ErrInvalidToken)
	}
	return claims, nil
}
