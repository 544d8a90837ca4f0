package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

type AccessTokenClaims struct {
	Username  string `json:"username"`
	Position  string `json:"position"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject.
func (c *AccessTokenClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject %q: %w", c.Subject, err)
	}
	return uint(id), nil
}

type TokenGenerator struct {
	accessSecretKey []byte
	issuer          string
	accessExpiry    time.Duration
	now             func() time.Time
}

type Config struct {
	AccessSecret string
	Issuer       string
	AccessExpiry time.Duration
}

type Subject struct {
	UserID    uint
	Username  string
	Position  string
	SessionID string
}

func NewTokenGenerator(cfg Config) (*TokenGenerator, error) {
	if cfg.AccessSecret == "" {
		return nil, errors.New("jwt secret cannot be empty")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("jwt issuer cannot be empty")
	}
	if cfg.AccessExpiry <= 0 {
		return nil, errors.New("token expiry must be positive")
	}

	return &TokenGenerator{
		accessSecretKey: []byte(cfg.AccessSecret),
		issuer:          cfg.Issuer,
		accessExpiry:    cfg.AccessExpiry,
		now:             func() time.Time { return time.Now().UTC() },
	}, nil
}

func (tg *TokenGenerator) GenerateAccessToken(sub Subject) (string, time.Time, error) {
	now := tg.now()
	expirationTime := now.Add(tg.accessExpiry)

	claims := &AccessTokenClaims{
		Username:  sub.Username,
		Position:  sub.Position,
		SessionID: sub.SessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(sub.UserID), 10),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tg.issuer,
			ID:        sub.SessionID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tg.accessSecretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}

	return tokenString, expirationTime, nil
}

// Parse checks signature, algorithm, issuer and expiry.
func (tg *TokenGenerator) Parse(tokenString string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return tg.accessSecretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tg.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tg.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
