// Package auth issues and checks credentials: bcrypt password hashes and
// signed bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const (
	// BcryptCost is the fixed work factor for password hashes.
	BcryptCost = 10
	// TokenTTL is the default bearer token lifetime.
	TokenTTL = 24 * time.Hour

	bearerPrefix = "Bearer "
)

// ErrInvalidToken covers bad signatures, expired or revoked tokens, and
// anything that does not parse.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Revocations is the port for the logout list.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Service is the sole holder of the signing secret.
type Service struct {
	secret  []byte
	ttl     time.Duration
	revoked Revocations
	now     func() time.Time
	hashers *semaphore.Weighted
}

// Option tunes a Service.
type Option func(*Service)

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithRevocations enables logout. Without it every unexpired, correctly
// signed token is accepted.
func WithRevocations(r Revocations) Option {
	return func(s *Service) { s.revoked = r }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(secret string, opts ...Option) *Service {
	s := &Service{
		secret:  []byte(secret),
		ttl:     TokenTTL,
		now:     time.Now,
		hashers: semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0))),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HashPassword returns a salted bcrypt hash. At most GOMAXPROCS hashes run at
// once so a burst of sign-ups cannot monopolise the CPUs.
func (s *Service) HashPassword(ctx context.Context, password string) (string, error) {
	if err := s.hashers.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer s.hashers.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword reports whether password matches hash. Any mismatch,
// malformed hash or cancelled context yields false.
func (s *Service) ComparePassword(ctx context.Context, password, hash string) bool {
	if err := s.hashers.Acquire(ctx, 1); err != nil {
		return false
	}
	defer s.hashers.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken signs a token for userID that expires after the configured TTL.
func (s *Service) GenerateToken(userID string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature, expiry and revocation and returns the payload.
func (s *Service) VerifyToken(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}

// RevokeToken blocks an already verified token until it would have expired.
func (s *Service) RevokeToken(ctx context.Context, claims *Claims) error {
	if s.revoked == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(s.now()))
}

// ExtractToken returns whatever follows "Bearer " in the Authorization header.
// It returns "" and false when the header is missing or uses another scheme;
// the remainder itself is not checked here.
func ExtractToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, bearerPrefix) {
		return "", false
	}
	return strings.TrimPrefix(h, bearerPrefix), true
}
