package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub014/internal/domain"
)

var tracer = otel.Tracer("auth")

const tokenTTL = 24 * time.Hour

// AuthService issues and verifies session tokens. Verified tokens are
// cached until shortly before expiry to keep hot requests off the parser.
type AuthService struct {
	secret []byte
	cache  *gocache.Cache
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{
		secret: []byte(secret),
		cache:  gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// AuthResult identifies the authenticated requester.
type AuthResult struct {
	UserID string
	Role   string
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue returns a signed session token for the user.
func (s *AuthService) Issue(ctx context.Context, user *domain.User) (string, error) {
	_, span := tracer.Start(ctx, "Auth.Service.Issue")
	defer span.End()

	now := time.Now()
	claims := sessionClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    "atcloud",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "sign session token")
	}
	return token, nil
}

// Verify parses and validates a session token.
func (s *AuthService) Verify(ctx context.Context, token string) (*AuthResult, error) {
	_, span := tracer.Start(ctx, "Auth.Service.Verify")
	defer span.End()

	if cached, ok := s.cache.Get(token); ok {
		return cached.(*AuthResult), nil
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "parse session token")
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	result := &AuthResult{UserID: claims.Subject, Role: claims.Role}

	if claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time) - time.Minute
		if ttl > 0 {
			s.cache.Set(token, result, ttl)
		}
	}
	return result, nil
}
