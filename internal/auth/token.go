package auth

import (
	"context"
	"errors"
	"fmt"
	"storefront-service/internal/config"
	"storefront-service/internal/entity"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues HS256 tokens and keeps a redis blacklist of revoked ones.
type TokenManager struct {
	secret     []byte
	expiration time.Duration
	rdb        *redis.Client
}

func NewTokenManager(cfg config.JWTConfig, rdb *redis.Client) *TokenManager {
	return &TokenManager{
		secret:     []byte(cfg.Secret),
		expiration: cfg.Expiration,
		rdb:        rdb,
	}
}

func revokedKey(jti string) string {
	return fmt.Sprintf("token:revoked:%s", jti)
}

// Generate signs a token for the user.
func (m *TokenManager) Generate(user *entity.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies signature and expiry. It does not consult the blacklist.
func (m *TokenManager) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}

// Revoke blacklists the token until it would have expired anyway.
func (m *TokenManager) Revoke(ctx context.Context, tokenStr string) error {
	claims, err := m.Parse(tokenStr)
	if err != nil {
		return err
	}
	if claims.ExpiresAt == nil {
		return errors.New("token has no expiry")
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return m.rdb.Set(ctx, revokedKey(claims.ID), "1", ttl).Err()
}

func (m *TokenManager) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := m.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
