package auth

import (
	"context"
	"errors"
	"net/http"
	"os"
	"storefront-service/internal/entity"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const (
	jwtContextKey    = "jwt"
	userIDContextKey = "user_id"
	tokenContextKey  = "token"
)

type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
}

// Middleware returns the chain guarding authenticated routes: bearer token
// verification followed by the revocation and user existence checks.
func (m *TokenManager) Middleware(users UserLookup) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		echojwt.WithConfig(echojwt.Config{
			SigningKey: m.secret,
			ContextKey: jwtContextKey,
			NewClaimsFunc: func(c echo.Context) jwt.Claims {
				return new(Claims)
			},
			ErrorHandler: func(c echo.Context, err error) error {
				if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
					return echo.NewHTTPError(http.StatusUnauthorized, "authentication token is required")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "token is invalid or expired")
			},
		}),
		m.requireSession(users),
	}
}

func (m *TokenManager) requireSession(users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			token, ok := c.Get(jwtContextKey).(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "token is invalid or expired")
			}
			claims, ok := token.Claims.(*Claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "token is invalid or expired")
			}

			revoked, err := m.IsRevoked(ctx, claims.ID)
			if err != nil {
				logger.Error().Err(err).Msg("Error checking token blacklist")
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}
			if revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, "token is invalid or expired")
			}

			if _, err := users.GetUserByID(ctx, claims.UserID); err != nil {
				if errors.Is(err, entity.ErrUserNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "user does not exist")
				}
				logger.Error().Err(err).Msgf("Error loading user %s", claims.UserID)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}

			SetSession(c, claims.UserID, token.Raw)
			return next(c)
		}
	}
}

// SetSession records the authenticated user and bearer token on the request context.
func SetSession(c echo.Context, userID, token string) {
	c.Set(userIDContextKey, userID)
	c.Set(tokenContextKey, token)
}

// UserID returns the authenticated user id set by the middleware.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDContextKey).(string)
	return id
}

// RawToken returns the bearer token of the current request.
func RawToken(c echo.Context) string {
	token, _ := c.Get(tokenContextKey).(string)
	return token
}
