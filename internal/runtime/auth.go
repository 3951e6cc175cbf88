package runtime

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/gradscout/gradscout/config"
)

// LoadJWTSecret resolves the shared JWT secret from config.
func LoadJWTSecret(cfg *config.Config) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if cfg.Server.JWTSecret != "" {
		return []byte(cfg.Server.JWTSecret), nil
	}
	return nil, errors.New("jwt secret not configured (server.jwt_secret)")
}

// SignJWT issues a signed token with the provided subject and TTL.
func SignJWT(subject string, secret []byte, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// EchoAuthMiddleware builds an Echo middleware that validates JWT tokens from Authorization header or auth cookie.
func EchoAuthMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok := extractToken(c)
			if tok == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			}
			parsed, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) { return secret, nil })
			if err != nil || !parsed.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if claims, ok := parsed.Claims.(jwt.MapClaims); ok {
				if sub, ok := claims["sub"].(string); ok {
					reqCtx := context.WithValue(c.Request().Context(), subjectKey{}, sub)
					c.Set("user_id", sub)
					c.SetRequest(c.Request().WithContext(reqCtx))
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
	}
}

func extractToken(c echo.Context) string {
	if h := c.Request().Header.Get("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
		return h[7:]
	}
	if ck, err := c.Cookie("auth"); err == nil {
		return ck.Value
	}
	return ""
}

type subjectKey struct{}

// SubjectFromContext returns the JWT subject if stored in context via middleware.
func SubjectFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v := ctx.Value(subjectKey{}); v != nil {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}
