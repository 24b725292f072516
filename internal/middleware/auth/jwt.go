package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AdminUser represents an authenticated admin from JWT
type AdminUser struct {
	Subject string `json:"sub"`
	Role    string `json:"role"`
}

// contextKey is used for storing the admin in context
type contextKey string

const (
	adminContextKey contextKey = "authenticated_admin"

	roleAdmin = "admin"
)

// JWTConfig holds the configuration for JWT middleware
type JWTConfig struct {
	Secret string
	Logger *zap.Logger
}

// JWTMiddleware validates the Bearer token on admin routes. Only tokens
// signed with the configured HMAC secret and carrying the admin role
// pass.
func JWTMiddleware(config JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				config.Logger.Warn("Missing authorization header",
					zap.String("path", path),
					zap.String("method", c.Request().Method))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Authorization header required",
					"code":  "MISSING_AUTH_HEADER",
				})
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				config.Logger.Warn("Invalid authorization header format",
					zap.String("path", path))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid authorization header format. Expected: Bearer <token>",
					"code":  "INVALID_AUTH_FORMAT",
				})
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(config.Secret), nil
			})

			if err != nil {
				config.Logger.Warn("JWT validation failed",
					zap.Error(err),
					zap.String("path", path))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid or expired token",
					"code":  "INVALID_TOKEN",
				})
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok || !token.Valid {
				config.Logger.Warn("Invalid JWT claims",
					zap.String("path", path))
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "Invalid token claims",
					"code":  "INVALID_CLAIMS",
				})
			}

			role, _ := claims["role"].(string)
			if role != roleAdmin {
				config.Logger.Warn("Rejected non-admin token",
					zap.String("path", path))
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": "Admin role required",
					"code":  "FORBIDDEN",
				})
			}

			subject, _ := claims["sub"].(string)
			admin := &AdminUser{
				Subject: subject,
				Role:    role,
			}

			ctx := context.WithValue(c.Request().Context(), adminContextKey, admin)
			c.SetRequest(c.Request().WithContext(ctx))

			config.Logger.Debug("Admin authenticated",
				zap.String("subject", subject),
				zap.String("path", path))

			return next(c)
		}
	}
}

// GetAdminFromContext extracts the authenticated admin from the request context
func GetAdminFromContext(c echo.Context) (*AdminUser, error) {
	admin, ok := c.Request().Context().Value(adminContextKey).(*AdminUser)
	if !ok || admin == nil {
		return nil, fmt.Errorf("no authenticated admin found in context")
	}
	return admin, nil
}
