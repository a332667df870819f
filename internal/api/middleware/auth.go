package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// Secret is the HMAC key used to verify bearer tokens.
	Secret string
	// Audience, when set, must appear in the token's aud claim.
	Audience string
}

// AuthenticatedUser is the identity extracted from a validated token.
type AuthenticatedUser struct {
	Subject  string
	UserType string
	Aud      []string
}

// AuthMiddleware returns a Fiber middleware for Bearer token
// authentication. Tokens are HMAC-signed JWTs carrying the platform
// user id in sub.
func AuthMiddleware(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		var token string
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		if token == "" {
			c.Set("WWW-Authenticate", `Bearer realm="Access to protected resource"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Missing or invalid Bearer token",
			})
		}

		user, err := validateToken(token, cfg)
		if err != nil {
			c.Set("WWW-Authenticate", `Bearer realm="Access to protected resource"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid token",
			})
		}

		c.Locals("user", user)
		return c.Next()
	}
}

func validateToken(token string, cfg AuthConfig) (*AuthenticatedUser, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	user := &AuthenticatedUser{}
	if sub, ok := claims["sub"].(string); ok {
		user.Subject = sub
	}
	if userType, ok := claims["user_type"].(string); ok {
		user.UserType = userType
	}
	switch aud := claims["aud"].(type) {
	case string:
		user.Aud = []string{aud}
	case []interface{}:
		for _, v := range aud {
			if s, ok := v.(string); ok {
				user.Aud = append(user.Aud, s)
			}
		}
	}

	if cfg.Audience != "" {
		found := false
		for _, aud := range user.Aud {
			if aud == cfg.Audience {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("audience mismatch")
		}
	}

	return user, nil
}

// GetAuthenticatedUser retrieves the authenticated user from Fiber
// context, or nil when the request did not pass through the middleware.
func GetAuthenticatedUser(c *fiber.Ctx) *AuthenticatedUser {
	user, ok := c.Locals("user").(*AuthenticatedUser)
	if !ok {
		return nil
	}
	return user
}
