package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tidianesow/medical-e-academy/internal/utils"
)

var (
	errMissingAuthorization = errors.New("authorization header missing")
	errInvalidAuthorization = errors.New("invalid authorization header")
	errInvalidToken         = errors.New("invalid token")
)

// JWTProtected rejects requests without a valid HS256 bearer token and
// stores user_id and user_role in the request locals.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := parseBearer(c, secret)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}
		if !bindClaims(c, claims) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}
		return c.Next()
	}
}

// OptionalJWT binds the caller when a valid token is present and lets
// anonymous or badly authenticated requests through unchanged.
func OptionalJWT(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, err := parseBearer(c, secret); err == nil {
			bindClaims(c, claims)
		}
		return c.Next()
	}
}

func parseBearer(c *fiber.Ctx, secret string) (jwt.MapClaims, error) {
	authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if authorization == "" {
		return nil, errMissingAuthorization
	}

	const bearer = "bearer "
	if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
		return nil, errInvalidAuthorization
	}

	tokenString := strings.TrimSpace(authorization[len(bearer):])
	if tokenString == "" {
		return nil, errInvalidToken
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

func bindClaims(c *fiber.Ctx, claims jwt.MapClaims) bool {
	userID, ok := extractUserID(claims)
	if !ok {
		return false
	}
	c.Locals("user_id", userID)
	if role := extractRole(claims); role != "" {
		c.Locals("user_role", role)
	}
	if email, ok := claims["email"].(string); ok {
		c.Locals("user_email", email)
	}
	return true
}

func extractUserID(claims jwt.MapClaims) (uint, bool) {
	for _, key := range []string{"id", "sub", "user_id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		if id, err := normalizeUserID(value); err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}

func normalizeUserID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("negative user id")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported user id type %T", value)
	}
}

func extractRole(claims jwt.MapClaims) string {
	role, _ := claims["role"].(string)
	return strings.ToLower(strings.TrimSpace(role))
}
