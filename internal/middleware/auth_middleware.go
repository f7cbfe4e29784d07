package middleware

import (
	"errors"
	"strings"

	"go-stock-ledger/internal/repository"
	"go-stock-ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

var errBadFormat = errors.New("Invalid authorization format. Use: Bearer <token>")

// extractToken reads "Authorization: Bearer <token>", falling back to the
// token query parameter used by websocket clients
func extractToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if t := c.Query("token"); t != "" {
			return t, nil
		}
		return "", jwt.ErrMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errBadFormat
	}
	return parts[1], nil
}

// authenticate validates the token and stores the caller in Locals
func authenticate(c *fiber.Ctx, userRepo repository.UserRepository, tokenString string) (int, string) {
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return 401, "Invalid or expired token"
	}

	// Check strict session against DB
	user, err := userRepo.FindByID(claims.UserID)
	if err != nil {
		return 401, "User not found"
	}
	if !user.IsActive {
		return 401, "User account is inactive"
	}
	if user.TokenVersion != claims.TokenVersion {
		return 401, "Session expired (logged in on another device)"
	}

	// Privileges come from the stored role so role changes apply immediately
	c.Locals("user_id", user.ID.String())
	c.Locals("user_email", user.Email)
	c.Locals("user_name", user.Username)
	c.Locals("user_privileges", user.GetPrivilegeCodes())
	return 0, ""
}

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractToken(c)
		if err != nil {
			if errors.Is(err, jwt.ErrMissingToken) {
				return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
			}
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}

		if status, msg := authenticate(c, userRepo, tokenString); status != 0 {
			return c.Status(status).JSON(fiber.Map{"error": msg})
		}
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through untouched
func OptionalAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractToken(c)
		if err != nil {
			return c.Next()
		}
		authenticate(c, userRepo, tokenString)
		return c.Next()
	}
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals("user_privileges").([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, p := range privileges {
			if p == requiredPrivilege {
				return c.Next()
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
		})
	}
}
