package middleware

import (
	"strings"

	"github.com/crewple/user_service/internal/domain"
	"github.com/crewple/user_service/internal/helper"
	"github.com/crewple/user_service/internal/repository"
	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware authenticates the request from the access_token cookie
// or the Authorization header, re-reads the user, and rejects non-active
// accounts. The fresh role from the store lands in locals so role gates
// see demotions immediately, not at token expiry.
func AuthMiddleware(auth helper.Auth, users repository.UserRepository) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		// 1) try cookie first
		tokenStr := strings.TrimSpace(ctx.Cookies("access_token"))

		// 2) fallback to Authorization header
		if tokenStr == "" {
			tokenStr = strings.TrimSpace(ctx.Get("Authorization"))
		}

		claims, err := auth.VerifyAccessToken(tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		user, err := users.FindUserById(claims.UserID)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "user not found",
			})
		}
		if user.Status != domain.StatusActive {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "account is not active",
			})
		}

		claims.Role = user.Role
		ctx.Locals("userID", user.ID)
		ctx.Locals("user", claims)
		return ctx.Next()
	}
}

// RequireRoles gates a route on the authenticated user's role. Plain
// allowed-set check, no reflection.
func RequireRoles(auth helper.Auth, roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(ctx *fiber.Ctx) error {
		claims, err := auth.GetCurrentUser(ctx)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		if _, ok := allowed[claims.Role]; !ok {
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "insufficient role",
			})
		}
		return ctx.Next()
	}
}

func AdminOnly(auth helper.Auth) fiber.Handler {
	return RequireRoles(auth, domain.RoleAdmin)
}
