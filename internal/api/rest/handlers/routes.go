package handlers

import "github.com/gofiber/fiber/v2"

// SetupRoutes wires every endpoint. Static auth routes are registered
// before the :provider wildcards so /auth/me and /auth/link never match
// as provider names.
func SetupRoutes(
	app *fiber.App,
	authHandler *AuthHandler,
	oauthHandler *OAuthHandler,
	userHandler *UserHandler,
	authMW fiber.Handler,
	adminMW fiber.Handler,
) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/logout-all", authMW, authHandler.LogoutAll)
	auth.Get("/me", authMW, authHandler.Me)

	auth.Get("/link", authMW, oauthHandler.ListLinked)
	auth.Delete("/link/:provider", authMW, oauthHandler.Unlink)

	auth.Get("/:provider", oauthHandler.Start)
	auth.Get("/:provider/callback", oauthHandler.Callback)

	user := api.Group("/user")
	user.Get("/profile/:userID", authMW, userHandler.GetProfile)
	user.Put("/profile", authMW, userHandler.UpdateProfile)
	user.Put("/avatar", authMW, userHandler.UpdateAvatar)

	user.Patch("/:userID/status", authMW, adminMW, userHandler.SetStatus)
	user.Patch("/:userID/role", authMW, adminMW, userHandler.SetRole)
}
