package handlers

import (
	"time"

	"github.com/crewple/user_service/internal/dto"
	"github.com/crewple/user_service/internal/helper"
	"github.com/crewple/user_service/internal/services"
	"github.com/crewple/user_service/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type AuthHandler struct {
	svc      services.UserService
	oauthSvc services.OAuthService
	auth     helper.Auth
}

func NewAuthHandler(svc services.UserService, oauthSvc services.OAuthService, auth helper.Auth) *AuthHandler {
	return &AuthHandler{svc: svc, oauthSvc: oauthSvc, auth: auth}
}

func (h *AuthHandler) Register(ctx *fiber.Ctx) error {
	var requestBody dto.RegisterRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if err := validate.Struct(requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.svc.Register(requestBody)
	if err != nil {
		return utils.ResponseServiceError(ctx, err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusCreated, dto.NewUserProfileResponse(user))
}

func (h *AuthHandler) Login(ctx *fiber.Ctx) error {
	var requestBody dto.UserLogin
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "email and password are required")
	}
	if err := validate.Struct(requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.svc.Login(requestBody)
	if err != nil {
		return utils.ResponseServiceError(ctx, err)
	}

	pair, err := h.oauthSvc.CompleteLogin(user, deviceContext(ctx))
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "could not complete login")
	}
	setTokenCookies(ctx, pair)

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"user": dto.NewUserProfileResponse(user),
	})
}

// Refresh exchanges a live refresh token for a fresh pair. The old
// session is revoked before the new one is written.
func (h *AuthHandler) Refresh(ctx *fiber.Ctx) error {
	refreshToken := ctx.Cookies("refresh_token")
	if refreshToken == "" {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "missing refresh token")
	}

	user, err := h.svc.Refresh(refreshToken)
	if err != nil {
		clearTokenCookies(ctx)
		return utils.ResponseServiceError(ctx, err)
	}

	pair, err := h.oauthSvc.CompleteLogin(user, deviceContext(ctx))
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "could not complete login")
	}
	setTokenCookies(ctx, pair)

	return utils.ResponseSuccess(ctx, fiber.StatusOK, "Tokens refreshed successfully")
}

func (h *AuthHandler) Logout(ctx *fiber.Ctx) error {
	if refreshToken := ctx.Cookies("refresh_token"); refreshToken != "" {
		if err := h.svc.Logout(refreshToken); err != nil {
			return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
		}
	}
	clearTokenCookies(ctx)
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "Logged out")
}

func (h *AuthHandler) LogoutAll(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.svc.LogoutAll(claims.UserID); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}
	clearTokenCookies(ctx)
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "Logged out everywhere")
}

func (h *AuthHandler) Me(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	user, err := h.svc.GetProfile(claims.UserID)
	if err != nil {
		return utils.ResponseServiceError(ctx, err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.NewUserProfileResponse(user))
}

func deviceContext(ctx *fiber.Ctx) dto.DeviceContext {
	return dto.DeviceContext{
		UserAgent: ctx.Get("User-Agent"),
		IPAddress: ctx.IP(),
	}
}

func setTokenCookies(ctx *fiber.Ctx, pair dto.TokenPair) {
	ctx.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    pair.AccessToken,
		Expires:  time.Now().Add(helper.AccessTokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
	ctx.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    pair.RefreshToken,
		Expires:  time.Now().Add(helper.RefreshTokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}

func clearTokenCookies(ctx *fiber.Ctx) {
	for _, name := range []string{"access_token", "refresh_token"} {
		ctx.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			SameSite: "Lax",
			Path:     "/",
		})
	}
}
