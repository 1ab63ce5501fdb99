package handlers

import (
	"errors"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/crewple/user_service/internal/clients/oauth"
	"github.com/crewple/user_service/internal/dto"
	"github.com/crewple/user_service/internal/helper"
	"github.com/crewple/user_service/internal/services"
	"github.com/crewple/user_service/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const stateCookie = "oauth_state"

type OAuthHandler struct {
	svc        services.OAuthService
	auth       helper.Auth
	providers  map[string]*oauth.Client
	successURL string
	failureURL string
}

func NewOAuthHandler(
	svc services.OAuthService,
	auth helper.Auth,
	providers map[string]*oauth.Client,
	successURL, failureURL string,
) *OAuthHandler {
	return &OAuthHandler{
		svc:        svc,
		auth:       auth,
		providers:  providers,
		successURL: successURL,
		failureURL: failureURL,
	}
}

// Start redirects the browser to the provider's consent page. A fresh
// state value rides along in a short-lived cookie for the callback to
// check.
func (h *OAuthHandler) Start(ctx *fiber.Ctx) error {
	client, ok := h.providers[strings.ToLower(ctx.Params("provider"))]
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "unknown provider")
	}

	state := uuid.NewString()
	ctx.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	return ctx.Redirect(client.AuthCodeURL(state), fiber.StatusFound)
}

// Callback finishes the provider round-trip: code exchange, profile
// fetch, resolution against the local store, login completion, then a
// redirect back to the web client. A valid access token on the request
// switches the resolution into linking mode for that user.
func (h *OAuthHandler) Callback(ctx *fiber.Ctx) error {
	provider := strings.ToLower(ctx.Params("provider"))
	client, ok := h.providers[provider]
	if !ok {
		return h.redirectFailure(ctx, "unknown_provider")
	}

	if errParam := ctx.Query("error"); errParam != "" {
		log.Printf("%s oauth error: %s", provider, errParam)
		return h.redirectFailure(ctx, provider+"_error")
	}

	state := ctx.Query("state")
	if state == "" || state != ctx.Cookies(stateCookie) {
		return h.redirectFailure(ctx, "state_mismatch")
	}
	clearStateCookie(ctx)

	code := ctx.Query("code")
	if code == "" {
		return h.redirectFailure(ctx, "missing_code")
	}

	token, err := client.Exchange(ctx.Context(), code)
	if err != nil {
		log.Printf("%s code exchange error: %v", provider, err)
		return h.redirectFailure(ctx, "exchange_failed")
	}

	oauthUser, err := client.FetchProfile(ctx.Context(), token)
	if err != nil {
		log.Printf("%s profile fetch error: %v", provider, err)
		return h.redirectFailure(ctx, "profile_failed")
	}

	link := h.linkContext(ctx)

	result, err := h.svc.Resolve(oauthUser, link)
	if err != nil {
		log.Printf("%s resolution error: %v", provider, err)
		if errors.Is(err, services.ErrConflict) {
			return h.redirectFailure(ctx, "account_conflict")
		}
		return h.redirectFailure(ctx, "integration_failed")
	}

	pair, err := h.svc.CompleteLogin(result.User, deviceContext(ctx))
	if err != nil {
		log.Printf("%s login completion error: %v", provider, err)
		return h.redirectFailure(ctx, "integration_failed")
	}
	setTokenCookies(ctx, pair)

	q := url.Values{}
	q.Set("provider", provider)
	q.Set("new_user", strconv.FormatBool(result.IsNewUser))
	q.Set("new_identity", strconv.FormatBool(result.IsNewIdentity))
	q.Set("needs_email", strconv.FormatBool(result.RequiresEmailVerification))

	return ctx.Redirect(h.successURL+"?"+q.Encode(), fiber.StatusFound)
}

func (h *OAuthHandler) ListLinked(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	identities, err := h.svc.ListIdentities(claims.UserID)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"identities": identities,
	})
}

func (h *OAuthHandler) Unlink(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	provider := ctx.Params("provider")
	if err := h.svc.Unlink(claims.UserID, provider); err != nil {
		return utils.ResponseServiceError(ctx, err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, provider+" successfully unlinked")
}

// linkContext inspects the optional access token on the callback; a
// valid one means an already-authenticated user is adding a provider.
func (h *OAuthHandler) linkContext(ctx *fiber.Ctx) *dto.LinkContext {
	tokenStr := strings.TrimSpace(ctx.Cookies("access_token"))
	if tokenStr == "" {
		tokenStr = strings.TrimSpace(ctx.Get("Authorization"))
	}
	if tokenStr == "" {
		return nil
	}

	claims, err := h.auth.VerifyAccessToken(tokenStr)
	if err != nil {
		return nil
	}
	return &dto.LinkContext{UserID: claims.UserID}
}

func (h *OAuthHandler) redirectFailure(ctx *fiber.Ctx, reason string) error {
	return ctx.Redirect(h.failureURL+"?error="+url.QueryEscape(reason), fiber.StatusFound)
}

func clearStateCookie(ctx *fiber.Ctx) {
	ctx.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})
}
