package handlers

import (
	"io"
	"strconv"

	"github.com/crewple/user_service/internal/dto"
	"github.com/crewple/user_service/internal/helper"
	"github.com/crewple/user_service/internal/services"
	"github.com/crewple/user_service/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

const maxAvatarBytes = 5 << 20

type UserHandler struct {
	svc  services.UserService
	auth helper.Auth
}

func NewUserHandler(svc services.UserService, auth helper.Auth) *UserHandler {
	return &UserHandler{svc: svc, auth: auth}
}

func (h *UserHandler) GetProfile(ctx *fiber.Ctx) error {
	userID, err := parseUserID(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.svc.GetProfile(userID)
	if err != nil {
		return utils.ResponseServiceError(ctx, err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.NewUserProfileResponse(user))
}

func (h *UserHandler) UpdateProfile(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var requestBody dto.UpdateUserProfile
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if err := validate.Struct(requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.svc.UpdateProfile(claims.UserID, requestBody)
	if err != nil {
		return utils.ResponseServiceError(ctx, err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.NewUserProfileResponse(user))
}

func (h *UserHandler) UpdateAvatar(ctx *fiber.Ctx) error {
	claims, err := h.auth.GetCurrentUser(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	fileHeader, err := ctx.FormFile("avatar")
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "avatar file is required")
	}
	if fileHeader.Size > maxAvatarBytes {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "avatar file too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "could not read avatar file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "could not read avatar file")
	}

	url, err := h.svc.UpdateAvatar(ctx.Context(), claims.UserID, fileHeader.Filename, data)
	if err != nil {
		return utils.ResponseServiceError(ctx, err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{"avatar": url})
}

func (h *UserHandler) SetStatus(ctx *fiber.Ctx) error {
	userID, err := parseUserID(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid user id")
	}

	var requestBody dto.SetStatusRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if err := validate.Struct(requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}

	if err := h.svc.SetStatus(userID, requestBody.Status); err != nil {
		return utils.ResponseServiceError(ctx, err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, "Status updated")
}

func (h *UserHandler) SetRole(ctx *fiber.Ctx) error {
	userID, err := parseUserID(ctx)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid user id")
	}

	var requestBody dto.SetRoleRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}
	if err := validate.Struct(requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}

	if err := h.svc.SetRole(userID, requestBody.Role); err != nil {
		return utils.ResponseServiceError(ctx, err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, "Role updated")
}

func parseUserID(ctx *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params("userID"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
