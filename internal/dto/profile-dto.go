package dto

import (
	"time"

	"github.com/crewple/user_service/internal/domain"
)

type UpdateUserProfile struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=100"`
	Avatar      *string `json:"avatar,omitempty" validate:"omitempty,url"`
}

type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive suspended"`
}

type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=ADMIN INFLUENCER ADVERTISER"`
}

type UserProfileResponse struct {
	ID          uint       `json:"id"`
	Email       *string    `json:"email,omitempty"`
	DisplayName string     `json:"display_name"`
	Avatar      *string    `json:"avatar,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func NewUserProfileResponse(u *domain.User) UserProfileResponse {
	return UserProfileResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		Role:        u.Role,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
	}
}
