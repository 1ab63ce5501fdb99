package domain

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin      = "ADMIN"
	RoleInfluencer = "INFLUENCER"
	RoleAdvertiser = "ADVERTISER"

	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        *string    `gorm:"uniqueIndex" json:"email,omitempty"`
	PasswordHash string     `json:"-"`
	DisplayName  string     `gorm:"not null" json:"display_name"`
	Avatar       *string    `json:"avatar,omitempty"`
	Role         string     `gorm:"type:varchar(20);not null;default:INFLUENCER" json:"role"`
	Status       string     `gorm:"type:varchar(20);not null;default:active" json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	gorm.Model
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleInfluencer, RoleAdvertiser:
		return true
	}
	return false
}

func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}
