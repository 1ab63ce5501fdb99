package domain

import "gorm.io/gorm"

const (
	ProviderGoogle = "google"
	ProviderKakao  = "kakao"
	ProviderNaver  = "naver"
)

// UserIdentity links one external provider account to one local user.
// (provider, provider_user_id) is globally unique: a provider account
// can never be claimed by two local users.
type UserIdentity struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	UserID          uint    `gorm:"index;not null" json:"user_id"`
	User            User    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Provider        string  `gorm:"type:varchar(20);uniqueIndex:uidx_provider_uid;not null" json:"provider"`
	ProviderUserID  string  `gorm:"type:varchar(191);uniqueIndex:uidx_provider_uid;not null" json:"provider_user_id"`
	Email           *string `json:"email,omitempty"`
	AccessTokenEnc  *string `gorm:"type:text" json:"-"`
	RefreshTokenEnc *string `gorm:"type:text" json:"-"`
	RawProfile      string  `gorm:"type:jsonb" json:"-"`
	gorm.Model
}

func ValidProvider(p string) bool {
	switch p {
	case ProviderGoogle, ProviderKakao, ProviderNaver:
		return true
	}
	return false
}
