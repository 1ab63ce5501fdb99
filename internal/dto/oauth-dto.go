package dto

import "github.com/crewple/user_service/internal/domain"

// OAuthUser is the assertion a provider client produces after a
// successful code exchange and profile fetch.
type OAuthUser struct {
	Provider             string
	ProviderID           string
	Email                string
	EmailVerified        bool
	Name                 string
	Avatar               string
	ProviderAccessToken  string
	ProviderRefreshToken string
	RawProfile           map[string]interface{}
}

// LinkContext carries the already-authenticated user adding a login
// method to their account. Nil means a plain login/signup resolution.
type LinkContext struct {
	UserID uint
}

type IntegrationResult struct {
	User                      *domain.User
	IsNewUser                 bool
	IsNewIdentity             bool
	RequiresEmailVerification bool
}

// DeviceContext is whatever the transport layer knows about the caller
// at login time. Both fields are optional.
type DeviceContext struct {
	UserAgent string
	IPAddress string
}

type LinkedIdentityResponse struct {
	Provider  string  `json:"provider"`
	Email     *string `json:"email,omitempty"`
	LinkedAt  string  `json:"linked_at"`
	UpdatedAt string  `json:"updated_at"`
}
