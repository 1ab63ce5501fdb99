package dto

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
	Role        string `json:"role" validate:"omitempty,oneof=INFLUENCER ADVERTISER"`
}

type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthClaims is the decoded access-token payload placed on the request
// context by the auth middleware.
type AuthClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Expiry int64  `json:"expiry"`
	Iat    int64  `json:"iat"`
}

// RefreshClaims is the decoded refresh-token payload. The JTI must still
// match a live refresh session before the token authorizes anything.
type RefreshClaims struct {
	UserID uint   `json:"user_id"`
	JTI    string `json:"jti"`
	Expiry int64  `json:"expiry"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	JTI          string `json:"-"`
}
