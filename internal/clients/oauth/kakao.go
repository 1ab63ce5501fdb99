package oauth

import (
	"errors"
	"fmt"

	"github.com/crewple/user_service/config"
	"github.com/crewple/user_service/internal/domain"
	"github.com/crewple/user_service/internal/dto"
	"golang.org/x/oauth2"
)

const kakaoProfileURL = "https://kapi.kakao.com/v2/user/me"

var kakaoEndpoint = oauth2.Endpoint{
	AuthURL:  "https://kauth.kakao.com/oauth/authorize",
	TokenURL: "https://kauth.kakao.com/oauth/token",
}

func NewKakao(cfg config.OAuthProvider) *Client {
	return &Client{
		provider: domain.ProviderKakao,
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"profile_nickname", "profile_image", "account_email"},
			Endpoint:     kakaoEndpoint,
		},
		profileURL: kakaoProfileURL,
		normalize:  normalizeKakao,
		httpClient: newHTTPClient(),
	}
}

func normalizeKakao(raw map[string]interface{}) (dto.OAuthUser, error) {
	// kakao ids are numeric
	idNum, ok := raw["id"].(float64)
	if !ok {
		return dto.OAuthUser{}, errors.New("kakao profile missing id")
	}

	user := dto.OAuthUser{ProviderID: fmt.Sprintf("%.0f", idNum)}

	account, _ := raw["kakao_account"].(map[string]interface{})
	if account != nil {
		user.Email = str(account["email"])
		verified, _ := account["is_email_verified"].(bool)
		user.EmailVerified = verified

		if profile, _ := account["profile"].(map[string]interface{}); profile != nil {
			user.Name = str(profile["nickname"])
			user.Avatar = str(profile["profile_image_url"])
		}
	}
	return user, nil
}
