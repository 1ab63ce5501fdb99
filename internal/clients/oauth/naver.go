package oauth

import (
	"errors"

	"github.com/crewple/user_service/config"
	"github.com/crewple/user_service/internal/domain"
	"github.com/crewple/user_service/internal/dto"
	"golang.org/x/oauth2"
)

const naverProfileURL = "https://openapi.naver.com/v1/nid/me"

var naverEndpoint = oauth2.Endpoint{
	AuthURL:  "https://nid.naver.com/oauth2.0/authorize",
	TokenURL: "https://nid.naver.com/oauth2.0/token",
}

func NewNaver(cfg config.OAuthProvider) *Client {
	return &Client{
		provider: domain.ProviderNaver,
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     naverEndpoint,
		},
		profileURL: naverProfileURL,
		normalize:  normalizeNaver,
		httpClient: newHTTPClient(),
	}
}

func normalizeNaver(raw map[string]interface{}) (dto.OAuthUser, error) {
	response, _ := raw["response"].(map[string]interface{})
	if response == nil {
		return dto.OAuthUser{}, errors.New("naver profile missing response")
	}

	id := str(response["id"])
	if id == "" {
		return dto.OAuthUser{}, errors.New("naver profile missing id")
	}

	email := str(response["email"])

	return dto.OAuthUser{
		ProviderID: id,
		Email:      email,
		// naver only exposes the account's verified contact email
		EmailVerified: email != "",
		Name:          str(response["name"]),
		Avatar:        str(response["profile_image"]),
	}, nil
}
