package oauth

import (
	"errors"

	"github.com/crewple/user_service/config"
	"github.com/crewple/user_service/internal/domain"
	"github.com/crewple/user_service/internal/dto"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleProfileURL = "https://www.googleapis.com/oauth2/v2/userinfo"

func NewGoogle(cfg config.OAuthProvider) *Client {
	return &Client{
		provider: domain.ProviderGoogle,
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"profile", "email"},
			Endpoint:     google.Endpoint,
		},
		profileURL: googleProfileURL,
		normalize:  normalizeGoogle,
		httpClient: newHTTPClient(),
	}
}

func normalizeGoogle(raw map[string]interface{}) (dto.OAuthUser, error) {
	id := str(raw["id"])
	if id == "" {
		return dto.OAuthUser{}, errors.New("google profile missing id")
	}

	verified, _ := raw["verified_email"].(bool)

	return dto.OAuthUser{
		ProviderID:    id,
		Email:         str(raw["email"]),
		EmailVerified: verified,
		Name:          str(raw["name"]),
		Avatar:        str(raw["picture"]),
	}, nil
}
