package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crewple/user_service/internal/dto"
	"golang.org/x/oauth2"
)

// Client wraps one provider's code-exchange and profile-fetch flow and
// normalizes the result into the assertion shape the resolver consumes.
type Client struct {
	provider   string
	cfg        *oauth2.Config
	profileURL string
	normalize  func(raw map[string]interface{}) (dto.OAuthUser, error)
	httpClient *http.Client
}

func (c *Client) Provider() string {
	return c.provider
}

func (c *Client) AuthCodeURL(state string) string {
	return c.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.cfg.Exchange(ctx, code)
}

// FetchProfile retrieves the provider profile with the exchanged token
// and returns the normalized assertion, provider tokens included.
func (c *Client) FetchProfile(ctx context.Context, token *oauth2.Token) (dto.OAuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.profileURL, nil)
	if err != nil {
		return dto.OAuthUser{}, err
	}
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dto.OAuthUser{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return dto.OAuthUser{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return dto.OAuthUser{}, fmt.Errorf("%s profile fetch failed: status %d", c.provider, resp.StatusCode)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return dto.OAuthUser{}, fmt.Errorf("%s profile decode failed: %w", c.provider, err)
	}

	user, err := c.normalize(raw)
	if err != nil {
		return dto.OAuthUser{}, err
	}

	user.Provider = c.provider
	user.RawProfile = raw
	user.ProviderAccessToken = token.AccessToken
	user.ProviderRefreshToken = token.RefreshToken
	return user, nil
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}
