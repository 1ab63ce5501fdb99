package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crewple/user_service/config"
	"github.com/crewple/user_service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNormalizeGoogle(t *testing.T) {
	user, err := normalizeGoogle(map[string]interface{}{
		"id":             "g-123",
		"email":          "a@x.com",
		"verified_email": true,
		"name":           "Alice",
		"picture":        "https://img/a.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "g-123", user.ProviderID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.True(t, user.EmailVerified)
	assert.Equal(t, "Alice", user.Name)

	_, err = normalizeGoogle(map[string]interface{}{"email": "a@x.com"})
	require.Error(t, err)
}

func TestNormalizeKakao(t *testing.T) {
	user, err := normalizeKakao(map[string]interface{}{
		"id": float64(998877),
		"kakao_account": map[string]interface{}{
			"email":             "k@x.com",
			"is_email_verified": true,
			"profile": map[string]interface{}{
				"nickname":          "Kim",
				"profile_image_url": "https://img/k.png",
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "998877", user.ProviderID)
	assert.Equal(t, "k@x.com", user.Email)
	assert.True(t, user.EmailVerified)
	assert.Equal(t, "Kim", user.Name)

	// account section is optional
	user, err = normalizeKakao(map[string]interface{}{"id": float64(5)})
	require.NoError(t, err)
	assert.Equal(t, "5", user.ProviderID)
	assert.Empty(t, user.Email)

	_, err = normalizeKakao(map[string]interface{}{})
	require.Error(t, err)
}

func TestNormalizeNaver(t *testing.T) {
	user, err := normalizeNaver(map[string]interface{}{
		"resultcode": "00",
		"response": map[string]interface{}{
			"id":            "n-55",
			"email":         "n@x.com",
			"name":          "Lee",
			"profile_image": "https://img/n.png",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "n-55", user.ProviderID)
	assert.Equal(t, "n@x.com", user.Email)
	assert.True(t, user.EmailVerified)

	_, err = normalizeNaver(map[string]interface{}{"resultcode": "00"})
	require.Error(t, err)
}

func TestFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer provider-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"g-123","email":"a@x.com","verified_email":true,"name":"Alice"}`))
	}))
	defer srv.Close()

	client := NewGoogle(config.OAuthProvider{ClientID: "cid", ClientSecret: "cs"})
	client.profileURL = srv.URL

	user, err := client.FetchProfile(context.Background(), &oauth2.Token{
		AccessToken:  "provider-token",
		RefreshToken: "provider-refresh",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderGoogle, user.Provider)
	assert.Equal(t, "g-123", user.ProviderID)
	assert.Equal(t, "provider-token", user.ProviderAccessToken)
	assert.Equal(t, "provider-refresh", user.ProviderRefreshToken)
	assert.Equal(t, "g-123", user.RawProfile["id"])
}

func TestFetchProfileNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewKakao(config.OAuthProvider{})
	client.profileURL = srv.URL

	_, err := client.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "x"})
	require.Error(t, err)
}

func TestAuthCodeURLCarriesState(t *testing.T) {
	client := NewNaver(config.OAuthProvider{
		ClientID:    "cid",
		RedirectURL: "http://localhost:3000/api/auth/naver/callback",
	})

	u := client.AuthCodeURL("state-123")
	assert.Contains(t, u, "state=state-123")
	assert.Contains(t, u, "client_id=cid")
}
