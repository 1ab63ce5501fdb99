package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/crewple/user_service/internal/domain"
	"github.com/crewple/user_service/internal/dto"
	"github.com/crewple/user_service/internal/helper"
	"github.com/crewple/user_service/internal/interfaces"
	"github.com/crewple/user_service/internal/repository"
)

// OAuthService reconciles third-party identity assertions against local
// users and runs the login completion that follows.
type OAuthService interface {
	Resolve(oauthUser dto.OAuthUser, link *dto.LinkContext) (*dto.IntegrationResult, error)
	CompleteLogin(user *domain.User, device dto.DeviceContext) (dto.TokenPair, error)
	ListIdentities(userID uint) ([]dto.LinkedIdentityResponse, error)
	Unlink(userID uint, provider string) error
}

type oauthService struct {
	users      repository.UserRepository
	identities repository.IdentityRepository
	sessions   repository.SessionRepository
	tx         repository.TxManager
	auth       helper.Auth
	crypter    interfaces.Crypter
	producer   interfaces.ProducerHandler
}

func NewOAuthService(
	users repository.UserRepository,
	identities repository.IdentityRepository,
	sessions repository.SessionRepository,
	tx repository.TxManager,
	auth helper.Auth,
	crypter interfaces.Crypter,
	producer interfaces.ProducerHandler,
) OAuthService {
	return &oauthService{
		users:      users,
		identities: identities,
		sessions:   sessions,
		tx:         tx,
		auth:       auth,
		crypter:    crypter,
		producer:   producer,
	}
}

// Resolve maps an assertion to exactly one local user, creating or
// linking as needed. Precedence: existing identity, then explicit
// linking, then verified-email match, then a brand-new user.
//
// A uniqueness race on (provider, provider_user_id) means another
// request just created the identity; re-running the resolution finds it
// on the existing-identity branch.
func (s *oauthService) Resolve(oauthUser dto.OAuthUser, link *dto.LinkContext) (*dto.IntegrationResult, error) {
	if oauthUser.ProviderID == "" || !domain.ValidProvider(oauthUser.Provider) {
		return nil, fmt.Errorf("%w: assertion missing provider id", ErrValidation)
	}

	res, err := s.resolve(oauthUser, link)
	if err != nil && helper.IsUniqueViolation(err) {
		return s.resolve(oauthUser, link)
	}
	return res, err
}

func (s *oauthService) resolve(oauthUser dto.OAuthUser, link *dto.LinkContext) (*dto.IntegrationResult, error) {
	// 1. existing identity for this provider account
	identity, err := s.identities.FindByProvider(oauthUser.Provider, oauthUser.ProviderID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}

	if identity != nil {
		if link != nil && identity.UserID != link.UserID {
			return nil, fmt.Errorf("%w: this %s account is already linked to another user",
				ErrConflict, oauthUser.Provider)
		}

		user, err := s.fillEmptyFields(identity.UserID, oauthUser)
		if err != nil {
			return nil, err
		}
		if err := s.refreshIdentity(identity, oauthUser); err != nil {
			return nil, err
		}

		return &dto.IntegrationResult{User: user}, nil
	}

	// 2. explicit linking to the authenticated user
	if link != nil {
		return s.linkToUser(link.UserID, oauthUser)
	}

	// 3. verified-email soft match onto an existing account
	if oauthUser.Email != "" && oauthUser.EmailVerified {
		existing, err := s.users.FindUserByEmail(oauthUser.Email)
		if err != nil && !repository.IsNotFound(err) {
			return nil, err
		}
		if existing != nil {
			return s.linkToUser(existing.ID, oauthUser)
		}
	}

	// 4. brand-new user
	return s.createUserWithIdentity(oauthUser)
}

// CompleteLogin issues the token pair and persists the refresh session
// row before returning: the refresh exchange treats "no session row" as
// revoked, so the row must exist before anyone sees the tokens.
func (s *oauthService) CompleteLogin(user *domain.User, device dto.DeviceContext) (dto.TokenPair, error) {
	pair, err := s.auth.IssueTokenPair(user)
	if err != nil {
		return dto.TokenPair{}, err
	}

	session := &domain.RefreshSession{
		UserID:    user.ID,
		JTI:       pair.JTI,
		ExpiresAt: time.Now().Add(helper.RefreshTokenTTL),
	}
	if device.UserAgent != "" {
		session.UserAgent = &device.UserAgent
	}
	if device.IPAddress != "" {
		session.IPAddress = &device.IPAddress
	}
	if _, err := s.sessions.CreateSession(session); err != nil {
		return dto.TokenPair{}, err
	}

	now := time.Now()
	if err := s.users.UpdateFields(user.ID, map[string]interface{}{"last_login_at": now}); err != nil {
		return dto.TokenPair{}, err
	}
	user.LastLoginAt = &now

	s.publish("user.logged_in", fmt.Sprintf(`{"user_id":%d}`, user.ID))
	return pair, nil
}

func (s *oauthService) ListIdentities(userID uint) ([]dto.LinkedIdentityResponse, error) {
	identities, err := s.identities.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.LinkedIdentityResponse, 0, len(identities))
	for _, id := range identities {
		out = append(out, dto.LinkedIdentityResponse{
			Provider:  id.Provider,
			Email:     id.Email,
			LinkedAt:  id.CreatedAt.Format(time.RFC3339),
			UpdatedAt: id.UpdatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// Unlink removes a provider link unless that would leave the user with
// no way to authenticate at all.
func (s *oauthService) Unlink(userID uint, provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !domain.ValidProvider(provider) {
		return fmt.Errorf("%w: unknown provider %q", ErrValidation, provider)
	}

	identity, err := s.identities.FindByUserAndProvider(userID, provider)
	if err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("%w: %s is not linked", ErrNotFound, provider)
		}
		return err
	}

	user, err := s.users.FindUserById(userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return err
	}

	count, err := s.identities.CountByUser(userID)
	if err != nil {
		return err
	}
	if user.PasswordHash == "" && count <= 1 {
		return fmt.Errorf("%w: cannot unlink the last authentication method", ErrForbidden)
	}

	return s.identities.DeleteIdentity(identity.ID)
}

func (s *oauthService) linkToUser(userID uint, oauthUser dto.OAuthUser) (*dto.IntegrationResult, error) {
	user, err := s.fillEmptyFields(userID, oauthUser)
	if err != nil {
		return nil, err
	}

	identity, err := s.buildIdentity(userID, oauthUser)
	if err != nil {
		return nil, err
	}
	if _, err := s.identities.CreateIdentity(identity); err != nil {
		return nil, err
	}

	s.publish("user.oauth_linked",
		fmt.Sprintf(`{"user_id":%d,"provider":"%s"}`, userID, oauthUser.Provider))

	return &dto.IntegrationResult{User: user, IsNewIdentity: true}, nil
}

func (s *oauthService) createUserWithIdentity(oauthUser dto.OAuthUser) (*dto.IntegrationResult, error) {
	displayName := oauthUser.Name
	if displayName == "" {
		displayName = providerLabel(oauthUser.Provider) + " User"
	}

	user := &domain.User{
		DisplayName: displayName,
		Role:        domain.RoleInfluencer,
		Status:      domain.StatusActive,
	}
	if oauthUser.Email != "" {
		email := oauthUser.Email
		user.Email = &email
	}
	if oauthUser.Avatar != "" {
		avatar := oauthUser.Avatar
		user.Avatar = &avatar
	}

	// user and identity land together or not at all
	err := s.tx.InTx(func(r repository.TxRepos) error {
		if _, err := r.Users.CreateUser(user); err != nil {
			return err
		}
		identity, err := s.buildIdentity(user.ID, oauthUser)
		if err != nil {
			return err
		}
		_, err = r.Identities.CreateIdentity(identity)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish("user.created",
		fmt.Sprintf(`{"user_id":%d,"provider":"%s"}`, user.ID, oauthUser.Provider))

	return &dto.IntegrationResult{
		User:                      user,
		IsNewUser:                 true,
		IsNewIdentity:             true,
		RequiresEmailVerification: oauthUser.Email == "",
	}, nil
}

// fillEmptyFields copies assertion values onto the user only where the
// user has nothing yet. An email that would collide with another
// account is skipped silently; the earlier registration keeps it.
func (s *oauthService) fillEmptyFields(userID uint, oauthUser dto.OAuthUser) (*domain.User, error) {
	user, err := s.users.FindUserById(userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}

	changed := false

	if user.DisplayName == "" && oauthUser.Name != "" {
		user.DisplayName = oauthUser.Name
		changed = true
	}
	if user.Avatar == nil && oauthUser.Avatar != "" {
		avatar := oauthUser.Avatar
		user.Avatar = &avatar
		changed = true
	}
	if user.Email == nil && oauthUser.Email != "" {
		_, err := s.users.FindUserByEmail(oauthUser.Email)
		if err != nil && !repository.IsNotFound(err) {
			return nil, err
		}
		if repository.IsNotFound(err) {
			email := oauthUser.Email
			user.Email = &email
			changed = true
		}
	}

	if changed {
		if err := s.users.SaveUser(user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *oauthService) buildIdentity(userID uint, oauthUser dto.OAuthUser) (*domain.UserIdentity, error) {
	identity := &domain.UserIdentity{
		UserID:         userID,
		Provider:       oauthUser.Provider,
		ProviderUserID: oauthUser.ProviderID,
	}
	if oauthUser.Email != "" {
		email := oauthUser.Email
		identity.Email = &email
	}
	if err := s.setIdentityTokens(identity, oauthUser); err != nil {
		return nil, err
	}
	return identity, nil
}

// refreshIdentity updates the stored provider tokens and raw profile on
// a returning login.
func (s *oauthService) refreshIdentity(identity *domain.UserIdentity, oauthUser dto.OAuthUser) error {
	if err := s.setIdentityTokens(identity, oauthUser); err != nil {
		return err
	}
	return s.identities.SaveIdentity(identity)
}

func (s *oauthService) setIdentityTokens(identity *domain.UserIdentity, oauthUser dto.OAuthUser) error {
	if oauthUser.ProviderAccessToken != "" {
		enc, err := s.crypter.Encrypt(oauthUser.ProviderAccessToken)
		if err != nil {
			return err
		}
		identity.AccessTokenEnc = &enc
	}
	if oauthUser.ProviderRefreshToken != "" {
		enc, err := s.crypter.Encrypt(oauthUser.ProviderRefreshToken)
		if err != nil {
			return err
		}
		identity.RefreshTokenEnc = &enc
	}

	if oauthUser.RawProfile != nil {
		raw, err := json.Marshal(oauthUser.RawProfile)
		if err != nil {
			return err
		}
		identity.RawProfile = string(raw)
	}
	return nil
}

func providerLabel(provider string) string {
	switch provider {
	case domain.ProviderGoogle:
		return "Google"
	case domain.ProviderKakao:
		return "Kakao"
	case domain.ProviderNaver:
		return "Naver"
	}
	return provider
}

func (s *oauthService) publish(key, payload string) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishMessage([]byte(key), []byte(payload)); err != nil {
		log.Printf("publish %s event error: %v", key, err)
	}
}
