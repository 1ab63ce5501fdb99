package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/crewple/user_service/internal/domain"
	"github.com/crewple/user_service/internal/dto"
	"github.com/crewple/user_service/internal/helper"
	"github.com/crewple/user_service/internal/interfaces"
	"github.com/crewple/user_service/internal/repository"
)

type UserService interface {
	// Auth
	Register(input dto.RegisterRequest) (*domain.User, error)
	Login(input dto.UserLogin) (*domain.User, error)
	Refresh(refreshToken string) (*domain.User, error)
	Logout(refreshToken string) error
	LogoutAll(userID uint) error

	// Profile
	GetProfile(userID uint) (*domain.User, error)
	UpdateProfile(userID uint, input dto.UpdateUserProfile) (*domain.User, error)
	UpdateAvatar(ctx context.Context, userID uint, filename string, data []byte) (string, error)

	// Admin
	SetStatus(userID uint, status string) error
	SetRole(userID uint, role string) error
}

type userService struct {
	repo     repository.UserRepository
	sessions repository.SessionRepository
	auth     helper.Auth
	uploader interfaces.Uploader
	producer interfaces.ProducerHandler
}

func NewUserService(
	repo repository.UserRepository,
	sessions repository.SessionRepository,
	auth helper.Auth,
	uploader interfaces.Uploader,
	producer interfaces.ProducerHandler,
) UserService {
	return &userService{
		repo:     repo,
		sessions: sessions,
		auth:     auth,
		uploader: uploader,
		producer: producer,
	}
}

func (u *userService) Register(input dto.RegisterRequest) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	displayName := strings.TrimSpace(input.DisplayName)

	role := strings.ToUpper(strings.TrimSpace(input.Role))
	if role == "" {
		role = domain.RoleInfluencer
	}
	if role != domain.RoleInfluencer && role != domain.RoleAdvertiser {
		return nil, fmt.Errorf("%w: invalid role", ErrValidation)
	}

	existing, err := u.repo.FindUserByEmail(email)
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}
	if existing != nil && existing.ID != 0 {
		return nil, fmt.Errorf("%w: email already exists", ErrConflict)
	}

	hashed, err := u.auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	newUser := &domain.User{
		Email:        &email,
		PasswordHash: hashed,
		DisplayName:  displayName,
		Role:         role,
		Status:       domain.StatusActive,
	}

	usr, err := u.repo.CreateUser(newUser)
	if err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email already exists", ErrConflict)
		}
		return nil, err
	}

	if u.producer != nil {
		payload := fmt.Sprintf(`{"user_id":%d,"email":"%s"}`, usr.ID, email)
		if err := u.producer.PublishMessage([]byte("user.created"), []byte(payload)); err != nil {
			log.Printf("publish user.created event error: %v", err)
		}
	}

	return usr, nil
}

func (u *userService) Login(input dto.UserLogin) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	user, err := u.repo.FindUserByEmail(email)
	if err != nil || user == nil || user.ID == 0 {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if user.PasswordHash == "" {
		// social-only account, no password credential to check
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if user.Status != domain.StatusActive {
		return nil, fmt.Errorf("%w: account is not active", ErrUnauthorized)
	}
	if err := u.auth.VerifyPassword(input.Password, user.PasswordHash); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	return user, nil
}

// Refresh validates a refresh token against its live session row and
// revokes that row so the caller can rotate in a fresh pair. Signature
// validity alone is not enough: a revoked jti fails the exchange.
func (u *userService) Refresh(refreshToken string) (*domain.User, error) {
	claims, err := u.auth.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}

	session, err := u.sessions.FindActive(claims.JTI)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: session revoked or expired", ErrUnauthorized)
		}
		return nil, err
	}

	user, err := u.repo.FindUserById(session.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return nil, err
	}
	if user.Status != domain.StatusActive {
		return nil, fmt.Errorf("%w: account is not active", ErrUnauthorized)
	}

	// rotation: the presented jti is single-use
	if err := u.sessions.Revoke(claims.JTI); err != nil {
		return nil, err
	}

	return user, nil
}

// Logout revokes the presented refresh session. A malformed or expired
// token is not an error here; there is simply nothing to revoke.
func (u *userService) Logout(refreshToken string) error {
	claims, err := u.auth.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil
	}
	return u.sessions.Revoke(claims.JTI)
}

func (u *userService) LogoutAll(userID uint) error {
	return u.sessions.RevokeAllForUser(userID)
}

func (u *userService) GetProfile(userID uint) (*domain.User, error) {
	user, err := u.repo.FindUserById(userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}
	return user, nil
}

func (u *userService) UpdateProfile(userID uint, input dto.UpdateUserProfile) (*domain.User, error) {
	user, err := u.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*input.DisplayName)
	}
	if input.Avatar != nil {
		user.Avatar = input.Avatar
	}

	if err := u.repo.SaveUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *userService) UpdateAvatar(ctx context.Context, userID uint, filename string, data []byte) (string, error) {
	user, err := u.GetProfile(userID)
	if err != nil {
		return "", err
	}
	if u.uploader == nil {
		return "", fmt.Errorf("uploader not configured")
	}

	url, err := u.uploader.UploadBytes(ctx, "avatars", fmt.Sprintf("user-%d-%s", userID, filename), data)
	if err != nil {
		return "", err
	}

	user.Avatar = &url
	if err := u.repo.SaveUser(user); err != nil {
		return "", err
	}
	return url, nil
}

func (u *userService) SetStatus(userID uint, status string) error {
	if !domain.ValidStatus(status) {
		return fmt.Errorf("%w: invalid status", ErrValidation)
	}

	user, err := u.GetProfile(userID)
	if err != nil {
		return err
	}

	user.Status = status
	if err := u.repo.SaveUser(user); err != nil {
		return err
	}

	// a user taken out of active loses every live session
	if status != domain.StatusActive {
		return u.sessions.RevokeAllForUser(userID)
	}
	return nil
}

func (u *userService) SetRole(userID uint, role string) error {
	if !domain.ValidRole(role) {
		return fmt.Errorf("%w: invalid role", ErrValidation)
	}

	user, err := u.GetProfile(userID)
	if err != nil {
		return err
	}

	user.Role = role
	return u.repo.SaveUser(user)
}
