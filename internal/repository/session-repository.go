package repository

import (
	"errors"
	"time"

	"github.com/crewple/user_service/internal/domain"
	"gorm.io/gorm"
)

type SessionRepository interface {
	CreateSession(session *domain.RefreshSession) (*domain.RefreshSession, error)
	FindActive(jti string) (*domain.RefreshSession, error)
	Revoke(jti string) error
	RevokeAllForUser(userID uint) error
	DeleteExpired() (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) CreateSession(session *domain.RefreshSession) (*domain.RefreshSession, error) {
	if session == nil {
		return nil, errors.New("nil session")
	}
	if err := r.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// FindActive filters expiry at query time: an expired row must never
// authorize a refresh, even before cleanup removes it.
func (r *sessionRepository) FindActive(jti string) (*domain.RefreshSession, error) {
	session := &domain.RefreshSession{}
	err := r.db.
		Where("jti = ? AND expires_at > ?", jti, time.Now()).
		First(session).Error
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Revoke is idempotent: revoking an unknown jti is not an error.
func (r *sessionRepository) Revoke(jti string) error {
	return r.db.Where("jti = ?", jti).Delete(&domain.RefreshSession{}).Error
}

func (r *sessionRepository) RevokeAllForUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&domain.RefreshSession{}).Error
}

func (r *sessionRepository) DeleteExpired() (int64, error) {
	res := r.db.Where("expires_at <= ?", time.Now()).Delete(&domain.RefreshSession{})
	return res.RowsAffected, res.Error
}
